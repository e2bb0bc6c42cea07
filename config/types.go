package config

import (
	"net/url"
	"path/filepath"
	"time"
)

// Config aggregates all configuration blocks for the augmenter.
type Config struct {
	Feed     FeedConfig     `json:"feed"`
	Cache    CacheConfig    `json:"cache"`
	HTTP     HTTPConfig     `json:"http"`
	Fetch    FetchConfig    `json:"fetch"`
	Sanitize SanitizeConfig `json:"sanitize"`
	Server   ServerConfig   `json:"server"`
	Metrics  MetricsConfig  `json:"metrics"`
	Redis    RedisConfig    `json:"redis"`
	Secrets  SecretsConfig  `json:"secrets"`
}

type FeedConfig struct {
	SourceURL            string `json:"source_url" env:"FEED_SOURCE_URL" default:"https://www.phoronix.com/rss.php"`
	OutputPath           string `json:"output_path" env:"OUTPUT_PATH" default:"output/phoronix-rss-augmented.xml"`
	SiteOrigin           string `json:"site_origin" env:"SITE_ORIGIN" default:"https://www.phoronix.com"`
	MissingArticlePolicy string `json:"missing_article_policy" env:"ARTICLE_MISSING_POLICY" default:"abort"`
}

type CacheConfig struct {
	Dir       string        `json:"dir" env:"CACHE_DIR" default:"cache"`
	SourceTTL time.Duration `json:"source_ttl" env:"CACHE_SOURCE_TTL" default:"55m"`
	ItemTTL   time.Duration `json:"item_ttl" env:"CACHE_ITEM_TTL" default:"24h"`
}

type HTTPConfig struct {
	Timeout             time.Duration `json:"timeout" env:"HTTP_TIMEOUT" default:"30s"`
	MaxIdleConns        int           `json:"max_idle_conns" env:"HTTP_MAX_IDLE_CONNS" default:"10"`
	MaxIdleConnsPerHost int           `json:"max_idle_conns_per_host" env:"HTTP_MAX_IDLE_CONNS_PER_HOST" default:"2"`
	IdleConnTimeout     time.Duration `json:"idle_conn_timeout" env:"HTTP_IDLE_CONN_TIMEOUT" default:"90s"`
	TLSHandshakeTimeout time.Duration `json:"tls_handshake_timeout" env:"HTTP_TLS_HANDSHAKE_TIMEOUT" default:"10s"`
	UserAgent           string        `json:"user_agent" env:"HTTP_USER_AGENT"`
	MaxBodyBytes        int64         `json:"max_body_bytes" env:"HTTP_MAX_BODY_BYTES" default:"10485760"`
	MaxRedirects        int           `json:"max_redirects" env:"HTTP_MAX_REDIRECTS" default:"5"`
}

// FetchConfig controls pacing and retries of outbound requests. Delay is
// slept before every attempt and is also the unit of the exponential backoff.
type FetchConfig struct {
	Delay         time.Duration `json:"delay" env:"FETCH_DELAY" default:"5s"`
	MaxAttempts   int           `json:"max_attempts" env:"FETCH_MAX_ATTEMPTS" default:"3"`
	MaxBackoff    time.Duration `json:"max_backoff" env:"FETCH_MAX_BACKOFF" default:"2m"`
	RespectRobots bool          `json:"respect_robots" env:"FETCH_RESPECT_ROBOTS" default:"false"`
}

type SanitizeConfig struct {
	PolicyEnabled bool   `json:"policy_enabled" env:"SANITIZE_POLICY_ENABLED" default:"true"`
	AdClass       string `json:"ad_class" env:"SANITIZE_AD_CLASS" default:"ad"`
}

type ServerConfig struct {
	Port            int           `json:"port" env:"SERVER_PORT" default:"9200"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	ReadTimeout     time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	RunInterval     time.Duration `json:"run_interval" env:"SERVE_INTERVAL" default:"30m"`
	RetryAfter      time.Duration `json:"retry_after" env:"SERVE_RETRY_AFTER" default:"5m"`
}

type MetricsConfig struct {
	Enabled  bool   `json:"enabled" env:"METRICS_ENABLED" default:"true"`
	Path     string `json:"path" env:"METRICS_PATH" default:"/metrics"`
	Textfile string `json:"textfile" env:"METRICS_TEXTFILE"`
}

// RedisConfig is optional. An empty URL disables the run lock.
type RedisConfig struct {
	URL     string        `json:"url" env:"REDIS_URL"`
	LockKey string        `json:"lock_key" env:"REDIS_LOCK_KEY" default:"phoronix-rss-augmented:run"`
	LockTTL time.Duration `json:"lock_ttl" env:"REDIS_LOCK_TTL" default:"15m"`
}

// SecretsConfig holds values overlaid from the optional dotenv secrets file.
// Every value may be empty.
type SecretsConfig struct {
	File                   string        `json:"file" env:"SECRETS_FILE" default:"secrets.env"`
	OutputPublicURL        string        `json:"-"`
	ErrorReportingEndpoint string        `json:"-"`
	HeartbeatURL           string        `json:"-"`
	HeartbeatTimeout       time.Duration `json:"heartbeat_timeout" env:"HEARTBEAT_TIMEOUT" default:"10s"`
}

const defaultUserAgent = "Mozilla/5.0 (compatible; phoronix-rss-augmented/1.0; +https://github.com/TheStalwart/phoronix-rss-augmented)"

func defaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			SourceURL:            "https://www.phoronix.com/rss.php",
			OutputPath:           "output/phoronix-rss-augmented.xml",
			SiteOrigin:           "https://www.phoronix.com",
			MissingArticlePolicy: "abort",
		},
		Cache: CacheConfig{
			Dir:       "cache",
			SourceTTL: 55 * time.Minute,
			ItemTTL:   24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:             30 * time.Second,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			UserAgent:           defaultUserAgent,
			MaxBodyBytes:        10 << 20,
			MaxRedirects:        5,
		},
		Fetch: FetchConfig{
			Delay:         5 * time.Second,
			MaxAttempts:   3,
			MaxBackoff:    2 * time.Minute,
			RespectRobots: false,
		},
		Sanitize: SanitizeConfig{
			PolicyEnabled: true,
			AdClass:       "ad",
		},
		Server: ServerConfig{
			Port:            9200,
			ShutdownTimeout: 30 * time.Second,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			RunInterval:     30 * time.Minute,
			RetryAfter:      5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Redis: RedisConfig{
			LockKey: "phoronix-rss-augmented:run",
			LockTTL: 15 * time.Minute,
		},
		Secrets: SecretsConfig{
			File:             "secrets.env",
			HeartbeatTimeout: 10 * time.Second,
		},
	}
}

// PublicURL is the self link advertised by the feed: OUTPUT_PUBLIC_URL when
// set, otherwise a file URL of the output path.
func (c *Config) PublicURL() string {
	if c.Secrets.OutputPublicURL != "" {
		return c.Secrets.OutputPublicURL
	}
	path, err := filepath.Abs(c.Feed.OutputPath)
	if err != nil {
		path = c.Feed.OutputPath
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
