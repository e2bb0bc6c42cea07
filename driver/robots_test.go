package driver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotsChecker_Allowed(t *testing.T) {
	tests := map[string]struct {
		status  int
		body    string
		path    string
		allowed bool
	}{
		"disallowed path": {
			status: http.StatusOK, body: "User-agent: *\nDisallow: /forums/\n", path: "/forums/node/1", allowed: false,
		},
		"allowed path": {
			status: http.StatusOK, body: "User-agent: *\nDisallow: /forums/\n", path: "/news/linux", allowed: true,
		},
		"missing robots allows all": {
			status: http.StatusNotFound, body: "", path: "/anything", allowed: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			checker := NewRobotsChecker(server.Client(), "feedaug-test", testLogger())
			allowed, err := checker.Allowed(context.Background(), server.URL+tc.path)

			require.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}

func TestRobotsChecker_FetchesOncePerHost(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "feedaug-test", testLogger())
	for _, p := range []string{"/a", "/b", "/c"} {
		allowed, err := checker.Allowed(context.Background(), server.URL+p)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	checker := NewRobotsChecker(http.DefaultClient, "feedaug-test", testLogger())
	allowed, err := checker.Allowed(context.Background(), url+"/x")
	require.NoError(t, err)
	assert.True(t, allowed)
}
