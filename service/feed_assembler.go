package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/beevik/etree"

	"github.com/TheStalwart/phoronix-rss-augmented/domain"
	"github.com/TheStalwart/phoronix-rss-augmented/utils/feedxml"
)

const (
	RSSVersion   = "2.0"
	DublinCoreNS = "http://purl.org/dc/elements/1.1/"
	AtomNS       = "http://www.w3.org/2005/Atom"
	RSSMediaType = "application/rss+xml"

	sourceName = "source feed"
)

// rootAttrs are set on the new root ahead of the original attributes.
var rootAttrs = []etree.Attr{
	{Key: "version", Value: RSSVersion},
	{Space: "xmlns", Key: "dc", Value: DublinCoreNS},
	{Space: "xmlns", Key: "atom", Value: AtomNS},
}

// FeedAssembler rebuilds the source feed with augmented descriptions.
type FeedAssembler struct {
	selfURL string
	logger  *slog.Logger
}

// NewFeedAssembler returns an assembler whose output advertises selfURL as
// its atom self link.
func NewFeedAssembler(selfURL string, logger *slog.Logger) *FeedAssembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedAssembler{selfURL: selfURL, logger: logger}
}

// Items returns the channel items of src in document order.
func (a *FeedAssembler) Items(src []byte) ([]domain.FeedItem, error) {
	doc, err := feedxml.Parse(src, sourceName)
	if err != nil {
		return nil, err
	}
	channel := feedxml.Child(doc.Root(), "channel")
	if channel == nil {
		return nil, fmt.Errorf("%w: root <%s>", domain.ErrChannelNotFound, doc.Root().FullTag())
	}

	nodes := feedxml.Children(channel, "item")
	items := make([]domain.FeedItem, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, domain.FeedItem{
			Link:    childText(n, "link"),
			Title:   childText(n, "title"),
			GUID:    childText(n, "guid"),
			PubDate: childText(n, "pubDate"),
		})
	}
	return items, nil
}

// Links returns the item links of src in document order.
func (a *FeedAssembler) Links(src []byte) ([]string, error) {
	items, err := a.Items(src)
	if err != nil {
		return nil, err
	}
	links := make([]string, len(items))
	for i, item := range items {
		links[i] = item.Link
	}
	return links, nil
}

// Assemble parses src, normalizes the root element, installs the atom self
// link and replaces the description of every item whose link has an entry
// in bodies with CDATA. Items without a body keep their original
// description.
func (a *FeedAssembler) Assemble(src []byte, bodies map[string]string) ([]byte, error) {
	doc, err := feedxml.Parse(src, sourceName)
	if err != nil {
		return nil, err
	}
	orig := doc.Root()

	channel := feedxml.Child(orig, "channel")
	if channel == nil {
		return nil, fmt.Errorf("%w: root <%s>", domain.ErrChannelNotFound, orig.FullTag())
	}

	// Prefixes resolve against the source root, so self links are found
	// before the channel moves under the new one.
	var selfLinks []*etree.Element
	for _, c := range channel.ChildElements() {
		if isAtomSelfLink(c) {
			selfLinks = append(selfLinks, c)
		}
	}

	root := etree.NewElement(orig.FullTag())
	for _, attr := range rootAttrs {
		root.CreateAttr(attr.FullKey(), attr.Value)
	}
	for _, attr := range orig.Attr {
		if isRootAttr(attr.FullKey()) {
			continue
		}
		root.CreateAttr(attr.FullKey(), attr.Value)
	}
	for _, t := range append([]etree.Token(nil), orig.Child...) {
		root.AddChild(t)
	}

	for _, l := range selfLinks {
		channel.RemoveChild(l)
	}
	link := etree.NewElement("atom:link")
	link.CreateAttr("href", a.selfURL)
	link.CreateAttr("rel", "self")
	link.CreateAttr("type", RSSMediaType)
	channel.InsertChildAt(0, link)

	replaced := 0
	for _, item := range feedxml.Children(channel, "item") {
		body, ok := bodies[childText(item, "link")]
		if !ok {
			continue
		}
		desc := feedxml.Child(item, "description")
		if desc == nil {
			desc = item.CreateElement("description")
		}
		feedxml.SetCData(desc, body)
		replaced++
	}

	a.logger.Debug("feed assembled",
		"root", root.FullTag(),
		"self_links_dropped", len(selfLinks),
		"descriptions_replaced", replaced)

	out, err := feedxml.Serialize(root)
	if err != nil {
		return nil, fmt.Errorf("serialize feed: %w", err)
	}
	return out, nil
}

func isRootAttr(key string) bool {
	for _, a := range rootAttrs {
		if a.FullKey() == key {
			return true
		}
	}
	return false
}

// isAtomSelfLink reports whether e is a link element in the Atom namespace
// with rel="self".
func isAtomSelfLink(e *etree.Element) bool {
	if e.Tag != "link" {
		return false
	}
	rel := e.SelectAttr("rel")
	if rel == nil || rel.Space != "" || rel.Value != "self" {
		return false
	}
	return e.NamespaceURI() == AtomNS
}

func childText(e *etree.Element, tag string) string {
	c := feedxml.Child(e, tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}
