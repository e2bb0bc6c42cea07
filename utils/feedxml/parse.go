// Package feedxml holds the etree helpers shared by feed parsing and
// assembly: bounded parse errors, exact child lookup and CDATA bodies.
package feedxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/TheStalwart/phoronix-rss-augmented/domain"
)

const excerptBytes = 512

// Parse reads a complete XML document. Declared non-UTF-8 encodings are
// decoded. Malformed input yields a *domain.ParseError.
func Parse(data []byte, source string) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel

	n, err := doc.ReadFrom(bytes.NewReader(data))
	if err != nil {
		offset := n
		var serr *xml.SyntaxError
		if errors.As(err, &serr) {
			offset = lineOffset(data, serr.Line)
		}
		return nil, &domain.ParseError{Source: source, Excerpt: excerptAt(data, offset), Err: err}
	}

	if err := checkTopLevel(doc); err != nil {
		return nil, &domain.ParseError{Source: source, Excerpt: excerptAt(data, int64(len(data))), Err: err}
	}
	return doc, nil
}

// checkTopLevel rejects what etree accepts outside a single root element.
func checkTopLevel(doc *etree.Document) error {
	roots := 0
	for _, t := range doc.Child {
		switch t := t.(type) {
		case *etree.Element:
			roots++
			if roots > 1 {
				return errors.New("second root element <" + t.FullTag() + ">")
			}
		case *etree.CharData:
			if !t.IsWhitespace() {
				return errors.New("character data outside the root element")
			}
		}
	}
	if roots == 0 {
		return errors.New("no root element")
	}
	return nil
}

// lineOffset returns the byte offset at which the 1-based line starts.
func lineOffset(data []byte, line int) int64 {
	offset := 0
	for i := 1; i < line; i++ {
		next := bytes.IndexByte(data[offset:], '\n')
		if next < 0 {
			break
		}
		offset += next + 1
	}
	return int64(offset)
}

// excerptAt returns up to excerptBytes of data around offset.
func excerptAt(data []byte, offset int64) string {
	start := int(offset) - excerptBytes/2
	if start < 0 {
		start = 0
	}
	if start > len(data) {
		start = len(data)
	}
	end := start + excerptBytes
	if end > len(data) {
		end = len(data)
	}
	return strings.ToValidUTF8(string(data[start:end]), "")
}
