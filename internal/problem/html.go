package problem

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLDocument is a Document over a parsed HTML snapshot.
type HTMLDocument struct {
	doc *goquery.Document
	url string
}

// NewHTMLDocument parses r as the page located at url.
func NewHTMLDocument(r io.Reader, url string) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &HTMLDocument{doc: doc, url: url}, nil
}

// ParseHTML is NewHTMLDocument for a string.
func ParseHTML(html, url string) (*HTMLDocument, error) {
	return NewHTMLDocument(strings.NewReader(html), url)
}

func (d *HTMLDocument) Text(selector string) string {
	return d.doc.Find(selector).First().Text()
}

func (d *HTMLDocument) Attr(selector, name string) (string, bool) {
	return d.doc.Find(selector).First().Attr(name)
}

func (d *HTMLDocument) Title() string {
	return d.doc.Find("head title").First().Text()
}

func (d *HTMLDocument) URL() string {
	return d.url
}

// StaticSource serves the same saved page on every snapshot.
type StaticSource struct {
	html string
	url  string
}

// NewStaticSource wraps an HTML string located at url.
func NewStaticSource(html, url string) *StaticSource {
	return &StaticSource{html: html, url: url}
}

// LoadFile reads a saved page from path.
func LoadFile(path, url string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewStaticSource(string(data), url), nil
}

func (s *StaticSource) URL(ctx context.Context) (string, error) {
	return s.url, nil
}

func (s *StaticSource) Snapshot(ctx context.Context) (Document, error) {
	return ParseHTML(s.html, s.url)
}
