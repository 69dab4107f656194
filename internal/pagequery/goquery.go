package pagequery

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FromReader parses an HTML document and wraps it as a Document.
func FromReader(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("can't parse document: %w", err)
	}

	return htmlDocument{doc: doc}, nil
}

// FromHTML parses an HTML string and wraps it as a Document.
func FromHTML(html string) (Document, error) {
	return FromReader(strings.NewReader(html))
}

type htmlDocument struct {
	doc *goquery.Document
}

func (d htmlDocument) Query(selector string) (Element, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}

	return htmlElement{sel: sel}, true
}

func (d htmlDocument) QueryAll(selector string) []Element {
	var elements []Element
	d.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		elements = append(elements, htmlElement{sel: sel})
	})

	return elements
}

type htmlElement struct {
	sel *goquery.Selection
}

func (e htmlElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

func (e htmlElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e htmlElement) Find(selector string) (Element, bool) {
	sel := e.sel.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}

	return htmlElement{sel: sel}, true
}

func (e htmlElement) Disabled() bool {
	_, disabled := e.sel.Attr("disabled")
	return disabled
}
