package internal

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	uerror "t0ast.cc/floorpier/util/error"
)

var ErrNoHead = errors.New("document has no head element")

// StylesheetLink describes a <link rel="stylesheet"> element. An empty
// ID makes UpsertLink always append.
type StylesheetLink struct {
	Href string
	ID   string
}

// MarkupEditor loads HTML documents for patching.
type MarkupEditor interface {
	LoadDocument(path string) (MarkupDocument, error)
}

type MarkupDocument interface {
	// UpsertLink replaces the element carrying link.ID with the link,
	// or appends the link to the document head if there is none.
	UpsertLink(link StylesheetLink) error
	Save(path string) error
}

// HTMLEditor edits documents with the golang.org/x/net/html parser and
// writes them back indented one space per level.
type HTMLEditor struct{}

func (HTMLEditor) LoadDocument(path string) (MarkupDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, uerror.WithStackTrace(err)
	}
	defer f.Close()
	fileInfo, err := f.Stat()
	if err != nil {
		return nil, uerror.WithStackTrace(err)
	}
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, uerror.StackTracef("parse %s: %w", path, err)
	}
	return &htmlDocument{doc: doc, perm: fileInfo.Mode().Perm()}, nil
}

type htmlDocument struct {
	doc *goquery.Document
	// Permissions of the loaded file, reused on save.
	perm fs.FileMode
}

func (d *htmlDocument) UpsertLink(link StylesheetLink) error {
	node := newStylesheetLinkNode(link)

	if link.ID != "" {
		existing := d.doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.AttrOr("id", "") == link.ID
		}).First()
		if existing.Length() > 0 {
			existing.ReplaceWithNodes(node)
			return nil
		}
	}

	head := d.doc.Find("head").First()
	if head.Length() == 0 {
		return uerror.WithStackTrace(ErrNoHead)
	}
	head.AppendNodes(node)
	return nil
}

func (d *htmlDocument) Save(path string) error {
	var b bytes.Buffer
	for _, n := range d.doc.Nodes {
		if err := prettify(&b, n, 0); err != nil {
			return uerror.WithStackTrace(err)
		}
	}
	if err := os.WriteFile(path, b.Bytes(), d.perm); err != nil {
		return uerror.WithStackTrace(err)
	}
	if err := os.Chmod(path, d.perm); err != nil {
		return uerror.WithStackTrace(err)
	}
	return nil
}

func newStylesheetLinkNode(link StylesheetLink) *html.Node {
	attrs := []html.Attribute{
		{Key: "rel", Val: "stylesheet"},
		{Key: "type", Val: "text/css"},
		{Key: "href", Val: link.Href},
	}
	if link.ID != "" {
		attrs = append(attrs, html.Attribute{Key: "id", Val: link.ID})
	}
	return &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Link.String(),
		DataAtom: atom.Link,
		Attr:     attrs,
	}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Whitespace is significant in these, so they are written unchanged.
var preformattedElements = map[string]bool{
	"pre": true, "textarea": true,
}

// The parser keeps the contents of these as a single unescaped text
// node, which must be written back literally.
var rawTextElements = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "xmp": true,
}

func prettify(b *bytes.Buffer, n *html.Node, depth int) error {
	indent := strings.Repeat(" ", depth)
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := prettify(b, c, depth); err != nil {
				return err
			}
		}

	case html.DoctypeNode, html.CommentNode:
		b.WriteString(indent)
		if err := html.Render(b, n); err != nil {
			return err
		}
		b.WriteByte('\n')

	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return nil
		}
		b.WriteString(indent)
		if n.Parent != nil && rawTextElements[n.Parent.Data] {
			b.WriteString(text)
		} else {
			b.WriteString(html.EscapeString(text))
		}
		b.WriteByte('\n')

	case html.ElementNode:
		b.WriteString(indent)
		if preformattedElements[n.Data] {
			if err := html.Render(b, n); err != nil {
				return err
			}
			b.WriteByte('\n')
			return nil
		}
		writeStartTag(b, n)
		b.WriteByte('\n')
		if voidElements[n.Data] {
			return nil
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := prettify(b, c, depth+1); err != nil {
				return err
			}
		}
		b.WriteString(indent)
		b.WriteString("</")
		b.WriteString(n.Data)
		b.WriteString(">\n")
	}
	return nil
}

func writeStartTag(b *bytes.Buffer, n *html.Node) {
	b.WriteByte('<')
	b.WriteString(n.Data)
	for _, a := range n.Attr {
		b.WriteByte(' ')
		if a.Namespace != "" {
			b.WriteString(a.Namespace)
			b.WriteByte(':')
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	if voidElements[n.Data] {
		b.WriteByte('/')
	}
	b.WriteByte('>')
}
