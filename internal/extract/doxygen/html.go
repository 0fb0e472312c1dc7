package doxygen

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/scholarch/scholarch-cli/internal/extract/splitter"
)

// unit is one heading-delimited region of a document.
type unit struct {
	// title is the heading that opened the unit; empty for the text
	// preceding the first heading.
	title string
	text  string
}

// parsedDoc is the intermediate form between parsing and chunking.
type parsedDoc struct {
	title     string
	kind      string
	symbol    string
	namespace string
	units     []unit
}

// skippedElements are never descended into during text extraction.
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Header:   true,
	atom.Footer:   true,
}

// skippedClasses mark boilerplate containers Doxygen injects around the
// content: breadcrumb navigation and the page header block. Including
// them used to leak navigation text into chunks and hurt retrieval
// precision.
var skippedClasses = map[string]bool{
	"navpath":     true,
	"header":      true,
	"headertitle": true,
}

// parseHTML reads a Doxygen-generated page and returns its title and
// heading-delimited units from the primary content region only.
func parseHTML(r io.Reader) (*parsedDoc, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := &parsedDoc{
		title:  textOf(findElement(root, atom.Title, "", "")),
		symbol: textOf(findElement(root, atom.Div, "class", "title")),
	}

	content := findElement(root, atom.Div, "class", "contents")
	if content == nil {
		content = findElement(root, atom.Div, "id", "doc-content")
	}
	if content == nil {
		content = findElement(root, atom.Body, "", "")
	}
	if content == nil {
		return doc, nil
	}

	w := &unitWalker{}
	w.walk(content)
	w.flush()
	doc.units = w.units
	return doc, nil
}

// unitWalker accumulates text node content, starting a new unit at
// every h1-h6 element.
type unitWalker struct {
	units   []unit
	current unit
	lines   []string
}

func (w *unitWalker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if skippedElements[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Div && hasSkippedClass(n) {
			return
		}
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			w.flush()
			w.current.title = textOf(n)
			if w.current.title != "" {
				// The heading line opens the unit body as well, so a
				// chunk read in isolation still names its section.
				w.lines = append(w.lines, w.current.title)
			}
			return
		}
	}
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			w.lines = append(w.lines, s)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *unitWalker) flush() {
	text := splitter.Clean(strings.Join(w.lines, "\n"))
	if text != "" {
		w.current.text = text
		w.units = append(w.units, w.current)
	}
	w.current = unit{}
	w.lines = nil
}

// findElement returns the first element with the given tag, optionally
// constrained to a matching attribute, in depth-first order.
func findElement(n *html.Node, tag atom.Atom, attrKey, attrVal string) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == tag {
		if attrKey == "" || hasClassOrAttr(n, attrKey, attrVal) {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag, attrKey, attrVal); found != nil {
			return found
		}
	}
	return nil
}

// hasClassOrAttr matches class attributes token-wise and every other
// attribute by exact value.
func hasClassOrAttr(n *html.Node, key, val string) bool {
	got := attrValue(n, key)
	if key == "class" {
		for _, token := range strings.Fields(got) {
			if token == val {
				return true
			}
		}
		return false
	}
	return got == val
}

func hasSkippedClass(n *html.Node) bool {
	for _, token := range strings.Fields(attrValue(n, "class")) {
		if skippedClasses[token] {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textOf collects the trimmed text content beneath a node.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var lines []string
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			if s := strings.TrimSpace(node.Data); s != "" {
				lines = append(lines, s)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(lines, " ")
}
