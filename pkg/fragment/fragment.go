// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package fragment builds, walks and serializes HTML fragment trees.
//
// A fragment is a [html.Node] document with exactly one child, a wrapper
// <html> element that holds the fragment's actual content. The wrapper is
// an artifact of fragment parsing and is never part of the serialized
// output.
package fragment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-shiori/dom"
)

var (
	// ErrInvalidEncoding is returned when the input, or a stored attribute
	// value, is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid UTF-8 text")

	// ErrInvalidRoot is returned by [Serialize] when the document does not
	// have exactly one <html> element child.
	ErrInvalidRoot = errors.New("invalid fragment root")
)

// Parse reads r and parses its content as an HTML fragment.
//
// Parsing uses a <section> context so that the widest range of flow content
// is accepted without changing the foreign-content namespace rules. Doctype
// nodes are dropped. Malformed markup never makes Parse fail; the tree
// construction algorithm recovers from any input. It only fails on a read
// error or when the input is not valid UTF-8.
//
// The result is a document carrying the parsed content inside a single
// <html> wrapper element, as [CreateFragment] would build it.
func Parse(r io.Reader) (*html.Node, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(buf) {
		return nil, ErrInvalidEncoding
	}

	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "section",
		DataAtom: atom.Section,
	}
	nodes, err := html.ParseFragment(bytes.NewReader(buf), context)
	if err != nil {
		return nil, err
	}

	doc, root := CreateFragment()
	for _, n := range nodes {
		if n.Type == html.DoctypeNode {
			continue
		}
		root.AppendChild(n)
	}

	return doc, nil
}

// CreateFragment returns a new document with exactly one child, a wrapper
// <html> element, and the wrapper itself. Fragment content must be appended
// to the wrapper, never to the document.
func CreateFragment() (doc, root *html.Node) {
	doc = &html.Node{Type: html.DocumentNode}
	root = CreateElement("html")
	doc.AppendChild(root)
	return doc, root
}

// CreateElement returns a new detached element with the given tag name in
// the HTML namespace, with no attributes and no children. Known tag names
// get their atom so the node compares equal to what the parser builds.
func CreateElement(tag string) *html.Node {
	n := dom.CreateElement(tag)
	n.DataAtom = atom.Lookup([]byte(tag))
	return n
}

// FindAttr returns the first attribute of n with the given name in the null
// namespace. The null namespace is where the tokenizer creates all
// attributes; only the tree builder relocates some of them inside foreign
// content (MathML, SVG).
func FindAttr(n *html.Node, name string) (html.Attribute, bool) {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == name {
			return attr, true
		}
	}
	return html.Attribute{}, false
}

// AttrValue returns the decoded value of the first attribute of n with the
// given name in the null namespace. The second return value is false when
// no such attribute exists; a found attribute whose value is not valid
// UTF-8 returns [ErrInvalidEncoding] instead.
func AttrValue(n *html.Node, name string) (string, bool, error) {
	attr, ok := FindAttr(n, name)
	if !ok {
		return "", false, nil
	}
	if !utf8.ValidString(attr.Val) {
		return "", true, ErrInvalidEncoding
	}
	return attr.Val, true, nil
}

// SetAttr sets the first attribute of n with the given name in the null
// namespace to value, appending a new attribute when none exists.
func SetAttr(n *html.Node, name, value string) {
	for i, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// Serialize renders a fragment document back to HTML text.
//
// The document must have exactly one child and that child must be an <html>
// element in the HTML namespace; any other shape returns an error wrapping
// [ErrInvalidRoot]. Only the wrapper's children are rendered, so an empty
// fragment serializes to an empty string.
func Serialize(doc *html.Node) (string, error) {
	root, err := rootElement(doc)
	if err != nil {
		return "", err
	}

	b := new(strings.Builder)
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(b, child); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

// rootElement validates the single <html> child invariant and returns the
// wrapper element.
func rootElement(doc *html.Node) (*html.Node, error) {
	if doc == nil || doc.Type != html.DocumentNode {
		return nil, fmt.Errorf("%w: not a document", ErrInvalidRoot)
	}

	count := 0
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		count++
	}
	if count != 1 {
		return nil, fmt.Errorf("%w: expected exactly one root element, got %d", ErrInvalidRoot, count)
	}

	root := doc.FirstChild
	if root.Type != html.ElementNode || root.Namespace != "" || root.DataAtom != atom.Html {
		return nil, fmt.Errorf("%w: expected the root element to be <html>", ErrInvalidRoot)
	}

	return root, nil
}
