// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package convert turns dumped posts into canonical HTML fragments.

Markdown blocks are rendered with goldmark, attachment and ask blocks are
built programmatically from IDL property triples, and pre-rendered element
trees shipped with a post replace the markdown rendering of the block
ranges they cover. The assembled markup is then parsed, rewritten (local
attachment paths) and serialized through [fragment].
*/
package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/go-shiori/dom"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"codeberg.org/chostback/chostback/internal/cohost"
	"codeberg.org/chostback/chostback/pkg/fragment"
	"codeberg.org/chostback/chostback/pkg/idlattr"
)

// markdown is the shared block renderer. The authoring surface allows raw
// HTML in markdown, so the renderer must too.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(ghtml.WithUnsafe()),
)

// BuildElement returns a detached element carrying the content attributes
// coerced from the given IDL property map. Properties are applied in
// lexicographic order so the attribute order is stable across runs.
func BuildElement(l *idlattr.Ledger, tag string, properties map[string]any) *html.Node {
	node := fragment.CreateElement(tag)
	for _, property := range slices.Sorted(maps.Keys(properties)) {
		if attr, ok := idlattr.Convert(l, tag, property, properties[property]); ok {
			node.Attr = append(node.Attr, attr)
		}
	}
	return node
}

// treeNode is one node of a pre-rendered element tree, in the hast shape
// used by the authoring surface.
type treeNode struct {
	Type       string         `json:"type"`
	TagName    string         `json:"tagName,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Children   []treeNode     `json:"children,omitempty"`
	Value      string         `json:"value,omitempty"`
}

// BuildTree builds a fragment document from a JSON-encoded element tree.
func BuildTree(l *idlattr.Ledger, data []byte) (*html.Node, error) {
	var tree treeNode
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("invalid element tree: %w", err)
	}

	doc, root := fragment.CreateFragment()
	appendTreeNode(l, root, tree)
	return doc, nil
}

func appendTreeNode(l *idlattr.Ledger, parent *html.Node, tn treeNode) {
	switch tn.Type {
	case "root":
		for _, child := range tn.Children {
			appendTreeNode(l, parent, child)
		}
	case "text":
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: tn.Value})
	case "element":
		node := BuildElement(l, tn.TagName, tn.Properties)
		parent.AppendChild(node)
		for _, child := range tn.Children {
			appendTreeNode(l, node, child)
		}
	}
}

// renderTree renders a JSON-encoded element tree to w.
func renderTree(l *idlattr.Ledger, ast string, w io.Writer) error {
	doc, err := BuildTree(l, []byte(ast))
	if err != nil {
		return err
	}

	text, err := fragment.Serialize(doc)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, text)
	return err
}

// RenderPost converts a post into a canonical HTML fragment.
//
// When attachmentDir is not empty, attachment URLs in the result are
// rewritten to local paths under it. Coercion diagnostics never abort the
// conversion; they end up in the ledger.
func RenderPost(l *idlattr.Ledger, p *cohost.Post, attachmentDir string) (string, error) {
	buf := new(bytes.Buffer)

	if p.Headline != "" {
		if err := renderHeadline(l, p, buf); err != nil {
			return "", err
		}
	}

	spans := map[int]cohost.AstSpan{}
	if p.AstMap != nil {
		for _, s := range p.AstMap.Spans {
			spans[s.StartIndex] = s
		}
	}

	for i := 0; i < len(p.Blocks); i++ {
		if span, ok := spans[i]; ok && span.EndIndex > i {
			if err := renderTree(l, span.AST, buf); err != nil {
				return "", err
			}
			i = span.EndIndex - 1
			continue
		}

		if err := renderBlock(l, p.Blocks[i], buf); err != nil {
			return "", err
		}
	}

	doc, err := fragment.Parse(buf)
	if err != nil {
		return "", err
	}

	if attachmentDir != "" {
		rewriteAttachmentURLs(doc, p.Attachments(), attachmentDir)
	}

	return fragment.Serialize(doc)
}

func renderHeadline(l *idlattr.Ledger, p *cohost.Post, w io.Writer) error {
	h := BuildElement(l, "h1", map[string]any{"className": []any{"headline"}})
	h.AppendChild(&html.Node{Type: html.TextNode, Data: p.Headline})
	return html.Render(w, h)
}

func renderBlock(l *idlattr.Ledger, b cohost.Block, w io.Writer) error {
	switch b.Type {
	case "markdown":
		if b.Markdown == nil {
			return nil
		}
		return markdown.Convert([]byte(b.Markdown.Content), w)

	case "attachment":
		if b.Attachment == nil {
			return nil
		}
		return renderAttachment(l, b.Attachment, w)

	case "ask":
		if b.Ask == nil {
			return nil
		}
		return renderAsk(l, b.Ask, w)
	}

	// unknown block types are dropped, the dump keeps their raw JSON
	return nil
}

func renderAttachment(l *idlattr.Ledger, a *cohost.Attachment, w io.Writer) error {
	figure := BuildElement(l, "figure", map[string]any{
		"className": []any{"attachment"},
	})

	var media *html.Node
	switch a.Kind {
	case "audio":
		media = BuildElement(l, "audio", map[string]any{
			"src":       a.FileURL,
			"controls":  true,
			"preload":   "metadata",
			"ariaLabel": a.AltText,
		})
	default:
		media = BuildElement(l, "img", map[string]any{
			"src":    a.FileURL,
			"alt":    a.AltText,
			"width":  a.Width,
			"height": a.Height,
		})
	}
	figure.AppendChild(media)

	if a.AltText != "" && a.Kind != "audio" {
		caption := BuildElement(l, "figcaption", nil)
		caption.AppendChild(&html.Node{Type: html.TextNode, Data: a.AltText})
		figure.AppendChild(caption)
	}

	return html.Render(w, figure)
}

func renderAsk(l *idlattr.Ledger, ask *cohost.Ask, w io.Writer) error {
	quote := BuildElement(l, "blockquote", map[string]any{
		"className": []any{"ask"},
	})

	asker := "Anonymous User"
	if ask.AskingProject != nil {
		asker = "@" + ask.AskingProject.Handle
	}
	header := BuildElement(l, "p", map[string]any{
		"className": []any{"ask-header"},
	})
	header.AppendChild(&html.Node{Type: html.TextNode, Data: asker + " asked:"})
	quote.AppendChild(header)

	content := new(bytes.Buffer)
	if err := markdown.Convert([]byte(ask.Content), content); err != nil {
		return err
	}
	doc, err := fragment.Parse(content)
	if err != nil {
		return err
	}
	for _, child := range dom.ChildNodes(doc.FirstChild) {
		dom.AppendChild(quote, child)
	}

	return html.Render(w, quote)
}

// rewriteAttachmentURLs points every reference to a mirrored attachment at
// its local copy.
func rewriteAttachmentURLs(doc *html.Node, attachments []*cohost.Attachment, dir string) {
	local := map[string]string{}
	for _, a := range attachments {
		// Without an extension in the URL the local name depends on
		// content sniffing, which the converter doesn't see.
		if path.Ext(path.Base(a.FileURL)) == "" {
			continue
		}
		name := path.Join(dir, a.LocalName(""))
		local[a.FileURL] = name
		if a.PreviewURL != "" {
			local[a.PreviewURL] = name
		}
	}
	if len(local) == 0 {
		return
	}

	for node := range fragment.Traverse(doc) {
		if node.Type != html.ElementNode {
			continue
		}
		for _, name := range []string{"src", "href", "poster"} {
			value, ok, err := fragment.AttrValue(node, name)
			if err != nil || !ok {
				continue
			}
			if dest, ok := local[strings.TrimSpace(value)]; ok {
				fragment.SetAttr(node, name, dest)
			}
		}
	}
}
