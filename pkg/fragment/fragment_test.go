// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package fragment_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"codeberg.org/chostback/chostback/pkg/fragment"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "simple",
			src:  "<p>hello</p>",
			want: "<p>hello</p>",
		},
		{
			name: "unclosed tag",
			src:  "<p>hello",
			want: "<p>hello</p>",
		},
		{
			name: "stray closing tags",
			src:  "</div>text</p>",
			want: "text<p></p>",
		},
		{
			name: "doctype is dropped",
			src:  "<!DOCTYPE html><p>x</p>",
			want: "<p>x</p>",
		},
		{
			name: "flow content",
			src:  "<h3>title</h3><ul><li>a<li>b</ul>",
			want: "<h3>title</h3><ul><li>a</li><li>b</li></ul>",
		},
		{
			name: "empty input",
			src:  "",
			want: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := require.New(t)

			doc, err := fragment.Parse(strings.NewReader(test.src))
			assert.NoError(err)

			res, err := fragment.Serialize(doc)
			assert.NoError(err)
			assert.Equal(test.want, res)
		})
	}

	t.Run("invalid encoding", func(t *testing.T) {
		assert := require.New(t)

		_, err := fragment.Parse(strings.NewReader("<p>\xff\xfe</p>"))
		assert.ErrorIs(err, fragment.ErrInvalidEncoding)
	})
}

func TestSerialize(t *testing.T) {
	t.Run("empty fragment", func(t *testing.T) {
		assert := require.New(t)

		doc, _ := fragment.CreateFragment()
		res, err := fragment.Serialize(doc)
		assert.NoError(err)
		assert.Equal("", res)
	})

	t.Run("no root", func(t *testing.T) {
		assert := require.New(t)

		doc := &html.Node{Type: html.DocumentNode}
		_, err := fragment.Serialize(doc)
		assert.ErrorIs(err, fragment.ErrInvalidRoot)
	})

	t.Run("two roots", func(t *testing.T) {
		assert := require.New(t)

		doc, _ := fragment.CreateFragment()
		doc.AppendChild(fragment.CreateElement("html"))
		_, err := fragment.Serialize(doc)
		assert.ErrorIs(err, fragment.ErrInvalidRoot)
	})

	t.Run("root is not html", func(t *testing.T) {
		assert := require.New(t)

		doc := &html.Node{Type: html.DocumentNode}
		doc.AppendChild(fragment.CreateElement("p"))
		_, err := fragment.Serialize(doc)
		assert.ErrorIs(err, fragment.ErrInvalidRoot)
	})

	t.Run("not a document", func(t *testing.T) {
		assert := require.New(t)

		_, err := fragment.Serialize(fragment.CreateElement("html"))
		assert.ErrorIs(err, fragment.ErrInvalidRoot)
	})
}

// Serializing, reparsing and serializing again an already canonical
// fragment must give byte identical text.
func TestRoundTrip(t *testing.T) {
	tests := []string{
		`<p class="a">x</p><img src="y.png"/>`,
		`<details open=""><summary>more</summary>hidden</details>`,
		`<div align="center"><h3>a &lt; b</h3></div>`,
		`text only`,
		``,
	}

	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			assert := require.New(t)

			doc, err := fragment.Parse(strings.NewReader(test))
			assert.NoError(err)
			first, err := fragment.Serialize(doc)
			assert.NoError(err)

			doc, err = fragment.Parse(strings.NewReader(first))
			assert.NoError(err)
			second, err := fragment.Serialize(doc)
			assert.NoError(err)

			assert.Equal(first, second)
		})
	}
}

// Elements built by CreateElement must compare equal to what the parser
// builds for the same tag, atom included, so that constructed fragments
// pass the same root check as parsed ones.
func TestCreateElement(t *testing.T) {
	assert := require.New(t)

	node := fragment.CreateElement("img")
	assert.Equal(html.ElementNode, node.Type)
	assert.Equal("img", node.Data)
	assert.Equal(atom.Img, node.DataAtom)
	assert.Empty(node.Namespace)

	// unknown tags have no atom, only the tag name
	node = fragment.CreateElement("Mention")
	assert.Equal("Mention", node.Data)
	assert.Zero(node.DataAtom)

	doc, root := fragment.CreateFragment()
	assert.Equal(atom.Html, root.DataAtom)
	root.AppendChild(fragment.CreateElement("p"))
	res, err := fragment.Serialize(doc)
	assert.NoError(err)
	assert.Equal("<p></p>", res)
}

func TestAttributes(t *testing.T) {
	assert := require.New(t)

	node := fragment.CreateElement("img")
	fragment.SetAttr(node, "src", "a.png")
	fragment.SetAttr(node, "alt", "a test")

	attr, ok := fragment.FindAttr(node, "src")
	assert.True(ok)
	assert.Equal("a.png", attr.Val)

	_, ok = fragment.FindAttr(node, "missing")
	assert.False(ok)

	// updating keeps document order
	fragment.SetAttr(node, "src", "b.png")
	assert.Equal("src", node.Attr[0].Key)
	assert.Equal("b.png", node.Attr[0].Val)

	value, ok, err := fragment.AttrValue(node, "alt")
	assert.NoError(err)
	assert.True(ok)
	assert.Equal("a test", value)

	_, ok, err = fragment.AttrValue(node, "missing")
	assert.NoError(err)
	assert.False(ok)

	// a decoding failure is not a missing attribute
	node.Attr = append(node.Attr, html.Attribute{Key: "title", Val: "\xff"})
	_, ok, err = fragment.AttrValue(node, "title")
	assert.True(ok)
	assert.ErrorIs(err, fragment.ErrInvalidEncoding)

	// namespaced attributes are not returned
	node.Attr = append(node.Attr, html.Attribute{Namespace: "xlink", Key: "href", Val: "x"})
	_, ok = fragment.FindAttr(node, "href")
	assert.False(ok)
}
