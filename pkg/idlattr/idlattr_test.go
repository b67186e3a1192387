// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package idlattr_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"codeberg.org/chostback/chostback/pkg/idlattr"
)

func TestRename(t *testing.T) {
	tests := []struct {
		tag      string
		property string
		want     string
	}{
		{"div", "tabIndex", "tabindex"},
		{"div", "className", "class"},
		{"span", "ariaHidden", "aria-hidden"},
		{"span", "ariaLabel", "aria-label"},
		{"div", "unknownProp", "unknownProp"},
		{"img", "src", "src"},
	}

	for _, test := range tests {
		t.Run(test.tag+" "+test.property, func(t *testing.T) {
			require.Equal(t, test.want, idlattr.Rename(test.tag, test.property))
		})
	}
}

func TestIsKnownGood(t *testing.T) {
	tests := []struct {
		tag       string
		attribute string
		want      bool
	}{
		{"div", "id", true},       // global
		{"img", "src", true},      // tag scoped
		{"div", "src", false},     // scoped to another tag
		{"Mention", "handle", true},
		{"div", "onclick", false},
	}

	for _, test := range tests {
		t.Run(test.tag+" "+test.attribute, func(t *testing.T) {
			require.Equal(t, test.want, idlattr.IsKnownGood(test.tag, test.attribute))
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		property string
		value    any
		want     html.Attribute
		omitted  bool
	}{
		{
			name: "string value",
			tag:  "div", property: "id", value: "foo",
			want: html.Attribute{Key: "id", Val: "foo"},
		},
		{
			name: "number value",
			tag:  "img", property: "width", value: float64(13),
			want: html.Attribute{Key: "width", Val: "13"},
		},
		{
			name: "json number value",
			tag:  "ol", property: "start", value: json.Number("3"),
			want: html.Attribute{Key: "start", Val: "3"},
		},
		{
			name: "boolean true is presence",
			tag:  "details", property: "open", value: true,
			want: html.Attribute{Key: "open", Val: ""},
		},
		{
			name: "boolean false is absence",
			tag:  "details", property: "open", value: false,
			omitted: true,
		},
		{
			name: "class list",
			tag:  "div", property: "className", value: []any{"foo", "bar"},
			want: html.Attribute{Key: "class", Val: "foo bar"},
		},
		{
			name: "rel list",
			tag:  "a", property: "rel", value: []any{"noopener", "noreferrer"},
			want: html.Attribute{Key: "rel", Val: "noopener noreferrer"},
		},
		{
			name: "list drops non strings",
			tag:  "div", property: "className", value: []any{"foo", float64(1), "bar"},
			want: html.Attribute{Key: "class", Val: "foo bar"},
		},
		{
			name: "renamed property",
			tag:  "div", property: "tabIndex", value: float64(-1),
			want: html.Attribute{Key: "tabindex", Val: "-1"},
		},
		{
			name: "array on a non list property",
			tag:  "div", property: "id", value: []any{"a", "b"},
			omitted: true,
		},
		{
			name: "object value",
			tag:  "div", property: "style", value: map[string]any{"color": "red"},
			omitted: true,
		},
		{
			name: "null value",
			tag:  "div", property: "id", value: nil,
			omitted: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := require.New(t)

			ledger := idlattr.NewLedger()
			attr, ok := idlattr.Convert(ledger, test.tag, test.property, test.value)

			if test.omitted {
				assert.False(ok)
				return
			}
			assert.True(ok)
			assert.Equal(test.want, attr)
		})
	}
}

func TestConvertRecords(t *testing.T) {
	assert := require.New(t)
	ledger := idlattr.NewLedger()

	// a rejected shape is still recorded, under its renamed name
	_, ok := idlattr.Convert(ledger, "div", "className", map[string]any{})
	assert.False(ok)
	assert.Equal([]idlattr.Pair{{Tag: "div", Attr: "class"}}, ledger.Seen())

	// boolean false records nothing, the attribute was never considered
	_, ok = idlattr.Convert(ledger, "details", "open", false)
	assert.False(ok)
	assert.Len(ledger.Seen(), 1)

	// unknown attributes end up in both sets
	_, ok = idlattr.Convert(ledger, "div", "onclick", "x()")
	assert.True(ok)
	assert.Contains(ledger.Seen(), idlattr.Pair{Tag: "div", Attr: "onclick"})
	assert.Equal([]idlattr.Pair{
		{Tag: "div", Attr: "class"},
		{Tag: "div", Attr: "onclick"},
	}, ledger.UnknownSeen())
}
