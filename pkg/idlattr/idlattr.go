// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package idlattr converts IDL-style element properties, as found in a rich
// text editor's JSON data model, into HTML content attributes.
//
// A property is renamed to its content attribute equivalent, its JSON value
// is coerced to an attribute string, and every observed (tag, attribute)
// pair is recorded into a [Ledger] so that attributes outside the known-good
// list can be audited after a run.
package idlattr

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// scoped is a lookup key made of an attribute or property name, optionally
// scoped to a single tag name. An empty Tag matches any element.
type scoped struct {
	Tag  string
	Name string
}

// renames maps IDL property names to their content attribute equivalent.
// Tag-scoped entries take precedence over unscoped ones.
var renames = map[scoped]string{
	{"", "ariaHidden"}: "aria-hidden",
	{"", "ariaLabel"}:  "aria-label",
	{"", "className"}:  "class",
	{"", "tabIndex"}:   "tabindex",
}

// knownGood lists the attributes that are known to convert correctly.
// Seeing anything else is not an error, only a reason to check the output.
var knownGood = map[scoped]struct{}{
	{"", "aria-hidden"}:    {},
	{"", "aria-label"}:     {},
	{"", "id"}:             {},
	{"", "style"}:          {},
	{"", "tabindex"}:       {},
	{"", "title"}:          {},
	{"Mention", "handle"}:  {},
	{"a", "href"}:          {},
	{"a", "name"}:          {},
	{"a", "target"}:        {},
	{"details", "name"}:    {},
	{"details", "open"}:    {},
	{"div", "align"}:       {},
	{"h3", "align"}:        {},
	{"img", "alt"}:         {},
	{"img", "border"}:      {},
	{"img", "height"}:      {},
	{"img", "src"}:         {},
	{"img", "width"}:       {},
	{"input", "disabled"}:  {},
	{"input", "name"}:      {},
	{"input", "type"}:      {},
	{"input", "value"}:     {},
	{"ol", "start"}:        {},
	{"p", "align"}:         {},
	{"td", "align"}:        {},
	{"th", "align"}:        {},
}

// listValued holds the properties whose array values become space-separated
// content attribute values.
var listValued = map[string]struct{}{
	"className": {},
	"rel":       {},
}

// Rename returns the content attribute name for an IDL property on a given
// tag. A tag-scoped rename wins over a global one; a property with no
// rename entry keeps its name unchanged.
func Rename(tag, property string) string {
	if name, ok := renames[scoped{tag, property}]; ok {
		return name
	}
	if name, ok := renames[scoped{"", property}]; ok {
		return name
	}
	return property
}

// IsKnownGood returns true when the attribute, globally or scoped to the
// given tag, is on the known-good list.
func IsKnownGood(tag, attribute string) bool {
	if _, ok := knownGood[scoped{"", attribute}]; ok {
		return true
	}
	_, ok := knownGood[scoped{tag, attribute}]
	return ok
}

// Convert coerces a JSON-shaped property value into a content attribute.
//
// A boolean false value means the attribute is absent and returns ok=false
// without recording anything. Otherwise the property is renamed, recorded
// into the ledger, and its value coerced: strings are kept verbatim,
// numbers use their canonical decimal rendering, boolean true becomes an
// empty value (attribute presence), and arrays of the list-valued
// properties are space-joined with non-string elements dropped. Any other
// value shape is reported and omitted; the caller never receives a
// malformed attribute.
//
// A nil ledger records into [Default].
func Convert(l *Ledger, tag, property string, value any) (html.Attribute, bool) {
	if l == nil {
		l = Default
	}

	if v, ok := value.(bool); ok && !v {
		return html.Attribute{}, false
	}

	name := Rename(tag, property)
	l.Record(tag, name)

	attr := html.Attribute{Key: name}

	switch v := value.(type) {
	case string:
		attr.Val = v
	case float64:
		attr.Val = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		attr.Val = v.String()
	case int:
		attr.Val = strconv.Itoa(v)
	case bool:
		// false returned above, true is presence with an empty value
		attr.Val = ""
	case []any:
		if _, ok := listValued[property]; !ok {
			reportUnknownShape(tag, property, value)
			return html.Attribute{}, false
		}
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		attr.Val = strings.Join(items, " ")
	default:
		reportUnknownShape(tag, property, value)
		return html.Attribute{}, false
	}

	return attr, true
}

func reportUnknownShape(tag, property string, value any) {
	slog.Error("unknown attribute value type",
		slog.String("tag", tag),
		slog.String("attribute", property),
		slog.Any("value", value),
	)
}
