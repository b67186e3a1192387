// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package fragment

import (
	"iter"

	"golang.org/x/net/html"
)

// Traverse returns an iterator over root and all of its descendants in
// breadth-first order. Children are visited in document order.
//
// Nodes are produced one at a time from a pending queue, so it is safe to
// mutate subtrees that have not been visited yet. Mutating the child list
// of a node already in the queue while iterating gives an undefined visit
// order.
func Traverse(root *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		queue := []*html.Node{root}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]

			if !yield(node) {
				return
			}

			for child := node.FirstChild; child != nil; child = child.NextSibling {
				queue = append(queue, child)
			}
		}
	}
}
