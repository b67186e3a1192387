// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package idlattr

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
)

// Default is the ledger used when callers don't provide their own.
var Default = NewLedger()

// Pair is a (tag, attribute) pair of names observed during conversion.
type Pair struct {
	Tag  string
	Attr string
}

// Ledger accumulates every (tag, attribute) pair observed during attribute
// conversion, and the subset of pairs that are not on the known-good list.
// It is append-only for the lifetime of the process and safe for concurrent
// use. The zero value is ready to use.
type Ledger struct {
	mu      sync.Mutex
	seen    map[Pair]struct{}
	unknown map[Pair]struct{}
}

// NewLedger returns a new empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record adds a (tag, attribute) pair to the ledger. Pairs outside the
// known-good list are also added to the unknown set and logged, so the
// output for them can be checked by hand later.
func (l *Ledger) Record(tag, attribute string) {
	p := Pair{Tag: tag, Attr: attribute}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seen == nil {
		l.seen = map[Pair]struct{}{}
		l.unknown = map[Pair]struct{}{}
	}

	l.seen[p] = struct{}{}
	if !IsKnownGood(tag, attribute) {
		if _, ok := l.unknown[p]; !ok {
			slog.Warn("attribute not on the known-good list, check the output",
				slog.String("tag", tag),
				slog.String("attribute", attribute),
			)
		}
		l.unknown[p] = struct{}{}
	}
}

// Seen returns a sorted snapshot of every pair recorded so far.
func (l *Ledger) Seen() []Pair {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedPairs(l.seen)
}

// UnknownSeen returns a sorted snapshot of every recorded pair that is not
// on the known-good list. It is always a subset of [Ledger.Seen].
func (l *Ledger) UnknownSeen() []Pair {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedPairs(l.unknown)
}

func sortedPairs(set map[Pair]struct{}) []Pair {
	res := make([]Pair, 0, len(set))
	for p := range set {
		res = append(res, p)
	}
	slices.SortFunc(res, func(a, b Pair) int {
		if c := cmp.Compare(a.Tag, b.Tag); c != 0 {
			return c
		}
		return cmp.Compare(a.Attr, b.Attr)
	})
	return res
}
