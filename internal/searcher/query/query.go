// Package query holds the per-request values that flow through the search
// pipeline: the analysed query, candidate id sets and scored ids.
package query

import (
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
)

// Analysis is the analyser output for one query. It is created once per
// request and never mutated.
type Analysis struct {
	Query  string
	Tokens []string
	Vector vector.Vector
}

// Granularity tells whether candidate ids are docIdx or sentIdx values.
type Granularity int

const (
	Documents Granularity = iota
	Sentences
)

func (g Granularity) String() string {
	if g == Sentences {
		return "sentences"
	}
	return "documents"
}

// Scored pairs an id with a score.
type Scored struct {
	ID    uint32  `json:"id"`
	Score float64 `json:"score"`
}

// Set is an id membership set.
type Set map[uint32]struct{}

// NewSet builds a set from ids.
func NewSet(ids []uint32) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id uint32) bool {
	_, ok := s[id]
	return ok
}

// Intersect returns the ids of a that are in b, keeping a's order.
func Intersect(a []uint32, b Set) []uint32 {
	out := make([]uint32, 0, min(len(a), len(b)))
	for _, id := range a {
		if b.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Union returns the distinct ids of all lists in first-seen order.
func Union(lists ...[]uint32) []uint32 {
	seen := make(Set)
	var out []uint32
	for _, list := range lists {
		for _, id := range list {
			if seen.Has(id) {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
