// Package filter implements the candidate generators of the retriever: the
// term filters that map an analysed query to document or sentence ids, and
// the metadata filters over author names and publication dates.
package filter

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
)

// CandidateLimit bounds the output of the ranking-based term filters.
const CandidateLimit = 200

// TermFilter narrows the corpus to ids relevant to the query. Every id in one
// result has the filter's granularity.
type TermFilter interface {
	Filter(a *query.Analysis) ([]uint32, error)
	Granularity() query.Granularity
}

// Union runs several term filters and merges their results by set union.
type Union struct {
	filters     []TermFilter
	granularity query.Granularity
}

// NewUnion requires at least one filter and a single granularity across all
// of them.
func NewUnion(filters ...TermFilter) (*Union, error) {
	if len(filters) == 0 {
		return nil, fmt.Errorf("union needs at least one term filter")
	}
	g := filters[0].Granularity()
	for _, f := range filters[1:] {
		if f.Granularity() != g {
			return nil, fmt.Errorf("cannot combine %s and %s term filters", g, f.Granularity())
		}
	}
	return &Union{filters: filters, granularity: g}, nil
}

func (u *Union) Filter(a *query.Analysis) ([]uint32, error) {
	results := make([][]uint32, 0, len(u.filters))
	for _, f := range u.filters {
		ids, err := f.Filter(a)
		if err != nil {
			return nil, err
		}
		results = append(results, ids)
	}
	return query.Union(results...), nil
}

func (u *Union) Granularity() query.Granularity {
	return u.granularity
}

// distinct returns the unique tokens present in the vocabulary lookup, in
// first-seen order.
func distinct(tokens []string, has func(string) bool) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok || !has(t) {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
