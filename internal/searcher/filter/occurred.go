package filter

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
)

// Occurred keeps ids containing enough distinct query terms. The required
// count is derived from single-word terms only while n-gram matches still
// count toward it, so redundant 2-grams cannot make the bar unreachable.
type Occurred struct {
	index       *index.Index
	threshold   float64
	granularity query.Granularity
}

// NewOccurred returns an occurrence filter. threshold 0 means one matching
// term is enough.
func NewOccurred(idx *index.Index, threshold float64, g query.Granularity) *Occurred {
	return &Occurred{index: idx, threshold: threshold, granularity: g}
}

func (f *Occurred) Filter(a *query.Analysis) ([]uint32, error) {
	terms := distinct(a.Tokens, f.index.Has)

	counts := make(map[uint32]int)
	singles := 0
	for _, term := range terms {
		if !tokenizer.IsNGram(term) {
			singles++
		}
		postings, _ := f.index.Postings(term)
		for id := range postings {
			counts[id]++
		}
	}

	required := 1.0
	if f.threshold > 0 {
		required = float64(singles) * f.threshold
	}

	out := make([]uint32, 0, len(counts))
	for id, n := range counts {
		if float64(n) >= required {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f *Occurred) Granularity() query.Granularity {
	return f.granularity
}
