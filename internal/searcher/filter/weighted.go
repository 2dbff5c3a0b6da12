package filter

import (
	"math"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
)

// Weighted ranks ids by the summed rarity of the query terms they contain
// and keeps the best limit of them.
type Weighted struct {
	index       *index.Index
	corpusSize  int
	limit       int
	granularity query.Granularity
}

// NewWeighted returns a weighted filter. limit <= 0 disables truncation.
func NewWeighted(idx *index.Index, corpusSize, limit int, g query.Granularity) *Weighted {
	return &Weighted{index: idx, corpusSize: corpusSize, limit: limit, granularity: g}
}

func (f *Weighted) Filter(a *query.Analysis) ([]uint32, error) {
	scores := make(map[uint32]float64)
	for _, term := range distinct(a.Tokens, f.index.Has) {
		postings, _ := f.index.Postings(term)
		w := termWeight(f.corpusSize, len(postings))
		for id := range postings {
			scores[id] += w
		}
	}
	return merger.IDs(merger.TopKMap(scores, f.limit)), nil
}

func (f *Weighted) Granularity() query.Granularity {
	return f.granularity
}

// termWeight is log10(N / (1 + df)).
func termWeight(corpusSize, docFreq int) float64 {
	return math.Log10(float64(corpusSize) / float64(1+docFreq))
}
