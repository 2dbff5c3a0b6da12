package filter

import (
	"math"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
)

const (
	k1 = 1.5
	b  = 0.75
)

// BM25 scores sentences against the query tokens over a sentence-level
// index and returns the ids of the best limit sentences with a positive
// score. Scores are discarded; ranking happens later.
type BM25 struct {
	index *index.Index
	limit int
}

// NewBM25 expects an index whose ids are sentIdx values and whose lengths
// are populated.
func NewBM25(idx *index.Index, limit int) *BM25 {
	return &BM25{index: idx, limit: limit}
}

func (f *BM25) Filter(a *query.Analysis) ([]uint32, error) {
	return merger.IDs(f.Score(a.Tokens)), nil
}

// Score returns the top scored sentences for tokens, descending.
func (f *BM25) Score(tokens []string) []query.Scored {
	total := int64(f.index.Size())
	avg := f.index.AvgLength()

	scores := make(map[uint32]float64)
	for _, term := range distinct(tokens, f.index.Has) {
		postings, _ := f.index.Postings(term)
		if len(postings) == 0 {
			continue
		}
		idf := computeIDF(total, int64(len(postings)))
		for id, positions := range postings {
			tfNorm := computeTFNorm(
				float64(len(positions)),
				float64(f.index.Length(id)),
				avg,
			)
			scores[id] += idf * tfNorm
		}
	}
	for id, s := range scores {
		if s <= 0 {
			delete(scores, id)
		}
	}
	return merger.TopKMap(scores, f.limit)
}

func (f *BM25) Granularity() query.Granularity {
	return query.Sentences
}

func computeIDF(totalDocs int64, docFreq int64) float64 {
	numerator := float64(totalDocs) - float64(docFreq) + 0.5
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

func computeTFNorm(termFreq float64, docLength float64, avgDocLength float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	return (termFreq * (k1 + 1)) / denominator
}
