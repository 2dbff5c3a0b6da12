package filter

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/workerpool"
)

const annChunk = 4096

// ANN is a flat inner-product search over L2-normalised sentence
// embeddings, which orders sentences by cosine similarity.
type ANN struct {
	rows  []vector.Dense
	dim   int
	limit int
	pool  *workerpool.Pool
}

// NewANN normalises a copy of every row. pool may be nil.
func NewANN(rows []vector.Dense, limit int, pool *workerpool.Pool) (*ANN, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: ann filter needs at least one embedding", apperrors.ErrInvalidInput)
	}
	dim := len(rows[0])
	normed := make([]vector.Dense, len(rows))
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("%w: embedding %d has %d dims, want %d", apperrors.ErrShapeMismatch, i, len(r), dim)
		}
		normed[i] = vector.Normalize(r)
	}
	return &ANN{rows: normed, dim: dim, limit: limit, pool: pool}, nil
}

func (f *ANN) Filter(a *query.Analysis) ([]uint32, error) {
	if a.Vector == nil {
		return nil, fmt.Errorf("%w: ann filter needs a query vector", apperrors.ErrInvalidInput)
	}
	if a.Vector.Dim() != f.dim {
		return nil, fmt.Errorf("%w: query %d vs index %d", apperrors.ErrShapeMismatch, a.Vector.Dim(), f.dim)
	}
	q := vector.Normalize(vector.ToDense(a.Vector))

	// each chunk keeps its own top-k, merged afterwards
	partial := make([][]query.Scored, workerpool.Chunks(len(f.rows), annChunk))
	err := f.pool.Range(len(f.rows), annChunk, func(lo, hi int) {
		items := make([]query.Scored, 0, hi-lo)
		for i := lo; i < hi; i++ {
			s, _ := vector.Dot(q, f.rows[i])
			items = append(items, query.Scored{ID: uint32(i), Score: s})
		}
		partial[lo/annChunk] = merger.TopK(items, f.limit)
	})
	if err != nil {
		return nil, err
	}

	var merged []query.Scored
	for _, p := range partial {
		merged = append(merged, p...)
	}
	return merger.IDs(merger.TopK(merged, f.limit)), nil
}

func (f *ANN) Granularity() query.Granularity {
	return query.Sentences
}
