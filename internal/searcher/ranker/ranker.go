// Package ranker scores retrieval candidates by cosine similarity to the
// query vector and orders them best first. Sentence candidates are folded
// into their documents by keeping each document's best sentence.
package ranker

import (
	"fmt"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/retriever"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/workerpool"
)

const scoreChunk = 2048

// Ranker returns document ids with scores rounded to four decimals,
// descending, ties in candidate order.
type Ranker interface {
	Rank(v vector.Vector, c retriever.Candidates) ([]query.Scored, error)
}

// Document ranks docIdx candidates against one vector per document.
type Document struct {
	vectors *vector.Matrix
	pool    *workerpool.Pool
}

func NewDocument(vectors *vector.Matrix, pool *workerpool.Pool) *Document {
	return &Document{vectors: vectors, pool: pool}
}

func (r *Document) Rank(v vector.Vector, c retriever.Candidates) ([]query.Scored, error) {
	if c.Granularity != query.Documents {
		return nil, fmt.Errorf("%w: document ranker got %s candidates", apperrors.ErrInvalidInput, c.Granularity)
	}
	sims, err := similarities(r.pool, v, c.IDs, r.vectors)
	if err != nil {
		return nil, err
	}
	result := make([]query.Scored, len(c.IDs))
	for i, id := range c.IDs {
		result[i] = query.Scored{ID: id, Score: vector.Round4(sims[i])}
	}
	sortScored(result)
	return result, nil
}

// Sentence ranks sentIdx candidates and aggregates them per document by
// maximum similarity. Document candidates are expanded to all of their
// sentences first.
type Sentence struct {
	store *vector.SentenceStore
	pool  *workerpool.Pool
}

func NewSentence(store *vector.SentenceStore, pool *workerpool.Pool) *Sentence {
	return &Sentence{store: store, pool: pool}
}

func (r *Sentence) Rank(v vector.Vector, c retriever.Candidates) ([]query.Scored, error) {
	sents := c.IDs
	if c.Granularity == query.Documents {
		var err error
		if sents, err = r.expand(c.IDs); err != nil {
			return nil, err
		}
	}
	sims, err := similarities(r.pool, v, sents, &r.store.Vectors)
	if err != nil {
		return nil, err
	}

	best := make(map[uint32]float64)
	var order []uint32
	for i, sent := range sents {
		doc, ok := r.store.DocOf(sent)
		if !ok {
			return nil, fmt.Errorf("sentence %d has no tag", sent)
		}
		prev, seen := best[doc]
		if !seen {
			order = append(order, doc)
			best[doc] = sims[i]
			continue
		}
		if sims[i] > prev {
			best[doc] = sims[i]
		}
	}

	result := make([]query.Scored, len(order))
	for i, doc := range order {
		result[i] = query.Scored{ID: doc, Score: vector.Round4(best[doc])}
	}
	sortScored(result)
	return result, nil
}

func (r *Sentence) expand(docs []uint32) ([]uint32, error) {
	var out []uint32
	for _, doc := range docs {
		start, end, err := r.store.Range(doc)
		if err != nil {
			return nil, err
		}
		for s := start; s < end; s++ {
			out = append(out, uint32(s))
		}
	}
	return out, nil
}

// similarities computes cosine(v, rows[id]) for every id, in parallel
// chunks.
func similarities(pool *workerpool.Pool, v vector.Vector, ids []uint32, rows *vector.Matrix) ([]float64, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: ranking needs a query vector", apperrors.ErrInvalidInput)
	}
	if len(ids) > 0 && v.Dim() != rows.Dim {
		return nil, fmt.Errorf("%w: query %d vs store %d", apperrors.ErrShapeMismatch, v.Dim(), rows.Dim)
	}
	sims := make([]float64, len(ids))
	errs := make([]error, workerpool.Chunks(len(ids), scoreChunk))
	err := pool.Range(len(ids), scoreChunk, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			row, err := rows.Row(int(ids[i]))
			if err == nil {
				sims[i], err = vector.Cosine(v, row)
			}
			if err != nil {
				errs[lo/scoreChunk] = err
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return sims, nil
}

func sortScored(result []query.Scored) {
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
}
