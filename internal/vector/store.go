package vector

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/tag"
)

// Kind tells which representation a Matrix holds.
type Kind string

const (
	KindDense  Kind = "dense"
	KindSparse Kind = "sparse"
)

// Matrix is a row-addressable collection of vectors of one kind and one
// dimensionality. Row i belongs to docIdx i or sentIdx i.
type Matrix struct {
	Kind   Kind     `json:"kind"`
	Dim    int      `json:"dim"`
	Dense  []Dense  `json:"dense,omitempty"`
	Sparse []Sparse `json:"sparse,omitempty"`
}

// NewMatrix returns an empty matrix.
func NewMatrix(kind Kind, dim int) *Matrix {
	return &Matrix{Kind: kind, Dim: dim}
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	if m.Kind == KindSparse {
		return len(m.Sparse)
	}
	return len(m.Dense)
}

// Row returns row i.
func (m *Matrix) Row(i int) (Vector, error) {
	if i < 0 || i >= m.Len() {
		return nil, fmt.Errorf("row %d out of range [0,%d)", i, m.Len())
	}
	if m.Kind == KindSparse {
		return m.Sparse[i], nil
	}
	return m.Dense[i], nil
}

// Append adds v as the next row.
func (m *Matrix) Append(v Vector) error {
	if v.Dim() != m.Dim {
		return fmt.Errorf("appending %d-dim vector to %d-dim matrix", v.Dim(), m.Dim)
	}
	switch vv := v.(type) {
	case Dense:
		if m.Kind != KindDense {
			return fmt.Errorf("appending dense vector to %s matrix", m.Kind)
		}
		m.Dense = append(m.Dense, vv)
	case Sparse:
		if m.Kind != KindSparse {
			return fmt.Errorf("appending sparse vector to %s matrix", m.Kind)
		}
		m.Sparse = append(m.Sparse, vv)
	default:
		return fmt.Errorf("unsupported vector type %T", v)
	}
	return nil
}

// SentenceStore holds one vector per sentence together with the sentence
// tags, texts and the docIdx -> first sentIdx offsets. Sentences of one
// document are contiguous and ordered, title first.
type SentenceStore struct {
	Vectors    Matrix    `json:"vectors"`
	Tags       []tag.Tag `json:"tags"`
	Texts      []string  `json:"texts"`
	DocOffsets []int     `json:"doc_offsets"`
}

// Len returns the number of sentences.
func (s *SentenceStore) Len() int {
	return len(s.Tags)
}

// DocOf returns the document owning sentence sent.
func (s *SentenceStore) DocOf(sent uint32) (uint32, bool) {
	if int(sent) >= len(s.Tags) {
		return 0, false
	}
	return s.Tags[sent].DocIdx, true
}

// Range returns the half-open sentIdx range [start, end) of doc, scanning
// forward from the document's first sentence while tags still belong to it.
func (s *SentenceStore) Range(doc uint32) (int, int, error) {
	if int(doc) >= len(s.DocOffsets) {
		return 0, 0, fmt.Errorf("document %d has no sentence offset", doc)
	}
	start := s.DocOffsets[doc]
	end := start
	for end < len(s.Tags) && s.Tags[end].DocIdx == doc {
		end++
	}
	return start, end, nil
}

// Validate checks that the parallel arrays agree.
func (s *SentenceStore) Validate() error {
	if s.Vectors.Len() != len(s.Tags) {
		return fmt.Errorf("sentence store: %d vectors for %d tags", s.Vectors.Len(), len(s.Tags))
	}
	if len(s.Texts) != len(s.Tags) {
		return fmt.Errorf("sentence store: %d texts for %d tags", len(s.Texts), len(s.Tags))
	}
	return nil
}
