// Package vector holds the dense and sparse representations produced by the
// analyzers and stored per document or sentence, plus the similarity math
// shared by filters, rankers and summarizers.
package vector

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
)

// Vector is either Dense or Sparse.
type Vector interface {
	Dim() int
}

// Dense is a fully materialised embedding.
type Dense []float32

func (d Dense) Dim() int { return len(d) }

// Sparse stores the non-zero entries of a Size-dimensional vector. Indices
// are strictly ascending.
type Sparse struct {
	Size    int       `json:"n"`
	Indices []int32   `json:"i"`
	Values  []float32 `json:"v"`
}

func (s Sparse) Dim() int { return s.Size }

// NewSparse builds a Sparse vector from an index->value map.
func NewSparse(size int, entries map[int32]float32) Sparse {
	idx := make([]int32, 0, len(entries))
	for i, v := range entries {
		if v != 0 {
			idx = append(idx, i)
		}
	}
	sort.Slice(idx, func(a, b int) bool { return idx[a] < idx[b] })
	vals := make([]float32, len(idx))
	for k, i := range idx {
		vals[k] = entries[i]
	}
	return Sparse{Size: size, Indices: idx, Values: vals}
}

// Dot returns the inner product of a and b.
func Dot(a, b Vector) (float64, error) {
	if a.Dim() != b.Dim() {
		return 0, fmt.Errorf("%w: %d vs %d", apperrors.ErrShapeMismatch, a.Dim(), b.Dim())
	}
	switch av := a.(type) {
	case Dense:
		switch bv := b.(type) {
		case Dense:
			return dotDense(av, bv), nil
		case Sparse:
			return dotSparseDense(bv, av), nil
		}
	case Sparse:
		switch bv := b.(type) {
		case Dense:
			return dotSparseDense(av, bv), nil
		case Sparse:
			return dotSparse(av, bv), nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported vector types %T and %T", apperrors.ErrShapeMismatch, a, b)
}

// Norm returns the L2 norm of v.
func Norm(v Vector) float64 {
	var sum float64
	switch vv := v.(type) {
	case Dense:
		for _, x := range vv {
			sum += float64(x) * float64(x)
		}
	case Sparse:
		for _, x := range vv.Values {
			sum += float64(x) * float64(x)
		}
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b. A zero vector has
// similarity 0 with everything.
func Cosine(a, b Vector) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (na * nb), nil
}

// Round4 rounds a score to four decimal places.
func Round4(score float64) float64 {
	return math.Round(score*10000) / 10000
}

// Normalize returns a unit-length copy of d. Zero vectors are returned as-is.
func Normalize(d Dense) Dense {
	n := Norm(d)
	out := make(Dense, len(d))
	if n == 0 {
		copy(out, d)
		return out
	}
	for i, x := range d {
		out[i] = float32(float64(x) / n)
	}
	return out
}

// ToDense materialises any vector as Dense.
func ToDense(v Vector) Dense {
	switch vv := v.(type) {
	case Dense:
		return vv
	case Sparse:
		out := make(Dense, vv.Size)
		for k, i := range vv.Indices {
			out[i] = vv.Values[k]
		}
		return out
	}
	return nil
}

func dotDense(a, b Dense) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func dotSparseDense(s Sparse, d Dense) float64 {
	var sum float64
	for k, i := range s.Indices {
		sum += float64(s.Values[k]) * float64(d[i])
	}
	return sum
}

func dotSparse(a, b Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += float64(a.Values[i]) * float64(b.Values[j])
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
