// Package vectorizer maps token lists to sparse count or tf-idf vectors over
// a fixed vocabulary. Fit runs offline; Transform is safe for concurrent use.
package vectorizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
)

// Weighting selects raw counts or tf-idf.
type Weighting string

const (
	WeightingCount Weighting = "count"
	WeightingTFIDF Weighting = "tfidf"
)

// Vectorizer is the persisted model. Columns follow the sorted vocabulary.
type Vectorizer struct {
	Weighting  Weighting        `json:"weighting"`
	Vocabulary map[string]int32 `json:"vocabulary"`
	IDF        []float32        `json:"idf,omitempty"`
}

// Fit learns the vocabulary (terms with document frequency >= minDF) and,
// for tf-idf, the smoothed inverse document frequencies
// idf = ln((1+n)/(1+df)) + 1.
func Fit(weighting Weighting, docs [][]string, minDF int) (*Vectorizer, error) {
	if weighting != WeightingCount && weighting != WeightingTFIDF {
		return nil, fmt.Errorf("unknown weighting %q", weighting)
	}
	df := make(map[string]int)
	for _, terms := range docs {
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	vocab := make([]string, 0, len(df))
	for term, n := range df {
		if n >= minDF {
			vocab = append(vocab, term)
		}
	}
	sort.Strings(vocab)

	v := &Vectorizer{
		Weighting:  weighting,
		Vocabulary: make(map[string]int32, len(vocab)),
	}
	for i, term := range vocab {
		v.Vocabulary[term] = int32(i)
	}
	if weighting == WeightingTFIDF {
		n := float64(len(docs))
		v.IDF = make([]float32, len(vocab))
		for i, term := range vocab {
			v.IDF[i] = float32(math.Log((1+n)/(1+float64(df[term]))) + 1)
		}
	}
	return v, nil
}

// Dim returns the vocabulary size.
func (v *Vectorizer) Dim() int {
	return len(v.Vocabulary)
}

// Terms returns the vocabulary in column order.
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.Vocabulary))
	for term, col := range v.Vocabulary {
		out[col] = term
	}
	return out
}

// Transform vectorises one token list. Out-of-vocabulary terms are ignored.
// Tf-idf rows are L2-normalised; count rows are raw frequencies.
func (v *Vectorizer) Transform(terms []string) vector.Sparse {
	counts := make(map[int32]float32)
	for _, term := range terms {
		if col, ok := v.Vocabulary[term]; ok {
			counts[col]++
		}
	}
	if v.Weighting == WeightingTFIDF {
		var norm float64
		for col, c := range counts {
			w := c * v.IDF[col]
			counts[col] = w
			norm += float64(w) * float64(w)
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for col, w := range counts {
				counts[col] = float32(float64(w) / norm)
			}
		}
	}
	return vector.NewSparse(v.Dim(), counts)
}

// Validate checks the persisted model is self-consistent.
func (v *Vectorizer) Validate() error {
	if v.Weighting == WeightingTFIDF && len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("vectorizer: %d idf weights for %d terms", len(v.IDF), len(v.Vocabulary))
	}
	for term, col := range v.Vocabulary {
		if col < 0 || int(col) >= len(v.Vocabulary) {
			return fmt.Errorf("vectorizer: term %q has column %d out of range", term, col)
		}
	}
	return nil
}
