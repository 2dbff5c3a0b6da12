package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/vectorizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
)

func TestSparseAnalyze(t *testing.T) {
	tok := tokenizer.MustNew(tokenizer.ModeNaive, false)
	vec, err := vectorizer.Fit(vectorizer.WeightingCount, [][]string{
		{"graph", "network"},
		{"protein"},
	}, 1)
	require.NoError(t, err)

	a, err := NewSparse(tok, vec).Analyze(context.Background(), "The Graph of graph networks")
	require.NoError(t, err)
	assert.Equal(t, "The Graph of graph networks", a.Query)
	assert.Contains(t, a.Tokens, "graph")

	sv, ok := a.Vector.(vector.Sparse)
	require.True(t, ok)
	assert.Equal(t, vec.Dim(), sv.Dim())
	col := vec.Vocabulary["graph"]
	dense := vector.ToDense(sv)
	assert.Equal(t, float32(2), dense[col])
}

type stubEmbedder struct {
	v    []float32
	err  error
	seen *string
}

func (s stubEmbedder) EmbedDocuments(context.Context, []string) ([][]float32, error) {
	return [][]float32{s.v}, s.err
}

func (s stubEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if s.seen != nil {
		*s.seen = text
	}
	return s.v, s.err
}

func TestDenseAnalyze(t *testing.T) {
	tok := tokenizer.MustNew(tokenizer.ModeNaive, false)
	a, err := NewDense(tok, stubEmbedder{v: []float32{0.1, 0.2, 0.3}}, 3).Analyze(context.Background(), "quantum error correction")
	require.NoError(t, err)
	assert.Equal(t, vector.Dense{0.1, 0.2, 0.3}, a.Vector)
	assert.Equal(t, []string{"quantum", "error", "correction"}, a.Tokens)
}

func TestDenseDimensionMismatch(t *testing.T) {
	tok := tokenizer.MustNew(tokenizer.ModeNaive, false)
	_, err := NewDense(tok, stubEmbedder{v: []float32{1, 2}}, 3).Analyze(context.Background(), "x")
	assert.True(t, errors.Is(err, apperrors.ErrShapeMismatch))
}

func TestDenseEmbedderFailure(t *testing.T) {
	tok := tokenizer.MustNew(tokenizer.ModeNaive, false)
	boom := errors.New("boom")
	_, err := NewDense(tok, stubEmbedder{err: boom}, 0).Analyze(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestDenseEmbedsCollapsedTextWithCase(t *testing.T) {
	tok := tokenizer.MustNew(tokenizer.ModeNaive, false)
	var seen string
	_, err := NewDense(tok, stubEmbedder{v: []float32{1}, seen: &seen}, 0).Analyze(context.Background(), "  Apple \t stock ")
	require.NoError(t, err)
	assert.Equal(t, "Apple stock", seen)
}
