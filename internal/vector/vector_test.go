package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/tag"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
)

func TestCosineDenseAndSparseAgree(t *testing.T) {
	d1 := Dense{1, 0, 2, 0}
	d2 := Dense{0, 3, 1, 0}
	s1 := NewSparse(4, map[int32]float32{0: 1, 2: 2})
	s2 := NewSparse(4, map[int32]float32{1: 3, 2: 1})

	want := 2 / (math.Sqrt(5) * math.Sqrt(10))
	for _, pair := range [][2]Vector{{d1, d2}, {s1, s2}, {s1, d2}, {d1, s2}} {
		got, err := Cosine(pair[0], pair[1])
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-9)
	}
}

func TestCosineShapeMismatch(t *testing.T) {
	_, err := Cosine(Dense{1, 2}, Dense{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrShapeMismatch))
}

func TestCosineZeroVector(t *testing.T) {
	got, err := Cosine(Dense{0, 0}, Dense{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, Round4(0.123456))
	assert.Equal(t, 0.7, Round4(0.70001))
}

func TestNormalize(t *testing.T) {
	n := Normalize(Dense{3, 4})
	assert.InDelta(t, 0.6, n[0], 1e-6)
	assert.InDelta(t, 0.8, n[1], 1e-6)
	assert.InDelta(t, 1.0, Norm(n), 1e-6)
}

func TestMatrixAppendAndRow(t *testing.T) {
	m := NewMatrix(KindSparse, 3)
	require.NoError(t, m.Append(NewSparse(3, map[int32]float32{2: 1})))
	require.Error(t, m.Append(Dense{1, 2, 3}))
	require.Error(t, m.Append(NewSparse(4, nil)))

	row, err := m.Row(0)
	require.NoError(t, err)
	assert.Equal(t, Dense{0, 0, 1}, ToDense(row))
	_, err = m.Row(1)
	require.Error(t, err)
}

func TestSentenceStoreRange(t *testing.T) {
	s := &SentenceStore{
		Tags:       []tag.Tag{tag.New(0, 0), tag.New(0, 1), tag.New(1, 0), tag.New(1, 1), tag.New(1, 2)},
		DocOffsets: []int{0, 2},
	}
	start, end, err := s.Range(1)
	require.NoError(t, err)
	assert.Equal(t, 2, start)
	assert.Equal(t, 5, end)

	doc, ok := s.DocOf(3)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), doc)

	_, _, err = s.Range(5)
	require.Error(t, err)
}
