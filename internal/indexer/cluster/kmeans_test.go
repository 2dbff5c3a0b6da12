package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
)

func twoBlobs() []vector.Dense {
	return []vector.Dense{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{10, 10}, {10.1, 10}, {10, 10.1},
	}
}

func TestTrainSeparatesBlobs(t *testing.T) {
	m, err := Train(context.Background(), twoBlobs(), Options{K: 2, Seed: 7})
	require.NoError(t, err)
	require.Len(t, m.Labels, 6)

	assert.Equal(t, m.Labels[0], m.Labels[1])
	assert.Equal(t, m.Labels[0], m.Labels[2])
	assert.Equal(t, m.Labels[3], m.Labels[4])
	assert.NotEqual(t, m.Labels[0], m.Labels[3])

	label, err := m.Predict(vector.Dense{9, 9})
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 4, 5}, m.Members(label))
}

func TestTrainIsDeterministic(t *testing.T) {
	a, err := Train(context.Background(), twoBlobs(), Options{K: 2, Seed: 42})
	require.NoError(t, err)
	b, err := Train(context.Background(), twoBlobs(), Options{K: 2, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, a.Labels, b.Labels)
}

func TestPredictShapeMismatch(t *testing.T) {
	m := &Model{Centroids: []vector.Dense{{0, 0}}}
	_, err := m.Predict(vector.Dense{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrShapeMismatch))
}

func TestTrainValidation(t *testing.T) {
	_, err := Train(context.Background(), twoBlobs(), Options{K: 0})
	require.Error(t, err)
	_, err = Train(context.Background(), twoBlobs()[:1], Options{K: 2})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Train(ctx, twoBlobs(), Options{K: 2})
	require.ErrorIs(t, err, context.Canceled)
}
