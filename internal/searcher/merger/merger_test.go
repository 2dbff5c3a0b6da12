package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
)

func TestTopK(t *testing.T) {
	items := []query.Scored{{ID: 1, Score: 0.2}, {ID: 2, Score: 0.9}, {ID: 3, Score: 0.5}, {ID: 4, Score: 0.5}}
	got := TopK(items, 3)
	assert.Equal(t, []query.Scored{{ID: 2, Score: 0.9}, {ID: 3, Score: 0.5}, {ID: 4, Score: 0.5}}, got)
}

func TestTopKNoTruncation(t *testing.T) {
	items := []query.Scored{{ID: 1, Score: 0.2}, {ID: 2, Score: 0.9}}
	assert.Equal(t, []uint32{2, 1}, IDs(TopK(items, 0)))
	assert.Equal(t, []uint32{2, 1}, IDs(TopK(items, 10)))
	assert.Empty(t, TopK(nil, 5))
}

func TestTopKMap(t *testing.T) {
	got := TopKMap(map[uint32]float64{7: 1, 8: 3, 9: 2}, 2)
	assert.Equal(t, []uint32{8, 9}, IDs(got))
}
