package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntersectKeepsLeftOrder(t *testing.T) {
	got := Intersect([]uint32{5, 1, 3, 9}, NewSet([]uint32{9, 3, 4}))
	assert.Equal(t, []uint32{3, 9}, got)
	assert.Empty(t, Intersect(nil, NewSet([]uint32{1})))
}

func TestUnionFirstSeenOrder(t *testing.T) {
	got := Union([]uint32{3, 1}, []uint32{1, 7}, nil, []uint32{7, 2})
	assert.Equal(t, []uint32{3, 1, 7, 2}, got)
	assert.Nil(t, Union())
}

func TestGranularityString(t *testing.T) {
	assert.Equal(t, "documents", Documents.String())
	assert.Equal(t, "sentences", Sentences.String())
}
