package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
)

func buildIndex(t *testing.T) *Index {
	t.Helper()
	tk := tokenizer.MustNew(tokenizer.ModeNaive, true)
	x := New([]string{"graph", "database", "unused"})
	x.Add(0, tk.Tokenize("graph database systems"))
	x.Add(1, tk.Tokenize("graph graph theory"))
	return x
}

func TestVocabularyIsPreSeeded(t *testing.T) {
	x := buildIndex(t)
	assert.True(t, x.Has("unused"))
	assert.Equal(t, 0, x.DocFreq("unused"))
	assert.False(t, x.Has("missing"))
	// terms seen during Add join the vocabulary
	assert.True(t, x.Has("theory"))
	assert.True(t, x.Has("graph database"))
}

func TestPostingsAndLengths(t *testing.T) {
	x := buildIndex(t)
	docs, ok := x.Postings("graph")
	require.True(t, ok)
	assert.Equal(t, []uint32{0}, docs[0])
	assert.Equal(t, []uint32{0, 1}, docs[1])
	assert.Equal(t, 2, x.DocFreq("graph"))

	assert.Equal(t, 2, x.Size())
	// 2-grams do not count toward length
	assert.Equal(t, 3, x.Length(0))
	assert.Equal(t, 3, x.Length(1))
	assert.Equal(t, 0, x.Length(9))
	assert.InDelta(t, 3.0, x.AvgLength(), 1e-9)
}

func TestSnapshotRoundTrip(t *testing.T) {
	x := buildIndex(t)
	entries := x.Snapshot()
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Term, entries[i].Term)
	}

	y := FromSnapshot(entries, x.Lengths())
	assert.Equal(t, x.VocabularySize(), y.VocabularySize())
	assert.True(t, y.Has("unused"))
	docs, _ := y.Postings("graph")
	assert.Equal(t, []uint32{0, 1}, docs[1])
}
