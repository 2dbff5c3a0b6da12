package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaiveWords(t *testing.T) {
	tk := MustNew(ModeNaive, false)
	got := tk.Words("The Database, of NoSQL-systems (and SQL)!")
	assert.Equal(t, []string{"database", "nosql", "systems", "sql"}, got)
}

func TestStemWords(t *testing.T) {
	tk := MustNew(ModeStem, false)
	got := tk.Words("running generalization studies")
	assert.Equal(t, []string{"run", "general", "studi"}, got)
}

func TestStopWordsFollowEnglishList(t *testing.T) {
	tk := MustNew(ModeNaive, false)
	got := tk.Words("We could show that our models should also work through them")
	assert.Equal(t, []string{"show", "models", "also", "work"}, got)
}

func TestPorterWords(t *testing.T) {
	tk, err := New(ModePorter, false)
	require.NoError(t, err)
	got := tk.Words("connected connections")
	assert.Equal(t, []string{"connect", "connect"}, got)
}

func TestTwograms(t *testing.T) {
	tk := MustNew(ModeNaive, true)
	tokens := tk.Tokenize("graph neural networks")
	assert.Equal(t, []Token{
		{Term: "graph", Position: 0},
		{Term: "neural", Position: 1},
		{Term: "networks", Position: 2},
		{Term: "graph neural", Position: 0},
		{Term: "neural networks", Position: 1},
	}, tokens)
	assert.True(t, IsNGram("graph neural"))
	assert.False(t, IsNGram("graph"))
}

func TestSingleWordHasNoTwogram(t *testing.T) {
	tk := MustNew(ModeNaive, true)
	assert.Equal(t, []string{"graph"}, tk.Terms("graph"))
}

func TestUnknownMode(t *testing.T) {
	_, err := New("lemma", false)
	require.Error(t, err)
}
