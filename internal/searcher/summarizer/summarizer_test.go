package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/tag"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
)

func words(prefix string, n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = prefix
	}
	return strings.Join(w, " ")
}

func testCorpus(summary string) *corpus.Corpus {
	return corpus.New("test", []corpus.Document{{
		ID:          "2101.00001",
		Title:       "A Title",
		Summary:     summary,
		Authors:     []string{"Ann Lee"},
		Published:   "2021-01-01",
		CategoryIDs: []string{"cs.IR"},
	}})
}

func TestNaiveTruncates(t *testing.T) {
	s := NewNaive(testCorpus("  one   two three four "), 3)
	got, err := s.Summarize(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "one two three...", got.Summarized)
	assert.Equal(t, "2101.00001", got.ID)
	assert.Equal(t, uint32(0), got.IDoc)
	assert.Equal(t, "A Title", got.Title)
	assert.Equal(t, []string{"cs.IR"}, got.CategoryIDs)
	assert.False(t, s.UsesQuery())
}

func TestNaiveShortText(t *testing.T) {
	got, err := NewNaive(testCorpus("short text"), 0).Summarize(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "short text", got.Summarized)
}

func TestNaiveUnknownDocument(t *testing.T) {
	_, err := NewNaive(testCorpus("x"), 5).Summarize(3, nil)
	assert.Error(t, err)
}

func TestLowestPrefersLastTie(t *testing.T) {
	pairs := []scoredSentence{{score: 0.5}, {score: 0.2}, {score: 0.2}}
	assert.Equal(t, 2, lowest(pairs))
}

func TestExtractKeepsTextWithinBudget(t *testing.T) {
	pairs := []scoredSentence{{text: "a b.", score: 0.1}, {text: "c d.", score: 0.9}}
	assert.Equal(t, "a b. c d.", extract(pairs, 10))
}

func TestExtractRemovesLowestAndMarksEdges(t *testing.T) {
	pairs := []scoredSentence{
		{text: words("a", 4), score: 0.1},
		{text: words("b", 4), score: 0.9},
		{text: words("c", 4), score: 0.2},
	}
	// removing the first sentence marks the new head, then the tail goes
	got := extract(pairs, 6)
	assert.Equal(t, "(...) b b b b (...)", got)
	// input is left untouched
	assert.Equal(t, words("a", 4), pairs[0].text)
}

func TestExtractMiddleRemovalHasNoMarker(t *testing.T) {
	pairs := []scoredSentence{
		{text: "x y", score: 0.9},
		{text: "m n", score: 0.1},
		{text: "p q", score: 0.8},
	}
	assert.Equal(t, "x y p q", extract(pairs, 4))
}

func TestExtractTruncatesLastSentence(t *testing.T) {
	pairs := []scoredSentence{{text: words("w", 60), score: 0.3}}
	got := extract(pairs, 50)
	tokens := strings.Fields(got)
	assert.Len(t, tokens, 51)
	assert.Equal(t, "(...)", tokens[50])
}

func TestExtractBudgetProperty(t *testing.T) {
	pairs := []scoredSentence{
		{text: words("a", 20), score: 0.4},
		{text: words("b", 30), score: 0.7},
		{text: words("c", 25), score: 0.4},
		{text: words("d", 15), score: 0.9},
		{text: words("e", 70), score: 0.8},
	}
	for _, limit := range []int{10, 30, 50, 100, 500} {
		tokens := strings.Fields(extract(pairs, limit))
		if len(tokens) > limit {
			require.Len(t, tokens, limit+1, "limit %d", limit)
			assert.Equal(t, "(...)", tokens[limit])
		}
	}
}

func TestExtractEmpty(t *testing.T) {
	assert.Equal(t, "", extract(nil, 50))
}

func TestSimilaritySkipsTitleAndUsesQuery(t *testing.T) {
	c := testCorpus("First part here. Second part.")
	store := &vector.SentenceStore{
		Vectors:    vector.Matrix{Kind: vector.KindDense, Dim: 2, Dense: []vector.Dense{{1, 1}, {1, 0}, {0, 1}}},
		Tags:       []tag.Tag{tag.New(0, 0), tag.New(0, 1), tag.New(0, 2)},
		Texts:      []string{"A Title", "First part here.", "Second part."},
		DocOffsets: []int{0},
	}
	s := NewSimilarity(c, store, 3)
	assert.True(t, s.UsesQuery())

	got, err := s.Summarize(0, vector.Dense{1, 0})
	require.NoError(t, err)
	assert.Equal(t, "First part here. (...)", got.Summarized)

	got, err = s.Summarize(0, vector.Dense{0, 1})
	require.NoError(t, err)
	assert.Equal(t, "(...) Second part.", got.Summarized)

	_, err = s.Summarize(0, vector.Dense{0, 1, 0})
	assert.Error(t, err)

	_, err = s.Summarize(0, nil)
	assert.Error(t, err)
}
