// Package summarizer produces the bounded-length document extract returned
// with every search hit.
package summarizer

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
)

// DefaultLimit is the default token budget of a summary.
const DefaultLimit = 50

const (
	naiveEllipsis = "..."
	gapMarker     = "(...)"
)

// Summary is the metadata envelope of one hit.
type Summary struct {
	ID          string   `json:"id"`
	IDoc        uint32   `json:"idoc"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Published   string   `json:"published"`
	CategoryIDs []string `json:"categoryIds"`
	Summarized  string   `json:"summarized"`
}

// Summarizer builds the summary of one document. Only summarizers reporting
// UsesQuery receive the query vector; others are passed nil.
type Summarizer interface {
	Summarize(docIdx uint32, v vector.Vector) (Summary, error)
	UsesQuery() bool
}

func envelope(d corpus.Document, text string) Summary {
	return Summary{
		ID:          d.ID,
		IDoc:        d.DocIdx,
		Title:       d.Title,
		Authors:     d.Authors,
		Published:   d.Published,
		CategoryIDs: d.CategoryIDs,
		Summarized:  text,
	}
}

// Naive keeps the first limit whitespace tokens of the abstract.
type Naive struct {
	corpus *corpus.Corpus
	limit  int
}

func NewNaive(c *corpus.Corpus, limit int) *Naive {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Naive{corpus: c, limit: limit}
}

func (s *Naive) Summarize(docIdx uint32, _ vector.Vector) (Summary, error) {
	d, err := s.corpus.Get(docIdx)
	if err != nil {
		return Summary{}, err
	}
	tokens := strings.Fields(d.Summary)
	if len(tokens) <= s.limit {
		return envelope(d, strings.Join(tokens, " ")), nil
	}
	return envelope(d, strings.Join(tokens[:s.limit], " ")+naiveEllipsis), nil
}

func (s *Naive) UsesQuery() bool { return false }

// Similarity is a budget-constrained extractive summarizer: it drops the
// sentences least similar to the query until the rest fits the token limit,
// marking gaps at the edges with "(...)".
type Similarity struct {
	corpus *corpus.Corpus
	store  *vector.SentenceStore
	limit  int
}

func NewSimilarity(c *corpus.Corpus, store *vector.SentenceStore, limit int) *Similarity {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Similarity{corpus: c, store: store, limit: limit}
}

func (s *Similarity) UsesQuery() bool { return true }

type scoredSentence struct {
	text  string
	score float64
}

func (s *Similarity) Summarize(docIdx uint32, v vector.Vector) (Summary, error) {
	d, err := s.corpus.Get(docIdx)
	if err != nil {
		return Summary{}, err
	}
	if v == nil {
		return Summary{}, fmt.Errorf("similarity summary of %d needs a query vector", docIdx)
	}
	start, end, err := s.store.Range(docIdx)
	if err != nil {
		return Summary{}, err
	}

	var pairs []scoredSentence
	for i := start; i < end; i++ {
		if s.store.Tags[i].IsTitle() {
			continue
		}
		row, err := s.store.Vectors.Row(i)
		if err != nil {
			return Summary{}, err
		}
		sim, err := vector.Cosine(v, row)
		if err != nil {
			return Summary{}, fmt.Errorf("scoring sentence %d: %w", i, err)
		}
		pairs = append(pairs, scoredSentence{text: s.store.Texts[i], score: sim})
	}
	return envelope(d, extract(pairs, s.limit)), nil
}

// extract reduces pairs to at most limit tokens. It repeatedly removes the
// lowest scoring sentence (the last one on ties) until the text fits or one
// sentence is left, which is then truncated.
func extract(pairs []scoredSentence, limit int) string {
	pairs = append([]scoredSentence(nil), pairs...)
	for {
		tokens := strings.Fields(joinTexts(pairs))
		if len(tokens) <= limit {
			return strings.Join(tokens, " ")
		}
		if len(pairs) <= 1 {
			return strings.Join(tokens[:limit], " ") + " " + gapMarker
		}

		idx := lowest(pairs)
		last := len(pairs) - 1
		if idx == 0 && !strings.HasPrefix(pairs[1].text, gapMarker+" ") {
			pairs[1].text = gapMarker + " " + pairs[1].text
		}
		if idx == last && !strings.HasSuffix(pairs[last-1].text, " "+gapMarker) {
			pairs[last-1].text = pairs[last-1].text + " " + gapMarker
		}
		pairs = append(pairs[:idx], pairs[idx+1:]...)
	}
}

func lowest(pairs []scoredSentence) int {
	idx := 0
	for i, p := range pairs {
		if p.score <= pairs[idx].score {
			idx = i
		}
	}
	return idx
}

func joinTexts(pairs []scoredSentence) string {
	texts := make([]string, len(pairs))
	for i, p := range pairs {
		texts[i] = p.text
	}
	return strings.Join(texts, " ")
}
