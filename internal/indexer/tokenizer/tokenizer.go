// Package tokenizer turns raw text into index terms. It lower-cases input,
// splits on non-alphanumeric boundaries, removes stop-words, and then
// normalises words according to a Mode: left as-is, reduced by the Snowball
// English stemmer, or run through bleve's English analyzer (Porter stemming).
// Optionally it appends adjacent-word 2-grams.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
)

// Mode selects word normalisation.
type Mode string

const (
	ModeNaive  Mode = "naive"
	ModeStem   Mode = "stem"
	ModePorter Mode = "porter"
)

// stopWords is bleve's English (snowball) stop list plus the modals it
// leaves out.
var stopWords = func() analysis.TokenMap {
	m := analysis.NewTokenMap()
	if err := m.LoadBytes(en.EnglishStopWords); err != nil {
		panic(fmt.Sprintf("loading english stop words: %v", err))
	}
	m.AddToken("can")
	m.AddToken("will")
	return m
}()

// Token represents a single normalised term and its position in the
// original text. 2-gram tokens carry the position of their first word.
type Token struct {
	Term     string
	Position int
}

// Tokenizer is safe for concurrent use.
type Tokenizer struct {
	mode     Mode
	twograms bool
	porter   analysis.Analyzer
}

// New returns a Tokenizer for mode. With twograms set, every pair of
// adjacent words is emitted as an extra "w1 w2" token after the single
// words.
func New(mode Mode, twograms bool) (*Tokenizer, error) {
	t := &Tokenizer{mode: mode, twograms: twograms}
	switch mode {
	case ModeNaive, ModeStem:
	case ModePorter:
		t.porter = bleve.NewIndexMapping().AnalyzerNamed(en.AnalyzerName)
		if t.porter == nil {
			return nil, fmt.Errorf("bleve analyzer %q not registered", en.AnalyzerName)
		}
	default:
		return nil, fmt.Errorf("unknown tokenizer mode %q", mode)
	}
	return t, nil
}

// MustNew is New for static configurations.
func MustNew(mode Mode, twograms bool) *Tokenizer {
	t, err := New(mode, twograms)
	if err != nil {
		panic(err)
	}
	return t
}

// Words returns the normalised single-word terms of text in order.
func (t *Tokenizer) Words(text string) []string {
	words := splitWords(text)
	out := make([]string, 0, len(words))
	for _, word := range words {
		var term string
		switch t.mode {
		case ModeStem:
			term = stem(word)
		case ModePorter:
			term = t.porterTerm(word)
		default:
			term = word
		}
		if term != "" {
			out = append(out, term)
		}
	}
	return out
}

// Tokenize breaks text into positioned Tokens: single words first, then
// 2-grams when enabled.
func (t *Tokenizer) Tokenize(text string) []Token {
	words := t.Words(text)
	n := len(words)
	if t.twograms && n > 1 {
		n += n - 1
	}
	tokens := make([]Token, 0, n)
	for pos, w := range words {
		tokens = append(tokens, Token{Term: w, Position: pos})
	}
	if t.twograms {
		for pos := 0; pos+1 < len(words); pos++ {
			tokens = append(tokens, Token{Term: words[pos] + " " + words[pos+1], Position: pos})
		}
	}
	return tokens
}

// Terms is Tokenize without positions.
func (t *Tokenizer) Terms(text string) []string {
	tokens := t.Tokenize(text)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Term
	}
	return out
}

// IsNGram reports whether term is a multi-word token.
func IsNGram(term string) bool {
	return strings.Contains(term, " ")
}

func (t *Tokenizer) porterTerm(word string) string {
	stream := t.porter.Analyze([]byte(word))
	if len(stream) == 0 {
		return ""
	}
	return string(stream[0].Term)
}

func splitWords(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, word := range words {
		if len(word) < 2 {
			continue
		}
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		out = append(out, word)
	}
	return out
}

// stem runs word through bleve's Snowball English stemmer.
func stem(word string) string {
	stream := snowball.Filter(analysis.TokenStream{{Term: []byte(word)}})
	return string(stream[0].Term)
}

var snowball = en.NewEnglishStemmerFilter()
