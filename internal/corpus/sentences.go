package corpus

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// punkt is the pre-trained English Punkt model, built on first use.
var punkt = sync.OnceValue(func() *sentences.DefaultSentenceTokenizer {
	t, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		panic("loading english punkt model: " + err.Error())
	}
	return t
})

// SplitSentences splits text into sentences with the Punkt English model.
// A break followed by a lowercase word or a digit is undone: in abstracts
// those are abbreviations ("e.g.", "et al.", "Fig. 2") the model missed.
// Trailing text without a terminator becomes the last sentence.
func SplitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	var out []string
	for _, s := range punkt().Tokenize(text) {
		piece := strings.TrimSpace(s.Text)
		if piece == "" {
			continue
		}
		if n := len(out); n > 0 && continuesSentence(piece) {
			out[n-1] += " " + piece
			continue
		}
		out = append(out, piece)
	}
	return out
}

func continuesSentence(piece string) bool {
	r, _ := utf8.DecodeRuneInString(piece)
	return unicode.IsLower(r) || unicode.IsDigit(r)
}

// Sentences returns the sentences of d with the title as sentence 0.
func Sentences(d Document) []string {
	title := strings.Join(strings.Fields(d.Title), " ")
	return append([]string{title}, SplitSentences(d.Summary)...)
}
