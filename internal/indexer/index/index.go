// Package index implements the inverted index: term -> id -> positions. The
// vocabulary is pre-seeded with empty postings so a known term that never
// occurs is distinguishable from an unknown term. An Index is populated by
// the offline builder and is read-only once shared.
package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
)

type Index struct {
	postings map[string]map[uint32][]uint32
	lengths  []uint32
}

// New returns an index whose vocabulary is pre-seeded with empty postings.
func New(vocabulary []string) *Index {
	x := &Index{postings: make(map[string]map[uint32][]uint32, len(vocabulary))}
	for _, term := range vocabulary {
		x.postings[term] = make(map[uint32][]uint32)
	}
	return x
}

// Add records the tokens of id. Terms outside a pre-seeded vocabulary are
// added as new entries.
func (x *Index) Add(id uint32, tokens []tokenizer.Token) {
	for _, tok := range tokens {
		docs, ok := x.postings[tok.Term]
		if !ok {
			docs = make(map[uint32][]uint32)
			x.postings[tok.Term] = docs
		}
		docs[id] = append(docs[id], uint32(tok.Position))
	}
	x.setLength(id, countSingle(tokens))
}

func (x *Index) setLength(id uint32, n uint32) {
	for int(id) >= len(x.lengths) {
		x.lengths = append(x.lengths, 0)
	}
	x.lengths[id] = n
}

func countSingle(tokens []tokenizer.Token) uint32 {
	var n uint32
	for _, tok := range tokens {
		if !tokenizer.IsNGram(tok.Term) {
			n++
		}
	}
	return n
}

// Has reports whether term is in the vocabulary.
func (x *Index) Has(term string) bool {
	_, ok := x.postings[term]
	return ok
}

// Postings returns id -> positions for term. The map must not be modified.
func (x *Index) Postings(term string) (map[uint32][]uint32, bool) {
	docs, ok := x.postings[term]
	return docs, ok
}

// DocFreq returns the number of ids containing term.
func (x *Index) DocFreq(term string) int {
	return len(x.postings[term])
}

// Size returns the number of ids the index covers.
func (x *Index) Size() int {
	return len(x.lengths)
}

// Length returns the single-word token count of id.
func (x *Index) Length(id uint32) int {
	if int(id) >= len(x.lengths) {
		return 0
	}
	return int(x.lengths[id])
}

// AvgLength returns the mean single-word token count per id.
func (x *Index) AvgLength() float64 {
	if len(x.lengths) == 0 {
		return 0
	}
	var total uint64
	for _, l := range x.lengths {
		total += uint64(l)
	}
	return float64(total) / float64(len(x.lengths))
}

// VocabularySize returns the number of terms.
func (x *Index) VocabularySize() int {
	return len(x.postings)
}

// Snapshot returns the index as term-sorted entries with id-sorted postings.
func (x *Index) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(x.postings))
	for term, docs := range x.postings {
		postings := make(PostingList, 0, len(docs))
		for id, positions := range docs {
			postings = append(postings, Posting{ID: id, Positions: positions})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].ID < postings[j].ID
		})
		entries = append(entries, TermEntry{Term: term, Postings: postings})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Lengths returns the per-id token counts. The slice must not be modified.
func (x *Index) Lengths() []uint32 {
	return x.lengths
}

// FromSnapshot rebuilds an index from serialised entries and lengths.
func FromSnapshot(entries []TermEntry, lengths []uint32) *Index {
	x := &Index{
		postings: make(map[string]map[uint32][]uint32, len(entries)),
		lengths:  lengths,
	}
	for _, e := range entries {
		docs := make(map[uint32][]uint32, len(e.Postings))
		for _, p := range e.Postings {
			docs[p.ID] = p.Positions
		}
		x.postings[e.Term] = docs
	}
	return x
}
