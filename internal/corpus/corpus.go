// Package corpus holds the immutable document collection and the tag lists
// derived from it (authors, publication dates, sentences). A document's
// position in the collection is its docIdx, and every artifact built from the
// corpus uses that numbering.
package corpus

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/tag"
)

// Document is one abstract.
type Document struct {
	DocIdx      uint32   `json:"-"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Authors     []string `json:"authors"`
	Published   string   `json:"published"`
	CategoryIDs []string `json:"catg_ids"`
}

// Corpus is the loaded document array plus derived lookups. It is built once
// and shared read-only.
type Corpus struct {
	Name string
	docs []Document

	authorNames []string
	authorTags  []tag.Tag
	dates       []string
	dateTags    []tag.Tag
}

// New assigns docIdx by position and derives the author and date tag lists.
func New(name string, docs []Document) *Corpus {
	c := &Corpus{
		Name:     name,
		docs:     make([]Document, len(docs)),
		dates:    make([]string, 0, len(docs)),
		dateTags: make([]tag.Tag, 0, len(docs)),
	}
	for i, d := range docs {
		d.DocIdx = uint32(i)
		c.docs[i] = d
		for j, author := range d.Authors {
			c.authorNames = append(c.authorNames, author)
			c.authorTags = append(c.authorTags, tag.New(i, j))
		}
		c.dates = append(c.dates, d.Published)
		c.dateTags = append(c.dateTags, tag.New(i, 0))
	}
	return c
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Get returns the document at docIdx.
func (c *Corpus) Get(docIdx uint32) (Document, error) {
	if int(docIdx) >= len(c.docs) {
		return Document{}, fmt.Errorf("document %d out of range [0,%d)", docIdx, len(c.docs))
	}
	return c.docs[docIdx], nil
}

// Documents returns the backing slice. Callers must not modify it.
func (c *Corpus) Documents() []Document {
	return c.docs
}

// Authors returns the flattened author names and their tags (docIdx, author
// position).
func (c *Corpus) Authors() ([]string, []tag.Tag) {
	return c.authorNames, c.authorTags
}

// Dates returns one publication date per document with its "<docIdx>.0" tag.
func (c *Corpus) Dates() ([]string, []tag.Tag) {
	return c.dates, c.dateTags
}

// DocIdxs returns 0..Len()-1.
func (c *Corpus) DocIdxs() []uint32 {
	out := make([]uint32, len(c.docs))
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}
