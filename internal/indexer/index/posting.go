package index

// Posting lists the token positions of one term inside one id (a docIdx or
// a sentIdx, depending on the index granularity).
type Posting struct {
	ID        uint32   `json:"i"`
	Positions []uint32 `json:"p"`
}

// Frequency is the term frequency inside the id.
func (p Posting) Frequency() int {
	return len(p.Positions)
}

type PostingList []Posting

// TermEntry is one dictionary row of a serialised index. Vocabulary terms
// with no occurrences have an empty posting list.
type TermEntry struct {
	Term     string
	Postings PostingList
}
