package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/tag"
)

func sampleDocs() []Document {
	return []Document{
		{ID: "a", Title: "First", Summary: "One. Two.", Authors: []string{"Ada Lovelace", "C. Babbage"}, Published: "2020-01-01"},
		{ID: "b", Title: "Second", Summary: "Three", Authors: []string{"Alan Turing"}, Published: "2021-06-15"},
	}
}

func TestNewDerivesTags(t *testing.T) {
	c := New("test", sampleDocs())
	require.Equal(t, 2, c.Len())

	names, tags := c.Authors()
	assert.Equal(t, []string{"Ada Lovelace", "C. Babbage", "Alan Turing"}, names)
	assert.Equal(t, []tag.Tag{tag.New(0, 0), tag.New(0, 1), tag.New(1, 0)}, tags)

	dates, dateTags := c.Dates()
	assert.Equal(t, []string{"2020-01-01", "2021-06-15"}, dates)
	assert.Equal(t, []tag.Tag{tag.New(0, 0), tag.New(1, 0)}, dateTags)

	d, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), d.DocIdx)
	_, err = c.Get(2)
	require.Error(t, err)

	assert.Equal(t, []uint32{0, 1}, c.DocIdxs())
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("  We study graphs.   Are they hard?  Yes! Trailing words ")
	assert.Equal(t, []string{"We study graphs.", "Are they hard?", "Yes!", "Trailing words"}, got)
	assert.Nil(t, SplitSentences("   "))
}

func TestSplitSentencesKeepsAbbreviationsAndDecimals(t *testing.T) {
	got := SplitSentences("We reach 3.5 percent error, e.g. on MNIST. Smith et al. disagree.")
	assert.Equal(t, []string{"We reach 3.5 percent error, e.g. on MNIST.", "Smith et al. disagree."}, got)

	assert.Equal(t, []string{"See Fig. 2 for details."}, SplitSentences("See Fig. 2 for details."))
}

func TestSentencesPutsTitleFirst(t *testing.T) {
	got := Sentences(Document{Title: "A  title", Summary: "Body one. Body two."})
	assert.Equal(t, []string{"A title", "Body one.", "Body two."}, got)
}

func TestJSONLSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arxiv.jsonl")
	content := `{"id":"x1","title":"T1","summary":"S1","authors":["A B"],"published":"2020-01-01","catg_ids":["cs.DB"]}

{"id":"x2","title":"T2","summary":"S2","authors":[],"published":"2021-01-01","catg_ids":[]}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(context.Background(), "arxiv", JSONLSource{Path: path})
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	d, _ := c.Get(0)
	assert.Equal(t, "x1", d.ID)
	assert.Equal(t, []string{"cs.DB"}, d.CategoryIDs)
}

func TestJSONLSourceBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{not json}\n"), 0o644))
	_, err := JSONLSource{Path: path}.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.jsonl:1")
}

func TestPostgresSourceRejectsTableName(t *testing.T) {
	_, err := PostgresSource{Table: "documents; drop table x"}.Load(context.Background())
	require.Error(t, err)
}
