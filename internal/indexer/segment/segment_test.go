package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
)

func sampleIndex() *index.Index {
	tk := tokenizer.MustNew(tokenizer.ModeNaive, false)
	x := index.New([]string{"never"})
	x.Add(0, tk.Tokenize("sparse retrieval models"))
	x.Add(1, tk.Tokenize("dense retrieval"))
	return x
}

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(sampleIndex())
	require.NoError(t, err)

	header, err := ReadHeader(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), header.TermCount)
	assert.Equal(t, uint32(2), header.IDCount)

	x, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, x.Has("never"))
	assert.Equal(t, 2, x.DocFreq("retrieval"))
	assert.Equal(t, 3, x.Length(0))
	docs, ok := x.Postings("retrieval")
	require.True(t, ok)
	assert.Equal(t, []uint32{1}, docs[0])
}

func TestDecodeRejectsCorruption(t *testing.T) {
	data, err := Encode(sampleIndex())
	require.NoError(t, err)

	bad := append([]byte(nil), data...)
	bad[0] ^= 0xFF
	_, err = Decode(bad)
	require.Error(t, err)

	header, err := ReadHeader(data)
	require.NoError(t, err)
	flipped := append([]byte(nil), data...)
	flipped[header.DictOffset+1] ^= 0x01
	_, err = Decode(flipped)
	require.Error(t, err)

	_, err = Decode(data[:10])
	require.Error(t, err)
}
