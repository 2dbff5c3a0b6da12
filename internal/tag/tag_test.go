package tag

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	tg, err := Parse("12.3")
	require.NoError(t, err)
	assert.Equal(t, Tag{DocIdx: 12, SubIdx: 3}, tg)
	assert.Equal(t, "12.3", tg.String())
	assert.False(t, tg.IsTitle())
	assert.True(t, New(4, 0).IsTitle())
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "12", "a.1", "1.b", "1.-1"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestJSONUsesDottedForm(t *testing.T) {
	data, err := json.Marshal([]Tag{New(0, 0), New(7, 2)})
	require.NoError(t, err)
	assert.JSONEq(t, `["0.0","7.2"]`, string(data))

	var back []Tag
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Tag{New(0, 0), New(7, 2)}, back)
}

func TestDocs(t *testing.T) {
	tags := []Tag{New(3, 0), New(3, 1), New(1, 0), New(3, 2), New(2, 0)}
	assert.Equal(t, []uint32{3, 1, 2}, Docs(tags))
}
