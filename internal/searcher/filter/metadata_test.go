package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/tag"
)

func TestPeriodInclusiveRange(t *testing.T) {
	f := NewPeriod(
		[]string{"2020-01-01", "2021-06-15", "2022-12-31"},
		[]tag.Tag{tag.New(0, 0), tag.New(1, 0), tag.New(2, 0)},
	)

	assert.Equal(t, []uint32{1, 2}, f.Filter("2021-01-01,2022-12-31"))
	assert.Equal(t, []uint32{1, 2}, f.Filter("2021-01-01"))
	assert.Equal(t, []uint32{0, 1}, f.Filter(",2021-06-15"))
	assert.Equal(t, []uint32{0, 1, 2}, f.Filter("  "))
	assert.Equal(t, []uint32{0, 1, 2}, f.Filter("2020,2021,2022"))
	assert.Empty(t, f.Filter("2030-01-01,"))
}

func TestParsePeriod(t *testing.T) {
	from, to, ok := ParsePeriod(" 2020-01-01 , 2020-02-01 ")
	assert.True(t, ok)
	assert.Equal(t, "2020-01-01", from)
	assert.Equal(t, "2020-02-01", to)

	_, _, ok = ParsePeriod("")
	assert.False(t, ok)
}

func authorFixture() ([]string, []tag.Tag) {
	names := []string{
		"Michael I. Jordan",
		"Yann LeCun",
		"Michael Jordan",
		"Jordan Smith",
		"Jean-Pierre Dupont",
		"M. Taylor",
		"Anna Taylor",
	}
	tags := []tag.Tag{
		tag.New(0, 0), tag.New(0, 1), tag.New(1, 0), tag.New(2, 0),
		tag.New(3, 0), tag.New(4, 0), tag.New(4, 1),
	}
	return names, tags
}

func TestSearchOrderSurnameFirstThenInitials(t *testing.T) {
	assert.Equal(t, []string{"jordan", "michael", "i"}, searchOrder("Michael I. Jordan"))
	assert.Equal(t, []string{"dupont", "pierre", "jean"}, searchOrder("Jean-Pierre Dupont"))
}

func TestNameFallbackIntersection(t *testing.T) {
	f := NewName(authorFixture())

	// "jordan" matches 0.0, 1.0, 2.0; "michael" narrows to 0.0, 1.0; the
	// initial "i" narrows to 0.0
	assert.Equal(t, []tag.Tag{tag.New(0, 0)}, f.Match("michael i jordan"))

	// an unmatched part keeps the previous result
	assert.Equal(t, []tag.Tag{tag.New(0, 0), tag.New(1, 0)}, f.Match("michael zz jordan"))

	// unknown surname falls through to the next part
	assert.Equal(t, []tag.Tag{tag.New(3, 0)}, f.Match("jean qqq"))

	assert.Empty(t, f.Match("nobody"))
}

func TestNameResultIsSubsetOfSurnameResult(t *testing.T) {
	f := NewName(authorFixture())
	for _, name := range []string{"michael jordan", "a taylor", "m taylor", "jean-pierre dupont"} {
		order := searchOrder(name)
		surname := f.Match(order[0])
		full := f.Match(name)
		assert.Subset(t, surname, full, name)
		if len(surname) > 0 {
			assert.NotEmpty(t, full, name)
		}
	}
}

func TestNameDoesNotMatchAcrossWords(t *testing.T) {
	f := NewName(authorFixture())
	assert.Empty(t, f.Match("tay"))
}

func TestNamesRequiresAllNames(t *testing.T) {
	f := NewNames(authorFixture())

	assert.Equal(t, []uint32{0}, f.Filter([]string{"jordan", "lecun"}))
	assert.Equal(t, []uint32{4}, f.Filter([]string{"taylor"}))
	assert.Empty(t, f.Filter([]string{"lecun", "dupont"}))
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, f.Filter(nil))
}
