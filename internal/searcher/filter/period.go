package filter

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/tag"
)

// Period selects documents whose ISO publication date lies in an inclusive
// range. Dates compare lexicographically.
type Period struct {
	dates []string
	tags  []tag.Tag
}

// NewPeriod takes one date per tag, as produced by corpus.Dates.
func NewPeriod(dates []string, tags []tag.Tag) *Period {
	return &Period{dates: dates, tags: tags}
}

// All returns every document id covered by the date list.
func (f *Period) All() []uint32 {
	return tag.Docs(f.tags)
}

// Filter parses "from,to" with either side optional. A missing comma is read
// as "from,". Blank or malformed ranges select everything.
func (f *Period) Filter(period string) []uint32 {
	from, to, ok := ParsePeriod(period)
	if !ok {
		return f.All()
	}
	matched := make([]tag.Tag, 0, len(f.tags))
	for i, date := range f.dates {
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}
		matched = append(matched, f.tags[i])
	}
	return tag.Docs(matched)
}

// ParsePeriod splits a range into trimmed bounds. ok is false for blank text
// or more than one comma.
func ParsePeriod(period string) (from, to string, ok bool) {
	period = strings.TrimSpace(period)
	if period == "" {
		return "", "", false
	}
	if !strings.Contains(period, ",") {
		period += ","
	}
	parts := strings.Split(period, ",")
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}
