package filter

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/tag"
)

// Name matches one author name against the stored author list. Each stored
// name is kept in its normalised, space-padded form so that subname lookups
// never cross word boundaries.
type Name struct {
	names []string
	tags  []tag.Tag
}

// NewName normalises names once. tags[i] addresses names[i].
func NewName(names []string, tags []tag.Tag) *Name {
	normalised := make([]string, len(names))
	for i, n := range names {
		normalised[i] = normaliseName(n)
	}
	return &Name{names: normalised, tags: tags}
}

// Tags returns the author tags.
func (f *Name) Tags() []tag.Tag {
	return f.tags
}

// Match returns the author tags matching name. Subnames are tried surname
// first (longer parts in reverse order, then initials); each step narrows the
// accumulated result unless that would empty it.
func (f *Name) Match(name string) []tag.Tag {
	var final []tag.Tag
	for _, sub := range searchOrder(name) {
		needle := " " + sub + " "
		var result []tag.Tag
		for i, stored := range f.names {
			if strings.Contains(stored, needle) {
				result = append(result, f.tags[i])
			}
		}
		final = narrow(final, result)
	}
	return final
}

// narrow is the fallback intersection step.
func narrow(acc, next []tag.Tag) []tag.Tag {
	if len(acc) == 0 {
		return next
	}
	in := make(map[tag.Tag]struct{}, len(next))
	for _, t := range next {
		in[t] = struct{}{}
	}
	var common []tag.Tag
	for _, t := range acc {
		if _, ok := in[t]; ok {
			common = append(common, t)
		}
	}
	if len(common) > 0 {
		return common
	}
	return acc
}

func normaliseName(name string) string {
	r := strings.NewReplacer(".", " ", "-", " ")
	return " " + strings.ToLower(r.Replace(name)) + " "
}

func searchOrder(name string) []string {
	var long, initials []string
	for _, part := range strings.Split(normaliseName(name), " ") {
		switch n := len([]rune(part)); {
		case n > 1:
			long = append(long, part)
		case n == 1:
			initials = append(initials, part)
		}
	}
	for i, j := 0, len(long)-1; i < j; i, j = i+1, j-1 {
		long[i], long[j] = long[j], long[i]
	}
	return append(long, initials...)
}

// Names requires every given name to match at least one author of a
// document and returns the qualifying document ids.
type Names struct {
	name *Name
}

func NewNames(names []string, tags []tag.Tag) *Names {
	return &Names{name: NewName(names, tags)}
}

// All returns every document that has at least one author.
func (f *Names) All() []uint32 {
	return tag.Docs(f.name.Tags())
}

// Filter intersects the per-name document sets. The result keeps the order
// in which the first name matched.
func (f *Names) Filter(names []string) []uint32 {
	if len(names) == 0 {
		return f.All()
	}
	result := tag.Docs(f.name.Match(names[0]))
	for _, n := range names[1:] {
		if len(result) == 0 {
			break
		}
		docs := tag.Docs(f.name.Match(n))
		keep := make(map[uint32]struct{}, len(docs))
		for _, d := range docs {
			keep[d] = struct{}{}
		}
		filtered := result[:0]
		for _, d := range result {
			if _, ok := keep[d]; ok {
				filtered = append(filtered, d)
			}
		}
		result = filtered
	}
	return result
}
