// Package tag defines the composite key that addresses a sub-entity of a
// document: the n-th author, or the n-th sentence (sentence 0 is the title).
package tag

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag addresses sub-entity SubIdx of document DocIdx.
type Tag struct {
	DocIdx uint32
	SubIdx uint32
}

// New returns the tag for the given document and sub-entity.
func New(doc, sub int) Tag {
	return Tag{DocIdx: uint32(doc), SubIdx: uint32(sub)}
}

// String formats the tag as "<docIdx>.<subIdx>".
func (t Tag) String() string {
	return strconv.FormatUint(uint64(t.DocIdx), 10) + "." + strconv.FormatUint(uint64(t.SubIdx), 10)
}

// IsTitle reports whether a sentence tag points at the document title.
func (t Tag) IsTitle() bool {
	return t.SubIdx == 0
}

// Parse decodes the dotted text form.
func Parse(s string) (Tag, error) {
	docPart, subPart, ok := strings.Cut(s, ".")
	if !ok {
		return Tag{}, fmt.Errorf("tag %q: missing separator", s)
	}
	doc, err := strconv.ParseUint(docPart, 10, 32)
	if err != nil {
		return Tag{}, fmt.Errorf("tag %q: doc index: %w", s, err)
	}
	sub, err := strconv.ParseUint(subPart, 10, 32)
	if err != nil {
		return Tag{}, fmt.Errorf("tag %q: sub index: %w", s, err)
	}
	return Tag{DocIdx: uint32(doc), SubIdx: uint32(sub)}, nil
}

// MarshalText implements encoding.TextMarshaler so tags serialize in their
// dotted form inside artifact files.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Docs returns the distinct document indexes of tags in first-seen order.
func Docs(tags []Tag) []uint32 {
	seen := make(map[uint32]struct{}, len(tags))
	out := make([]uint32, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t.DocIdx]; ok {
			continue
		}
		seen[t.DocIdx] = struct{}{}
		out = append(out, t.DocIdx)
	}
	return out
}
