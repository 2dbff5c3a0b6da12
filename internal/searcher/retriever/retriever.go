// Package retriever composes the metadata and term filters into one
// candidate set per query. Metadata filters are linear scans with no index
// cost, so they run first and can spare the term search entirely.
package retriever

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/tag"
)

// PeriodFilter maps a "from,to" range to document ids.
type PeriodFilter interface {
	Filter(period string) []uint32
	All() []uint32
}

// NamesFilter maps author names to the ids of documents matching all of
// them.
type NamesFilter interface {
	Filter(names []string) []uint32
	All() []uint32
}

// Request carries the optional constraints of one query. A nil Analysis
// means no free-text query was given.
type Request struct {
	Analysis *query.Analysis
	Names    []string
	Period   string
}

// Candidates is a retrieval result. IDs are document or sentence indexes
// according to Granularity, never mixed.
type Candidates struct {
	IDs         []uint32
	Granularity query.Granularity
}

// Empty reports whether no candidate survived.
func (c Candidates) Empty() bool {
	return len(c.IDs) == 0
}

// Retriever is immutable after construction and safe for concurrent use.
type Retriever struct {
	period PeriodFilter
	names  NamesFilter
	terms  filter.TermFilter
	// sentence tags, indexed by sentIdx; required for sentence-granular
	// term filters
	sentenceTags []tag.Tag
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithMetadata enables period and names filtering. Without it the retriever
// is terms-only.
func WithMetadata(period PeriodFilter, names NamesFilter) Option {
	return func(r *Retriever) {
		r.period = period
		r.names = names
	}
}

// WithSentenceTags supplies the sentIdx -> tag table.
func WithSentenceTags(tags []tag.Tag) Option {
	return func(r *Retriever) {
		r.sentenceTags = tags
	}
}

// New builds a retriever around terms.
func New(terms filter.TermFilter, opts ...Option) (*Retriever, error) {
	if terms == nil {
		return nil, fmt.Errorf("retriever needs a term filter")
	}
	r := &Retriever{terms: terms}
	for _, opt := range opts {
		opt(r)
	}
	if (r.period == nil) != (r.names == nil) {
		return nil, fmt.Errorf("period and names filters must be set together")
	}
	if terms.Granularity() == query.Sentences && r.period != nil && len(r.sentenceTags) == 0 {
		return nil, fmt.Errorf("sentence-granular retrieval with metadata needs sentence tags")
	}
	return r, nil
}

// HasMetadata reports whether period and names constraints are honoured.
func (r *Retriever) HasMetadata() bool {
	return r.period != nil
}

// Granularity of the term filter.
func (r *Retriever) Granularity() query.Granularity {
	return r.terms.Granularity()
}

// Retrieve evaluates period, then names, then terms, returning as soon as a
// stage leaves nothing. Without a query the metadata result is returned as
// documents. When the term filters match nothing, the metadata result is
// returned instead.
func (r *Retriever) Retrieve(req Request) (Candidates, *Trace, error) {
	tr := &Trace{}
	if !r.HasMetadata() {
		return r.termsOnly(req, tr)
	}

	var periodIDs []uint32
	if req.Period == "" {
		periodIDs = r.period.All()
	} else {
		periodIDs = r.period.Filter(req.Period)
	}
	tr.record(StagePeriod, len(periodIDs))
	if len(periodIDs) == 0 {
		return docs(nil), tr, nil
	}

	var nameIDs []uint32
	if len(req.Names) == 0 {
		nameIDs = r.names.All()
	} else {
		nameIDs = r.names.Filter(req.Names)
	}
	tr.record(StageNames, len(nameIDs))
	if len(nameIDs) == 0 {
		return docs(nil), tr, nil
	}

	metadata := query.Intersect(periodIDs, query.NewSet(nameIDs))
	tr.record(StageMetadata, len(metadata))
	if len(metadata) == 0 || req.Analysis == nil {
		return docs(metadata), tr, nil
	}

	termIDs, err := r.terms.Filter(req.Analysis)
	if err != nil {
		return Candidates{}, tr, fmt.Errorf("term filter: %w", err)
	}
	tr.record(StageTerms, len(termIDs))
	if len(termIDs) == 0 {
		tr.Fallback = true
		return docs(metadata), tr, nil
	}

	allowed := query.NewSet(metadata)
	if r.terms.Granularity() == query.Documents {
		result := query.Intersect(termIDs, allowed)
		tr.record(StageCombined, len(result))
		return docs(result), tr, nil
	}

	result := make([]uint32, 0, len(termIDs))
	for _, sent := range termIDs {
		if int(sent) >= len(r.sentenceTags) {
			return Candidates{}, tr, fmt.Errorf("sentence %d outside tag table of %d", sent, len(r.sentenceTags))
		}
		if allowed.Has(r.sentenceTags[sent].DocIdx) {
			result = append(result, sent)
		}
	}
	tr.record(StageCombined, len(result))
	return Candidates{IDs: result, Granularity: query.Sentences}, tr, nil
}

func (r *Retriever) termsOnly(req Request, tr *Trace) (Candidates, *Trace, error) {
	g := r.terms.Granularity()
	if req.Analysis == nil {
		return Candidates{Granularity: g}, tr, nil
	}
	ids, err := r.terms.Filter(req.Analysis)
	if err != nil {
		return Candidates{}, tr, fmt.Errorf("term filter: %w", err)
	}
	tr.record(StageTerms, len(ids))
	return Candidates{IDs: ids, Granularity: g}, tr, nil
}

func docs(ids []uint32) Candidates {
	return Candidates{IDs: ids, Granularity: query.Documents}
}
