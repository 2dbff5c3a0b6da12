// Package indexer builds the offline artifacts a variant is resolved from:
// document indexes in the segment format, fitted vectorizers, document and
// sentence vector stores, the sentence-level BM25 index and k-means models.
// Everything is keyed by the corpus docIdx / sentIdx numbering.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/artifact"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/cluster"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/vectorizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/tag"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/variant"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/workerpool"
)

const (
	defaultEmbedBatch = 64
	defaultClusters   = 16
	defaultSeed       = 42
	transformChunk    = 256
)

// Options tune a build.
type Options struct {
	// MinDF drops vocabulary terms found in fewer documents.
	MinDF      int
	EmbedBatch int
	Clusters   int
	Seed       int64
}

func (o Options) withDefaults() Options {
	if o.MinDF <= 0 {
		o.MinDF = 1
	}
	if o.EmbedBatch <= 0 {
		o.EmbedBatch = defaultEmbedBatch
	}
	if o.Clusters <= 0 {
		o.Clusters = defaultClusters
	}
	if o.Seed == 0 {
		o.Seed = defaultSeed
	}
	return o
}

// Report lists what one Build wrote.
type Report struct {
	Variant string        `json:"variant"`
	Written []string      `json:"written"`
	Skipped []string      `json:"skipped"`
	Took    time.Duration `json:"took"`
}

// Builder writes artifacts for variants of one corpus. Artifacts shared
// between variants (the sentence store of an embedding family, the BM25
// index of a dataset) are written once per Builder.
type Builder struct {
	store     artifact.Store
	corpus    *corpus.Corpus
	embedders variant.EmbedderFactory
	pool      *workerpool.Pool
	opts      Options
	logger    *slog.Logger

	mu      sync.Mutex
	written map[string]struct{}
	table   *sentenceTable
	stores  map[string]*vector.SentenceStore
}

// New returns a Builder. embedders may be nil when only sparse variants are
// built; pool may be nil.
func New(store artifact.Store, c *corpus.Corpus, embedders variant.EmbedderFactory, pool *workerpool.Pool, opts Options) *Builder {
	return &Builder{
		store:     store,
		corpus:    c,
		embedders: embedders,
		pool:      pool,
		opts:      opts.withDefaults(),
		logger:    slog.Default().With("component", "indexer"),
		written:   make(map[string]struct{}),
		stores:    make(map[string]*vector.SentenceStore),
	}
}

// Build writes every artifact Resolve loads for v.
func (b *Builder) Build(ctx context.Context, v variant.Variant) (*Report, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if b.corpus.Len() == 0 {
		return nil, fmt.Errorf("building %s: %w: empty corpus", v.Name, apperrors.ErrInvalidInput)
	}
	start := time.Now()
	rep := &Report{Variant: v.Name}
	var repMu sync.Mutex
	note := func(key string, wrote bool) {
		repMu.Lock()
		defer repMu.Unlock()
		if wrote {
			rep.Written = append(rep.Written, key)
		} else {
			rep.Skipped = append(rep.Skipped, key)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if v.Sparse() {
		g.Go(func() error { return b.buildSparse(ctx, v, note) })
	} else {
		g.Go(func() error {
			store, err := b.sentenceStore(ctx, v, note)
			if err != nil {
				return err
			}
			if v.Has(variant.FilterClustered) {
				return b.once(ctx, v.ClustersKey(), note, func() (any, error) {
					return b.trainClusters(ctx, store)
				})
			}
			return nil
		})
	}
	if v.Has(variant.FilterBM25) {
		g.Go(func() error {
			return b.onceRaw(ctx, v.BM25Key(), note, func() ([]byte, error) {
				return segment.Encode(b.sentenceIndex())
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building %s: %w", v.Name, err)
	}
	rep.Took = time.Since(start)
	b.logger.Info("variant built",
		"variant", v.Name,
		"written", len(rep.Written),
		"skipped", len(rep.Skipped),
		"took", rep.Took,
	)
	return rep, nil
}

// BuildAll builds vs in order and stops at the first failure.
func (b *Builder) BuildAll(ctx context.Context, vs []variant.Variant) ([]*Report, error) {
	reports := make([]*Report, 0, len(vs))
	for _, v := range vs {
		rep, err := b.Build(ctx, v)
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (b *Builder) buildSparse(ctx context.Context, v variant.Variant, note func(string, bool)) error {
	tok, err := tokenizer.New(v.Preprocess, v.TwoGrams)
	if err != nil {
		return err
	}
	docs := b.corpus.Documents()
	tokens := make([][]tokenizer.Token, len(docs))
	terms := make([][]string, len(docs))
	for i, d := range docs {
		tokens[i] = tok.Tokenize(d.Title + " " + d.Summary)
		terms[i] = make([]string, len(tokens[i]))
		for j, t := range tokens[i] {
			terms[i][j] = t.Term
		}
	}

	vz, err := vectorizer.Fit(vectorizer.Weighting(v.Representation), terms, b.opts.MinDF)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.onceRaw(ctx, v.IndexKey(), note, func() ([]byte, error) {
			x := index.New(vz.Terms())
			for i, toks := range tokens {
				x.Add(uint32(i), toks)
			}
			return segment.Encode(x)
		})
	})
	g.Go(func() error {
		return b.once(ctx, v.VectorizerKey(), note, func() (any, error) { return vz, nil })
	})
	g.Go(func() error {
		return b.once(ctx, v.DocVectorsKey(), note, func() (any, error) {
			rows := make([]vector.Sparse, len(terms))
			if err := b.pool.Range(len(terms), transformChunk, func(lo, hi int) {
				for i := lo; i < hi; i++ {
					rows[i] = vz.Transform(terms[i])
				}
			}); err != nil {
				return nil, err
			}
			m := vector.NewMatrix(vector.KindSparse, vz.Dim())
			for _, row := range rows {
				if err := m.Append(row); err != nil {
					return nil, err
				}
			}
			return m, nil
		})
	})
	return g.Wait()
}

// sentenceTable is the corpus split into sentences, title first.
type sentenceTable struct {
	texts   []string
	tags    []tag.Tag
	offsets []int
}

func (b *Builder) sentences() *sentenceTable {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.table != nil {
		return b.table
	}
	t := &sentenceTable{offsets: make([]int, b.corpus.Len())}
	for i, d := range b.corpus.Documents() {
		t.offsets[i] = len(t.texts)
		for j, s := range corpus.Sentences(d) {
			t.texts = append(t.texts, s)
			t.tags = append(t.tags, tag.New(i, j))
		}
	}
	b.table = t
	return t
}

// sentenceIndex indexes naive single-word tokens per sentIdx.
func (b *Builder) sentenceIndex() *index.Index {
	t := b.sentences()
	tok := tokenizer.MustNew(tokenizer.ModeNaive, false)
	x := index.New(nil)
	for i, text := range t.texts {
		x.Add(uint32(i), tok.Tokenize(text))
	}
	return x
}

func (b *Builder) sentenceStore(ctx context.Context, v variant.Variant, note func(string, bool)) (*vector.SentenceStore, error) {
	key := v.SentencesKey()
	b.mu.Lock()
	cached, ok := b.stores[key]
	b.mu.Unlock()
	if ok {
		note(key, false)
		return cached, nil
	}
	if b.embedders == nil {
		return nil, fmt.Errorf("%w: no embedder configured for %s", apperrors.ErrUnavailable, v.Representation)
	}
	emb, err := b.embedders(v.Representation)
	if err != nil {
		return nil, err
	}

	t := b.sentences()
	store := &vector.SentenceStore{Tags: t.tags, Texts: t.texts, DocOffsets: t.offsets}
	for lo := 0; lo < len(t.texts); lo += b.opts.EmbedBatch {
		hi := min(lo+b.opts.EmbedBatch, len(t.texts))
		vecs, err := emb.EmbedDocuments(ctx, t.texts[lo:hi])
		if err != nil {
			return nil, fmt.Errorf("embedding sentences [%d,%d): %w", lo, hi, err)
		}
		if len(vecs) != hi-lo {
			return nil, fmt.Errorf("%w: embedder returned %d vectors for %d sentences", apperrors.ErrShapeMismatch, len(vecs), hi-lo)
		}
		for _, raw := range vecs {
			if store.Vectors.Kind == "" {
				store.Vectors = *vector.NewMatrix(vector.KindDense, len(raw))
			}
			if err := store.Vectors.Append(vector.Dense(raw)); err != nil {
				return nil, err
			}
		}
		b.logger.Debug("sentences embedded", "family", v.Representation, "done", hi, "total", len(t.texts))
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}
	if err := b.once(ctx, key, note, func() (any, error) { return store, nil }); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.stores[key] = store
	b.mu.Unlock()
	return store, nil
}

func (b *Builder) trainClusters(ctx context.Context, store *vector.SentenceStore) (*cluster.Model, error) {
	k := min(b.opts.Clusters, store.Len())
	return cluster.Train(ctx, store.Vectors.Dense, cluster.Options{K: k, Seed: b.opts.Seed})
}

// once encodes the value produced by fn as JSON under key unless this
// Builder already wrote key.
func (b *Builder) once(ctx context.Context, key string, note func(string, bool), fn func() (any, error)) error {
	if !b.claim(key) {
		note(key, false)
		return nil
	}
	v, err := fn()
	if err == nil {
		err = artifact.SaveJSON(ctx, b.store, key, v)
	}
	return b.settle(key, note, err)
}

func (b *Builder) onceRaw(ctx context.Context, key string, note func(string, bool), fn func() ([]byte, error)) error {
	if !b.claim(key) {
		note(key, false)
		return nil
	}
	data, err := fn()
	if err == nil {
		err = b.store.Put(ctx, key, data)
	}
	return b.settle(key, note, err)
}

func (b *Builder) claim(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.written[key]; ok {
		return false
	}
	b.written[key] = struct{}{}
	return true
}

func (b *Builder) settle(key string, note func(string, bool), err error) error {
	if err != nil {
		b.mu.Lock()
		delete(b.written, key)
		b.mu.Unlock()
		return fmt.Errorf("writing %s: %w", key, err)
	}
	b.logger.Info("artifact written", "key", key)
	note(key, true)
	return nil
}
