package variant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/artifact"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/embedder"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/cluster"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/vectorizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/retriever"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/summarizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/workerpool"
)

// EmbedderFactory returns the embedder for an embedding family.
type EmbedderFactory func(family string) (embedder.Embedder, error)

// Deps are the shared resources components are built from.
type Deps struct {
	Cache        *artifact.Cache
	Corpus       *corpus.Corpus
	Embedders    EmbedderFactory
	Pool         *workerpool.Pool
	SummaryLimit int
}

// Components is a resolved variant. Every field is immutable and safe for
// concurrent queries.
type Components struct {
	Variant    Variant
	Corpus     *corpus.Corpus
	Analyzer   analyzer.Analyzer
	Retriever  *retriever.Retriever
	Ranker     ranker.Ranker
	Summarizer summarizer.Summarizer
}

// artifacts holds whatever a variant loads.
type artifacts struct {
	index      *index.Index
	vectorizer *vectorizer.Vectorizer
	docVectors *vector.Matrix
	sentences  *vector.SentenceStore
	bm25       *index.Index
	clusters   *cluster.Model
}

// Resolve loads the variant's artifacts in parallel and wires its
// components. Missing or inconsistent artifacts are fatal.
func Resolve(ctx context.Context, v Variant, deps Deps) (*Components, error) {
	if deps.Cache == nil || deps.Corpus == nil {
		return nil, fmt.Errorf("resolving %s: cache and corpus are required", v.Name)
	}
	logger := slog.Default().With("component", "variant", "variant", v.Name)
	start := time.Now()

	a, err := load(ctx, v, deps.Cache)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", v.Name, err)
	}
	if err := a.check(v, deps.Corpus); err != nil {
		return nil, fmt.Errorf("resolving %s: %w", v.Name, err)
	}

	tok, err := tokenizer.New(v.Preprocess, v.TwoGrams)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", v.Name, err)
	}

	c := &Components{Variant: v, Corpus: deps.Corpus}
	if v.Sparse() {
		c.Analyzer = analyzer.NewSparse(tok, a.vectorizer)
		c.Ranker = ranker.NewDocument(a.docVectors, deps.Pool)
	} else {
		if deps.Embedders == nil {
			return nil, fmt.Errorf("resolving %s: %w: no embedder configured", v.Name, apperrors.ErrUnavailable)
		}
		emb, err := deps.Embedders(v.Representation)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", v.Name, err)
		}
		c.Analyzer = analyzer.NewDense(tok, emb, a.sentences.Vectors.Dim)
		c.Ranker = ranker.NewSentence(a.sentences, deps.Pool)
	}

	terms, err := termFilter(v, a, deps)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", v.Name, err)
	}
	var opts []retriever.Option
	if v.Metadata {
		opts = append(opts, retriever.WithMetadata(
			filter.NewPeriod(deps.Corpus.Dates()),
			filter.NewNames(deps.Corpus.Authors()),
		))
	}
	if a.sentences != nil {
		opts = append(opts, retriever.WithSentenceTags(a.sentences.Tags))
	}
	if c.Retriever, err = retriever.New(terms, opts...); err != nil {
		return nil, fmt.Errorf("resolving %s: %w", v.Name, err)
	}

	switch v.Summarizer {
	case SummarizerSimilarity:
		c.Summarizer = summarizer.NewSimilarity(deps.Corpus, a.sentences, deps.SummaryLimit)
	default:
		c.Summarizer = summarizer.NewNaive(deps.Corpus, deps.SummaryLimit)
	}

	logger.Info("variant resolved", "granularity", v.Granularity(), "took", time.Since(start))
	return c, nil
}

func load(ctx context.Context, v Variant, cache *artifact.Cache) (*artifacts, error) {
	a := &artifacts{}
	g, ctx := errgroup.WithContext(ctx)
	if v.Sparse() {
		g.Go(func() (err error) {
			a.index, err = artifact.Load(ctx, cache, artifact.KindIndex, v.IndexKey(), segment.Decode)
			return err
		})
		g.Go(func() (err error) {
			a.vectorizer, err = artifact.LoadJSON[vectorizer.Vectorizer](ctx, cache, artifact.KindVectorizer, v.VectorizerKey())
			return err
		})
		g.Go(func() (err error) {
			a.docVectors, err = artifact.LoadJSON[vector.Matrix](ctx, cache, artifact.KindVectors, v.DocVectorsKey())
			return err
		})
	} else {
		g.Go(func() (err error) {
			a.sentences, err = artifact.LoadJSON[vector.SentenceStore](ctx, cache, artifact.KindSentences, v.SentencesKey())
			return err
		})
	}
	if v.Has(FilterBM25) {
		g.Go(func() (err error) {
			a.bm25, err = artifact.Load(ctx, cache, artifact.KindIndex, v.BM25Key(), segment.Decode)
			return err
		})
	}
	if v.Has(FilterClustered) {
		g.Go(func() (err error) {
			a.clusters, err = artifact.LoadJSON[cluster.Model](ctx, cache, artifact.KindClusters, v.ClustersKey())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return a, nil
}

// check verifies every artifact uses the corpus numbering.
func (a *artifacts) check(v Variant, c *corpus.Corpus) error {
	if a.vectorizer != nil {
		if err := a.vectorizer.Validate(); err != nil {
			return err
		}
	}
	if a.docVectors != nil {
		if a.docVectors.Len() != c.Len() {
			return fmt.Errorf("%w: %d document vectors for %d documents", apperrors.ErrShapeMismatch, a.docVectors.Len(), c.Len())
		}
		if a.vectorizer != nil && a.docVectors.Dim != a.vectorizer.Dim() {
			return fmt.Errorf("%w: document vectors have %d dims, vectorizer %d", apperrors.ErrShapeMismatch, a.docVectors.Dim, a.vectorizer.Dim())
		}
	}
	if a.sentences != nil {
		if err := a.sentences.Validate(); err != nil {
			return err
		}
		if len(a.sentences.DocOffsets) != c.Len() {
			return fmt.Errorf("%w: sentence offsets for %d documents, corpus has %d", apperrors.ErrShapeMismatch, len(a.sentences.DocOffsets), c.Len())
		}
		if v.Has(FilterANN) && a.sentences.Vectors.Kind != vector.KindDense {
			return fmt.Errorf("ann filter needs dense sentence vectors, got %s", a.sentences.Vectors.Kind)
		}
	}
	if a.clusters != nil && a.sentences != nil && len(a.clusters.Labels) != a.sentences.Len() {
		return fmt.Errorf("%w: %d cluster labels for %d sentences", apperrors.ErrShapeMismatch, len(a.clusters.Labels), a.sentences.Len())
	}
	if a.bm25 != nil && a.sentences != nil && a.bm25.Size() > a.sentences.Len() {
		return fmt.Errorf("%w: bm25 index covers %d sentences, store has %d", apperrors.ErrShapeMismatch, a.bm25.Size(), a.sentences.Len())
	}
	return nil
}

func termFilter(v Variant, a *artifacts, deps Deps) (filter.TermFilter, error) {
	var filters []filter.TermFilter
	for _, kind := range v.Filters {
		switch kind {
		case FilterOccurred:
			filters = append(filters, filter.NewOccurred(a.index, v.OccurredThreshold, query.Documents))
		case FilterWeighted:
			filters = append(filters, filter.NewWeighted(a.index, deps.Corpus.Len(), filter.CandidateLimit, query.Documents))
		case FilterBM25:
			filters = append(filters, filter.NewBM25(a.bm25, filter.CandidateLimit))
		case FilterClustered:
			filters = append(filters, filter.NewClustered(a.clusters))
		case FilterANN:
			f, err := filter.NewANN(a.sentences.Vectors.Dense, filter.CandidateLimit, deps.Pool)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		}
	}
	if len(filters) == 1 {
		return filters[0], nil
	}
	return filter.NewUnion(filters...)
}
