// Package bootstrap holds the startup path shared by the binaries: opening
// the artifact store and corpus source, building guarded embedders, and
// resolving a variant into a ready engine.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/artifact"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/embedder"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/variant"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/tracing"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/workerpool"
)

// Runtime owns the long-lived resources of a process. Close releases them.
type Runtime struct {
	Config   *config.Config
	Metrics  *metrics.Metrics
	Registry *variant.Registry
	Store    artifact.Store
	Cache    *artifact.Cache
	Pool     *workerpool.Pool
	// Postgres is nil unless documents come from the database.
	Postgres *postgres.Client

	logger *slog.Logger

	mu        sync.Mutex
	corpora   map[string]*corpus.Corpus
	embedders map[string]*embedder.Guarded
}

// Open prepares a runtime from cfg. m may be nil.
func Open(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Runtime, error) {
	reg, err := variant.Load(cfg.Engine.VariantsFile)
	if err != nil {
		return nil, err
	}
	store, err := artifact.Open(cfg.Engine)
	if err != nil {
		return nil, err
	}
	pool, err := workerpool.New(cfg.Engine.Workers)
	if err != nil {
		store.Close()
		return nil, err
	}
	r := &Runtime{
		Config:    cfg,
		Metrics:   m,
		Registry:  reg,
		Store:     store,
		Cache:     artifact.NewCache(store, m),
		Pool:      pool,
		logger:    slog.Default().With("component", "bootstrap"),
		corpora:   make(map[string]*corpus.Corpus),
		embedders: make(map[string]*embedder.Guarded),
	}
	if cfg.Engine.CorpusSource == "postgres" {
		if r.Postgres, err = postgres.New(ctx, cfg.Postgres); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

// Corpus loads the documents of dataset once per runtime.
func (r *Runtime) Corpus(ctx context.Context, dataset string) (*corpus.Corpus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.corpora[dataset]; ok {
		return c, nil
	}
	c, err := corpus.Load(ctx, dataset, r.source(dataset))
	if err != nil {
		return nil, err
	}
	r.logger.Info("corpus loaded", "dataset", dataset, "documents", c.Len(), "source", r.Config.Engine.CorpusSource)
	r.corpora[dataset] = c
	return c, nil
}

// source picks <corpusPath>/<dataset>.jsonl, or the configured table, which
// must hold the dataset being served.
func (r *Runtime) source(dataset string) corpus.Source {
	if r.Postgres != nil {
		return corpus.PostgresSource{DB: r.Postgres.DB, Table: r.Postgres.Table()}
	}
	return corpus.JSONLSource{Path: filepath.Join(r.Config.Engine.CorpusPath, dataset+".jsonl")}
}

// Embedder returns the guarded embedder of an embedding family. It
// satisfies variant.EmbedderFactory.
func (r *Runtime) Embedder(family string) (embedder.Embedder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.embedders[family]; ok {
		return g, nil
	}
	inner, err := embedder.New(r.Config.Embedder, family)
	if err != nil {
		return nil, err
	}
	g := embedder.NewGuarded(inner, family, r.Config.Embedder, r.Metrics)
	r.embedders[family] = g
	return g, nil
}

// Embedders lists the embedders created so far, keyed by family.
func (r *Runtime) Embedders() map[string]*embedder.Guarded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*embedder.Guarded, len(r.embedders))
	for k, v := range r.embedders {
		out[k] = v
	}
	return out
}

// Engine resolves the named variant against its corpus and artifacts.
func (r *Runtime) Engine(ctx context.Context, name string) (*engine.Engine, error) {
	v, err := r.Registry.Get(name)
	if err != nil {
		return nil, err
	}
	c, err := r.Corpus(ctx, v.Dataset)
	if err != nil {
		return nil, err
	}
	comps, err := variant.Resolve(ctx, v, variant.Deps{
		Cache:        r.Cache,
		Corpus:       c,
		Embedders:    r.Embedder,
		Pool:         r.Pool,
		SummaryLimit: r.Config.Engine.SummaryLimit,
	})
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithTopK(r.Config.Engine.TopK),
		engine.WithSummaryLimit(r.Config.Engine.SummaryLimit),
		engine.WithTracer(tracing.New(r.Config.Tracing)),
	}
	if r.Metrics != nil {
		opts = append(opts, engine.WithMetrics(r.Metrics))
	}
	return engine.New(comps, opts...)
}

// Build writes the artifacts of the named variants, grouping them by
// dataset so each corpus is split and embedded once.
func (r *Runtime) Build(ctx context.Context, names []string, opts indexer.Options) ([]*indexer.Report, error) {
	byDataset := make(map[string][]variant.Variant)
	var order []string
	for _, name := range names {
		v, err := r.Registry.Get(name)
		if err != nil {
			return nil, err
		}
		if _, ok := byDataset[v.Dataset]; !ok {
			order = append(order, v.Dataset)
		}
		byDataset[v.Dataset] = append(byDataset[v.Dataset], v)
	}

	var reports []*indexer.Report
	for _, dataset := range order {
		c, err := r.Corpus(ctx, dataset)
		if err != nil {
			return reports, err
		}
		b := indexer.New(r.Store, c, r.Embedder, r.Pool, opts)
		reps, err := b.BuildAll(ctx, byDataset[dataset])
		reports = append(reports, reps...)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (r *Runtime) Close() error {
	var errs []error
	if r.Pool != nil {
		r.Pool.Release()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing artifact store: %w", err))
		}
	}
	if r.Postgres != nil {
		if err := r.Postgres.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing postgres: %w", err))
		}
	}
	return errors.Join(errs...)
}
