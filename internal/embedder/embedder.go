// Package embedder produces dense sentence and query embeddings from an
// OpenAI-compatible endpoint through langchaingo, behind a circuit breaker.
package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/resilience"
)

// Embedder is the subset of embeddings.Embedder the engine needs.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// New connects to the endpoint for the given embedding family ("jina",
// "bert", ...). The model name is resolved through cfg.Models.
func New(cfg config.EmbedderConfig, family string) (embeddings.Embedder, error) {
	token := cfg.Token
	if token == "" {
		// local OpenAI-compatible servers accept any token
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Models.Resolve(family)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating embeddings client for %s: %w", family, err)
	}
	opts := []embeddings.Option{embeddings.WithStripNewLines(true)}
	if cfg.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	e, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating embedder for %s: %w", family, err)
	}
	return e, nil
}

// Guarded wraps an Embedder with a per-call timeout and a circuit breaker.
// Failures surface as ErrUnavailable and are never retried.
type Guarded struct {
	inner   Embedder
	breaker *resilience.CircuitBreaker
	timeout time.Duration
	logger  *slog.Logger
}

// NewGuarded wraps inner. m may be nil.
func NewGuarded(inner Embedder, family string, cfg config.EmbedderConfig, m *metrics.Metrics) *Guarded {
	cbCfg := resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.FailureThreshold,
		ResetTimeout:     cfg.ResetTimeout,
	}
	if m != nil {
		cbCfg.OnStateChange = func(name string, to resilience.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	}
	return &Guarded{
		inner:   inner,
		breaker: resilience.NewCircuitBreaker("embedder-"+family, cbCfg),
		timeout: cfg.Timeout,
		logger:  slog.Default().With("component", "embedder", "family", family),
	}
}

// State exposes the breaker state for health checks.
func (g *Guarded) State() resilience.State {
	return g.breaker.GetState()
}

func (g *Guarded) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := g.call(ctx, "embed-query", func(ctx context.Context) error {
		v, err := g.inner.EmbedQuery(ctx, text)
		if err != nil {
			return err
		}
		if len(v) == 0 {
			return fmt.Errorf("endpoint returned an empty embedding")
		}
		out = v
		return nil
	})
	return out, err
}

func (g *Guarded) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := g.call(ctx, "embed-documents", func(ctx context.Context) error {
		v, err := g.inner.EmbedDocuments(ctx, texts)
		if err != nil {
			return err
		}
		if len(v) != len(texts) {
			return fmt.Errorf("endpoint returned %d embeddings for %d texts", len(v), len(texts))
		}
		out = v
		return nil
	})
	return out, err
}

func (g *Guarded) call(ctx context.Context, op string, fn func(context.Context) error) error {
	err := g.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, g.timeout, op, fn)
	})
	if err != nil {
		g.logger.Warn("embedding call failed", "op", op, "error", err)
		return fmt.Errorf("%w: %s: %w", apperrors.ErrUnavailable, op, err)
	}
	return nil
}
