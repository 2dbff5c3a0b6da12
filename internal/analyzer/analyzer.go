// Package analyzer turns raw query text into the token list used by the
// term filters and the vector used for ranking.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/embedder"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/vectorizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
)

// Analyzer produces one immutable Analysis per query.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*query.Analysis, error)
}

// Sparse vectorises the query with the fitted count or tf-idf vectorizer.
type Sparse struct {
	tokenizer  *tokenizer.Tokenizer
	vectorizer *vectorizer.Vectorizer
}

func NewSparse(tok *tokenizer.Tokenizer, vec *vectorizer.Vectorizer) *Sparse {
	return &Sparse{tokenizer: tok, vectorizer: vec}
}

func (a *Sparse) Analyze(_ context.Context, text string) (*query.Analysis, error) {
	terms := a.tokenizer.Terms(text)
	return &query.Analysis{
		Query:  text,
		Tokens: terms,
		Vector: a.vectorizer.Transform(terms),
	}, nil
}

// Dense embeds the query text with its case kept and whitespace collapsed.
// Tokens still come from the tokenizer because BM25 filtering runs over them.
type Dense struct {
	tokenizer *tokenizer.Tokenizer
	embedder  embedder.Embedder
	dim       int
}

// NewDense checks every embedding against dim; dim 0 skips the check.
func NewDense(tok *tokenizer.Tokenizer, emb embedder.Embedder, dim int) *Dense {
	return &Dense{tokenizer: tok, embedder: emb, dim: dim}
}

func (a *Dense) Analyze(ctx context.Context, text string) (*query.Analysis, error) {
	v, err := a.embedder.EmbedQuery(ctx, strings.Join(strings.Fields(text), " "))
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if a.dim > 0 && len(v) != a.dim {
		return nil, fmt.Errorf("%w: query embedding has %d dims, store has %d", apperrors.ErrShapeMismatch, len(v), a.dim)
	}
	return &query.Analysis{
		Query:  text,
		Tokens: a.tokenizer.Terms(text),
		Vector: vector.Dense(v),
	}, nil
}
