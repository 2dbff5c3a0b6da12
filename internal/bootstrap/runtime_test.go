package bootstrap

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
)

func writeCorpus(t *testing.T, dir string) {
	t.Helper()
	docs := []corpus.Document{
		{ID: "a", Title: "Sparse retrieval with inverted indexes", Summary: "Inverted indexes map terms to documents.", Authors: []string{"Ada Lovelace"}, Published: "2022-05-01"},
		{ID: "b", Title: "Protein folding", Summary: "Structures of proteins are predicted.", Authors: []string{"Rosalind Franklin"}, Published: "2022-06-01"},
	}
	f, err := os.Create(filepath.Join(dir, "arxiv.jsonl"))
	require.NoError(t, err)
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, d := range docs {
		require.NoError(t, enc.Encode(d))
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Engine.ArtifactsDir = t.TempDir()
	cfg.Engine.CorpusPath = t.TempDir()
	cfg.Engine.Backend = "fs"
	cfg.Engine.CorpusSource = "jsonl"
	cfg.Engine.VariantsFile = ""
	writeCorpus(t, cfg.Engine.CorpusPath)
	return cfg
}

func TestBuildThenServe(t *testing.T) {
	ctx := context.Background()
	rt, err := Open(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer rt.Close()

	reports, err := rt.Build(ctx, []string{"arxiv-lemm-single-tfidf", "arxiv-lemm-2gram-tfidf"}, indexer.Options{})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	e, err := rt.Engine(ctx, "arxiv-lemm-2gram-tfidf")
	require.NoError(t, err)
	resp, err := e.Search(ctx, engine.Request{Query: "inverted indexes"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "a", resp.Results[0].Summary.ID)
}

func TestCorpusIsLoadedOnce(t *testing.T) {
	ctx := context.Background()
	rt, err := Open(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer rt.Close()

	first, err := rt.Corpus(ctx, "arxiv")
	require.NoError(t, err)
	second, err := rt.Corpus(ctx, "arxiv")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 2, first.Len())
}

func TestEngineUnknownVariant(t *testing.T) {
	ctx := context.Background()
	rt, err := Open(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Engine(ctx, "arxiv-nope")
	assert.ErrorIs(t, err, apperrors.ErrUnknownVariant)
}

func TestEngineMissingArtifacts(t *testing.T) {
	ctx := context.Background()
	rt, err := Open(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Engine(ctx, "arxiv-stemm-single-count")
	assert.ErrorIs(t, err, apperrors.ErrArtifactMissing)
}

func TestEmbedderIsMemoised(t *testing.T) {
	rt, err := Open(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer rt.Close()

	a, err := rt.Embedder("jina")
	require.NoError(t, err)
	b, err := rt.Embedder("jina")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Len(t, rt.Embedders(), 1)
}
