// Package artifact persists and loads the offline-built structures an engine
// variant needs (inverted indexes, vectorizers, vector stores, cluster
// models). Blobs live in a Store addressed by slash-separated keys; a Cache
// memoises decoded artifacts so each key is read and decoded at most once
// per process.
package artifact

import (
	"context"
	"fmt"
	"path"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/config"
)

// Store reads and writes artifact blobs. Get wraps
// errors.ErrArtifactMissing when the key does not exist.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// Kinds of artifacts. The kind is the middle segment of every key.
const (
	KindIndex      = "index"
	KindVectorizer = "vectorizer"
	KindVectors    = "vectors"
	KindSentences  = "sentences"
	KindClusters   = "clusters"
)

// Key builds the storage key of an artifact.
func Key(dataset, kind, name string) string {
	return path.Join(dataset, kind, name)
}

// Open returns the store selected by cfg.Backend.
func Open(cfg config.EngineConfig) (Store, error) {
	switch cfg.Backend {
	case "fs", "":
		return NewFSStore(cfg.ArtifactsDir), nil
	case "badger":
		return OpenBadgerStore(cfg.BadgerPath, false)
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Backend)
	}
}
