// Command indexer builds the offline artifacts of one or more variants from
// the configured corpus source and writes them to the artifact store.
//
// Usage:
//
//	go run ./cmd/indexer [-config configs/development.yaml] [-variants arxiv-lemm-single-tfidf,arxiv-sentences-jina-bm25] [-all]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	variants := flag.String("variants", "", "comma-separated variants to build (default engine.variant)")
	all := flag.Bool("all", false, "build every registered variant")
	minDF := flag.Int("min-df", 1, "minimum document frequency for vocabulary terms")
	clusters := flag.Int("clusters", 16, "k for k-means sentence clusters")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, cfg, nil)
	if err != nil {
		slog.Error("failed to open runtime", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	var names []string
	switch {
	case *all:
		for _, v := range rt.Registry.List() {
			names = append(names, v.Name)
		}
	case *variants != "":
		for _, n := range strings.Split(*variants, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	default:
		names = []string{cfg.Engine.Variant}
	}

	slog.Info("starting artifact build", "variants", len(names), "backend", cfg.Engine.Backend)
	reports, err := rt.Build(ctx, names, indexer.Options{MinDF: *minDF, Clusters: *clusters})
	for _, rep := range reports {
		slog.Info("variant ready",
			"variant", rep.Variant,
			"written", rep.Written,
			"skipped", len(rep.Skipped),
			"took", rep.Took,
		)
	}
	if err != nil {
		slog.Error("build failed", "error", err)
		rt.Close()
		os.Exit(1)
	}
	slog.Info("artifact build finished", "variants", len(reports))
}
