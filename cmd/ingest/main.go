package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"helperbot/internal/config"
	"helperbot/internal/embedding"
	"helperbot/internal/rag/loaders"
	"helperbot/internal/rag/pipeline"
	"helperbot/internal/rag/splitters"
	"helperbot/internal/rag/storages/vectorstore"
	"helperbot/pkg/logger"
)

// The ingestion batch job: crawl the configured seeds, clean and chunk the
// pages, embed the chunks, and replace the target namespace in the vector
// index. Exits non-zero on any fatal provider or configuration error.
//
// Do not run two ingestions against the same namespace at once, and avoid
// running one while serving live traffic: the namespace is briefly empty
// between the drop and the fresh insert.
func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config/config.yaml", "Path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("ingest")
	appLogger.Info("Starting ingestion run...")

	if len(cfg.Crawler.SeedURLs) == 0 {
		appLogger.Fatal("No seed URLs configured")
	}

	ctx := context.Background()

	store, err := vectorstore.NewMilvusStore(ctx, cfg.Milvus.Address, cfg.Milvus.Collection, cfg.Milvus.Dim, appLogger)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to connect to Milvus: %v", err))
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to prepare collection: %v", err))
	}

	embedder, err := embedding.NewModel(cfg.Embedding)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to create embedding client: %v", err))
	}

	splitter, err := splitters.New(cfg.Splitter)
	if err != nil {
		appLogger.Fatal(fmt.Sprintf("Failed to create splitter: %v", err))
	}

	loader := loaders.NewWebLoader(cfg.Crawler, appLogger)

	p := pipeline.NewIndexingPipeline(loader, splitter, embedder, store, appLogger)
	if err := p.Run(ctx, cfg.Crawler.SeedURLs, cfg.Milvus.Namespace); err != nil {
		appLogger.Fatal(fmt.Sprintf("Ingestion failed: %v", err))
	}
}
