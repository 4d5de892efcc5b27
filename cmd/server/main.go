package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"helperbot/internal/config"
	"helperbot/internal/embedding"
	"helperbot/internal/llm"
	"helperbot/internal/rag/pipeline"
	"helperbot/internal/rag/storages/vectorstore"
	"helperbot/internal/server/api"
	"helperbot/internal/suggestions"
	"helperbot/pkg/circuitbreaker"
	"helperbot/pkg/logger"
	"helperbot/pkg/ratelimiter"
)

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
	appLogger := logger.New("server")
	appLogger.Info("Starting serving process...")

	ctx := context.Background()

	// Process-wide clients: constructed once, injected, reused across requests.
	store, err := vectorstore.NewMilvusStore(ctx, cfg.Milvus.Address, cfg.Milvus.Collection, cfg.Milvus.Dim, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}
	defer store.Close()

	embedder, err := embedding.NewModel(cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	var llmOpts []llm.Option
	if cfg.Server.CircuitBreaker.Enabled {
		timeout, err := time.ParseDuration(cfg.Server.CircuitBreaker.Timeout)
		if err != nil {
			log.Fatalf("Invalid circuit breaker timeout: %v", err)
		}
		breaker := circuitbreaker.New(
			cfg.Server.CircuitBreaker.FailureThreshold,
			cfg.Server.CircuitBreaker.SuccessThreshold,
			timeout,
		)
		llmOpts = append(llmOpts, llm.WithCircuitBreaker(breaker))
	}
	chatModel, err := llm.NewOpenAI(cfg.LLM, llmOpts...)
	if err != nil {
		log.Fatalf("Failed to create chat client: %v", err)
	}

	retrieval := pipeline.NewRetrievalPipeline(embedder, store, cfg.Milvus.Namespace, cfg.Retrieval.TopK, appLogger)
	qa, err := pipeline.NewQAPipeline(retrieval, chatModel, cfg.Server.PromptFile, appLogger)
	if err != nil {
		log.Fatalf("Failed to create QA pipeline: %v", err)
	}

	handler := api.NewHandler(qa, suggestions.NewStore(cfg.Server.SuggestionsFile, appLogger), appLogger)

	var limiter ratelimiter.RateLimiter
	if cfg.Server.RateLimiter.Enabled {
		limiter = ratelimiter.NewTokenBucket(cfg.Server.RateLimiter.Rate, cfg.Server.RateLimiter.Capacity)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: api.NewRouter(handler, limiter),
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Forced shutdown: %v", err))
	}
	appLogger.Info("Server gracefully stopped")
}
