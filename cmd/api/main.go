package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"home-loan-orchestrator/internal/agents"
	"home-loan-orchestrator/internal/api"
	"home-loan-orchestrator/internal/config"
	"home-loan-orchestrator/internal/llm"
	"home-loan-orchestrator/internal/storage"
	"home-loan-orchestrator/internal/telemetry"
	"home-loan-orchestrator/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := telemetry.NewLogger()

	store, err := storage.NewPostgresStore(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer store.Close()

	blob, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioBucket)
	if err != nil {
		log.Fatalf("connect minio: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("postgres ping: %v", err)
	}
	if count, err := store.CountApplications(ctx); err != nil {
		logger.Warn("failed to count applications", "error", err)
	} else {
		logger.Info("connected to postgres", "applications", count)
	}

	model, err := blob.LoadValuationModel(ctx)
	if err != nil {
		logger.Warn("valuation model unavailable, using rule-based pricing", "error", err)
	}
	var valuationModel agents.ValuationModel
	if model != nil {
		valuationModel = model
	}

	creditAgent, err := agents.NewCreditAgent(agents.DefaultBureaus()...)
	if err != nil {
		log.Fatalf("build credit agent: %v", err)
	}
	advisor, err := agents.NewLoanAdvisor(
		llm.NewHTTPClient(cfg.OpenAIAPIKey, cfg.OpenAIModel),
		cfg.OpenAIModel,
		time.Duration(cfg.OpenAITimeoutSec)*time.Second,
	)
	if err != nil {
		log.Fatalf("build loan advisor: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewWorkflowMetrics(registry)

	runner, err := workflow.NewRunner(workflow.Collaborators{
		Documents:   agents.NewDocumentAgent(blob),
		Credit:      creditAgent,
		Valuation:   agents.NewValuationAgent(valuationModel),
		Recommender: advisor,
	}, workflow.Options{
		StageTimeout: time.Duration(cfg.StageTimeoutSec) * time.Second,
		Logger:       logger,
		Metrics:      metrics,
	})
	if err != nil {
		log.Fatalf("build workflow runner: %v", err)
	}

	h := api.NewHandler(cfg, store, blob, runner, logger)
	router := api.NewRouter(h, registry)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
