package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/knowlex-labs/rag-engine-sub001/internal/bootstrap"
	"github.com/knowlex-labs/rag-engine-sub001/internal/config"
	"github.com/knowlex-labs/rag-engine-sub001/internal/observability/logging"
	"github.com/knowlex-labs/rag-engine-sub001/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, fileID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 15*time.Minute)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()

		if doc, getErr := app.Repo.GetByID(processCtx, fileID); getErr == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(doc.CreatedAt))
		}

		result, err := app.ProcessUC.ProcessByID(processCtx, fileID)
		workerMetrics.FinishDocument("worker", time.Since(start), err)
		if err != nil {
			return err
		}

		workerMetrics.ObserveExtraction("worker", result.ChunksTotal, result.ChunksFailed)
		workerMetrics.ObserveGraphWrites("worker", result.NodesPersisted, result.EdgesPersisted)
		logger.Info("document_processed",
			"file_id", fileID,
			"already_ingested", result.AlreadyIngested,
			"nodes_persisted", result.NodesPersisted,
			"edges_persisted", result.EdgesPersisted,
			"chunks_total", result.ChunksTotal,
			"chunks_failed", result.ChunksFailed,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
