package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wmcfinance/echeque-processor/internal/docsource"
	"github.com/wmcfinance/echeque-processor/internal/jobs"
	"github.com/wmcfinance/echeque-processor/internal/jobs/inmemory"
	"github.com/wmcfinance/echeque-processor/internal/logger"
	"github.com/wmcfinance/echeque-processor/internal/mapping"
	"github.com/wmcfinance/echeque-processor/internal/pipeline"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is not set")
	}

	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	log.Info().Msg("Starting worker service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	extractor := pipeline.NewGeminiExtractor(apiKey, log)

	handler := func(ctx context.Context, job jobs.Job) error {
		batchJob, ok := job.(*jobs.ProcessBatchJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", batchJob.JobID).
			Int("files", len(batchJob.SourceURIs)).
			Msg("Processing batch job")

		table, err := mapping.Load(batchJob.MappingPath, mapping.ModeCollapse)
		if err != nil {
			log.Warn().
				Err(err).
				Str("job_id", batchJob.JobID).
				Msg("Failed to load mapping table, continuing without mappings")
			table = mapping.Empty()
		}

		docs, err := docsource.FromGCS(ctx, batchJob.SourceURIs)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", batchJob.JobID).
				Msg("Failed to fetch batch documents")
			return err
		}

		processor := pipeline.NewProcessor(extractor, table, pipeline.NewValidator(false), log)
		results, procErrs := processor.ProcessBatch(ctx, docs, nil)

		if err := os.MkdirAll(batchJob.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		for _, result := range results {
			outPath := filepath.Join(batchJob.OutputDir, result.GeneratedFilename)
			if err := os.WriteFile(outPath, result.PDFData, 0o644); err != nil {
				return fmt.Errorf("write %q: %w", result.GeneratedFilename, err)
			}
		}

		log.Info().
			Str("job_id", batchJob.JobID).
			Int("succeeded", len(results)).
			Int("failed", len(procErrs)).
			Msg("Batch job completed")

		if len(procErrs) == len(docs) && len(docs) > 0 {
			return fmt.Errorf("all %d document(s) failed, first error: %w", len(docs), procErrs[0].Err)
		}

		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}
