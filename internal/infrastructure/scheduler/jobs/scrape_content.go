// Package jobs contains the scheduled jobs of the learning engine.
package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/infoapp-hub/learning-engine/internal/application/acquisition"
	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// ScrapeContentJob triggers a scheduled content scrape through the
// acquisition pipeline.
type ScrapeContentJob struct {
	pipeline *acquisition.Pipeline
	logger   *slog.Logger
}

// NewScrapeContentJob creates a new ScrapeContentJob.
func NewScrapeContentJob(pipeline *acquisition.Pipeline, logger *slog.Logger) *ScrapeContentJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScrapeContentJob{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Name returns the job name.
func (j *ScrapeContentJob) Name() string {
	return "scrape_content"
}

// Description returns a human-readable description.
func (j *ScrapeContentJob) Description() string {
	return "Runs the content scraper and merges discovered lessons into the catalog"
}

// Run triggers one scrape. If a run is already in flight (e.g. a manual
// trigger raced the schedule) the job skips silently: the in-flight run
// covers this cycle.
func (j *ScrapeContentJob) Run(ctx context.Context) error {
	outcome, err := j.pipeline.Run(ctx, catalog.TriggerScheduled)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyRunning) {
			j.logger.Info("scheduled scrape skipped, a run is already in flight")
			return nil
		}
		return err
	}

	if !outcome.Success {
		j.logger.Warn("scheduled scrape failed", slog.String("error", outcome.Error))
	}
	return nil
}
