package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"serpavi_estimator/models"
	"serpavi_estimator/storage"
)

// Runner is the automation pipeline seen from the service layer.
type Runner interface {
	Estimate(ctx context.Context, req *models.EstimateRequest) *models.EstimateResult
}

// EstimateService runs the pipeline and records every outcome in the
// operational store, mirroring completed runs to the optional archive.
type EstimateService struct {
	runner  Runner
	store   *storage.SQLiteStore
	archive *storage.PostgresStore // nil when no archive configured
}

func NewEstimateService(runner Runner, store *storage.SQLiteStore, archive *storage.PostgresStore) *EstimateService {
	return &EstimateService{runner: runner, store: store, archive: archive}
}

func (s *EstimateService) Estimate(ctx context.Context, req *models.EstimateRequest) *models.EstimateResult {
	started := time.Now()
	result := s.runner.Estimate(ctx, req)
	finished := time.Now()

	run := &models.EstimateRun{
		ID:             uuid.NewString(),
		CadastralRef:   req.CadastralRef,
		Status:         result.Status,
		ErrorKind:      result.ErrorKind,
		MinPrice:       result.MinPrice,
		MaxPrice:       result.MaxPrice,
		ReferencePrice: result.ReferencePrice,
		PricePerArea:   result.PricePerArea,
		TotalPrice:     result.TotalPrice,
		Method:         result.Method,
		Debug:          req.Debug,
		StartedAt:      started,
		FinishedAt:     finished,
		DurationMS:     finished.Sub(started).Milliseconds(),
	}

	if s.store != nil {
		if err := s.store.CreateRun(run); err != nil {
			log.Printf("Warning: failed to record run: %v", err)
		}
	}

	if s.archive != nil && result.Status == models.StatusOK {
		if err := s.archive.InsertEstimate(ctx, run); err != nil {
			log.Printf("Warning: failed to archive estimate: %v", err)
		}
	}

	return result
}

// History returns the most recent runs from the operational store.
func (s *EstimateService) History(limit int) ([]models.EstimateRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.RecentRuns(limit)
}
