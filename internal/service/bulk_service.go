package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formatrack/engagement-api/internal/dto"
	"github.com/formatrack/engagement-api/internal/models"
	"github.com/formatrack/engagement-api/internal/scoring"
	appErrors "github.com/formatrack/engagement-api/pkg/errors"
	"github.com/formatrack/engagement-api/pkg/jobs"
)

// JobTypeBulkRecompute identifies queued program-wide recompute jobs.
const JobTypeBulkRecompute = "bulk_recompute"

type bulkProgressRepository interface {
	ListByProgram(ctx context.Context, programID string) ([]models.TraineeProgress, error)
	SaveBatch(ctx context.Context, batch []models.TraineeProgress) error
}

type programReader interface {
	ProgramExists(ctx context.Context, id string) (bool, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// BulkRecomputePayload is the queued job payload for a program-wide run.
type BulkRecomputePayload struct {
	ProgramID string `json:"program_id"`
}

// BulkService runs program-wide assessment recomputes in batches. A failed
// batch is recorded and skipped; the remaining batches still run.
type BulkService struct {
	progress   bulkProgressRepository
	attendance attendanceFactReader
	programs   programReader
	queue      jobEnqueuer
	cache      *CacheService
	metrics    *MetricsService
	policy     scoring.Policy
	batchSize  int
	logger     *zap.Logger
	now        func() time.Time
}

// BulkServiceParams bundles dependencies for NewBulkService.
type BulkServiceParams struct {
	Progress   bulkProgressRepository
	Attendance attendanceFactReader
	Programs   programReader
	Queue      jobEnqueuer
	Cache      *CacheService
	Metrics    *MetricsService
	Policy     scoring.Policy
	BatchSize  int
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewBulkService constructs the bulk recompute service.
func NewBulkService(params BulkServiceParams) *BulkService {
	if params.BatchSize <= 0 {
		params.BatchSize = 50
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &BulkService{
		progress:   params.Progress,
		attendance: params.Attendance,
		programs:   params.Programs,
		queue:      params.Queue,
		cache:      params.Cache,
		metrics:    params.Metrics,
		policy:     params.Policy,
		batchSize:  params.BatchSize,
		logger:     params.Logger,
		now:        params.Now,
	}
}

// AttachQueue wires the job queue after construction. The queue's handler is
// this service's HandleJob, so both sides need to exist first.
func (s *BulkService) AttachQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Enqueue schedules a program-wide recompute and reports the expected batch
// layout.
func (s *BulkService) Enqueue(ctx context.Context, programID string) (*dto.BulkRecomputeResponse, error) {
	exists, err := s.programs.ProgramExists(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify program")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
	}
	snapshots, err := s.progress.ListByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trainee progress")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "bulk queue unavailable")
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeBulkRecompute,
		Payload: BulkRecomputePayload{ProgramID: programID},
	}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue bulk recompute")
	}
	return &dto.BulkRecomputeResponse{
		ProgramID:    programID,
		TraineeCount: len(snapshots),
		BatchCount:   s.batchCount(len(snapshots)),
	}, nil
}

// HandleJob is the queue handler for bulk recompute jobs.
func (s *BulkService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(BulkRecomputePayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
	}
	result, err := s.Run(ctx, payload.ProgramID)
	if err != nil {
		return err
	}
	s.logger.Info("bulk recompute finished",
		zap.String("program_id", payload.ProgramID),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
		zap.Int("batches", result.Batches))
	return nil
}

// Run recomputes every snapshot in the program synchronously, batch by batch.
func (s *BulkService) Run(ctx context.Context, programID string) (*dto.BulkRunResult, error) {
	snapshots, err := s.progress.ListByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trainee progress")
	}

	result := &dto.BulkRunResult{Batches: s.batchCount(len(snapshots))}
	for batchIndex := 0; batchIndex*s.batchSize < len(snapshots); batchIndex++ {
		start := batchIndex * s.batchSize
		end := start + s.batchSize
		if end > len(snapshots) {
			end = len(snapshots)
		}
		batch := snapshots[start:end]

		batchStart := time.Now()
		if err := s.runBatch(ctx, programID, batch); err != nil {
			result.Failed += len(batch)
			result.Failures = append(result.Failures, dto.BulkBatchFailure{Batch: batchIndex + 1, Reason: err.Error()})
			if s.metrics != nil {
				s.metrics.RecordBulkBatch(false, time.Since(batchStart))
			}
			s.logger.Warn("bulk batch failed",
				zap.String("program_id", programID),
				zap.Int("batch", batchIndex+1),
				zap.Error(err))
			continue
		}
		result.Processed += len(batch)
		if s.metrics != nil {
			s.metrics.RecordBulkBatch(true, time.Since(batchStart))
		}
	}

	if err := s.cache.Invalidate(ctx, "assessment:*"); err != nil {
		s.logger.Debug("assessment cache invalidation failed", zap.Error(err))
	}
	return result, nil
}

func (s *BulkService) runBatch(ctx context.Context, programID string, batch []models.TraineeProgress) error {
	now := s.now().UTC()
	for i := range batch {
		tp := &batch[i]
		facts, err := s.attendance.ListByTraineeProgram(ctx, tp.TraineeID, programID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				facts = nil
			} else {
				return fmt.Errorf("attendance for trainee %s: %w", tp.TraineeID, err)
			}
		}
		refreshSnapshot(tp, facts, s.policy, now)
		tp.UpdatedAt = now
		if s.metrics != nil {
			s.metrics.RecordAssessment(len(tp.DifficultySignals), tp.AtRiskOfDropout)
		}
	}
	return s.progress.SaveBatch(ctx, batch)
}

func (s *BulkService) batchCount(total int) int {
	if total == 0 {
		return 0
	}
	return (total + s.batchSize - 1) / s.batchSize
}
