package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/formatrack/engagement-api/internal/models"
	"github.com/formatrack/engagement-api/internal/scoring"
	appErrors "github.com/formatrack/engagement-api/pkg/errors"
)

type progressRepository interface {
	FindByTraineeProgram(ctx context.Context, traineeID, programID string) (*models.TraineeProgress, error)
	Create(ctx context.Context, tp *models.TraineeProgress) error
	Save(ctx context.Context, tp *models.TraineeProgress) error
}

type identityReader interface {
	TraineeExists(ctx context.Context, id string) (bool, error)
	ProgramExists(ctx context.Context, id string) (bool, error)
}

// ProgressService owns the trainee progress lifecycle: linking, content
// completion updates and activity tracking.
type ProgressService struct {
	repo       progressRepository
	identities identityReader
	refresher  assessmentRefresher
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// ProgressServiceParams bundles dependencies for NewProgressService.
type ProgressServiceParams struct {
	Repo       progressRepository
	Identities identityReader
	Refresher  assessmentRefresher
	Validator  *validator.Validate
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewProgressService constructs the progress service.
func NewProgressService(params ProgressServiceParams) *ProgressService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &ProgressService{
		repo:       params.Repo,
		identities: params.Identities,
		refresher:  params.Refresher,
		validator:  params.Validator,
		logger:     params.Logger,
		now:        params.Now,
	}
}

// ContentProgressRequest updates completion for one module or chapter.
type ContentProgressRequest struct {
	Completed  bool    `json:"completed"`
	Percentage float64 `json:"percentage" validate:"min=0,max=100"`
}

// ActivityRequest records one learning activity event.
type ActivityRequest struct {
	SessionMinutes int  `json:"session_minutes" validate:"min=0"`
	Login          bool `json:"login"`
}

// Link creates the progress record for a trainee and program. It is
// idempotent: linking an already linked pair returns the existing record.
func (s *ProgressService) Link(ctx context.Context, traineeID, programID string) (*models.TraineeProgress, error) {
	if err := s.verifyIdentities(ctx, traineeID, programID); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByTraineeProgram(ctx, traineeID, programID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainee progress")
	}
	now := s.now().UTC()
	tp := &models.TraineeProgress{
		TraineeID:       traineeID,
		ProgramID:       programID,
		ModuleProgress:  models.ModuleProgressMap{},
		ChapterProgress: models.ChapterProgressMap{},
		StartedAt:       &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, tp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create trainee progress")
	}
	return tp, nil
}

// Get loads the progress record for a trainee and program.
func (s *ProgressService) Get(ctx context.Context, traineeID, programID string) (*models.TraineeProgress, error) {
	tp, err := s.repo.FindByTraineeProgram(ctx, traineeID, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainee progress not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainee progress")
	}
	return tp, nil
}

// UpdateModuleProgress upserts the entry for one module and recomputes the
// aggregate completion immediately.
func (s *ProgressService) UpdateModuleProgress(ctx context.Context, traineeID, programID, moduleID string, req ContentProgressRequest) (*models.TraineeProgress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	tp, err := s.Get(ctx, traineeID, programID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if tp.ModuleProgress == nil {
		tp.ModuleProgress = models.ModuleProgressMap{}
	}
	entry := tp.ModuleProgress[moduleID]
	if entry.StartedAt == nil {
		started := now
		entry.StartedAt = &started
	}
	entry.Percentage = req.Percentage
	entry.Completed = req.Completed || req.Percentage >= 100
	if entry.Completed && entry.CompletedAt == nil {
		completed := now
		entry.CompletedAt = &completed
	}
	if !entry.Completed {
		entry.CompletedAt = nil
	}
	tp.ModuleProgress[moduleID] = entry

	return s.applyProgressChange(ctx, tp, now)
}

// UpdateChapterProgress upserts the entry for one chapter and recomputes the
// aggregate completion immediately.
func (s *ProgressService) UpdateChapterProgress(ctx context.Context, traineeID, programID, chapterID string, req ContentProgressRequest) (*models.TraineeProgress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	tp, err := s.Get(ctx, traineeID, programID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if tp.ChapterProgress == nil {
		tp.ChapterProgress = models.ChapterProgressMap{}
	}
	entry := tp.ChapterProgress[chapterID]
	entry.Percentage = req.Percentage
	entry.Completed = req.Completed || req.Percentage >= 100
	if entry.Completed && entry.CompletedAt == nil {
		completed := now
		entry.CompletedAt = &completed
	}
	if !entry.Completed {
		entry.CompletedAt = nil
	}
	tp.ChapterProgress[chapterID] = entry

	return s.applyProgressChange(ctx, tp, now)
}

// RecordActivity registers a learning activity event: it refreshes the last
// activity timestamp and accumulates the time tracking counters.
func (s *ProgressService) RecordActivity(ctx context.Context, traineeID, programID string, req ActivityRequest) (*models.TraineeProgress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	tp, err := s.Get(ctx, traineeID, programID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	tp.LastActivityAt = &now
	tp.TotalTimeSpentMinutes += req.SessionMinutes
	if req.Login {
		tp.LoginCount++
	}
	if tp.LoginCount > 0 {
		tp.AverageSessionDuration = float64(tp.TotalTimeSpentMinutes) / float64(tp.LoginCount)
	}
	tp.UpdatedAt = now
	if err := s.repo.Save(ctx, tp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store trainee progress")
	}
	s.triggerRecompute(ctx, traineeID, programID)
	return tp, nil
}

// applyProgressChange recomputes the aggregate completion, stamps the overall
// completion timestamp exactly once at 100 percent, persists and triggers a
// reactive assessment refresh.
func (s *ProgressService) applyProgressChange(ctx context.Context, tp *models.TraineeProgress, now time.Time) (*models.TraineeProgress, error) {
	tp.CompletionPercentage = scoring.CompletionPercentage(tp.ModuleProgress, tp.ChapterProgress)
	if tp.CompletionPercentage >= 100 && tp.CompletedAt == nil {
		completed := now
		tp.CompletedAt = &completed
	}
	tp.LastActivityAt = &now
	tp.UpdatedAt = now
	if err := s.repo.Save(ctx, tp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store trainee progress")
	}
	s.triggerRecompute(ctx, tp.TraineeID, tp.ProgramID)
	return tp, nil
}

func (s *ProgressService) triggerRecompute(ctx context.Context, traineeID, programID string) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.Recompute(ctx, traineeID, programID); err != nil {
		s.logger.Warn("assessment recompute after progress change failed",
			zap.String("trainee_id", traineeID),
			zap.String("program_id", programID),
			zap.Error(err))
	}
}

func (s *ProgressService) verifyIdentities(ctx context.Context, traineeID, programID string) error {
	exists, err := s.identities.TraineeExists(ctx, traineeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify trainee")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "trainee not found")
	}
	exists, err = s.identities.ProgramExists(ctx, programID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify program")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "program not found")
	}
	return nil
}
