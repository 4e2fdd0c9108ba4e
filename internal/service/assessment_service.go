package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/formatrack/engagement-api/internal/dto"
	"github.com/formatrack/engagement-api/internal/models"
	"github.com/formatrack/engagement-api/internal/scoring"
	appErrors "github.com/formatrack/engagement-api/pkg/errors"
)

type assessmentProgressRepository interface {
	FindByTraineeProgram(ctx context.Context, traineeID, programID string) (*models.TraineeProgress, error)
	Save(ctx context.Context, tp *models.TraineeProgress) error
}

type attendanceFactReader interface {
	ListByTraineeProgram(ctx context.Context, traineeID, programID string) ([]models.AttendanceFact, error)
}

// AssessmentService computes engagement scores and dropout-risk assessments
// from the stored progress snapshots.
type AssessmentService struct {
	progress   assessmentProgressRepository
	attendance attendanceFactReader
	cache      *CacheService
	metrics    *MetricsService
	policy     scoring.Policy
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// AssessmentServiceParams bundles dependencies for NewAssessmentService.
type AssessmentServiceParams struct {
	Progress   assessmentProgressRepository
	Attendance attendanceFactReader
	Cache      *CacheService
	Metrics    *MetricsService
	Policy     scoring.Policy
	CacheTTL   time.Duration
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(params AssessmentServiceParams) *AssessmentService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.CacheTTL <= 0 {
		params.CacheTTL = 5 * time.Minute
	}
	return &AssessmentService{
		progress:   params.Progress,
		attendance: params.Attendance,
		cache:      params.Cache,
		metrics:    params.Metrics,
		policy:     params.Policy,
		cacheTTL:   params.CacheTTL,
		logger:     params.Logger,
		now:        params.Now,
	}
}

// Recompute refreshes the attendance aggregates, engagement score and risk
// assessment for one trainee and persists the result.
func (s *AssessmentService) Recompute(ctx context.Context, traineeID, programID string) error {
	_, err := s.recompute(ctx, traineeID, programID)
	return err
}

// Assess recomputes and returns the assessment view for one trainee.
func (s *AssessmentService) Assess(ctx context.Context, traineeID, programID string) (*dto.AssessmentResponse, error) {
	tp, err := s.recompute(ctx, traineeID, programID)
	if err != nil {
		return nil, err
	}
	return assessmentResponse(tp), nil
}

// Get returns the stored assessment, serving from cache when possible. The
// second return value reports whether the cache was hit.
func (s *AssessmentService) Get(ctx context.Context, traineeID, programID string) (*dto.AssessmentResponse, bool, error) {
	key := assessmentCacheKey(traineeID, programID)
	if s.cache.Enabled() {
		var cached dto.AssessmentResponse
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}
	tp, err := s.loadSnapshot(ctx, traineeID, programID)
	if err != nil {
		return nil, false, err
	}
	resp := assessmentResponse(tp)
	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		s.logger.Debug("assessment cache set failed", zap.Error(err))
	}
	return resp, false, nil
}

func (s *AssessmentService) recompute(ctx context.Context, traineeID, programID string) (*models.TraineeProgress, error) {
	tp, err := s.loadSnapshot(ctx, traineeID, programID)
	if err != nil {
		return nil, err
	}
	facts, err := s.attendance.ListByTraineeProgram(ctx, traineeID, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	now := s.now().UTC()
	refreshSnapshot(tp, facts, s.policy, now)
	tp.UpdatedAt = now
	if err := s.progress.Save(ctx, tp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store trainee progress")
	}
	if s.metrics != nil {
		s.metrics.RecordAssessment(len(tp.DifficultySignals), tp.AtRiskOfDropout)
	}
	key := assessmentCacheKey(traineeID, programID)
	if err := s.cache.Set(ctx, key, assessmentResponse(tp), s.cacheTTL); err != nil {
		s.logger.Debug("assessment cache set failed", zap.Error(err))
	}
	return tp, nil
}

func (s *AssessmentService) loadSnapshot(ctx context.Context, traineeID, programID string) (*models.TraineeProgress, error) {
	tp, err := s.progress.FindByTraineeProgram(ctx, traineeID, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainee progress not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainee progress")
	}
	return tp, nil
}

// refreshSnapshot runs the full scoring pipeline against the snapshot in
// place: attendance aggregates first, then the engagement score, then the
// risk assessment on top of the refreshed values.
func refreshSnapshot(tp *models.TraineeProgress, facts []models.AttendanceFact, policy scoring.Policy, now time.Time) {
	tp.AttendanceRate = scoring.AttendanceRate(facts)
	tp.MissedSessions = scoring.MissedSessions(facts)
	tp.EngagementScore = scoring.EngagementScore(*tp, now)

	assessment := policy.DetectRisk(*tp, now)
	tp.DifficultySignals = assessment.Signals
	tp.AtRiskOfDropout = assessment.AtRisk
	tp.RiskScore = assessment.Score
	assessedAt := assessment.AssessedAt
	tp.LastRiskAssessmentAt = &assessedAt
}

func assessmentResponse(tp *models.TraineeProgress) *dto.AssessmentResponse {
	resp := &dto.AssessmentResponse{
		TraineeID:       tp.TraineeID,
		ProgramID:       tp.ProgramID,
		EngagementScore: tp.EngagementScore,
		Signals:         tp.DifficultySignals,
		AtRiskOfDropout: tp.AtRiskOfDropout,
		RiskScore:       tp.RiskScore,
	}
	if tp.LastRiskAssessmentAt != nil {
		resp.AssessedAt = *tp.LastRiskAssessmentAt
	}
	return resp
}

func assessmentCacheKey(traineeID, programID string) string {
	return fmt.Sprintf("assessment:%s:%s", traineeID, programID)
}
