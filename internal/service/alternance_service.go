package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/formatrack/engagement-api/internal/dto"
	"github.com/formatrack/engagement-api/internal/models"
	"github.com/formatrack/engagement-api/internal/scoring"
	appErrors "github.com/formatrack/engagement-api/pkg/errors"
)

type alternanceRepository interface {
	FindActiveContract(ctx context.Context, traineeID, programID string) (*models.AlternanceContract, error)
	ListMissions(ctx context.Context, contractID string) ([]models.Mission, error)
	ListSkills(ctx context.Context, contractID string) ([]models.Skill, error)
}

// AlternanceService blends center-side progress with company-side mission and
// skill data for work-study trainees.
type AlternanceService struct {
	progress   assessmentProgressRepository
	alternance alternanceRepository
	policy     scoring.Policy
	logger     *zap.Logger
	now        func() time.Time
}

// AlternanceServiceParams bundles dependencies for NewAlternanceService.
type AlternanceServiceParams struct {
	Progress   assessmentProgressRepository
	Alternance alternanceRepository
	Policy     scoring.Policy
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewAlternanceService constructs the alternance service.
func NewAlternanceService(params AlternanceServiceParams) *AlternanceService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &AlternanceService{
		progress:   params.Progress,
		alternance: params.Alternance,
		policy:     params.Policy,
		logger:     params.Logger,
		now:        params.Now,
	}
}

// Evaluate loads the active contract, refreshes the company-side maps from
// the mission and skill rows, blends both tracks and persists the outcome on
// the progress snapshot.
func (s *AlternanceService) Evaluate(ctx context.Context, traineeID, programID string) (*dto.AlternanceResponse, error) {
	tp, err := s.progress.FindByTraineeProgram(ctx, traineeID, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainee progress not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainee progress")
	}

	contract, err := s.alternance.FindActiveContract(ctx, traineeID, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active work-study contract")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contract")
	}

	missions, err := s.alternance.ListMissions(ctx, contract.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list missions")
	}
	skills, err := s.alternance.ListSkills(ctx, contract.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list skills")
	}

	tp.MissionProgress = buildMissionMap(missions)
	tp.SkillsAcquired = buildSkillMap(skills)

	blend := s.policy.BlendAlternance(*tp, tp.RiskScore)

	centerRate := blend.CenterRate
	companyRate := blend.CompanyRate
	status := blend.Status
	riskScore := blend.RiskScore
	tp.CenterCompletionRate = &centerRate
	tp.CompanyCompletionRate = &companyRate
	tp.AlternanceStatus = &status
	tp.AlternanceRiskScore = &riskScore
	tp.UpdatedAt = s.now().UTC()

	if err := s.progress.Save(ctx, tp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store trainee progress")
	}

	return &dto.AlternanceResponse{
		TraineeID:             traineeID,
		ProgramID:             programID,
		CenterCompletionRate:  blend.CenterRate,
		CompanyCompletionRate: blend.CompanyRate,
		Factors:               blend.Factors,
		AlternanceRiskScore:   blend.RiskScore,
		AlternanceStatus:      blend.Status,
		SkillsAcquisitionRate: blend.SkillsAcquisitionRate,
		MissionCount:          len(missions),
		SkillCount:            len(skills),
	}, nil
}

func buildMissionMap(missions []models.Mission) models.MissionProgressMap {
	out := models.MissionProgressMap{}
	for _, m := range missions {
		out[m.ID] = models.MissionProgressEntry{
			Title:          m.Title,
			CompletionRate: m.CompletionRate,
			Status:         m.Status,
		}
	}
	return out
}

func buildSkillMap(skills []models.Skill) models.SkillMap {
	out := models.SkillMap{}
	for _, sk := range skills {
		out[sk.Code] = models.SkillEntry{
			Name:    sk.Name,
			Level:   sk.Level,
			Context: sk.Context,
		}
	}
	return out
}
