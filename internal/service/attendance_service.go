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

type attendanceFactRepository interface {
	FindByTraineeSession(ctx context.Context, traineeID, sessionID string) (*models.AttendanceFact, error)
	ListByTraineeProgram(ctx context.Context, traineeID, programID string) ([]models.AttendanceFact, error)
	Upsert(ctx context.Context, fact *models.AttendanceFact) error
}

type sessionReader interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
}

type assessmentRefresher interface {
	Recompute(ctx context.Context, traineeID, programID string) error
}

// AttendanceService coordinates attendance fact mutations and the derived summaries.
type AttendanceService struct {
	facts     attendanceFactRepository
	sessions  sessionReader
	refresher assessmentRefresher
	policy    scoring.Policy
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// AttendanceServiceParams bundles dependencies for NewAttendanceService.
type AttendanceServiceParams struct {
	Facts     attendanceFactRepository
	Sessions  sessionReader
	Refresher assessmentRefresher
	Policy    scoring.Policy
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(params AttendanceServiceParams) *AttendanceService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &AttendanceService{
		facts:     params.Facts,
		sessions:  params.Sessions,
		refresher: params.Refresher,
		policy:    params.Policy,
		validator: params.Validator,
		logger:    params.Logger,
		now:       params.Now,
	}
}

// MarkPresentRequest is the payload for marking a trainee present.
type MarkPresentRequest struct {
	ParticipationScore int                        `json:"participation_score" validate:"min=0,max=10"`
	Location           *models.AttendanceLocation `json:"location" validate:"omitempty,oneof=center company"`
	SupervisedBy       *string                    `json:"supervised_by"`
	CompanyRating      *int                       `json:"company_rating" validate:"omitempty,min=0,max=10"`
}

// MarkAbsentRequest is the payload for marking a trainee absent.
type MarkAbsentRequest struct {
	Excused bool    `json:"excused"`
	Reason  *string `json:"reason"`
}

// MarkLateRequest is the payload for marking a trainee late.
type MarkLateRequest struct {
	MinutesLate        int  `json:"minutes_late" validate:"min=0"`
	ParticipationScore *int `json:"participation_score" validate:"omitempty,min=0,max=10"`
}

// MarkPartialRequest is the payload for marking a partial attendance.
type MarkPartialRequest struct {
	MinutesEarlyDeparture int  `json:"minutes_early_departure" validate:"min=0"`
	ParticipationScore    *int `json:"participation_score" validate:"omitempty,min=0,max=10"`
}

// RecordTimeRequest carries an arrival or departure timestamp.
type RecordTimeRequest struct {
	At time.Time `json:"at" validate:"required"`
}

// MarkPresent records a present attendance fact, clearing absence related fields.
func (s *AttendanceService) MarkPresent(ctx context.Context, traineeID, sessionID string, req MarkPresentRequest) (*models.AttendanceFact, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	fact, err := s.loadOrCreateFact(ctx, traineeID, sessionID)
	if err != nil {
		return nil, err
	}
	fact.Status = models.AttendanceStatusPresent
	fact.ParticipationScore = req.ParticipationScore
	fact.Excused = false
	fact.AbsenceReason = nil
	fact.MinutesLate = nil
	fact.MinutesEarlyDeparture = nil
	if req.Location != nil {
		fact.Location = req.Location
	}
	if req.SupervisedBy != nil {
		fact.SupervisedBy = req.SupervisedBy
	}
	if req.CompanyRating != nil {
		fact.CompanyRating = req.CompanyRating
	}
	return s.saveAndRefresh(ctx, fact)
}

// MarkAbsent records an absence, zeroing participation and clearing arrival data.
func (s *AttendanceService) MarkAbsent(ctx context.Context, traineeID, sessionID string, req MarkAbsentRequest) (*models.AttendanceFact, error) {
	fact, err := s.loadOrCreateFact(ctx, traineeID, sessionID)
	if err != nil {
		return nil, err
	}
	fact.Status = models.AttendanceStatusAbsent
	fact.Excused = req.Excused
	fact.AbsenceReason = req.Reason
	fact.ParticipationScore = 0
	fact.ArrivalTime = nil
	fact.DepartureTime = nil
	fact.MinutesLate = nil
	fact.MinutesEarlyDeparture = nil
	return s.saveAndRefresh(ctx, fact)
}

// MarkLate records a late arrival with the reported delay.
func (s *AttendanceService) MarkLate(ctx context.Context, traineeID, sessionID string, req MarkLateRequest) (*models.AttendanceFact, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	fact, err := s.loadOrCreateFact(ctx, traineeID, sessionID)
	if err != nil {
		return nil, err
	}
	fact.Status = models.AttendanceStatusLate
	minutes := req.MinutesLate
	fact.MinutesLate = &minutes
	fact.MinutesEarlyDeparture = nil
	fact.Excused = false
	fact.AbsenceReason = nil
	if req.ParticipationScore != nil {
		fact.ParticipationScore = *req.ParticipationScore
	}
	return s.saveAndRefresh(ctx, fact)
}

// MarkPartial records an early departure with the minutes missed.
func (s *AttendanceService) MarkPartial(ctx context.Context, traineeID, sessionID string, req MarkPartialRequest) (*models.AttendanceFact, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	fact, err := s.loadOrCreateFact(ctx, traineeID, sessionID)
	if err != nil {
		return nil, err
	}
	fact.Status = models.AttendanceStatusPartial
	minutes := req.MinutesEarlyDeparture
	fact.MinutesEarlyDeparture = &minutes
	fact.Excused = false
	fact.AbsenceReason = nil
	if req.ParticipationScore != nil {
		fact.ParticipationScore = *req.ParticipationScore
	}
	return s.saveAndRefresh(ctx, fact)
}

// RecordArrival stores the arrival timestamp and reclassifies the status
// against the session start time.
func (s *AttendanceService) RecordArrival(ctx context.Context, traineeID, sessionID string, req RecordTimeRequest) (*models.AttendanceFact, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	fact, err := s.loadOrCreateFact(ctx, traineeID, sessionID)
	if err != nil {
		return nil, err
	}
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	at := req.At
	fact.ArrivalTime = &at
	status, minutesLate := s.policy.ClassifyArrival(fact.Status, at, session.StartsAt)
	fact.Status = status
	fact.MinutesLate = minutesLate
	if status != models.AttendanceStatusAbsent {
		fact.Excused = false
		fact.AbsenceReason = nil
	}
	return s.saveAndRefresh(ctx, fact)
}

// RecordDeparture stores the departure timestamp and reclassifies the status
// against the session end time.
func (s *AttendanceService) RecordDeparture(ctx context.Context, traineeID, sessionID string, req RecordTimeRequest) (*models.AttendanceFact, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	fact, err := s.loadOrCreateFact(ctx, traineeID, sessionID)
	if err != nil {
		return nil, err
	}
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	at := req.At
	fact.DepartureTime = &at
	status, minutesEarly := s.policy.ClassifyDeparture(fact.Status, at, session.EndsAt)
	fact.Status = status
	fact.MinutesEarlyDeparture = minutesEarly
	return s.saveAndRefresh(ctx, fact)
}

// Summary aggregates attendance facts for a trainee within a program.
func (s *AttendanceService) Summary(ctx context.Context, traineeID, programID string) (*models.AttendanceSummary, error) {
	facts, err := s.facts.ListByTraineeProgram(ctx, traineeID, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	summary := &models.AttendanceSummary{
		TraineeID:      traineeID,
		ProgramID:      programID,
		SessionCount:   len(facts),
		Rate:           scoring.AttendanceRate(facts),
		MissedSessions: scoring.MissedSessions(facts),
	}
	for _, fact := range facts {
		switch fact.Status {
		case models.AttendanceStatusPresent:
			summary.Present++
		case models.AttendanceStatusLate:
			summary.Late++
		case models.AttendanceStatusPartial:
			summary.Partial++
		case models.AttendanceStatusAbsent:
			if fact.Excused {
				summary.ExcusedAbsences++
			} else {
				summary.UnexcusedAbsences++
			}
		}
	}
	return summary, nil
}

func (s *AttendanceService) loadSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func (s *AttendanceService) loadOrCreateFact(ctx context.Context, traineeID, sessionID string) (*models.AttendanceFact, error) {
	fact, err := s.facts.FindByTraineeSession(ctx, traineeID, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			now := s.now().UTC()
			return &models.AttendanceFact{
				TraineeID: traineeID,
				SessionID: sessionID,
				Status:    models.AttendanceStatusPresent,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance fact")
	}
	return fact, nil
}

func (s *AttendanceService) saveAndRefresh(ctx context.Context, fact *models.AttendanceFact) (*models.AttendanceFact, error) {
	fact.UpdatedAt = s.now().UTC()
	if err := s.facts.Upsert(ctx, fact); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance fact")
	}
	if s.refresher != nil {
		session, err := s.sessions.FindByID(ctx, fact.SessionID)
		if err != nil {
			s.logger.Warn("session lookup for recompute failed", zap.String("session_id", fact.SessionID), zap.Error(err))
			return fact, nil
		}
		if err := s.refresher.Recompute(ctx, fact.TraineeID, session.ProgramID); err != nil {
			s.logger.Warn("assessment recompute after attendance change failed",
				zap.String("trainee_id", fact.TraineeID),
				zap.String("program_id", session.ProgramID),
				zap.Error(err))
		}
	}
	return fact, nil
}
