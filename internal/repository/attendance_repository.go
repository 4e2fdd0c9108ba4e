package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/formatrack/engagement-api/internal/models"
)

const attendanceColumns = `id, trainee_id, session_id, status, participation_score, excused, absence_reason,
	arrival_time, departure_time, minutes_late, minutes_early_departure, location, supervised_by, company_rating,
	created_at, updated_at`

// AttendanceRepository handles persistence for attendance facts.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// FindByTraineeSession returns the fact for one trainee and session.
func (r *AttendanceRepository) FindByTraineeSession(ctx context.Context, traineeID, sessionID string) (*models.AttendanceFact, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_facts WHERE trainee_id = $1 AND session_id = $2`, attendanceColumns)
	var fact models.AttendanceFact
	if err := r.db.GetContext(ctx, &fact, query, traineeID, sessionID); err != nil {
		return nil, err
	}
	return &fact, nil
}

// ListByTraineeProgram returns every fact for a trainee within a program.
func (r *AttendanceRepository) ListByTraineeProgram(ctx context.Context, traineeID, programID string) ([]models.AttendanceFact, error) {
	query := `SELECT af.id, af.trainee_id, af.session_id, af.status, af.participation_score, af.excused, af.absence_reason,
	af.arrival_time, af.departure_time, af.minutes_late, af.minutes_early_departure, af.location, af.supervised_by, af.company_rating,
	af.created_at, af.updated_at
FROM attendance_facts af
JOIN sessions s ON s.id = af.session_id
WHERE af.trainee_id = $1 AND s.program_id = $2
ORDER BY af.created_at`
	var facts []models.AttendanceFact
	if err := r.db.SelectContext(ctx, &facts, query, traineeID, programID); err != nil {
		return nil, fmt.Errorf("list attendance facts: %w", err)
	}
	return facts, nil
}

// Upsert inserts or replaces the single fact per trainee and session.
func (r *AttendanceRepository) Upsert(ctx context.Context, fact *models.AttendanceFact) error {
	now := time.Now().UTC()
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = now
	}
	fact.UpdatedAt = now
	query := `INSERT INTO attendance_facts (` + attendanceColumns + `)
VALUES (:id, :trainee_id, :session_id, :status, :participation_score, :excused, :absence_reason,
	:arrival_time, :departure_time, :minutes_late, :minutes_early_departure, :location, :supervised_by, :company_rating,
	:created_at, :updated_at)
ON CONFLICT (trainee_id, session_id)
DO UPDATE SET status = EXCLUDED.status, participation_score = EXCLUDED.participation_score,
	excused = EXCLUDED.excused, absence_reason = EXCLUDED.absence_reason,
	arrival_time = EXCLUDED.arrival_time, departure_time = EXCLUDED.departure_time,
	minutes_late = EXCLUDED.minutes_late, minutes_early_departure = EXCLUDED.minutes_early_departure,
	location = EXCLUDED.location, supervised_by = EXCLUDED.supervised_by, company_rating = EXCLUDED.company_rating,
	updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, fact); err != nil {
		return fmt.Errorf("upsert attendance fact: %w", err)
	}
	return nil
}
