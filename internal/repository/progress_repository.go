package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/formatrack/engagement-api/internal/models"
)

const progressColumns = `id, trainee_id, program_id, completion_percentage, module_progress, chapter_progress,
	last_activity_at, engagement_score, difficulty_signals, at_risk_of_dropout, risk_score, last_risk_assessment_at,
	total_time_spent_minutes, login_count, average_session_duration, attendance_rate, missed_sessions,
	started_at, completed_at, center_completion_rate, company_completion_rate, mission_progress, skills_acquired,
	alternance_status, alternance_risk_score, created_at, updated_at`

// ProgressRepository handles persistence for trainee progress snapshots.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository constructs the repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// FindByTraineeProgram returns the snapshot for a trainee/program pair.
func (r *ProgressRepository) FindByTraineeProgram(ctx context.Context, traineeID, programID string) (*models.TraineeProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM trainee_progress WHERE trainee_id = $1 AND program_id = $2`, progressColumns)
	var tp models.TraineeProgress
	if err := r.db.GetContext(ctx, &tp, query, traineeID, programID); err != nil {
		return nil, err
	}
	return &tp, nil
}

// ListByProgram returns every snapshot tracked for a program.
func (r *ProgressRepository) ListByProgram(ctx context.Context, programID string) ([]models.TraineeProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM trainee_progress WHERE program_id = $1 ORDER BY trainee_id`, progressColumns)
	var rows []models.TraineeProgress
	if err := r.db.SelectContext(ctx, &rows, query, programID); err != nil {
		return nil, fmt.Errorf("list trainee progress: %w", err)
	}
	return rows, nil
}

// Create inserts a fresh snapshot for a newly linked trainee.
func (r *ProgressRepository) Create(ctx context.Context, tp *models.TraineeProgress) error {
	now := time.Now().UTC()
	if tp.ID == "" {
		tp.ID = uuid.NewString()
	}
	tp.CreatedAt = now
	tp.UpdatedAt = now
	if tp.ModuleProgress == nil {
		tp.ModuleProgress = models.ModuleProgressMap{}
	}
	if tp.ChapterProgress == nil {
		tp.ChapterProgress = models.ChapterProgressMap{}
	}
	query := `INSERT INTO trainee_progress (` + progressColumns + `)
VALUES (:id, :trainee_id, :program_id, :completion_percentage, :module_progress, :chapter_progress,
	:last_activity_at, :engagement_score, :difficulty_signals, :at_risk_of_dropout, :risk_score, :last_risk_assessment_at,
	:total_time_spent_minutes, :login_count, :average_session_duration, :attendance_rate, :missed_sessions,
	:started_at, :completed_at, :center_completion_rate, :company_completion_rate, :mission_progress, :skills_acquired,
	:alternance_status, :alternance_risk_score, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tp); err != nil {
		return fmt.Errorf("create trainee progress: %w", err)
	}
	return nil
}

// Save persists the full snapshot after a recompute.
func (r *ProgressRepository) Save(ctx context.Context, tp *models.TraineeProgress) error {
	tp.UpdatedAt = time.Now().UTC()
	query := updateProgressQuery
	if _, err := r.db.NamedExecContext(ctx, query, tp); err != nil {
		return fmt.Errorf("save trainee progress %s: %w", tp.ID, err)
	}
	return nil
}

// SaveBatch persists a batch of snapshots inside one transaction so a bulk
// run commits or rolls back per batch, never per trainee.
func (r *ProgressRepository) SaveBatch(ctx context.Context, batch []models.TraineeProgress) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch save: %w", err)
	}
	now := time.Now().UTC()
	for i := range batch {
		batch[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, updateProgressQuery, batch[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("batch save trainee progress %s: %w", batch[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch save: %w", err)
	}
	return nil
}

const updateProgressQuery = `UPDATE trainee_progress SET
	completion_percentage = :completion_percentage,
	module_progress = :module_progress,
	chapter_progress = :chapter_progress,
	last_activity_at = :last_activity_at,
	engagement_score = :engagement_score,
	difficulty_signals = :difficulty_signals,
	at_risk_of_dropout = :at_risk_of_dropout,
	risk_score = :risk_score,
	last_risk_assessment_at = :last_risk_assessment_at,
	total_time_spent_minutes = :total_time_spent_minutes,
	login_count = :login_count,
	average_session_duration = :average_session_duration,
	attendance_rate = :attendance_rate,
	missed_sessions = :missed_sessions,
	started_at = :started_at,
	completed_at = :completed_at,
	center_completion_rate = :center_completion_rate,
	company_completion_rate = :company_completion_rate,
	mission_progress = :mission_progress,
	skills_acquired = :skills_acquired,
	alternance_status = :alternance_status,
	alternance_risk_score = :alternance_risk_score,
	updated_at = :updated_at
WHERE id = :id`
