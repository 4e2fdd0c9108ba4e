package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TraineeRepository checks the identity links supplied by the enrollment
// system. The engine treats a missing trainee or program as a caller error.
type TraineeRepository struct {
	db *sqlx.DB
}

// NewTraineeRepository constructs the repository.
func NewTraineeRepository(db *sqlx.DB) *TraineeRepository {
	return &TraineeRepository{db: db}
}

// TraineeExists reports whether the trainee identity exists.
func (r *TraineeRepository) TraineeExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM trainees WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check trainee %s: %w", id, err)
	}
	return exists, nil
}

// ProgramExists reports whether the program exists.
func (r *TraineeRepository) ProgramExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM programs WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check program %s: %w", id, err)
	}
	return exists, nil
}
