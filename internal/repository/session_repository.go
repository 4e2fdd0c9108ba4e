package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/formatrack/engagement-api/internal/models"
)

// SessionRepository reads the session calendar supplied by the scheduling
// system.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindByID returns one calendar session.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT id, program_id, title, starts_at, ends_at FROM sessions WHERE id = $1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}
