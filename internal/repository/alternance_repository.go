package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/formatrack/engagement-api/internal/models"
)

// AlternanceRepository reads work-study contract, mission and skill facts.
type AlternanceRepository struct {
	db *sqlx.DB
}

// NewAlternanceRepository constructs the repository.
func NewAlternanceRepository(db *sqlx.DB) *AlternanceRepository {
	return &AlternanceRepository{db: db}
}

// FindActiveContract returns the active work-study contract for a trainee in
// a program, if any.
func (r *AlternanceRepository) FindActiveContract(ctx context.Context, traineeID, programID string) (*models.AlternanceContract, error) {
	query := `SELECT id, trainee_id, program_id, company_name, starts_at, ends_at, active
FROM alternance_contracts
WHERE trainee_id = $1 AND program_id = $2 AND active = true`
	var contract models.AlternanceContract
	if err := r.db.GetContext(ctx, &contract, query, traineeID, programID); err != nil {
		return nil, err
	}
	return &contract, nil
}

// ListMissions returns the company-side missions recorded on a contract.
func (r *AlternanceRepository) ListMissions(ctx context.Context, contractID string) ([]models.Mission, error) {
	query := `SELECT id, contract_id, title, completion_rate, status FROM missions WHERE contract_id = $1 ORDER BY id`
	var missions []models.Mission
	if err := r.db.SelectContext(ctx, &missions, query, contractID); err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	return missions, nil
}

// ListSkills returns the acquired skills recorded on a contract.
func (r *AlternanceRepository) ListSkills(ctx context.Context, contractID string) ([]models.Skill, error) {
	query := `SELECT id, contract_id, code, name, level, context FROM skills WHERE contract_id = $1 ORDER BY code`
	var skills []models.Skill
	if err := r.db.SelectContext(ctx, &skills, query, contractID); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}
