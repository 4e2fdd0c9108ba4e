package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newProgressRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func progressRowColumns() []string {
	return []string{
		"id", "trainee_id", "program_id", "completion_percentage", "module_progress", "chapter_progress",
		"last_activity_at", "engagement_score", "difficulty_signals", "at_risk_of_dropout", "risk_score", "last_risk_assessment_at",
		"total_time_spent_minutes", "login_count", "average_session_duration", "attendance_rate", "missed_sessions",
		"started_at", "completed_at", "center_completion_rate", "company_completion_rate", "mission_progress", "skills_acquired",
		"alternance_status", "alternance_risk_score", "created_at", "updated_at",
	}
}

func TestProgressRepositoryFindByTraineeProgram(t *testing.T) {
	db, mock, cleanup := newProgressRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(progressRowColumns()).AddRow(
		"tp-1", "trainee-1", "prog-1", 66.67, []byte(`{"mod-1":{"completed":true,"percentage":100}}`), []byte(`{}`),
		now, 72, []byte(`[]`), false, 0.0, nil,
		120, 9, 13.3, 88.0, 1,
		now, nil, nil, nil, nil, nil,
		nil, nil, now, now,
	)
	mock.ExpectQuery(`SELECT .+ FROM trainee_progress WHERE trainee_id = \$1 AND program_id = \$2`).
		WithArgs("trainee-1", "prog-1").
		WillReturnRows(rows)

	tp, err := repo.FindByTraineeProgram(context.Background(), "trainee-1", "prog-1")
	require.NoError(t, err)
	require.Equal(t, "tp-1", tp.ID)
	require.InDelta(t, 66.67, tp.CompletionPercentage, 0.001)
	require.True(t, tp.ModuleProgress["mod-1"].Completed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryListByProgram(t *testing.T) {
	db, mock, cleanup := newProgressRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(progressRowColumns()).
		AddRow("tp-1", "trainee-1", "prog-1", 10.0, []byte(`{}`), []byte(`{}`),
			nil, 0, []byte(`[]`), false, 0.0, nil,
			0, 0, 0.0, 0.0, 0,
			nil, nil, nil, nil, nil, nil,
			nil, nil, now, now).
		AddRow("tp-2", "trainee-2", "prog-1", 50.0, []byte(`{}`), []byte(`{}`),
			nil, 0, []byte(`[]`), false, 0.0, nil,
			0, 0, 0.0, 0.0, 0,
			nil, nil, nil, nil, nil, nil,
			nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM trainee_progress WHERE program_id = $1")).
		WithArgs("prog-1").
		WillReturnRows(rows)

	list, err := repo.ListByProgram(context.Background(), "prog-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
