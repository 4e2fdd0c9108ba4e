package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formatrack/engagement-api/internal/models"
)

type mockProgressRepo struct {
	snapshots map[string]models.TraineeProgress
	created   *models.TraineeProgress
	saved     []models.TraineeProgress
	saveErr   error
}

func progressKey(traineeID, programID string) string { return traineeID + "/" + programID }

func (m *mockProgressRepo) FindByTraineeProgram(ctx context.Context, traineeID, programID string) (*models.TraineeProgress, error) {
	if tp, ok := m.snapshots[progressKey(traineeID, programID)]; ok {
		return &tp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProgressRepo) Create(ctx context.Context, tp *models.TraineeProgress) error {
	if m.snapshots == nil {
		m.snapshots = make(map[string]models.TraineeProgress)
	}
	if tp.ID == "" {
		tp.ID = "new-progress"
	}
	m.snapshots[progressKey(tp.TraineeID, tp.ProgramID)] = *tp
	m.created = tp
	return nil
}

func (m *mockProgressRepo) Save(ctx context.Context, tp *models.TraineeProgress) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.snapshots == nil {
		m.snapshots = make(map[string]models.TraineeProgress)
	}
	m.snapshots[progressKey(tp.TraineeID, tp.ProgramID)] = *tp
	m.saved = append(m.saved, *tp)
	return nil
}

type mockIdentityReader struct {
	trainees map[string]bool
	programs map[string]bool
}

func (m *mockIdentityReader) TraineeExists(ctx context.Context, id string) (bool, error) {
	return m.trainees[id], nil
}

func (m *mockIdentityReader) ProgramExists(ctx context.Context, id string) (bool, error) {
	return m.programs[id], nil
}

var progressClock = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func newProgressService(repo *mockProgressRepo, identities *mockIdentityReader, refresher *mockRefresher) *ProgressService {
	if identities == nil {
		identities = &mockIdentityReader{
			trainees: map[string]bool{"trainee-1": true},
			programs: map[string]bool{"prog-1": true},
		}
	}
	params := ProgressServiceParams{
		Repo:       repo,
		Identities: identities,
		Now:        func() time.Time { return progressClock },
	}
	if refresher != nil {
		params.Refresher = refresher
	}
	return NewProgressService(params)
}

func TestLinkCreatesProgressWithStartDate(t *testing.T) {
	repo := &mockProgressRepo{}
	svc := newProgressService(repo, nil, nil)

	tp, err := svc.Link(context.Background(), "trainee-1", "prog-1")
	require.NoError(t, err)

	require.NotNil(t, repo.created)
	require.NotNil(t, tp.StartedAt)
	assert.Equal(t, progressClock, *tp.StartedAt)
	assert.NotNil(t, tp.ModuleProgress)
	assert.NotNil(t, tp.ChapterProgress)
}

func TestLinkIsIdempotent(t *testing.T) {
	repo := &mockProgressRepo{snapshots: map[string]models.TraineeProgress{
		progressKey("trainee-1", "prog-1"): {ID: "existing", TraineeID: "trainee-1", ProgramID: "prog-1"},
	}}
	svc := newProgressService(repo, nil, nil)

	tp, err := svc.Link(context.Background(), "trainee-1", "prog-1")
	require.NoError(t, err)

	assert.Equal(t, "existing", tp.ID)
	assert.Nil(t, repo.created)
}

func TestLinkUnknownTrainee(t *testing.T) {
	svc := newProgressService(&mockProgressRepo{}, &mockIdentityReader{
		programs: map[string]bool{"prog-1": true},
	}, nil)

	_, err := svc.Link(context.Background(), "ghost", "prog-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trainee not found")
}

func TestUpdateModuleProgressRecomputesCompletion(t *testing.T) {
	repo := &mockProgressRepo{snapshots: map[string]models.TraineeProgress{
		progressKey("trainee-1", "prog-1"): {
			TraineeID: "trainee-1",
			ProgramID: "prog-1",
			ModuleProgress: models.ModuleProgressMap{
				"mod-1": {Completed: true, Percentage: 100},
				"mod-2": {Completed: false, Percentage: 20},
			},
		},
	}}
	refresher := &mockRefresher{}
	svc := newProgressService(repo, nil, refresher)

	tp, err := svc.UpdateModuleProgress(context.Background(), "trainee-1", "prog-1", "mod-3", ContentProgressRequest{Percentage: 100})
	require.NoError(t, err)

	entry := tp.ModuleProgress["mod-3"]
	assert.True(t, entry.Completed)
	require.NotNil(t, entry.CompletedAt)
	assert.InDelta(t, 66.67, tp.CompletionPercentage, 0.001)
	require.NotNil(t, tp.LastActivityAt)
	require.Len(t, refresher.calls, 1)
}

func TestUpdateModuleProgressStampsCompletedAtOnce(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	repo := &mockProgressRepo{snapshots: map[string]models.TraineeProgress{
		progressKey("trainee-1", "prog-1"): {
			TraineeID:   "trainee-1",
			ProgramID:   "prog-1",
			CompletedAt: &earlier,
			ModuleProgress: models.ModuleProgressMap{
				"mod-1": {Completed: true, Percentage: 100},
			},
		},
	}}
	svc := newProgressService(repo, nil, nil)

	tp, err := svc.UpdateModuleProgress(context.Background(), "trainee-1", "prog-1", "mod-1", ContentProgressRequest{Completed: true, Percentage: 100})
	require.NoError(t, err)

	require.NotNil(t, tp.CompletedAt)
	assert.Equal(t, earlier, *tp.CompletedAt)
}

func TestUpdateChapterProgressClearsCompletionWhenReopened(t *testing.T) {
	done := time.Date(2026, 3, 20, 8, 0, 0, 0, time.UTC)
	repo := &mockProgressRepo{snapshots: map[string]models.TraineeProgress{
		progressKey("trainee-1", "prog-1"): {
			TraineeID: "trainee-1",
			ProgramID: "prog-1",
			ChapterProgress: models.ChapterProgressMap{
				"ch-1": {Completed: true, Percentage: 100, CompletedAt: &done},
			},
		},
	}}
	svc := newProgressService(repo, nil, nil)

	tp, err := svc.UpdateChapterProgress(context.Background(), "trainee-1", "prog-1", "ch-1", ContentProgressRequest{Percentage: 40})
	require.NoError(t, err)

	entry := tp.ChapterProgress["ch-1"]
	assert.False(t, entry.Completed)
	assert.Nil(t, entry.CompletedAt)
	assert.InDelta(t, 0.0, tp.CompletionPercentage, 0.001)
}

func TestUpdateModuleProgressRejectsOutOfRangePercentage(t *testing.T) {
	svc := newProgressService(&mockProgressRepo{}, nil, nil)

	_, err := svc.UpdateModuleProgress(context.Background(), "trainee-1", "prog-1", "mod-1", ContentProgressRequest{Percentage: 120})
	require.Error(t, err)
}

func TestRecordActivityTracksLoginsAndDuration(t *testing.T) {
	repo := &mockProgressRepo{snapshots: map[string]models.TraineeProgress{
		progressKey("trainee-1", "prog-1"): {
			TraineeID:             "trainee-1",
			ProgramID:             "prog-1",
			LoginCount:            1,
			TotalTimeSpentMinutes: 30,
		},
	}}
	svc := newProgressService(repo, nil, nil)

	tp, err := svc.RecordActivity(context.Background(), "trainee-1", "prog-1", ActivityRequest{SessionMinutes: 50, Login: true})
	require.NoError(t, err)

	assert.Equal(t, 2, tp.LoginCount)
	assert.Equal(t, 80, tp.TotalTimeSpentMinutes)
	assert.InDelta(t, 40.0, tp.AverageSessionDuration, 0.001)
	require.NotNil(t, tp.LastActivityAt)
	assert.Equal(t, progressClock, *tp.LastActivityAt)
}

func TestRecordActivityUnknownProgress(t *testing.T) {
	svc := newProgressService(&mockProgressRepo{}, nil, nil)

	_, err := svc.RecordActivity(context.Background(), "trainee-1", "prog-1", ActivityRequest{Login: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trainee progress not found")
}
