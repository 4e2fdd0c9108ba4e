package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formatrack/engagement-api/internal/models"
	"github.com/formatrack/engagement-api/internal/scoring"
	"github.com/formatrack/engagement-api/pkg/jobs"
)

type mockBulkRepo struct {
	snapshots   []models.TraineeProgress
	batches     [][]models.TraineeProgress
	failBatches map[int]error
}

func (m *mockBulkRepo) ListByProgram(ctx context.Context, programID string) ([]models.TraineeProgress, error) {
	return m.snapshots, nil
}

func (m *mockBulkRepo) SaveBatch(ctx context.Context, batch []models.TraineeProgress) error {
	index := len(m.batches)
	m.batches = append(m.batches, batch)
	if err, ok := m.failBatches[index]; ok {
		return err
	}
	return nil
}

type mockQueue struct {
	jobs []jobs.Job
	err  error
}

func (m *mockQueue) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

var bulkClock = time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)

func newBulkService(repo *mockBulkRepo, queue *mockQueue, batchSize int) *BulkService {
	params := BulkServiceParams{
		Progress:   repo,
		Attendance: &mockFactRepo{},
		Programs: &mockIdentityReader{
			programs: map[string]bool{"prog-1": true},
		},
		Policy:    scoring.DefaultPolicy(),
		BatchSize: batchSize,
		Now:       func() time.Time { return bulkClock },
	}
	if queue != nil {
		params.Queue = queue
	}
	return NewBulkService(params)
}

func bulkSnapshots(count int) []models.TraineeProgress {
	started := bulkClock.AddDate(0, 0, -20)
	snapshots := make([]models.TraineeProgress, 0, count)
	for i := 0; i < count; i++ {
		snapshots = append(snapshots, models.TraineeProgress{
			ID:        "tp-" + string(rune('a'+i)),
			TraineeID: "trainee-" + string(rune('a'+i)),
			ProgramID: "prog-1",
			StartedAt: &started,
		})
	}
	return snapshots
}

func TestEnqueueReportsBatchLayout(t *testing.T) {
	repo := &mockBulkRepo{snapshots: bulkSnapshots(5)}
	queue := &mockQueue{}
	svc := newBulkService(repo, queue, 2)

	resp, err := svc.Enqueue(context.Background(), "prog-1")
	require.NoError(t, err)

	assert.Equal(t, 5, resp.TraineeCount)
	assert.Equal(t, 3, resp.BatchCount)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeBulkRecompute, queue.jobs[0].Type)
	payload, ok := queue.jobs[0].Payload.(BulkRecomputePayload)
	require.True(t, ok)
	assert.Equal(t, "prog-1", payload.ProgramID)
}

func TestEnqueueUnknownProgram(t *testing.T) {
	svc := newBulkService(&mockBulkRepo{}, &mockQueue{}, 2)

	_, err := svc.Enqueue(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "program not found")
}

func TestRunRecomputesAllBatches(t *testing.T) {
	repo := &mockBulkRepo{snapshots: bulkSnapshots(5)}
	svc := newBulkService(repo, nil, 2)

	result, err := svc.Run(context.Background(), "prog-1")
	require.NoError(t, err)

	assert.Equal(t, 5, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 3, result.Batches)
	require.Len(t, repo.batches, 3)

	for _, batch := range repo.batches {
		for _, tp := range batch {
			assert.NotNil(t, tp.LastRiskAssessmentAt)
			assert.True(t, tp.AtRiskOfDropout)
		}
	}
}

func TestRunIsolatesFailedBatch(t *testing.T) {
	repo := &mockBulkRepo{
		snapshots:   bulkSnapshots(6),
		failBatches: map[int]error{1: errors.New("deadlock detected")},
	}
	svc := newBulkService(repo, nil, 2)

	result, err := svc.Run(context.Background(), "prog-1")
	require.NoError(t, err)

	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 2, result.Failures[0].Batch)
	assert.Contains(t, result.Failures[0].Reason, "deadlock")
	require.Len(t, repo.batches, 3)
}

func TestHandleJobRunsProgram(t *testing.T) {
	repo := &mockBulkRepo{snapshots: bulkSnapshots(2)}
	svc := newBulkService(repo, nil, 2)

	err := svc.HandleJob(context.Background(), jobs.Job{
		ID:      "job-1",
		Type:    JobTypeBulkRecompute,
		Payload: BulkRecomputePayload{ProgramID: "prog-1"},
	})
	require.NoError(t, err)
	require.Len(t, repo.batches, 1)
}

func TestHandleJobRejectsUnknownPayload(t *testing.T) {
	svc := newBulkService(&mockBulkRepo{}, nil, 2)

	err := svc.HandleJob(context.Background(), jobs.Job{ID: "job-1", Payload: "bogus"})
	require.Error(t, err)
}
