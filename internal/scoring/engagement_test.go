package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/formatrack/engagement-api/internal/models"
)

func TestEngagementScoreHighlyEngaged(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	started := now.AddDate(0, 0, -10)
	lastActivity := now

	tp := models.TraineeProgress{
		LastActivityAt:       &lastActivity,
		AttendanceRate:       100,
		CompletionPercentage: 100,
		LoginCount:           15,
		StartedAt:            &started,
	}
	assert.Equal(t, 100, EngagementScore(tp, now))
}

func TestEngagementScoreDisengaged(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	started := now.AddDate(0, 0, -60)
	lastActivity := now.AddDate(0, 0, -20)

	tp := models.TraineeProgress{
		LastActivityAt:       &lastActivity,
		AttendanceRate:       40,
		CompletionPercentage: 10,
		LoginCount:           2,
		StartedAt:            &started,
	}
	// recency 0, attendance 10, completion 2, login frequency 0
	assert.Equal(t, 12, EngagementScore(tp, now))
}

func TestEngagementScoreRecencyTiers(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		daysAgo int
		want    int
	}{
		{0, 30},
		{2, 25},
		{7, 15},
		{14, 5},
		{15, 0},
	}
	for _, tc := range cases {
		lastActivity := now.AddDate(0, 0, -tc.daysAgo)
		tp := models.TraineeProgress{LastActivityAt: &lastActivity}
		assert.Equal(t, tc.want, EngagementScore(tp, now), "days ago %d", tc.daysAgo)
	}
}

func TestEngagementScoreNoActivityEver(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, EngagementScore(models.TraineeProgress{}, now))
}

func TestEngagementScoreLoginFrequencyTiers(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	started := now.AddDate(0, 0, -10)
	cases := []struct {
		logins int
		want   int
	}{
		{10, 20},
		{5, 15},
		{2, 10},
		{1, 0},
	}
	for _, tc := range cases {
		tp := models.TraineeProgress{LoginCount: tc.logins, StartedAt: &started}
		assert.Equal(t, tc.want, EngagementScore(tp, now), "logins %d", tc.logins)
	}
}

func TestEngagementScoreClampsOutOfRangeInput(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	tp := models.TraineeProgress{
		AttendanceRate:       250,
		CompletionPercentage: -40,
	}
	score := EngagementScore(tp, now)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
	assert.Equal(t, 25, score, "over-range attendance caps at its component maximum")
}

func TestEngagementScoreIdempotent(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	started := now.AddDate(0, 0, -30)
	lastActivity := now.AddDate(0, 0, -3)
	tp := models.TraineeProgress{
		LastActivityAt:       &lastActivity,
		AttendanceRate:       85,
		CompletionPercentage: 55,
		LoginCount:           20,
		StartedAt:            &started,
	}
	first := EngagementScore(tp, now)
	second := EngagementScore(tp, now)
	assert.Equal(t, first, second)
}
