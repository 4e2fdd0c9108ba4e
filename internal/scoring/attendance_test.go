package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formatrack/engagement-api/internal/models"
)

func TestAttendanceWeightTable(t *testing.T) {
	cases := []struct {
		name    string
		status  models.AttendanceStatus
		excused bool
		want    float64
	}{
		{"present", models.AttendanceStatusPresent, false, 1.0},
		{"late", models.AttendanceStatusLate, false, 0.8},
		{"partial", models.AttendanceStatusPartial, false, 0.6},
		{"absent excused", models.AttendanceStatusAbsent, true, 0.3},
		{"absent unexcused", models.AttendanceStatusAbsent, false, 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fact := models.AttendanceFact{Status: tc.status, Excused: tc.excused}
			assert.Equal(t, tc.want, AttendanceWeight(fact))
		})
	}
}

func TestClassifyArrivalReclassifiesLate(t *testing.T) {
	policy := DefaultPolicy()
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	arrival := start.Add(10 * time.Minute)

	status, minutes := policy.ClassifyArrival(models.AttendanceStatusPresent, arrival, &start)
	assert.Equal(t, models.AttendanceStatusLate, status)
	require.NotNil(t, minutes)
	assert.Equal(t, 10, *minutes)
}

func TestClassifyArrivalWithinGraceStaysPresent(t *testing.T) {
	policy := DefaultPolicy()
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	arrival := start.Add(4 * time.Minute)

	status, minutes := policy.ClassifyArrival(models.AttendanceStatusPresent, arrival, &start)
	assert.Equal(t, models.AttendanceStatusPresent, status)
	require.NotNil(t, minutes)
	assert.Equal(t, 4, *minutes)
}

func TestClassifyArrivalEarlyArrivalIsZeroMinutes(t *testing.T) {
	policy := DefaultPolicy()
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	arrival := start.Add(-20 * time.Minute)

	status, minutes := policy.ClassifyArrival(models.AttendanceStatusPresent, arrival, &start)
	assert.Equal(t, models.AttendanceStatusPresent, status)
	require.NotNil(t, minutes)
	assert.Equal(t, 0, *minutes)
}

func TestClassifyArrivalUnknownSessionStart(t *testing.T) {
	policy := DefaultPolicy()
	arrival := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

	status, minutes := policy.ClassifyArrival(models.AttendanceStatusPresent, arrival, nil)
	assert.Equal(t, models.AttendanceStatusPresent, status)
	assert.Nil(t, minutes, "lateness must stay uncomputed without a session start")
}

func TestClassifyArrivalDoesNotTouchAbsent(t *testing.T) {
	policy := DefaultPolicy()
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	arrival := start.Add(30 * time.Minute)

	status, _ := policy.ClassifyArrival(models.AttendanceStatusAbsent, arrival, &start)
	assert.Equal(t, models.AttendanceStatusAbsent, status)
}

func TestClassifyDepartureReclassifiesPartial(t *testing.T) {
	policy := DefaultPolicy()
	end := time.Date(2025, 3, 3, 17, 0, 0, 0, time.UTC)
	departure := end.Add(-40 * time.Minute)

	status, minutes := policy.ClassifyDeparture(models.AttendanceStatusPresent, departure, &end)
	assert.Equal(t, models.AttendanceStatusPartial, status)
	require.NotNil(t, minutes)
	assert.Equal(t, 40, *minutes)
}

func TestClassifyDepartureWithinGrace(t *testing.T) {
	policy := DefaultPolicy()
	end := time.Date(2025, 3, 3, 17, 0, 0, 0, time.UTC)
	departure := end.Add(-10 * time.Minute)

	status, minutes := policy.ClassifyDeparture(models.AttendanceStatusPresent, departure, &end)
	assert.Equal(t, models.AttendanceStatusPresent, status)
	require.NotNil(t, minutes)
	assert.Equal(t, 10, *minutes)
}

func TestAttendanceRate(t *testing.T) {
	facts := []models.AttendanceFact{
		{Status: models.AttendanceStatusPresent},
		{Status: models.AttendanceStatusLate},
		{Status: models.AttendanceStatusAbsent, Excused: true},
		{Status: models.AttendanceStatusAbsent},
	}
	// (1.0 + 0.8 + 0.3 + 0.0) / 4 * 100
	assert.InDelta(t, 52.5, AttendanceRate(facts), 0.001)
	assert.Equal(t, 2, MissedSessions(facts))
}

func TestAttendanceRateNoFacts(t *testing.T) {
	assert.Equal(t, 0.0, AttendanceRate(nil))
	assert.Equal(t, 0, MissedSessions(nil))
}
