package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formatrack/engagement-api/internal/models"
	"github.com/formatrack/engagement-api/internal/scoring"
)

type mockFactRepo struct {
	facts    map[string]models.AttendanceFact
	upserted []models.AttendanceFact
}

func factKey(traineeID, sessionID string) string { return traineeID + "/" + sessionID }

func (m *mockFactRepo) FindByTraineeSession(ctx context.Context, traineeID, sessionID string) (*models.AttendanceFact, error) {
	if f, ok := m.facts[factKey(traineeID, sessionID)]; ok {
		return &f, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFactRepo) ListByTraineeProgram(ctx context.Context, traineeID, programID string) ([]models.AttendanceFact, error) {
	var list []models.AttendanceFact
	for _, f := range m.facts {
		if f.TraineeID == traineeID {
			list = append(list, f)
		}
	}
	return list, nil
}

func (m *mockFactRepo) Upsert(ctx context.Context, fact *models.AttendanceFact) error {
	if m.facts == nil {
		m.facts = make(map[string]models.AttendanceFact)
	}
	m.facts[factKey(fact.TraineeID, fact.SessionID)] = *fact
	m.upserted = append(m.upserted, *fact)
	return nil
}

type mockSessionRepo struct {
	sessions map[string]models.Session
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

type mockRefresher struct {
	calls [][2]string
	err   error
}

func (m *mockRefresher) Recompute(ctx context.Context, traineeID, programID string) error {
	m.calls = append(m.calls, [2]string{traineeID, programID})
	return m.err
}

func newAttendanceService(facts *mockFactRepo, sessions *mockSessionRepo, refresher *mockRefresher) *AttendanceService {
	return NewAttendanceService(AttendanceServiceParams{
		Facts:     facts,
		Sessions:  sessions,
		Refresher: refresher,
		Policy:    scoring.DefaultPolicy(),
		Now:       func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	})
}

func TestMarkPresentCreatesFactAndTriggersRecompute(t *testing.T) {
	facts := &mockFactRepo{}
	sessions := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", ProgramID: "prog-1"},
	}}
	refresher := &mockRefresher{}
	svc := newAttendanceService(facts, sessions, refresher)

	fact, err := svc.MarkPresent(context.Background(), "trainee-1", "sess-1", MarkPresentRequest{ParticipationScore: 8})
	require.NoError(t, err)

	assert.Equal(t, models.AttendanceStatusPresent, fact.Status)
	assert.Equal(t, 8, fact.ParticipationScore)
	assert.Nil(t, fact.MinutesLate)
	assert.Nil(t, fact.AbsenceReason)
	require.Len(t, refresher.calls, 1)
	assert.Equal(t, [2]string{"trainee-1", "prog-1"}, refresher.calls[0])
}

func TestMarkPresentClearsAbsenceFields(t *testing.T) {
	reason := "sick"
	minutes := 12
	facts := &mockFactRepo{facts: map[string]models.AttendanceFact{
		factKey("trainee-1", "sess-1"): {
			TraineeID:     "trainee-1",
			SessionID:     "sess-1",
			Status:        models.AttendanceStatusAbsent,
			Excused:       true,
			AbsenceReason: &reason,
			MinutesLate:   &minutes,
		},
	}}
	sessions := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", ProgramID: "prog-1"},
	}}
	svc := newAttendanceService(facts, sessions, &mockRefresher{})

	fact, err := svc.MarkPresent(context.Background(), "trainee-1", "sess-1", MarkPresentRequest{ParticipationScore: 5})
	require.NoError(t, err)

	assert.Equal(t, models.AttendanceStatusPresent, fact.Status)
	assert.False(t, fact.Excused)
	assert.Nil(t, fact.AbsenceReason)
	assert.Nil(t, fact.MinutesLate)
	assert.Nil(t, fact.MinutesEarlyDeparture)
}

func TestMarkAbsentResetsArrivalAndParticipation(t *testing.T) {
	arrival := time.Date(2026, 3, 10, 9, 4, 0, 0, time.UTC)
	facts := &mockFactRepo{facts: map[string]models.AttendanceFact{
		factKey("trainee-1", "sess-1"): {
			TraineeID:          "trainee-1",
			SessionID:          "sess-1",
			Status:             models.AttendanceStatusPresent,
			ParticipationScore: 9,
			ArrivalTime:        &arrival,
		},
	}}
	sessions := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", ProgramID: "prog-1"},
	}}
	svc := newAttendanceService(facts, sessions, &mockRefresher{})

	reason := "medical leave"
	fact, err := svc.MarkAbsent(context.Background(), "trainee-1", "sess-1", MarkAbsentRequest{Excused: true, Reason: &reason})
	require.NoError(t, err)

	assert.Equal(t, models.AttendanceStatusAbsent, fact.Status)
	assert.True(t, fact.Excused)
	assert.Equal(t, 0, fact.ParticipationScore)
	assert.Nil(t, fact.ArrivalTime)
	assert.Nil(t, fact.DepartureTime)
	require.NotNil(t, fact.AbsenceReason)
	assert.Equal(t, "medical leave", *fact.AbsenceReason)
}

func TestMarkPresentRejectsInvalidParticipation(t *testing.T) {
	svc := newAttendanceService(&mockFactRepo{}, &mockSessionRepo{}, &mockRefresher{})

	_, err := svc.MarkPresent(context.Background(), "trainee-1", "sess-1", MarkPresentRequest{ParticipationScore: 11})
	require.Error(t, err)
}

func TestMarkPresentCompanyRatingBounds(t *testing.T) {
	cases := []struct {
		name    string
		rating  int
		wantErr bool
	}{
		{"floor", 0, false},
		{"ceiling", 10, false},
		{"mid", 8, false},
		{"below floor", -1, true},
		{"above ceiling", 11, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := &mockSessionRepo{sessions: map[string]models.Session{
				"sess-1": {ID: "sess-1", ProgramID: "prog-1"},
			}}
			svc := newAttendanceService(&mockFactRepo{}, sessions, &mockRefresher{})

			rating := tc.rating
			fact, err := svc.MarkPresent(context.Background(), "trainee-1", "sess-1", MarkPresentRequest{
				ParticipationScore: 7,
				CompanyRating:      &rating,
			})
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, fact.CompanyRating)
			assert.Equal(t, tc.rating, *fact.CompanyRating)
		})
	}
}

func TestRecordArrivalBeyondGraceIsLate(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	facts := &mockFactRepo{}
	sessions := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", ProgramID: "prog-1", StartsAt: &start},
	}}
	svc := newAttendanceService(facts, sessions, &mockRefresher{})

	fact, err := svc.RecordArrival(context.Background(), "trainee-1", "sess-1", RecordTimeRequest{
		At: start.Add(10 * time.Minute),
	})
	require.NoError(t, err)

	assert.Equal(t, models.AttendanceStatusLate, fact.Status)
	require.NotNil(t, fact.MinutesLate)
	assert.Equal(t, 10, *fact.MinutesLate)
	require.NotNil(t, fact.ArrivalTime)
}

func TestRecordArrivalWithinGraceStaysPresent(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sessions := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", ProgramID: "prog-1", StartsAt: &start},
	}}
	svc := newAttendanceService(&mockFactRepo{}, sessions, &mockRefresher{})

	fact, err := svc.RecordArrival(context.Background(), "trainee-1", "sess-1", RecordTimeRequest{
		At: start.Add(4 * time.Minute),
	})
	require.NoError(t, err)

	assert.Equal(t, models.AttendanceStatusPresent, fact.Status)
	require.NotNil(t, fact.MinutesLate)
	assert.Equal(t, 4, *fact.MinutesLate)
}

func TestRecordArrivalUnknownSession(t *testing.T) {
	svc := newAttendanceService(&mockFactRepo{}, &mockSessionRepo{}, &mockRefresher{})

	_, err := svc.RecordArrival(context.Background(), "trainee-1", "missing", RecordTimeRequest{
		At: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestRecordDepartureBeyondGraceIsPartial(t *testing.T) {
	end := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	sessions := &mockSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", ProgramID: "prog-1", EndsAt: &end},
	}}
	svc := newAttendanceService(&mockFactRepo{}, sessions, &mockRefresher{})

	fact, err := svc.RecordDeparture(context.Background(), "trainee-1", "sess-1", RecordTimeRequest{
		At: end.Add(-30 * time.Minute),
	})
	require.NoError(t, err)

	assert.Equal(t, models.AttendanceStatusPartial, fact.Status)
	require.NotNil(t, fact.MinutesEarlyDeparture)
	assert.Equal(t, 30, *fact.MinutesEarlyDeparture)
}

func TestSummaryAggregatesFacts(t *testing.T) {
	facts := &mockFactRepo{facts: map[string]models.AttendanceFact{
		factKey("trainee-1", "s1"): {TraineeID: "trainee-1", SessionID: "s1", Status: models.AttendanceStatusPresent},
		factKey("trainee-1", "s2"): {TraineeID: "trainee-1", SessionID: "s2", Status: models.AttendanceStatusLate},
		factKey("trainee-1", "s3"): {TraineeID: "trainee-1", SessionID: "s3", Status: models.AttendanceStatusAbsent, Excused: true},
	}}
	svc := newAttendanceService(facts, &mockSessionRepo{}, nil)

	summary, err := svc.Summary(context.Background(), "trainee-1", "prog-1")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.SessionCount)
	assert.Equal(t, 1, summary.Present)
	assert.Equal(t, 1, summary.Late)
	assert.Equal(t, 1, summary.ExcusedAbsences)
	assert.Equal(t, 1, summary.MissedSessions)
	assert.InDelta(t, 70.0, summary.Rate, 0.001)
}
