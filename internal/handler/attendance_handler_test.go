package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formatrack/engagement-api/internal/models"
	"github.com/formatrack/engagement-api/internal/scoring"
	"github.com/formatrack/engagement-api/internal/service"
)

type fakeFactRepo struct {
	facts map[string]models.AttendanceFact
}

func (f *fakeFactRepo) FindByTraineeSession(ctx context.Context, traineeID, sessionID string) (*models.AttendanceFact, error) {
	if fact, ok := f.facts[traineeID+"/"+sessionID]; ok {
		return &fact, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFactRepo) ListByTraineeProgram(ctx context.Context, traineeID, programID string) ([]models.AttendanceFact, error) {
	var list []models.AttendanceFact
	for _, fact := range f.facts {
		if fact.TraineeID == traineeID {
			list = append(list, fact)
		}
	}
	return list, nil
}

func (f *fakeFactRepo) Upsert(ctx context.Context, fact *models.AttendanceFact) error {
	if f.facts == nil {
		f.facts = make(map[string]models.AttendanceFact)
	}
	f.facts[fact.TraineeID+"/"+fact.SessionID] = *fact
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]models.Session
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	if s, ok := f.sessions[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func newAttendanceRouter(facts *fakeFactRepo, sessions *fakeSessionRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewAttendanceService(service.AttendanceServiceParams{
		Facts:    facts,
		Sessions: sessions,
		Policy:   scoring.DefaultPolicy(),
		Now:      func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	})
	h := NewAttendanceHandler(svc)

	r := gin.New()
	r.POST("/trainees/:traineeId/sessions/:sessionId/present", h.MarkPresent)
	r.POST("/trainees/:traineeId/sessions/:sessionId/arrival", h.RecordArrival)
	r.GET("/trainees/:traineeId/programs/:programId/attendance", h.Summary)
	return r
}

func TestMarkPresentEndpoint(t *testing.T) {
	router := newAttendanceRouter(&fakeFactRepo{}, &fakeSessionRepo{})

	body := strings.NewReader(`{"participation_score": 7}`)
	req := httptest.NewRequest(http.MethodPost, "/trainees/trainee-1/sessions/sess-1/present", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.AttendanceFact `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.AttendanceStatusPresent, envelope.Data.Status)
	assert.Equal(t, 7, envelope.Data.ParticipationScore)
}

func TestMarkPresentEndpointRejectsBadScore(t *testing.T) {
	router := newAttendanceRouter(&fakeFactRepo{}, &fakeSessionRepo{})

	body := strings.NewReader(`{"participation_score": 42}`)
	req := httptest.NewRequest(http.MethodPost, "/trainees/trainee-1/sessions/sess-1/present", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordArrivalEndpointUnknownSession(t *testing.T) {
	router := newAttendanceRouter(&fakeFactRepo{}, &fakeSessionRepo{})

	body := strings.NewReader(`{"at": "2026-03-10T09:10:00Z"}`)
	req := httptest.NewRequest(http.MethodPost, "/trainees/trainee-1/sessions/missing/arrival", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordArrivalEndpointLate(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sessions := &fakeSessionRepo{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", ProgramID: "prog-1", StartsAt: &start},
	}}
	router := newAttendanceRouter(&fakeFactRepo{}, sessions)

	body := strings.NewReader(`{"at": "2026-03-10T09:10:00Z"}`)
	req := httptest.NewRequest(http.MethodPost, "/trainees/trainee-1/sessions/sess-1/arrival", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.AttendanceFact `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.AttendanceStatusLate, envelope.Data.Status)
	require.NotNil(t, envelope.Data.MinutesLate)
	assert.Equal(t, 10, *envelope.Data.MinutesLate)
}

func TestAttendanceSummaryEndpoint(t *testing.T) {
	facts := &fakeFactRepo{facts: map[string]models.AttendanceFact{
		"trainee-1/s1": {TraineeID: "trainee-1", SessionID: "s1", Status: models.AttendanceStatusPresent},
		"trainee-1/s2": {TraineeID: "trainee-1", SessionID: "s2", Status: models.AttendanceStatusAbsent},
	}}
	router := newAttendanceRouter(facts, &fakeSessionRepo{})

	req := httptest.NewRequest(http.MethodGet, "/trainees/trainee-1/programs/prog-1/attendance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.AttendanceSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.SessionCount)
	assert.Equal(t, 1, envelope.Data.MissedSessions)
	assert.InDelta(t, 50.0, envelope.Data.Rate, 0.001)
}
