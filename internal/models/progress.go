package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DifficultySignal is one of the fixed dropout-risk predicates.
type DifficultySignal string

const (
	SignalLowEngagement       DifficultySignal = "low_engagement"
	SignalProlongedInactivity DifficultySignal = "prolonged_inactivity"
	SignalPoorAttendance      DifficultySignal = "poor_attendance"
	SignalSlowProgress        DifficultySignal = "slow_progress"
	SignalFrequentAbsences    DifficultySignal = "frequent_absences"
)

// ModuleProgressEntry tracks completion for a single course module.
type ModuleProgressEntry struct {
	Completed   bool       `json:"completed"`
	Percentage  float64    `json:"percentage"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ChapterProgressEntry tracks completion for a single chapter.
type ChapterProgressEntry struct {
	Completed   bool       `json:"completed"`
	Percentage  float64    `json:"percentage"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ModuleProgressMap keys module progress by module ID, persisted as JSONB.
type ModuleProgressMap map[string]ModuleProgressEntry

// ChapterProgressMap keys chapter progress by chapter ID, persisted as JSONB.
type ChapterProgressMap map[string]ChapterProgressEntry

// SignalList is the ordered set of detected difficulty signals, persisted as JSONB.
type SignalList []DifficultySignal

// Contains reports whether the signal is part of the list.
func (l SignalList) Contains(signal DifficultySignal) bool {
	for _, s := range l {
		if s == signal {
			return true
		}
	}
	return false
}

// TraineeProgress is the engine's unit of computation: one record per
// trainee and program, mutated on every activity or attendance event and on
// explicit recomputes. All percentage fields stay clamped to [0,100].
type TraineeProgress struct {
	ID        string `db:"id" json:"id"`
	TraineeID string `db:"trainee_id" json:"trainee_id"`
	ProgramID string `db:"program_id" json:"program_id"`

	CompletionPercentage float64            `db:"completion_percentage" json:"completion_percentage"`
	ModuleProgress       ModuleProgressMap  `db:"module_progress" json:"module_progress"`
	ChapterProgress      ChapterProgressMap `db:"chapter_progress" json:"chapter_progress"`

	LastActivityAt       *time.Time `db:"last_activity_at" json:"last_activity_at,omitempty"`
	EngagementScore      int        `db:"engagement_score" json:"engagement_score"`
	DifficultySignals    SignalList `db:"difficulty_signals" json:"difficulty_signals"`
	AtRiskOfDropout      bool       `db:"at_risk_of_dropout" json:"at_risk_of_dropout"`
	RiskScore            float64    `db:"risk_score" json:"risk_score"`
	LastRiskAssessmentAt *time.Time `db:"last_risk_assessment_at" json:"last_risk_assessment_at,omitempty"`

	TotalTimeSpentMinutes  int     `db:"total_time_spent_minutes" json:"total_time_spent_minutes"`
	LoginCount             int     `db:"login_count" json:"login_count"`
	AverageSessionDuration float64 `db:"average_session_duration" json:"average_session_duration"`

	AttendanceRate float64 `db:"attendance_rate" json:"attendance_rate"`
	MissedSessions int     `db:"missed_sessions" json:"missed_sessions"`

	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`

	// Work-study extension, nil/empty for center-only trainees.
	CenterCompletionRate  *float64           `db:"center_completion_rate" json:"center_completion_rate,omitempty"`
	CompanyCompletionRate *float64           `db:"company_completion_rate" json:"company_completion_rate,omitempty"`
	MissionProgress       MissionProgressMap `db:"mission_progress" json:"mission_progress,omitempty"`
	SkillsAcquired        SkillMap           `db:"skills_acquired" json:"skills_acquired,omitempty"`
	AlternanceStatus      *AlternanceStatus  `db:"alternance_status" json:"alternance_status,omitempty"`
	AlternanceRiskScore   *int               `db:"alternance_risk_score" json:"alternance_risk_score,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Value marshals the module map to JSON for persistence.
func (m ModuleProgressMap) Value() (driver.Value, error) {
	return marshalJSONB(m)
}

// Scan unmarshals a JSONB payload into the module map.
func (m *ModuleProgressMap) Scan(value interface{}) error {
	return scanJSONB(value, m, "ModuleProgressMap")
}

// Value marshals the chapter map to JSON for persistence.
func (m ChapterProgressMap) Value() (driver.Value, error) {
	return marshalJSONB(m)
}

// Scan unmarshals a JSONB payload into the chapter map.
func (m *ChapterProgressMap) Scan(value interface{}) error {
	return scanJSONB(value, m, "ChapterProgressMap")
}

// Value marshals the signal list to JSON for persistence.
func (l SignalList) Value() (driver.Value, error) {
	if l == nil {
		l = SignalList{}
	}
	return marshalJSONB(l)
}

// Scan unmarshals a JSONB payload into the signal list.
func (l *SignalList) Scan(value interface{}) error {
	return scanJSONB(value, l, "SignalList")
}

func marshalJSONB(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb column: %w", err)
	}
	return data, nil
}

func scanJSONB(value interface{}, dest interface{}, label string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, label)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", label, err)
	}
	return nil
}
