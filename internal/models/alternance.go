package models

import (
	"database/sql/driver"
	"time"
)

// AlternanceStatus is the derived work-study state.
type AlternanceStatus string

const (
	AlternanceActive       AlternanceStatus = "active"
	AlternanceNeedsSupport AlternanceStatus = "needs_support"
	AlternanceAtRisk       AlternanceStatus = "at_risk"
	AlternancePaused       AlternanceStatus = "paused"
	AlternanceCompleted    AlternanceStatus = "completed"
)

// Valid returns true when the status is a supported value.
func (s AlternanceStatus) Valid() bool {
	switch s {
	case AlternanceActive, AlternanceNeedsSupport, AlternanceAtRisk, AlternancePaused, AlternanceCompleted:
		return true
	default:
		return false
	}
}

// MissionStatus tracks the lifecycle of a company-side mission.
type MissionStatus string

const (
	MissionPlanned    MissionStatus = "planned"
	MissionInProgress MissionStatus = "in_progress"
	MissionDone       MissionStatus = "done"
)

// MissionProgressEntry tracks one company mission's completion.
type MissionProgressEntry struct {
	Title          string        `json:"title,omitempty"`
	CompletionRate float64       `json:"completion_rate"`
	Status         MissionStatus `json:"status"`
}

// SkillEntry records one acquired skill on the 0-20 scale.
type SkillEntry struct {
	Name    string `json:"name,omitempty"`
	Level   int    `json:"level"`
	Context string `json:"context,omitempty"`
}

// MissionProgressMap keys mission progress by mission ID, persisted as JSONB.
type MissionProgressMap map[string]MissionProgressEntry

// SkillMap keys acquired skills by skill code, persisted as JSONB.
type SkillMap map[string]SkillEntry

// Value marshals the mission map to JSON for persistence.
func (m MissionProgressMap) Value() (driver.Value, error) {
	return marshalJSONB(m)
}

// Scan unmarshals a JSONB payload into the mission map.
func (m *MissionProgressMap) Scan(value interface{}) error {
	return scanJSONB(value, m, "MissionProgressMap")
}

// Value marshals the skill map to JSON for persistence.
func (m SkillMap) Value() (driver.Value, error) {
	return marshalJSONB(m)
}

// Scan unmarshals a JSONB payload into the skill map.
func (m *SkillMap) Scan(value interface{}) error {
	return scanJSONB(value, m, "SkillMap")
}

// RiskSeverity grades an alternance risk factor.
type RiskSeverity string

const (
	SeverityHigh   RiskSeverity = "high"
	SeverityMedium RiskSeverity = "medium"
	SeverityLow    RiskSeverity = "low"
)

// Weight returns the score contribution of the severity.
func (s RiskSeverity) Weight() int {
	switch s {
	case SeverityHigh:
		return 20
	case SeverityMedium:
		return 10
	case SeverityLow:
		return 5
	default:
		return 0
	}
}

// AlternanceRiskFactor names one detected work-study risk condition.
type AlternanceRiskFactor struct {
	Code     string       `json:"code"`
	Severity RiskSeverity `json:"severity"`
}

// AlternanceContract links a trainee to a host company.
type AlternanceContract struct {
	ID          string     `db:"id" json:"id"`
	TraineeID   string     `db:"trainee_id" json:"trainee_id"`
	ProgramID   string     `db:"program_id" json:"program_id"`
	CompanyName string     `db:"company_name" json:"company_name"`
	StartsAt    *time.Time `db:"starts_at" json:"starts_at,omitempty"`
	EndsAt      *time.Time `db:"ends_at" json:"ends_at,omitempty"`
	Active      bool       `db:"active" json:"active"`
}

// Mission is a company-side assignment row.
type Mission struct {
	ID             string        `db:"id" json:"id"`
	ContractID     string        `db:"contract_id" json:"contract_id"`
	Title          string        `db:"title" json:"title"`
	CompletionRate float64       `db:"completion_rate" json:"completion_rate"`
	Status         MissionStatus `db:"status" json:"status"`
}

// Skill is an acquired-skill row recorded against a contract.
type Skill struct {
	ID         string `db:"id" json:"id"`
	ContractID string `db:"contract_id" json:"contract_id"`
	Code       string `db:"code" json:"code"`
	Name       string `db:"name" json:"name"`
	Level      int    `db:"level" json:"level"`
	Context    string `db:"context" json:"context"`
}
