package dto

import (
	"time"

	"github.com/formatrack/engagement-api/internal/models"
)

// AssessmentResponse is the engagement and dropout-risk view for one trainee
// and program.
type AssessmentResponse struct {
	TraineeID       string            `json:"trainee_id"`
	ProgramID       string            `json:"program_id"`
	EngagementScore int               `json:"engagement_score"`
	Signals         models.SignalList `json:"signals"`
	AtRiskOfDropout bool              `json:"at_risk_of_dropout"`
	RiskScore       float64           `json:"risk_score"`
	AssessedAt      time.Time         `json:"assessed_at"`
}

// AlternanceResponse is the blended work-study view.
type AlternanceResponse struct {
	TraineeID             string                        `json:"trainee_id"`
	ProgramID             string                        `json:"program_id"`
	CenterCompletionRate  float64                       `json:"center_completion_rate"`
	CompanyCompletionRate float64                       `json:"company_completion_rate"`
	Factors               []models.AlternanceRiskFactor `json:"factors"`
	AlternanceRiskScore   int                           `json:"alternance_risk_score"`
	AlternanceStatus      models.AlternanceStatus       `json:"alternance_status"`
	SkillsAcquisitionRate float64                       `json:"skills_acquisition_rate"`
	MissionCount          int                           `json:"mission_count"`
	SkillCount            int                           `json:"skill_count"`
}

// BulkRecomputeResponse acknowledges an accepted bulk recompute request.
type BulkRecomputeResponse struct {
	ProgramID    string `json:"program_id"`
	TraineeCount int    `json:"trainee_count"`
	BatchCount   int    `json:"batch_count"`
}

// BulkBatchFailure reports one failed batch of a bulk run.
type BulkBatchFailure struct {
	Batch  int    `json:"batch"`
	Reason string `json:"reason"`
}

// BulkRunResult summarises a completed bulk run.
type BulkRunResult struct {
	Processed int                `json:"processed"`
	Failed    int                `json:"failed"`
	Batches   int                `json:"batches"`
	Failures  []BulkBatchFailure `json:"failures,omitempty"`
}
