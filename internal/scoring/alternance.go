package scoring

import (
	"math"

	"github.com/formatrack/engagement-api/internal/models"
)

// Alternance risk factor codes.
const (
	FactorLowCenterRate  = "low_center_rate"
	FactorLowCompanyRate = "low_company_rate"
	FactorTrackImbalance = "track_imbalance"
	FactorSparseSkills   = "sparse_skills"
)

// Status derivation thresholds for the work-study state machine.
const (
	completedOverallRate = 95
	atRiskScoreFloor     = 70
	needsSupportFloor    = 50
	pausedOverallRate    = 10
)

// AlternanceAssessment is the blended center/company view for a work-study
// trainee.
type AlternanceAssessment struct {
	CenterRate            float64                       `json:"center_rate"`
	CompanyRate           float64                       `json:"company_rate"`
	Factors               []models.AlternanceRiskFactor `json:"factors"`
	RiskScore             int                           `json:"risk_score"`
	Status                models.AlternanceStatus       `json:"status"`
	SkillsAcquisitionRate float64                       `json:"skills_acquisition_rate"`
}

// BlendAlternance combines the center-side completion rate with the
// company-side mission progress, detects work-study risk factors and derives
// the alternance status on top of the base dropout risk score.
func (p Policy) BlendAlternance(tp models.TraineeProgress, baseRiskScore float64) AlternanceAssessment {
	centerRate := clampPercent(tp.CompletionPercentage)
	companyRate := missionCompletionRate(tp.MissionProgress)

	factors := p.detectFactors(centerRate, companyRate, tp.SkillsAcquired)

	score := baseRiskScore
	for _, factor := range factors {
		score += float64(factor.Severity.Weight())
	}
	riskScore := int(math.Min(100, math.Max(0, score)))

	return AlternanceAssessment{
		CenterRate:            centerRate,
		CompanyRate:           companyRate,
		Factors:               factors,
		RiskScore:             riskScore,
		Status:                deriveStatus(centerRate, companyRate, riskScore),
		SkillsAcquisitionRate: p.SkillsAcquisitionRate(tp.SkillsAcquired),
	}
}

// SkillsAcquisitionRate is the share of recorded skills at or above the
// mastery level, as a percentage. No recorded skills yields 0.
func (p Policy) SkillsAcquisitionRate(skills models.SkillMap) float64 {
	if len(skills) == 0 {
		return 0
	}
	mastered := 0
	for _, skill := range skills {
		if skill.Level >= p.SkillMasteryLevel {
			mastered++
		}
	}
	return round2(float64(mastered) / float64(len(skills)) * 100)
}

func (p Policy) detectFactors(centerRate, companyRate float64, skills models.SkillMap) []models.AlternanceRiskFactor {
	factors := []models.AlternanceRiskFactor{}
	if centerRate < p.LowTrackRate {
		factors = append(factors, models.AlternanceRiskFactor{Code: FactorLowCenterRate, Severity: models.SeverityHigh})
	}
	if companyRate < p.LowTrackRate {
		factors = append(factors, models.AlternanceRiskFactor{Code: FactorLowCompanyRate, Severity: models.SeverityHigh})
	}
	if math.Abs(centerRate-companyRate) > p.TrackImbalancePoints {
		factors = append(factors, models.AlternanceRiskFactor{Code: FactorTrackImbalance, Severity: models.SeverityMedium})
	}
	if len(skills) < p.MinSkillCount {
		factors = append(factors, models.AlternanceRiskFactor{Code: FactorSparseSkills, Severity: models.SeverityMedium})
	}
	return factors
}

// deriveStatus applies the status priority order; the first match wins.
func deriveStatus(centerRate, companyRate float64, riskScore int) models.AlternanceStatus {
	overall := (centerRate + companyRate) / 2
	switch {
	case overall >= completedOverallRate:
		return models.AlternanceCompleted
	case riskScore >= atRiskScoreFloor:
		return models.AlternanceAtRisk
	case riskScore >= needsSupportFloor:
		return models.AlternanceNeedsSupport
	case overall < pausedOverallRate:
		return models.AlternancePaused
	default:
		return models.AlternanceActive
	}
}

func missionCompletionRate(missions models.MissionProgressMap) float64 {
	if len(missions) == 0 {
		return 0
	}
	var total float64
	for _, mission := range missions {
		total += clampPercent(mission.CompletionRate)
	}
	return round2(total / float64(len(missions)))
}
