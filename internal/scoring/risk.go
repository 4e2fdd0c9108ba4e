package scoring

import (
	"math"
	"time"

	"github.com/formatrack/engagement-api/internal/models"
)

// Each detected signal contributes this much to the risk score.
const signalWeight = 20

// Two or more signals flag the trainee as at risk of dropout.
const atRiskSignalCount = 2

// RiskAssessment is the output of one risk-detection run.
type RiskAssessment struct {
	Signals    models.SignalList `json:"signals"`
	AtRisk     bool              `json:"at_risk"`
	Score      float64           `json:"score"`
	AssessedAt time.Time         `json:"assessed_at"`
}

// DetectRisk evaluates the fixed set of risk predicates against the snapshot.
// Predicates are independent; they are evaluated in a fixed order so the
// resulting signal list is deterministic. Re-running with an unchanged
// snapshot and clock reproduces the same assessment.
func (p Policy) DetectRisk(tp models.TraineeProgress, now time.Time) RiskAssessment {
	signals := models.SignalList{}

	if tp.EngagementScore < p.LowEngagementThreshold {
		signals = append(signals, models.SignalLowEngagement)
	}
	if tp.LastActivityAt == nil || wholeDaysBetween(*tp.LastActivityAt, now) > p.InactivityWindowDays {
		signals = append(signals, models.SignalProlongedInactivity)
	}
	if clampPercent(tp.AttendanceRate) < p.AttendanceFloor {
		signals = append(signals, models.SignalPoorAttendance)
	}
	if p.isSlowProgress(tp, now) {
		signals = append(signals, models.SignalSlowProgress)
	}
	if tp.MissedSessions >= p.MissedSessionsFlag {
		signals = append(signals, models.SignalFrequentAbsences)
	}

	return RiskAssessment{
		Signals:    signals,
		AtRisk:     len(signals) >= atRiskSignalCount,
		Score:      math.Min(100, float64(len(signals)*signalWeight)),
		AssessedAt: now,
	}
}

// isSlowProgress compares actual completion against the linear expectation.
// With no start date the expectation is zero, so the predicate cannot fire.
func (p Policy) isSlowProgress(tp models.TraineeProgress, now time.Time) bool {
	if tp.StartedAt == nil {
		return false
	}
	days := float64(wholeDaysBetween(*tp.StartedAt, now))
	expected := math.Min(100, days/float64(p.ExpectedProgressHorizonDays)*p.ExpectedProgressAtHorizon)
	return clampPercent(tp.CompletionPercentage) < p.SlowProgressRatio*expected
}
