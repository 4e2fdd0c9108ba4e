package scoring

import (
	"time"

	"github.com/formatrack/engagement-api/internal/models"
)

// Per-component caps of the engagement score. The four components are summed
// and the result clamped to [0,100].
const (
	recencyMax        = 30
	attendanceMax     = 25
	completionMax     = 25
	loginFrequencyMax = 20
)

// EngagementScore computes the 0-100 composite engagement score from the
// trainee's current snapshot. The function is pure: identical snapshot and
// clock always yield the identical score.
func EngagementScore(tp models.TraineeProgress, now time.Time) int {
	score := recencyComponent(tp.LastActivityAt, now) +
		attendanceComponent(tp.AttendanceRate) +
		completionComponent(tp.CompletionPercentage) +
		loginFrequencyComponent(tp.LoginCount, tp.StartedAt, now)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func recencyComponent(lastActivity *time.Time, now time.Time) int {
	if lastActivity == nil {
		return 0
	}
	days := wholeDaysBetween(*lastActivity, now)
	switch {
	case days <= 0:
		return recencyMax
	case days <= 2:
		return 25
	case days <= 7:
		return 15
	case days <= 14:
		return 5
	default:
		return 0
	}
}

func attendanceComponent(rate float64) int {
	return int(clampPercent(rate) * float64(attendanceMax) / 100)
}

func completionComponent(pct float64) int {
	return int(clampPercent(pct) * float64(completionMax) / 100)
}

func loginFrequencyComponent(loginCount int, startedAt *time.Time, now time.Time) int {
	days := 1
	if startedAt != nil {
		if d := wholeDaysBetween(*startedAt, now); d > 1 {
			days = d
		}
	}
	perDay := float64(loginCount) / float64(days)
	switch {
	case perDay >= 1.0:
		return loginFrequencyMax
	case perDay >= 0.5:
		return 15
	case perDay >= 0.2:
		return 10
	default:
		return 0
	}
}

// wholeDaysBetween floors the elapsed time to whole days, never negative.
func wholeDaysBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
