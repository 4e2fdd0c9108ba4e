package scoring

import (
	"time"

	"github.com/formatrack/engagement-api/internal/models"
)

// Attendance weights feeding the attendance-rate calculation.
const (
	weightPresent         = 1.0
	weightLate            = 0.8
	weightPartial         = 0.6
	weightExcusedAbsent   = 0.3
	weightUnexcusedAbsent = 0.0
)

// AttendanceWeight maps an attendance fact to its contribution in [0,1].
func AttendanceWeight(fact models.AttendanceFact) float64 {
	switch fact.Status {
	case models.AttendanceStatusPresent:
		return weightPresent
	case models.AttendanceStatusLate:
		return weightLate
	case models.AttendanceStatusPartial:
		return weightPartial
	case models.AttendanceStatusAbsent:
		if fact.Excused {
			return weightExcusedAbsent
		}
		return weightUnexcusedAbsent
	default:
		return weightUnexcusedAbsent
	}
}

// ClassifyArrival evaluates an arrival time against the session start. It
// returns the resulting status and the lateness in whole minutes. The minutes
// pointer is nil when the session start is unknown: "not computed" is distinct
// from zero lateness. A present record is reclassified to late only when the
// arrival exceeds the grace window.
func (p Policy) ClassifyArrival(status models.AttendanceStatus, arrival time.Time, sessionStart *time.Time) (models.AttendanceStatus, *int) {
	if sessionStart == nil {
		return status, nil
	}
	minutes := int(arrival.Sub(*sessionStart).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	if status == models.AttendanceStatusPresent && minutes > p.LatenessGraceMinutes {
		status = models.AttendanceStatusLate
	}
	return status, &minutes
}

// ClassifyDeparture is the symmetric check against the session end: a present
// record leaving more than the grace window early becomes partial.
func (p Policy) ClassifyDeparture(status models.AttendanceStatus, departure time.Time, sessionEnd *time.Time) (models.AttendanceStatus, *int) {
	if sessionEnd == nil {
		return status, nil
	}
	minutes := int(sessionEnd.Sub(departure).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	if status == models.AttendanceStatusPresent && minutes > p.EarlyDepartureGraceMinutes {
		status = models.AttendanceStatusPartial
	}
	return status, &minutes
}

// AttendanceRate aggregates weighted attendance over a set of facts into a
// percentage in [0,100]. No facts yields 0.
func AttendanceRate(facts []models.AttendanceFact) float64 {
	if len(facts) == 0 {
		return 0
	}
	var total float64
	for _, fact := range facts {
		total += AttendanceWeight(fact)
	}
	return clampPercent(round2(total / float64(len(facts)) * 100))
}

// MissedSessions counts absences, excused or not.
func MissedSessions(facts []models.AttendanceFact) int {
	count := 0
	for _, fact := range facts {
		if fact.Status == models.AttendanceStatusAbsent {
			count++
		}
	}
	return count
}
