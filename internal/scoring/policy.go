package scoring

import (
	"math"

	"github.com/formatrack/engagement-api/pkg/config"
)

// Policy names every threshold the engine applies. The values are policy
// constants, not algorithm structure: adjusting them must never change the
// control flow of the scoring functions.
type Policy struct {
	// Attendance reclassification.
	LatenessGraceMinutes       int
	EarlyDepartureGraceMinutes int

	// Risk predicates.
	LowEngagementThreshold int
	InactivityWindowDays   int
	AttendanceFloor        float64
	MissedSessionsFlag     int

	// Slow-progress heuristic: expected completion grows linearly, reaching
	// ExpectedProgressAtHorizon percent after ExpectedProgressHorizonDays,
	// capped at 100. A trainee below SlowProgressRatio of the expected value
	// is flagged.
	SlowProgressRatio           float64
	ExpectedProgressHorizonDays int
	ExpectedProgressAtHorizon   float64

	// Work-study blending.
	SkillMasteryLevel    int
	MinSkillCount        int
	LowTrackRate         float64
	TrackImbalancePoints float64
}

// DefaultPolicy returns the production scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		LatenessGraceMinutes:        5,
		EarlyDepartureGraceMinutes:  15,
		LowEngagementThreshold:      30,
		InactivityWindowDays:        7,
		AttendanceFloor:             70,
		MissedSessionsFlag:          3,
		SlowProgressRatio:           0.5,
		ExpectedProgressHorizonDays: 30,
		ExpectedProgressAtHorizon:   50,
		SkillMasteryLevel:           16,
		MinSkillCount:               5,
		LowTrackRate:                50,
		TrackImbalancePoints:        30,
	}
}

// PolicyFromConfig maps the environment-driven scoring configuration onto a
// Policy, falling back to the defaults for unset values.
func PolicyFromConfig(cfg config.ScoringConfig) Policy {
	p := DefaultPolicy()
	if cfg.LatenessGraceMinutes > 0 {
		p.LatenessGraceMinutes = cfg.LatenessGraceMinutes
	}
	if cfg.EarlyDepartureGraceMinutes > 0 {
		p.EarlyDepartureGraceMinutes = cfg.EarlyDepartureGraceMinutes
	}
	if cfg.LowEngagementThreshold > 0 {
		p.LowEngagementThreshold = cfg.LowEngagementThreshold
	}
	if cfg.InactivityWindowDays > 0 {
		p.InactivityWindowDays = cfg.InactivityWindowDays
	}
	if cfg.AttendanceFloor > 0 {
		p.AttendanceFloor = cfg.AttendanceFloor
	}
	if cfg.MissedSessionsFlag > 0 {
		p.MissedSessionsFlag = cfg.MissedSessionsFlag
	}
	if cfg.SlowProgressRatio > 0 {
		p.SlowProgressRatio = cfg.SlowProgressRatio
	}
	if cfg.ExpectedProgressHorizonDays > 0 {
		p.ExpectedProgressHorizonDays = cfg.ExpectedProgressHorizonDays
	}
	if cfg.ExpectedProgressAtHorizon > 0 {
		p.ExpectedProgressAtHorizon = cfg.ExpectedProgressAtHorizon
	}
	if cfg.SkillMasteryLevel > 0 {
		p.SkillMasteryLevel = cfg.SkillMasteryLevel
	}
	if cfg.MinSkillCount > 0 {
		p.MinSkillCount = cfg.MinSkillCount
	}
	if cfg.LowTrackRate > 0 {
		p.LowTrackRate = cfg.LowTrackRate
	}
	if cfg.TrackImbalancePoints > 0 {
		p.TrackImbalancePoints = cfg.TrackImbalancePoints
	}
	return p
}

// clampPercent bounds a percentage-like value into [0,100]. The engine never
// rejects out-of-range numeric input, it clamps.
func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// round2 rounds to two decimals, half to even.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
