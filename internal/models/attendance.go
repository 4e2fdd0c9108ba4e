package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusPartial AttendanceStatus = "partial"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusPartial, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceLocation distinguishes center sessions from company sessions for
// work-study trainees.
type AttendanceLocation string

const (
	LocationCenter  AttendanceLocation = "center"
	LocationCompany AttendanceLocation = "company"
)

// Valid returns true when the location is a supported value.
func (l AttendanceLocation) Valid() bool {
	return l == LocationCenter || l == LocationCompany
}

// AttendanceFact is the single attendance record for a trainee and session.
// Lateness and early-departure fields are nil when they were never computed,
// which is distinct from a computed value of zero.
type AttendanceFact struct {
	ID                    string              `db:"id" json:"id"`
	TraineeID             string              `db:"trainee_id" json:"trainee_id"`
	SessionID             string              `db:"session_id" json:"session_id"`
	Status                AttendanceStatus    `db:"status" json:"status"`
	ParticipationScore    int                 `db:"participation_score" json:"participation_score"`
	Excused               bool                `db:"excused" json:"excused"`
	AbsenceReason         *string             `db:"absence_reason" json:"absence_reason,omitempty"`
	ArrivalTime           *time.Time          `db:"arrival_time" json:"arrival_time,omitempty"`
	DepartureTime         *time.Time          `db:"departure_time" json:"departure_time,omitempty"`
	MinutesLate           *int                `db:"minutes_late" json:"minutes_late,omitempty"`
	MinutesEarlyDeparture *int                `db:"minutes_early_departure" json:"minutes_early_departure,omitempty"`
	Location              *AttendanceLocation `db:"location" json:"location,omitempty"`
	SupervisedBy          *string             `db:"supervised_by" json:"supervised_by,omitempty"`
	CompanyRating         *int                `db:"company_rating" json:"company_rating,omitempty"`
	CreatedAt             time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time           `db:"updated_at" json:"updated_at"`
}

// AttendanceSummary aggregates a trainee's attendance over a program.
type AttendanceSummary struct {
	TraineeID         string  `json:"trainee_id"`
	ProgramID         string  `json:"program_id"`
	SessionCount      int     `json:"session_count"`
	Present           int     `json:"present"`
	Late              int     `json:"late"`
	Partial           int     `json:"partial"`
	ExcusedAbsences   int     `json:"excused_absences"`
	UnexcusedAbsences int     `json:"unexcused_absences"`
	MissedSessions    int     `json:"missed_sessions"`
	Rate              float64 `json:"rate"`
}
