package models

import "time"

// Trainee is the read-only identity record supplied by the enrollment system.
type Trainee struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Program is a training program the trainee is enrolled in.
type Program struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}

// Session is a calendar entry for one teaching session of a program.
// Start and end may be unknown for sessions imported without a timetable.
type Session struct {
	ID        string     `db:"id" json:"id"`
	ProgramID string     `db:"program_id" json:"program_id"`
	Title     string     `db:"title" json:"title"`
	StartsAt  *time.Time `db:"starts_at" json:"starts_at,omitempty"`
	EndsAt    *time.Time `db:"ends_at" json:"ends_at,omitempty"`
}
