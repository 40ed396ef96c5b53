package model

import "time"

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Insurer struct {
	ID   int64
	Name string
}

// Professional is the aggregated directory view: one record per professional
// with its full affiliated-insurer set attached, regardless of which filter
// matched it.
type Professional struct {
	ID        int64
	Name      string
	Specialty string
	Location  string
	Contact   string
	Insurers  []Insurer
}

// Appointment carries denormalized display names after the read-after-write
// in the scheduler; they are empty on the way in.
type Appointment struct {
	ID               int64
	UserID           int64
	ProfessionalID   int64
	ScheduledAt      time.Time
	Reason           string
	UserName         string
	ProfessionalName string
	CreatedAt        time.Time
}
