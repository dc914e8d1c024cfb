package model

import "time"

// ElectionType distinguishes the kind of contest.
type ElectionType string

const (
	Regular ElectionType = "regular"
	Special ElectionType = "special"
	Primary ElectionType = "primary"
	Runoff  ElectionType = "runoff"
)

// Election is one canonical contest: a seat in a state on a date.
// District is nil for senate and governor races; 0 means an at-large
// House seat.
type Election struct {
	ID           int64
	State        string
	Office       Office
	District     *int
	SenateClass  *int
	Type         ElectionType
	Date         time.Time
}

// State is a row of the states seed reference table.
type State struct {
	Code       string
	Name       string
	HouseSeats int
}
