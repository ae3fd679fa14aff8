package db

import "time"

// Person represents a database person record
type Person struct {
	ID              string
	Name            string
	Email           string
	Interests       []string
	PersonalityCode string // empty when not set
	RecurringBusy   []RecurringBusyEntry
}

// RecurringBusyEntry is a manually declared recurring commitment stored
// against a person, expanded into busy intervals at match time.
type RecurringBusyEntry struct {
	ID           string
	PersonID     string
	RRule        string // e.g. "FREQ=WEEKLY;BYDAY=MO,WE"
	StartMinutes int
	EndMinutes   int
}

// CalendarToken represents a stored OAuth token for a person's calendar
type CalendarToken struct {
	ID           string
	PersonID     string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}
