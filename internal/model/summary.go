package model

import "time"

// Meeting is a calendar proposal extracted from an email.
type Meeting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Attendees   []Address `json:"attendees"`
	Location    string    `json:"location,omitempty"`
	EmailID     *string   `json:"emailId,omitempty"`
}

// EmailSummaryResult is produced once per summarize call and never persisted.
// Its tasks are candidates: the caller decides whether to save them.
type EmailSummaryResult struct {
	Summary  string    `json:"summary"`
	Tasks    []Task    `json:"tasks"`
	Meetings []Meeting `json:"meetings,omitempty"`
}
