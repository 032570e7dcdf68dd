package model

import "time"

// SubmissionState is the processing state reported by the course service.
type SubmissionState string

const (
	StateInitialized SubmissionState = "initialized"
	StateWaiting     SubmissionState = "waiting"
	StateReady       SubmissionState = "ready"
	StateRejected    SubmissionState = "rejected"
	StateError       SubmissionState = "error"
	// StateUnknown is recorded locally when polling gives up.
	StateUnknown SubmissionState = "unknown"
)

// Terminal reports whether no further status changes are expected.
func (s SubmissionState) Terminal() bool {
	switch s {
	case StateReady, StateRejected, StateError:
		return true
	}
	return false
}

// SubmissionStatus is one poll result for a tracked submission.
type SubmissionStatus struct {
	State     SubmissionState `json:"status"`
	Points    int             `json:"grade"`
	MaxPoints int             `json:"max_points"`
}

// SubmissionRecord is the local record of a dispatched submission.
type SubmissionRecord struct {
	ID               int64           `json:"id"`
	URL              string          `json:"url"`
	ExerciseID       int64           `json:"exercise_id"`
	ExerciseName     string          `json:"exercise_name"`
	GroupID          int64           `json:"group_id"`
	Language         string          `json:"language"`
	SubmissionNumber int             `json:"submission_number"`
	State            SubmissionState `json:"status"`
	Points           *int            `json:"points,omitempty"`
	MaxPoints        *int            `json:"max_points,omitempty"`
	SubmittedAt      time.Time       `json:"submitted_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// HistoryLabel is a descriptive tag attached to the local workspace history.
type HistoryLabel struct {
	ID        int64     `json:"id"`
	Project   string    `json:"project"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
