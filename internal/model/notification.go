package model

import "time"

// NotificationKind identifies which outcome a notification reports.
type NotificationKind string

const (
	NotifyExerciseNotSelected NotificationKind = "exercise_not_selected"
	NotifyNotSubmittable      NotificationKind = "not_submittable"
	NotifyMissingModule       NotificationKind = "missing_module"
	NotifyMissingFile         NotificationKind = "missing_file"
	NotifyNetworkError        NotificationKind = "network_error"
	NotifyLocalError          NotificationKind = "local_error"
	NotifySubmissionSent      NotificationKind = "submission_sent"

	// Sent by the status tracker after dispatch.
	NotifyFeedbackAvailable NotificationKind = "feedback_available"
	NotifySubmissionFailed  NotificationKind = "submission_failed"
	NotifyStatusUnknown     NotificationKind = "status_unknown"
)

// NotificationLevel maps to how prominently a notification is shown.
type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// Notification is a user-visible message about a submission attempt.
type Notification struct {
	ID        int64             `json:"id"`
	Kind      NotificationKind  `json:"kind"`
	Level     NotificationLevel `json:"level"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Project   string            `json:"project"`
	CreatedAt time.Time         `json:"created_at"`
}
