// Package submit sends exercise solutions from a local project to the course
// service: it resolves the module, files and group of a submission, asks the
// user to confirm, dispatches the payload and hands it over to a status tracker.
package submit

import (
	"context"

	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/tracker"
)

// DataSource is the remote course service.
type DataSource interface {
	Exercises(ctx context.Context, course model.Course, auth model.Authentication) ([]model.ExerciseGroup, error)
	SubmissionInfo(ctx context.Context, exercise model.Exercise, auth model.Authentication) (model.SubmissionInfo, error)
	SubmissionHistory(ctx context.Context, exercise model.Exercise, auth model.Authentication) (model.SubmissionHistory, error)
	Groups(ctx context.Context, course model.Course, auth model.Authentication) ([]model.Group, error)
	Submit(ctx context.Context, submission model.Submission, auth model.Authentication) (string, error)
}

// DialogResult is the answer of a modal dialog: either a confirmed value or a cancellation.
type DialogResult[T any] struct {
	Value     T
	Confirmed bool
}

// Confirmed wraps a value chosen by the user.
func Confirmed[T any](v T) DialogResult[T] {
	return DialogResult[T]{Value: v, Confirmed: true}
}

// Cancelled reports that the user dismissed the dialog.
func Cancelled[T any]() DialogResult[T] {
	return DialogResult[T]{}
}

// Confirmation is what the user chose in the submission dialog.
type Confirmation struct {
	Group         model.Group
	RememberGroup bool
}

// Dialogs shows modal dialogs and blocks until the user answers.
type Dialogs interface {
	SelectModule(ctx context.Context, project model.Project, modules []model.Module) (DialogResult[model.Module], error)
	ConfirmSubmission(ctx context.Context, project model.Project, draft *Draft) (DialogResult[Confirmation], error)
}

// ModuleSource lists the modules of a project.
type ModuleSource interface {
	Modules(project model.Project) ([]model.Module, error)
	Module(project model.Project, name string) (model.Module, bool)
}

// MappingSource returns the language→module-name mapping of an exercise, or nil.
type MappingSource interface {
	ExerciseModules(exerciseID int64) (map[string]string, error)
}

// FileFinder locates a file by name below root.
type FileFinder interface {
	Find(root, name string) (string, error)
}

// FileFinderFunc adapts a function to FileFinder.
type FileFinderFunc func(root, name string) (string, error)

func (f FileFinderFunc) Find(root, name string) (string, error) { return f(root, name) }

// DocumentSaver flushes unsaved editor buffers to disk.
type DocumentSaver interface {
	SaveAll() error
}

// Notifier delivers user-visible notifications.
type Notifier interface {
	Notify(n model.Notification, project model.Project)
}

// Settings stores the remembered default group.
type Settings interface {
	DefaultGroupID() (int64, bool, error)
	SetDefaultGroupID(id int64) error
	ClearDefaultGroupID() error
}

// Tagger labels the local workspace history.
type Tagger interface {
	Tag(project model.Project, label string) error
}

// Tracker follows a dispatched submission in the background.
type Tracker interface {
	Track(job tracker.Job)
}

// SubmissionRecorder keeps a local record of dispatched submissions.
type SubmissionRecorder interface {
	RecordSubmission(rec model.SubmissionRecord) (int64, error)
}
