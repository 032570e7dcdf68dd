package submit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pavelanni/submitter/internal/i18n"
	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/notify"
	"github.com/pavelanni/submitter/internal/tracker"
)

// State is a step of a submission attempt.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateResolvingModule
	StateResolvingFiles
	StateResolvingGroups
	StateAwaitingUserConfirmation
	StateDispatching
	StateTracking
	StateDone
)

var stateNames = [...]string{
	"idle", "validating", "resolving_module", "resolving_files", "resolving_groups",
	"awaiting_user_confirmation", "dispatching", "tracking", "done",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Outcome is how a submission attempt ended.
type Outcome string

const (
	OutcomeSent           Outcome = "sent"
	OutcomeCancelled      Outcome = "cancelled"
	OutcomeUnavailable    Outcome = "unavailable"
	OutcomeNotSelected    Outcome = "not_selected"
	OutcomeNotSubmittable Outcome = "not_submittable"
	OutcomeMissingModule  Outcome = "missing_module"
	OutcomeMissingFile    Outcome = "missing_file"
	OutcomeNetworkError   Outcome = "network_error"
	OutcomeLocalError     Outcome = "local_error"
)

var (
	errCancelled      = errors.New("cancelled by user")
	errUnavailable    = errors.New("no course or credentials")
	errNotSelected    = errors.New("exercise not selected")
	errNotSubmittable = errors.New("exercise not submittable")
)

// Request describes what to submit.
type Request struct {
	Project    model.Project
	Course     model.Course
	Auth       model.Authentication
	ExerciseID int64
	Language   string
}

// Result reports how far an attempt got.
type Result struct {
	Outcome          Outcome
	State            State
	TrackingURL      string
	SubmissionNumber int
}

// Config wires the collaborators of an Orchestrator.
type Config struct {
	Source   DataSource
	Dialogs  Dialogs
	Modules  ModuleSource
	Mappings MappingSource
	Finder   FileFinder
	Saver    DocumentSaver
	Notifier Notifier
	Settings Settings
	Tagger   Tagger
	Tracker  Tracker
	// Recorder is optional.
	Recorder SubmissionRecorder
	Logger   *slog.Logger
}

// Orchestrator runs submission attempts.
type Orchestrator struct {
	source     DataSource
	dialogs    Dialogs
	notifier   Notifier
	tagger     Tagger
	tracker    Tracker
	recorder   SubmissionRecorder
	modules    *ModuleResolver
	files      *FileResolver
	groups     *GroupResolver
	dispatcher *Dispatcher
	log        *slog.Logger
}

func New(cfg Config) *Orchestrator {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		source:     cfg.Source,
		dialogs:    cfg.Dialogs,
		notifier:   cfg.Notifier,
		tagger:     cfg.Tagger,
		tracker:    cfg.Tracker,
		recorder:   cfg.Recorder,
		modules:    NewModuleResolver(cfg.Modules, cfg.Mappings, cfg.Dialogs, log),
		files:      NewFileResolver(cfg.Finder, cfg.Saver),
		groups:     NewGroupResolver(cfg.Source, cfg.Settings, log),
		dispatcher: NewDispatcher(cfg.Source),
		log:        log,
	}
}

// ModuleResolver exposes the resolver so callers can feed it module events.
func (o *Orchestrator) ModuleResolver() *ModuleResolver {
	return o.modules
}

// attempt is the state of one Submit call.
type attempt struct {
	req   Request
	state State
	log   *slog.Logger
	res   Result
}

func (a *attempt) enter(s State) {
	a.log.Debug("submission state", "from", a.state, "to", s)
	a.state = s
}

// Submit runs one submission attempt. Every outcome except cancellation and
// missing preconditions produces exactly one notification; errors never escape.
func (o *Orchestrator) Submit(ctx context.Context, req Request) Result {
	a := &attempt{
		req: req,
		log: o.log.With("attempt", uuid.NewString(), "exercise_id", req.ExerciseID),
	}
	err := o.run(ctx, a)
	return o.finish(ctx, a, err)
}

func (o *Orchestrator) run(ctx context.Context, a *attempt) error {
	req := a.req

	a.enter(StateValidating)
	if req.Auth.Empty() || req.Course.ID == 0 {
		return errUnavailable
	}
	if req.ExerciseID == 0 {
		return errNotSelected
	}
	tree, err := o.source.Exercises(ctx, req.Course, req.Auth)
	if err != nil {
		return &NetworkError{Op: "fetch exercises", Err: err}
	}
	exerciseGroup, exercise, ok := model.FindExercise(tree, req.ExerciseID)
	if !ok {
		return errNotSelected
	}
	info, err := o.source.SubmissionInfo(ctx, exercise, req.Auth)
	if err != nil {
		return &NetworkError{Op: "fetch submission info", Err: err}
	}
	if !info.IsSubmittable(req.Language) {
		return errNotSubmittable
	}

	a.enter(StateResolvingModule)
	choice, err := o.modules.Resolve(ctx, req.Project, exercise.ID, req.Language)
	var dialogErr *DialogError
	if errors.As(err, &dialogErr) {
		a.log.Error("module dialog failed", "error", err)
		return errCancelled
	}
	if err != nil {
		return err
	}
	if !choice.Confirmed {
		return errCancelled
	}
	module := choice.Value

	a.enter(StateResolvingFiles)
	files, err := o.files.Resolve(module.Dir, info.FilesFor(req.Language))
	if err != nil {
		return err
	}

	history, err := o.source.SubmissionHistory(ctx, exercise, req.Auth)
	if err != nil {
		return &NetworkError{Op: "fetch submission history", Err: err}
	}

	a.enter(StateResolvingGroups)
	groups, defaultGroup, err := o.groups.Resolve(ctx, req.Course, req.Auth)
	if err != nil {
		return err
	}

	draft := NewDraft(exercise, info, history, groups, defaultGroup, files, req.Language)
	a.res.SubmissionNumber = draft.SubmissionNumber()

	a.enter(StateAwaitingUserConfirmation)
	confirmation, err := o.dialogs.ConfirmSubmission(ctx, req.Project, draft)
	if err != nil {
		a.log.Error("submission dialog failed", "error", err)
		return errCancelled
	}
	if !confirmation.Confirmed {
		return errCancelled
	}
	o.groups.Remember(confirmation.Value)

	submission, err := draft.Build(confirmation.Value.Group)
	if err != nil {
		// The dialog only offers listed groups.
		a.log.Error("invalid group confirmed", "error", err)
		return errCancelled
	}

	a.enter(StateDispatching)
	url, err := o.dispatcher.Dispatch(ctx, submission, req.Auth)
	if err != nil {
		return err
	}
	a.res.TrackingURL = url
	a.log.Info("submission sent", "url", url, "group_id", submission.Group.ID,
		"submission_number", draft.SubmissionNumber())

	if o.recorder != nil {
		if _, err := o.recorder.RecordSubmission(model.SubmissionRecord{
			URL:              url,
			ExerciseID:       exercise.ID,
			ExerciseName:     draft.PresentableExerciseName(),
			GroupID:          submission.Group.ID,
			Language:         req.Language,
			SubmissionNumber: draft.SubmissionNumber(),
		}); err != nil {
			a.log.Warn("failed to record submission", "error", err)
		}
	}

	o.notifier.Notify(notify.SubmissionSent(ctx), req.Project)

	a.enter(StateTracking)
	o.tracker.Track(tracker.Job{
		URL:          url,
		ExerciseName: draft.PresentableExerciseName(),
		Auth:         req.Auth,
		Project:      req.Project,
	})

	label := i18n.Td(ctx, "LocalHistoryTag", map[string]any{
		"Group":    exerciseGroup.PresentableName(),
		"Exercise": draft.PresentableExerciseName(),
		"Number":   draft.SubmissionNumber(),
	})
	if err := o.tagger.Tag(req.Project, label); err != nil {
		a.log.Warn("failed to tag local history", "label", label, "error", err)
	}

	a.enter(StateDone)
	return nil
}

// finish converts the attempt error into its single notification.
func (o *Orchestrator) finish(ctx context.Context, a *attempt, err error) Result {
	res := a.res
	res.State = a.state
	project := a.req.Project

	var (
		missingModule *ModuleMissingError
		missingFile   *FileDoesNotExistError
		localErr      *LocalError
	)
	switch {
	case err == nil:
		res.Outcome = OutcomeSent
	case errors.Is(err, errCancelled):
		res.Outcome = OutcomeCancelled
	case errors.Is(err, errUnavailable):
		a.log.Warn("submission unavailable: no course or credentials")
		res.Outcome = OutcomeUnavailable
	case errors.Is(err, errNotSelected):
		res.Outcome = OutcomeNotSelected
		o.notifier.Notify(notify.ExerciseNotSelected(ctx), project)
	case errors.Is(err, errNotSubmittable):
		res.Outcome = OutcomeNotSubmittable
		o.notifier.Notify(notify.NotSubmittable(ctx), project)
	case errors.As(err, &missingModule):
		res.Outcome = OutcomeMissingModule
		o.notifier.Notify(notify.MissingModule(ctx, missingModule.ModuleName), project)
	case errors.As(err, &missingFile):
		res.Outcome = OutcomeMissingFile
		o.notifier.Notify(notify.MissingFile(ctx, missingFile.Path, missingFile.Name), project)
	case errors.As(err, &localErr):
		res.Outcome = OutcomeLocalError
		o.notifier.Notify(notify.LocalError(ctx, localErr), project)
	default:
		res.Outcome = OutcomeNetworkError
		o.notifier.Notify(notify.NetworkError(ctx, err), project)
	}
	if err != nil {
		a.log.Info("submission aborted", "state", a.state, "outcome", res.Outcome, "error", err)
	}
	return res
}
