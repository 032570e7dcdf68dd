package submit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/pavelanni/submitter/internal/i18n"
	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/tracker"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	return i18n.WithLanguage(context.Background(), "en")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	tree      []model.ExerciseGroup
	info      model.SubmissionInfo
	history   model.SubmissionHistory
	groups    []model.Group
	url       string
	groupsErr error
	submitErr error

	mu        sync.Mutex
	submitted []model.Submission
	pollSteps []model.SubmissionStatus
	polls     int
}

func (f *fakeSource) Exercises(context.Context, model.Course, model.Authentication) ([]model.ExerciseGroup, error) {
	return f.tree, nil
}

func (f *fakeSource) SubmissionInfo(context.Context, model.Exercise, model.Authentication) (model.SubmissionInfo, error) {
	return f.info, nil
}

func (f *fakeSource) SubmissionHistory(context.Context, model.Exercise, model.Authentication) (model.SubmissionHistory, error) {
	return f.history, nil
}

func (f *fakeSource) Groups(context.Context, model.Course, model.Authentication) ([]model.Group, error) {
	return f.groups, f.groupsErr
}

func (f *fakeSource) Submit(_ context.Context, s model.Submission, _ model.Authentication) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, s)
	return f.url, nil
}

func (f *fakeSource) SubmissionStatus(context.Context, string, model.Authentication) (model.SubmissionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.polls, len(f.pollSteps)-1)
	f.polls++
	return f.pollSteps[i], nil
}

func (f *fakeSource) submitCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitted)
}

type fakeDialogs struct {
	module       DialogResult[model.Module]
	selectErr    error
	confirmErr   error
	cancel       bool
	pickGroupID  *int64
	remember     bool
	selectCalls  int
	confirmDraft *Draft
}

func (d *fakeDialogs) SelectModule(context.Context, model.Project, []model.Module) (DialogResult[model.Module], error) {
	d.selectCalls++
	if d.selectErr != nil {
		return Cancelled[model.Module](), d.selectErr
	}
	return d.module, nil
}

func (d *fakeDialogs) ConfirmSubmission(_ context.Context, _ model.Project, draft *Draft) (DialogResult[Confirmation], error) {
	d.confirmDraft = draft
	if d.confirmErr != nil {
		return Cancelled[Confirmation](), d.confirmErr
	}
	if d.cancel {
		return Cancelled[Confirmation](), nil
	}
	group, ok := draft.DefaultGroup()
	if d.pickGroupID != nil {
		for _, g := range draft.Groups() {
			if g.ID == *d.pickGroupID {
				group, ok = g, true
			}
		}
	}
	if !ok {
		group = draft.Groups()[0]
	}
	return Confirmed(Confirmation{Group: group, RememberGroup: d.remember}), nil
}

type fakeModules struct {
	modules []model.Module
	err     error
}

func (m *fakeModules) Modules(model.Project) ([]model.Module, error) {
	return m.modules, m.err
}

func (m *fakeModules) Module(_ model.Project, name string) (model.Module, bool) {
	for _, mod := range m.modules {
		if mod.Name == name {
			return mod, true
		}
	}
	return model.Module{}, false
}

type fakeMappings struct {
	byExercise map[int64]map[string]string
	calls      int
	err        error
}

func (m *fakeMappings) ExerciseModules(id int64) (map[string]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.byExercise[id], nil
}

// mapFinder resolves names against a set of existing paths keyed by "root/name".
type mapFinder map[string]bool

func (f mapFinder) Find(root, name string) (string, error) {
	p := root + "/" + name
	if f[p] {
		return p, nil
	}
	return "", errors.New("not found")
}

type countingSaver struct {
	calls int
	err   error
}

func (s *countingSaver) SaveAll() error {
	s.calls++
	return s.err
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []model.Notification
}

func (n *recordingNotifier) Notify(note model.Notification, _ model.Project) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) kinds() []model.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []model.NotificationKind
	for _, note := range n.notes {
		out = append(out, note.Kind)
	}
	return out
}

type memSettings struct {
	id  int64
	set bool
	err error
}

func (s *memSettings) DefaultGroupID() (int64, bool, error) {
	return s.id, s.set, s.err
}

func (s *memSettings) SetDefaultGroupID(id int64) error {
	s.id, s.set = id, true
	return nil
}

func (s *memSettings) ClearDefaultGroupID() error {
	s.id, s.set = 0, false
	return nil
}

type memTagger struct {
	labels []string
}

func (t *memTagger) Tag(_ model.Project, label string) error {
	t.labels = append(t.labels, label)
	return nil
}

type jobList struct {
	jobs []tracker.Job
}

func (j *jobList) Track(job tracker.Job) {
	j.jobs = append(j.jobs, job)
}

type memRecorder struct {
	recs []model.SubmissionRecord
}

func (r *memRecorder) RecordSubmission(rec model.SubmissionRecord) (int64, error) {
	r.recs = append(r.recs, rec)
	return int64(len(r.recs)), nil
}

// fixture is a project with one exercise requiring main.py, mapped to module "mod".
type fixture struct {
	source   *fakeSource
	dialogs  *fakeDialogs
	modules  *fakeModules
	mappings *fakeMappings
	finder   mapFinder
	saver    *countingSaver
	notifier *recordingNotifier
	settings *memSettings
	tagger   *memTagger
	tracker  Tracker
	jobs     *jobList
	recorder *memRecorder
}

const exerciseID int64 = 42

var testProject = model.Project{Name: "proj", Root: "/proj"}

func newFixture() *fixture {
	jobs := &jobList{}
	return &fixture{
		source: &fakeSource{
			tree: []model.ExerciseGroup{{
				ID:        1,
				Name:      "|fi:Viikko 1|en:Week 1|",
				Exercises: []model.Exercise{{ID: exerciseID, Name: "|fi:Hei|en:Hello|"}},
			}},
			info: model.SubmissionInfo{Files: map[string][]model.SubmittableFile{
				"en": {{Key: "file1", Name: "main.py"}},
			}},
			history: model.SubmissionHistory{Entries: []model.SubmissionHistoryEntry{{ID: 1}, {ID: 2}}},
			groups:  []model.Group{{ID: 7, Members: []string{"alice"}}},
			url:     "https://plus.example/api/v2/submissions/900/",
		},
		dialogs:  &fakeDialogs{},
		modules:  &fakeModules{modules: []model.Module{{Name: "mod", Dir: "/proj/mod"}}},
		mappings: &fakeMappings{byExercise: map[int64]map[string]string{exerciseID: {"en": "mod"}}},
		finder:   mapFinder{"/proj/mod/main.py": true},
		saver:    &countingSaver{},
		notifier: &recordingNotifier{},
		settings: &memSettings{},
		tagger:   &memTagger{},
		tracker:  jobs,
		jobs:     jobs,
		recorder: &memRecorder{},
	}
}

func (f *fixture) orchestrator() *Orchestrator {
	return New(Config{
		Source:   f.source,
		Dialogs:  f.dialogs,
		Modules:  f.modules,
		Mappings: f.mappings,
		Finder:   f.finder,
		Saver:    f.saver,
		Notifier: f.notifier,
		Settings: f.settings,
		Tagger:   f.tagger,
		Tracker:  f.tracker,
		Recorder: f.recorder,
		Logger:   discardLogger(),
	})
}

func (f *fixture) request() Request {
	return Request{
		Project:    testProject,
		Course:     model.Course{ID: 3, Name: "O1"},
		Auth:       model.Authentication{Token: "secret"},
		ExerciseID: exerciseID,
		Language:   "en",
	}
}
