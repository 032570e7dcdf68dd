package submit

import (
	"context"
	"errors"
	"testing"

	"github.com/pavelanni/submitter/internal/model"
)

func TestFileResolverAllOrNothing(t *testing.T) {
	saver := &countingSaver{}
	r := NewFileResolver(mapFinder{"/m/a.py": true}, saver)

	files := []model.SubmittableFile{{Key: "f1", Name: "a.py"}, {Key: "f2", Name: "b.py"}}
	got, err := r.Resolve("/m", files)
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
	var missing *FileDoesNotExistError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want FileDoesNotExistError", err)
	}
	if missing.Path != "/m" || missing.Name != "b.py" {
		t.Errorf("missing = %+v", missing)
	}
	if saver.calls != 1 {
		t.Errorf("SaveAll calls = %d", saver.calls)
	}

	got, err = r.Resolve("/m", files[:1])
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got["f1"] != "/m/a.py" {
		t.Errorf("resolved = %v", got)
	}
}

func TestGroupResolver(t *testing.T) {
	tests := []struct {
		name        string
		remote      []model.Group
		settings    *memSettings
		wantLen     int
		wantDefault int64
	}{
		{"no remote groups", nil, &memSettings{}, 1, 0},
		{"remembered alone", nil, &memSettings{id: -1, set: true}, 1, -1},
		{"remembered present", []model.Group{{ID: 7}}, &memSettings{id: 7, set: true}, 2, 7},
		{"remembered stale", []model.Group{{ID: 7}}, &memSettings{id: 99, set: true}, 2, 0},
		{"settings unreadable", []model.Group{{ID: 7}}, &memSettings{id: 7, set: true, err: errors.New("locked")}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testCtx(t)
			r := NewGroupResolver(&fakeSource{groups: tt.remote}, tt.settings, discardLogger())
			groups, def, err := r.Resolve(ctx, model.Course{ID: 1}, model.Authentication{Token: "t"})
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if len(groups) != tt.wantLen || groups[0].ID != model.SubmitAloneGroupID {
				t.Errorf("groups = %+v", groups)
			}
			switch {
			case tt.wantDefault == 0 && def != nil:
				t.Errorf("default = %+v, want none", def)
			case tt.wantDefault != 0 && (def == nil || def.ID != tt.wantDefault):
				t.Errorf("default = %+v, want %d", def, tt.wantDefault)
			}
		})
	}
}

func TestGroupResolverRemember(t *testing.T) {
	s := &memSettings{}
	r := NewGroupResolver(&fakeSource{}, s, discardLogger())

	r.Remember(Confirmation{Group: model.Group{ID: 5}, RememberGroup: true})
	if !s.set || s.id != 5 {
		t.Fatalf("settings = %+v, want 5", s)
	}
	r.Remember(Confirmation{Group: model.Group{ID: 5}})
	if s.set {
		t.Errorf("settings = %+v, want cleared", s)
	}
}

func TestModuleResolverCachesUntilInvalidated(t *testing.T) {
	mappings := &fakeMappings{byExercise: map[int64]map[string]string{1: {"en": "mod"}}}
	modules := &fakeModules{modules: []model.Module{{Name: "mod", Dir: "/p/mod"}}}
	r := NewModuleResolver(modules, mappings, &fakeDialogs{}, discardLogger())
	ctx := context.Background()

	for range 2 {
		res, err := r.Resolve(ctx, testProject, 1, "en")
		if err != nil || !res.Confirmed || res.Value.Dir != "/p/mod" {
			t.Fatalf("Resolve = %+v, %v", res, err)
		}
	}
	if mappings.calls != 1 {
		t.Errorf("mapping lookups = %d, want 1", mappings.calls)
	}

	r.Invalidate("other")
	r.Resolve(ctx, testProject, 1, "en")
	if mappings.calls != 1 {
		t.Errorf("unrelated invalidation refetched mapping")
	}

	events := make(chan ModuleEvent, 1)
	events <- ModuleEvent{Kind: ModuleRemoved, Name: "mod"}
	close(events)
	r.Watch(ctx, events)

	modules.modules = nil
	_, err := r.Resolve(ctx, testProject, 1, "en")
	if mappings.calls != 2 {
		t.Errorf("mapping lookups = %d, want 2 after invalidation", mappings.calls)
	}
	var missing *ModuleMissingError
	if !errors.As(err, &missing) || missing.ModuleName != "mod" {
		t.Errorf("err = %v, want ModuleMissingError for mod", err)
	}
}

func TestModuleResolverMappingErrorFallsBackToDialog(t *testing.T) {
	dialogs := &fakeDialogs{module: Confirmed(model.Module{Name: "x"})}
	r := NewModuleResolver(&fakeModules{}, &fakeMappings{err: errors.New("db closed")}, dialogs, discardLogger())

	res, err := r.Resolve(context.Background(), testProject, 1, "en")
	if err != nil || res.Value.Name != "x" {
		t.Fatalf("Resolve = %+v, %v", res, err)
	}
	if dialogs.selectCalls != 1 {
		t.Errorf("dialog calls = %d", dialogs.selectCalls)
	}
}

func TestDraftBuildRejectsUnlistedGroup(t *testing.T) {
	groups := []model.Group{{ID: -1}, {ID: 7}}
	d := NewDraft(model.Exercise{ID: 1}, model.SubmissionInfo{}, model.SubmissionHistory{}, groups, nil,
		map[string]string{"k": "/p"}, "en")

	if _, err := d.Build(model.Group{ID: 8}); err == nil {
		t.Error("expected error for unlisted group")
	}
	sub, err := d.Build(model.Group{ID: 7})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sub.Files["k"] != "/p" || sub.Language != "en" {
		t.Errorf("submission = %+v", sub)
	}
	if d.SubmissionNumber() != 1 {
		t.Errorf("submission number = %d, want 1", d.SubmissionNumber())
	}
}

func TestModuleResolverWrapsLocalAndDialogErrors(t *testing.T) {
	ctx := testCtx(t)
	noMapping := &fakeMappings{}

	r := NewModuleResolver(&fakeModules{err: errors.New("permission denied")}, noMapping, &fakeDialogs{}, discardLogger())
	_, err := r.Resolve(ctx, testProject, 1, "en")
	var local *LocalError
	if !errors.As(err, &local) {
		t.Errorf("err = %v, want LocalError", err)
	}

	dialogs := &fakeDialogs{selectErr: errors.New("no tty")}
	r = NewModuleResolver(&fakeModules{}, noMapping, dialogs, discardLogger())
	res, err := r.Resolve(ctx, testProject, 1, "en")
	var dialogErr *DialogError
	if !errors.As(err, &dialogErr) || res.Confirmed {
		t.Errorf("Resolve = %+v, %v, want cancelled DialogError", res, err)
	}
}
