package store

import (
	"database/sql"
	"testing"

	"github.com/pavelanni/submitter/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefaultGroupID(t *testing.T) {
	s := newTestStore(t)

	// Nothing remembered yet.
	_, ok, err := s.DefaultGroupID()
	if err != nil {
		t.Fatalf("DefaultGroupID: %v", err)
	}
	if ok {
		t.Fatal("expected no default group on empty store")
	}

	if err := s.SetDefaultGroupID(7); err != nil {
		t.Fatalf("SetDefaultGroupID: %v", err)
	}
	id, ok, err := s.DefaultGroupID()
	if err != nil || !ok || id != 7 {
		t.Fatalf("DefaultGroupID = %d, %v, %v; want 7, true, nil", id, ok, err)
	}

	// Overwrite.
	if err := s.SetDefaultGroupID(-1); err != nil {
		t.Fatalf("SetDefaultGroupID: %v", err)
	}
	id, _, _ = s.DefaultGroupID()
	if id != -1 {
		t.Errorf("expected overwritten id -1, got %d", id)
	}

	if err := s.ClearDefaultGroupID(); err != nil {
		t.Fatalf("ClearDefaultGroupID: %v", err)
	}
	if _, ok, _ := s.DefaultGroupID(); ok {
		t.Error("expected default group to be cleared")
	}

	// Clearing twice is fine.
	if err := s.ClearDefaultGroupID(); err != nil {
		t.Errorf("second ClearDefaultGroupID: %v", err)
	}
}

func TestExerciseModules(t *testing.T) {
	s := newTestStore(t)

	m, err := s.ExerciseModules(42)
	if err != nil {
		t.Fatalf("ExerciseModules: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil mapping, got %v", m)
	}

	if err := s.SetExerciseModule(42, "en", "Hello"); err != nil {
		t.Fatalf("SetExerciseModule: %v", err)
	}
	if err := s.SetExerciseModule(42, "fi", "Moi"); err != nil {
		t.Fatalf("SetExerciseModule: %v", err)
	}
	if err := s.SetExerciseModule(42, "en", "HelloWorld"); err != nil {
		t.Fatalf("SetExerciseModule upsert: %v", err)
	}

	m, err = s.ExerciseModules(42)
	if err != nil {
		t.Fatalf("ExerciseModules: %v", err)
	}
	if m["en"] != "HelloWorld" || m["fi"] != "Moi" {
		t.Errorf("unexpected mapping %v", m)
	}

	all, err := s.ListExerciseModules()
	if err != nil {
		t.Fatalf("ListExerciseModules: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 mappings, got %d", len(all))
	}

	if err := s.RemoveExerciseModules(42); err != nil {
		t.Fatalf("RemoveExerciseModules: %v", err)
	}
	m, _ = s.ExerciseModules(42)
	if m != nil {
		t.Errorf("expected mapping removed, got %v", m)
	}
}

func TestHistoryLabels(t *testing.T) {
	s := newTestStore(t)
	p1 := model.Project{Name: "p1", Root: "/work/p1"}
	p2 := model.Project{Name: "p2", Root: "/work/p2"}

	for _, tc := range []struct {
		p     model.Project
		label string
	}{
		{p1, "Week 1 Hello submission #1"},
		{p1, "Week 1 Hello submission #2"},
		{p2, "Week 2 Sort submission #1"},
	} {
		if err := s.Tag(tc.p, tc.label); err != nil {
			t.Fatalf("Tag: %v", err)
		}
	}

	labels, err := s.ListLabels(p1.Root)
	if err != nil {
		t.Fatalf("ListLabels: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].Label != "Week 1 Hello submission #2" {
		t.Errorf("expected newest label first, got %q", labels[0].Label)
	}

	all, _ := s.ListLabels("")
	if len(all) != 3 {
		t.Errorf("expected 3 labels overall, got %d", len(all))
	}
}

func TestSubmissionRecords(t *testing.T) {
	s := newTestStore(t)

	id, err := s.RecordSubmission(model.SubmissionRecord{
		URL:              "https://example.com/api/v2/submissions/5/",
		ExerciseID:       42,
		ExerciseName:     "Hello",
		GroupID:          model.SubmitAloneGroupID,
		Language:         "en",
		SubmissionNumber: 2,
	})
	if err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}

	rec, err := s.GetSubmission(id)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if rec.State != model.StateInitialized {
		t.Errorf("expected initialized state, got %q", rec.State)
	}
	if rec.Points != nil || rec.MaxPoints != nil {
		t.Error("expected no points before grading")
	}

	if err := s.UpdateSubmissionStatus(rec.URL, model.SubmissionStatus{State: model.StateWaiting}); err != nil {
		t.Fatalf("UpdateSubmissionStatus: %v", err)
	}
	if err := s.UpdateSubmissionStatus(rec.URL, model.SubmissionStatus{State: model.StateReady, Points: 8, MaxPoints: 10}); err != nil {
		t.Fatalf("UpdateSubmissionStatus: %v", err)
	}

	rec, _ = s.GetSubmission(id)
	if rec.State != model.StateReady {
		t.Errorf("expected ready state, got %q", rec.State)
	}
	if rec.Points == nil || *rec.Points != 8 || rec.MaxPoints == nil || *rec.MaxPoints != 10 {
		t.Errorf("unexpected points %v/%v", rec.Points, rec.MaxPoints)
	}

	list, err := s.ListSubmissions()
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(list))
	}

	_, err = s.GetSubmission(9999)
	if err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestNotificationJournal(t *testing.T) {
	s := newTestStore(t)
	p := model.Project{Name: "p", Root: "/work/p"}

	s.Notify(model.Notification{Kind: model.NotifySubmissionSent, Level: model.LevelInfo, Title: "Sent"}, p)
	s.Notify(model.Notification{Kind: model.NotifyFeedbackAvailable, Level: model.LevelInfo, Title: "Graded"}, p)

	all, err := s.ListNotifications(0)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(all))
	}
	if all[0].Kind != model.NotifyFeedbackAvailable {
		t.Errorf("expected newest first, got %q", all[0].Kind)
	}
	if all[1].Project != p.Root {
		t.Errorf("expected project %q, got %q", p.Root, all[1].Project)
	}

	limited, _ := s.ListNotifications(1)
	if len(limited) != 1 {
		t.Errorf("expected 1 notification with limit, got %d", len(limited))
	}
}
