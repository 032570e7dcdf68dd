package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/pavelanni/submitter/internal/i18n"
	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}

	r := chi.NewRouter()
	r.Use(appI18n.Middleware("en"))
	New(s).Routes(r)
	return r, s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func seed(t *testing.T, s *store.Store) int64 {
	t.Helper()
	id, err := s.RecordSubmission(model.SubmissionRecord{
		URL:              "https://plus.example/api/v2/submissions/900/",
		ExerciseID:       42,
		ExerciseName:     "Hello <world>",
		GroupID:          model.SubmitAloneGroupID,
		Language:         "en",
		SubmissionNumber: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = s.UpdateSubmissionStatus("https://plus.example/api/v2/submissions/900/",
		model.SubmissionStatus{State: model.StateReady, Points: 8, MaxPoints: 10})
	if err != nil {
		t.Fatal(err)
	}
	project := model.Project{Name: "proj", Root: "/proj"}
	s.Notify(model.Notification{Kind: model.NotifySubmissionSent, Level: model.LevelInfo, Title: "Submission sent"}, project)
	if err := s.Tag(project, "Week 1 Hello submission #3"); err != nil {
		t.Fatal(err)
	}
	return id
}

func TestIndexPage(t *testing.T) {
	h, s := newTestRouter(t)

	rec := get(t, h, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No submissions yet.") {
		t.Errorf("empty page body = %s", rec.Body)
	}

	seed(t, s)
	body := get(t, h, "/").Body.String()
	for _, want := range []string{"<h1>Submissions</h1>", "Hello &lt;world&gt;", "8/10", `class="ready"`, "Submission sent"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "<world>") {
		t.Error("exercise name not escaped")
	}
}

func TestAPI(t *testing.T) {
	h, s := newTestRouter(t)
	id := seed(t, s)

	var subs []model.SubmissionRecord
	decode(t, get(t, h, "/api/submissions"), &subs)
	if len(subs) != 1 || subs[0].State != model.StateReady || subs[0].Points == nil || *subs[0].Points != 8 {
		t.Errorf("submissions = %+v", subs)
	}

	var sub model.SubmissionRecord
	decode(t, get(t, h, "/api/submissions/"+strconv.FormatInt(id, 10)), &sub)
	if sub.ExerciseID != 42 || sub.SubmissionNumber != 3 {
		t.Errorf("submission = %+v", sub)
	}

	var notes []model.Notification
	decode(t, get(t, h, "/api/notifications?limit=5"), &notes)
	if len(notes) != 1 || notes[0].Kind != model.NotifySubmissionSent {
		t.Errorf("notifications = %+v", notes)
	}

	var labels []model.HistoryLabel
	decode(t, get(t, h, "/api/labels?project=/proj"), &labels)
	if len(labels) != 1 || labels[0].Label != "Week 1 Hello submission #3" {
		t.Errorf("labels = %+v", labels)
	}
}

func TestAPIErrors(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		path string
		want int
	}{
		{"/api/submissions/abc", http.StatusBadRequest},
		{"/api/submissions/999", http.StatusNotFound},
		{"/api/notifications?limit=-1", http.StatusBadRequest},
		{"/api/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		if got := get(t, h, tt.path).Code; got != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}
