package model

import (
	"strings"
)

// Authentication carries the API token used for every call to the course service.
type Authentication struct {
	Token string
}

// Empty reports whether no token is configured.
func (a Authentication) Empty() bool {
	return strings.TrimSpace(a.Token) == ""
}

// Course identifies the course a project belongs to.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Exercise is a single assignment unit students submit solutions for.
type Exercise struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PresentableName returns the English part of the exercise name.
func (e Exercise) PresentableName() string {
	return EnglishName(e.Name)
}

// ExerciseGroup is a course module grouping exercises (a "week" or "round").
type ExerciseGroup struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// PresentableName returns the English part of the group name.
func (g ExerciseGroup) PresentableName() string {
	return EnglishName(g.Name)
}

// FindExercise looks up an exercise by ID in a course exercise tree and
// returns it together with its owning group.
func FindExercise(groups []ExerciseGroup, id int64) (ExerciseGroup, Exercise, bool) {
	for _, g := range groups {
		for _, e := range g.Exercises {
			if e.ID == id {
				return g, e, true
			}
		}
	}
	return ExerciseGroup{}, Exercise{}, false
}

// SubmittableFile is one file an exercise requires, identified by its form key.
type SubmittableFile struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// SubmissionInfo describes, per language, which files an exercise accepts.
// An exercise is submittable in a language only if it lists files for it.
type SubmissionInfo struct {
	Files map[string][]SubmittableFile `json:"files"`
}

// IsSubmittable reports whether files can be submitted in the given language.
func (s SubmissionInfo) IsSubmittable(language string) bool {
	return len(s.Files[language]) > 0
}

// FilesFor returns the files required in the given language.
func (s SubmissionInfo) FilesFor(language string) []SubmittableFile {
	return s.Files[language]
}

// SubmissionHistory is the ordered list of prior submissions for an exercise.
type SubmissionHistory struct {
	Entries []SubmissionHistoryEntry `json:"entries"`
}

// SubmissionHistoryEntry is a single prior submission.
type SubmissionHistoryEntry struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// Count returns the number of prior submissions.
func (h SubmissionHistory) Count() int {
	return len(h.Entries)
}

// SubmitAloneGroupID is the sentinel ID of the synthetic "submit alone" group.
const SubmitAloneGroupID int64 = -1

// Group is a set of collaborating students submitting together.
type Group struct {
	ID      int64    `json:"id"`
	Members []string `json:"members"`
}

// IsSubmitAlone reports whether g is the synthetic "submit alone" group.
func (g Group) IsSubmitAlone() bool {
	return g.ID == SubmitAloneGroupID
}

// Label joins the member names for display.
func (g Group) Label() string {
	return strings.Join(g.Members, ", ")
}

// Submission is the immutable payload sent to the course service.
type Submission struct {
	Exercise Exercise
	Group    Group
	// Files maps the logical file key to an absolute local path.
	Files    map[string]string
	Language string
}

// Project is the local workspace a submission is made from.
type Project struct {
	Name string
	Root string
}

// Module is one local module (a directory) inside a project.
type Module struct {
	Name string
	Dir  string
}

// EnglishName extracts the English variant from a multilingual name of the
// form "|fi:Tehtävä|en:Exercise|". Names without language markers are returned trimmed.
func EnglishName(name string) string {
	return LocalizedName(name, "en")
}

// LocalizedName extracts the variant for lang from a multilingual name,
// falling back to the first variant when lang is missing.
func LocalizedName(name, lang string) string {
	if !strings.HasPrefix(name, "|") {
		return strings.TrimSpace(name)
	}
	var first string
	for _, part := range strings.Split(strings.Trim(name, "|"), "|") {
		code, text, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		if first == "" {
			first = text
		}
		if code == lang {
			return strings.TrimSpace(text)
		}
	}
	return strings.TrimSpace(first)
}
