// Package aplus is an HTTP client for the course service REST API.
package aplus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pavelanni/submitter/internal/model"
)

// DefaultBaseURL is the public course service API.
const DefaultBaseURL = "https://plus.cs.aalto.fi/api/v2/"

// APIError is a non-2xx response from the course service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API request failed with status code %d", e.StatusCode)
	}
	return fmt.Sprintf("API error (code %d): %s", e.StatusCode, e.Message)
}

// Client talks to one course service instance.
type Client struct {
	baseURL   string
	client    *http.Client
	languages []string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLanguages sets the languages an untranslated form field applies to.
func WithLanguages(langs ...string) Option {
	return func(c *Client) { c.languages = langs }
}

func New(baseURL string, opts ...Option) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		languages: []string{"en", "fi"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type namedRef struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}

type exerciseTree struct {
	Results []struct {
		namedRef
		Exercises []namedRef `json:"exercises"`
	} `json:"results"`
}

// Exercises returns the exercise groups of a course with their exercises.
func (c *Client) Exercises(ctx context.Context, course model.Course, auth model.Authentication) ([]model.ExerciseGroup, error) {
	var tree exerciseTree
	if err := c.apiGet(ctx, fmt.Sprintf("courses/%d/exercises/", course.ID), auth, &tree); err != nil {
		return nil, err
	}
	groups := make([]model.ExerciseGroup, 0, len(tree.Results))
	for _, r := range tree.Results {
		g := model.ExerciseGroup{ID: r.ID, Name: r.DisplayName}
		for _, e := range r.Exercises {
			g.Exercises = append(g.Exercises, model.Exercise{ID: e.ID, Name: e.DisplayName})
		}
		groups = append(groups, g)
	}
	return groups, nil
}

type exerciseDetails struct {
	ExerciseInfo *struct {
		FormSpec []struct {
			Key   string `json:"key"`
			Type  string `json:"type"`
			Title string `json:"title"`
		} `json:"form_spec"`
		FormI18n map[string]map[string]string `json:"form_i18n"`
	} `json:"exercise_info"`
}

// SubmissionInfo returns the files an exercise accepts, per language.
// Exercises without a form, or with non-file fields, accept no files.
func (c *Client) SubmissionInfo(ctx context.Context, exercise model.Exercise, auth model.Authentication) (model.SubmissionInfo, error) {
	var d exerciseDetails
	if err := c.apiGet(ctx, fmt.Sprintf("exercises/%d/", exercise.ID), auth, &d); err != nil {
		return model.SubmissionInfo{}, err
	}
	info := model.SubmissionInfo{Files: make(map[string][]model.SubmittableFile)}
	if d.ExerciseInfo == nil {
		return info, nil
	}
	for _, field := range d.ExerciseInfo.FormSpec {
		if field.Type != "file" {
			return model.SubmissionInfo{Files: map[string][]model.SubmittableFile{}}, nil
		}
	}
	for _, field := range d.ExerciseInfo.FormSpec {
		translations := d.ExerciseInfo.FormI18n[field.Title]
		for _, lang := range c.languages {
			name, ok := translations[lang]
			if !ok {
				name = field.Title
			}
			info.Files[lang] = append(info.Files[lang], model.SubmittableFile{Key: field.Key, Name: name})
		}
	}
	return info, nil
}

type submissionList struct {
	Results []model.SubmissionHistoryEntry `json:"results"`
}

// SubmissionHistory returns the caller's previous submissions to an exercise.
func (c *Client) SubmissionHistory(ctx context.Context, exercise model.Exercise, auth model.Authentication) (model.SubmissionHistory, error) {
	var list submissionList
	if err := c.apiGet(ctx, fmt.Sprintf("exercises/%d/submissions/me/", exercise.ID), auth, &list); err != nil {
		return model.SubmissionHistory{}, err
	}
	return model.SubmissionHistory{Entries: list.Results}, nil
}

type groupList struct {
	Results []struct {
		ID      int64 `json:"id"`
		Members []struct {
			FullName string `json:"full_name"`
		} `json:"members"`
	} `json:"results"`
}

// Groups returns the groups the caller belongs to in a course.
func (c *Client) Groups(ctx context.Context, course model.Course, auth model.Authentication) ([]model.Group, error) {
	var list groupList
	if err := c.apiGet(ctx, fmt.Sprintf("courses/%d/mygroups/", course.ID), auth, &list); err != nil {
		return nil, err
	}
	groups := make([]model.Group, 0, len(list.Results))
	for _, r := range list.Results {
		g := model.Group{ID: r.ID}
		for _, m := range r.Members {
			g.Members = append(g.Members, m.FullName)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

type formMeta struct {
	Lang  string `json:"lang"`
	Group *int64 `json:"group,omitempty"`
}

// Submit uploads the submission files and returns the URL of the new submission.
func (c *Client) Submit(ctx context.Context, s model.Submission, auth model.Authentication) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	meta := formMeta{Lang: s.Language}
	if !s.Group.IsSubmitAlone() {
		id := s.Group.ID
		meta.Group = &id
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal form metadata: %w", err)
	}
	if err := writer.WriteField("__aplus__", string(metaJSON)); err != nil {
		return "", fmt.Errorf("write form metadata: %w", err)
	}
	for key, path := range s.Files {
		if err := addFile(writer, key, path); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := c.createRequest(ctx, http.MethodPost, fmt.Sprintf("exercises/%d/submissions/submit/", s.Exercise.ID), auth, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	loc, err := resp.Location()
	if err != nil {
		return "", fmt.Errorf("submission accepted without a location: %w", err)
	}
	return loc.String(), nil
}

func addFile(w *multipart.Writer, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	part, err := w.CreateFormFile(key, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", path, err)
	}
	return nil
}

// SubmissionStatus fetches the status of a submission by its URL.
func (c *Client) SubmissionStatus(ctx context.Context, submissionURL string, auth model.Authentication) (model.SubmissionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, submissionURL, nil)
	if err != nil {
		return model.SubmissionStatus{}, fmt.Errorf("create request: %w", err)
	}
	setHeaders(req, auth)
	var status model.SubmissionStatus
	if err := c.doJSON(req, &status); err != nil {
		return model.SubmissionStatus{}, err
	}
	return status, nil
}

func (c *Client) apiGet(ctx context.Context, endpoint string, auth model.Authentication, result any) error {
	req, err := c.createRequest(ctx, http.MethodGet, endpoint, auth, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, result)
}

func (c *Client) createRequest(ctx context.Context, method, endpoint string, auth model.Authentication, body io.Reader) (*http.Request, error) {
	requestURL, err := url.JoinPath(c.baseURL, endpoint)
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}
	// API routes end in a slash.
	if strings.HasSuffix(endpoint, "/") && !strings.HasSuffix(requestURL, "/") {
		requestURL += "/"
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	setHeaders(req, auth)
	return req, nil
}

func setHeaders(req *http.Request, auth model.Authentication) {
	req.Header.Set("User-Agent", "aplus-submitter/go")
	req.Header.Set("Accept", "application/json")
	if !auth.Empty() {
		req.Header.Set("Authorization", "Token "+auth.Token)
	}
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, apiError(resp.StatusCode, body)
	}
	return resp, nil
}

func (c *Client) doJSON(req *http.Request, result any) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func apiError(code int, body []byte) *APIError {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return &APIError{StatusCode: code, Message: payload.Detail}
		}
		if payload.Error != "" {
			return &APIError{StatusCode: code, Message: payload.Error}
		}
	}
	return &APIError{StatusCode: code, Message: strings.TrimSpace(string(body))}
}

// ParseExerciseID accepts a numeric id or an exercise URL ending in the id.
func ParseExerciseID(s string) (int64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid exercise id %q", s)
	}
	return id, nil
}
