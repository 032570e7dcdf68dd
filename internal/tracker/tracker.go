// Package tracker polls dispatched submissions until the course service
// reports a final grading result.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/notify"
)

// Poller fetches the current status of a submission.
type Poller interface {
	SubmissionStatus(ctx context.Context, url string, auth model.Authentication) (model.SubmissionStatus, error)
}

// StatusRecorder stores every observed status.
type StatusRecorder interface {
	UpdateSubmissionStatus(url string, status model.SubmissionStatus) error
}

// Job is one submission to follow.
type Job struct {
	URL          string
	ExerciseName string
	Auth         model.Authentication
	Project      model.Project
}

// Policy bounds how long and how often a submission is polled.
type Policy struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
	MaxPolls        int
}

// DefaultPolicy polls after 3s, growing by 1.5x up to 30s between polls,
// and gives up after 40 polls or 10 minutes.
var DefaultPolicy = Policy{
	InitialInterval: 3 * time.Second,
	Multiplier:      1.5,
	MaxInterval:     30 * time.Second,
	MaxElapsed:      10 * time.Minute,
	MaxPolls:        40,
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.Multiplier = p.Multiplier
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = p.MaxElapsed
	eb.RandomizationFactor = 0.1
	eb.Reset()
	var b backoff.BackOff = eb
	if p.MaxPolls > 0 {
		// The first poll is not a retry.
		b = backoff.WithMaxRetries(b, uint64(p.MaxPolls-1))
	}
	return backoff.WithContext(b, ctx)
}

var errPending = errors.New("submission still being graded")

// Tracker follows submissions on goroutines owned by a Session.
type Tracker struct {
	session  *Session
	poller   Poller
	notifier notify.Notifier
	recorder StatusRecorder
	policy   Policy
	log      *slog.Logger
	// newBackOff is replaced in tests.
	newBackOff func(ctx context.Context) backoff.BackOff
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPolicy overrides DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(t *Tracker) { t.policy = p }
}

// WithRecorder stores every observed status.
func WithRecorder(r StatusRecorder) Option {
	return func(t *Tracker) { t.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

func New(session *Session, poller Poller, notifier notify.Notifier, opts ...Option) *Tracker {
	t := &Tracker{
		session:  session,
		poller:   poller,
		notifier: notifier,
		policy:   DefaultPolicy,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.newBackOff == nil {
		t.newBackOff = t.policy.backOff
	}
	return t
}

// Track starts following job in the background and returns immediately.
func (t *Tracker) Track(job Job) {
	t.session.Go(func(ctx context.Context) {
		t.follow(ctx, job)
	})
}

func (t *Tracker) follow(ctx context.Context, job Job) {
	log := t.log.With("url", job.URL)
	polls := 0
	var last model.SubmissionStatus

	op := func() error {
		polls++
		status, err := t.poller.SubmissionStatus(ctx, job.URL, job.Auth)
		if err != nil {
			return fmt.Errorf("poll status: %w", err)
		}
		last = status
		t.record(log, job.URL, status)
		if status.State.Terminal() {
			return nil
		}
		return errPending
	}
	onRetry := func(err error, next time.Duration) {
		if !errors.Is(err, errPending) {
			log.Warn("status poll failed", "poll", polls, "retry_in", next, "error", err)
			return
		}
		log.Debug("submission pending", "poll", polls, "retry_in", next)
	}

	err := backoff.RetryNotify(op, t.newBackOff(ctx), onRetry)
	if ctx.Err() != nil {
		log.Debug("tracking stopped", "polls", polls)
		return
	}
	if err != nil {
		log.Warn("gave up tracking submission", "polls", polls, "error", err)
		t.record(log, job.URL, model.SubmissionStatus{State: model.StateUnknown})
		t.notifier.Notify(notify.StatusUnknown(ctx, job.ExerciseName), job.Project)
		return
	}

	log.Info("submission graded", "status", last.State, "points", last.Points, "max_points", last.MaxPoints, "polls", polls)
	if last.State == model.StateReady {
		t.notifier.Notify(notify.FeedbackAvailable(ctx, job.ExerciseName, last), job.Project)
		return
	}
	t.notifier.Notify(notify.SubmissionFailed(ctx, job.ExerciseName, last.State), job.Project)
}

func (t *Tracker) record(log *slog.Logger, url string, status model.SubmissionStatus) {
	if t.recorder == nil {
		return
	}
	if err := t.recorder.UpdateSubmissionStatus(url, status); err != nil {
		log.Warn("failed to record submission status", "error", err)
	}
}
