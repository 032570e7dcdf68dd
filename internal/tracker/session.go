package tracker

import (
	"context"
	"sync"
)

// Session owns background work for the lifetime of an open project.
// Closing the session cancels its context and waits for running tasks.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession derives a session from parent. Cancelling parent ends the session too.
func NewSession(parent context.Context) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Go runs fn on its own goroutine bound to the session context.
func (s *Session) Go(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// Wait blocks until every task has returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels all tasks and waits for them.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}
