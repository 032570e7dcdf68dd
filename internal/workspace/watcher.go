package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/submit"
)

// Watcher publishes an event whenever a module directory of a project is
// removed or renamed.
type Watcher struct {
	project model.Project
	fsw     *fsnotify.Watcher
	events  chan submit.ModuleEvent
	log     *slog.Logger
}

func NewWatcher(project model.Project, log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(project.Root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", project.Root, err)
	}
	return &Watcher{
		project: project,
		fsw:     fsw,
		events:  make(chan submit.ModuleEvent, 16),
		log:     log,
	}, nil
}

// Events is closed when Run returns.
func (w *Watcher) Events() <-chan submit.ModuleEvent {
	return w.events
}

// Run forwards module removals until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "project", w.project.Root, "error", err)
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			me, ok := w.moduleEvent(ev)
			if !ok {
				continue
			}
			select {
			case w.events <- me:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Watcher) moduleEvent(ev fsnotify.Event) (submit.ModuleEvent, bool) {
	if filepath.Dir(ev.Name) != w.project.Root {
		return submit.ModuleEvent{}, false
	}
	name := filepath.Base(ev.Name)
	if hidden(name) {
		return submit.ModuleEvent{}, false
	}
	switch {
	case ev.Has(fsnotify.Remove):
		return submit.ModuleEvent{Kind: submit.ModuleRemoved, Name: name}, true
	case ev.Has(fsnotify.Rename):
		return submit.ModuleEvent{Kind: submit.ModuleRenamed, Name: name}, true
	}
	return submit.ModuleEvent{}, false
}
