package submit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pavelanni/submitter/internal/model"
)

// ModuleEventKind tells what happened to a module.
type ModuleEventKind int

const (
	ModuleRemoved ModuleEventKind = iota
	ModuleRenamed
)

// ModuleEvent is published when a module disappears from a project.
type ModuleEvent struct {
	Kind ModuleEventKind
	Name string
}

// ModuleResolver picks the module an exercise is submitted from.
type ModuleResolver struct {
	source   ModuleSource
	mappings MappingSource
	dialogs  Dialogs
	log      *slog.Logger

	mu    sync.Mutex
	cache map[int64]map[string]string
}

func NewModuleResolver(source ModuleSource, mappings MappingSource, dialogs Dialogs, log *slog.Logger) *ModuleResolver {
	if log == nil {
		log = slog.Default()
	}
	return &ModuleResolver{
		source:   source,
		mappings: mappings,
		dialogs:  dialogs,
		log:      log,
		cache:    make(map[int64]map[string]string),
	}
}

// Resolve returns the module mapped to the exercise in the given language, or
// lets the user choose one of the project modules when there is no mapping.
// A cancelled result means the user dismissed the selection.
func (r *ModuleResolver) Resolve(ctx context.Context, project model.Project, exerciseID int64, language string) (DialogResult[model.Module], error) {
	if name, ok := r.mappedModule(exerciseID, language); ok {
		m, found := r.source.Module(project, name)
		if !found {
			return Cancelled[model.Module](), &ModuleMissingError{ModuleName: name}
		}
		return Confirmed(m), nil
	}

	modules, err := r.source.Modules(project)
	if err != nil {
		return Cancelled[model.Module](), &LocalError{Op: "list modules", Err: err}
	}
	choice, err := r.dialogs.SelectModule(ctx, project, modules)
	if err != nil {
		return Cancelled[model.Module](), &DialogError{Dialog: "module selection", Err: err}
	}
	return choice, nil
}

func (r *ModuleResolver) mappedModule(exerciseID int64, language string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	modules, cached := r.cache[exerciseID]
	if !cached {
		var err error
		modules, err = r.mappings.ExerciseModules(exerciseID)
		if err != nil {
			r.log.Warn("failed to read exercise module mapping", "exercise_id", exerciseID, "error", err)
			return "", false
		}
		r.cache[exerciseID] = modules
	}
	name, ok := modules[language]
	return name, ok
}

// Invalidate drops cached mappings that point at the named module.
func (r *ModuleResolver) Invalidate(moduleName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, modules := range r.cache {
		for _, name := range modules {
			if name == moduleName {
				delete(r.cache, id)
				break
			}
		}
	}
}

// Watch invalidates cached mappings for every removed or renamed module until
// events is closed or ctx is done.
func (r *ModuleResolver) Watch(ctx context.Context, events <-chan ModuleEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.log.Debug("module gone, invalidating mappings", "module", ev.Name)
			r.Invalidate(ev.Name)
		}
	}
}
