package submit

import (
	"github.com/pavelanni/submitter/internal/model"
)

// FileResolver maps the files an exercise requires to paths inside a module.
type FileResolver struct {
	finder FileFinder
	saver  DocumentSaver
}

func NewFileResolver(finder FileFinder, saver DocumentSaver) *FileResolver {
	return &FileResolver{finder: finder, saver: saver}
}

// Resolve flushes open documents and looks up every file below moduleDir.
// The first missing file aborts with a *FileDoesNotExistError and no partial result.
func (r *FileResolver) Resolve(moduleDir string, files []model.SubmittableFile) (map[string]string, error) {
	if r.saver != nil {
		if err := r.saver.SaveAll(); err != nil {
			return nil, &LocalError{Op: "save documents", Err: err}
		}
	}
	resolved := make(map[string]string, len(files))
	for _, f := range files {
		path, err := r.finder.Find(moduleDir, f.Name)
		if err != nil || path == "" {
			return nil, &FileDoesNotExistError{Path: moduleDir, Name: f.Name}
		}
		resolved[f.Key] = path
	}
	return resolved, nil
}
