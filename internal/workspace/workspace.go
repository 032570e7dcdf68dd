// Package workspace exposes a local project directory: its modules, the files
// inside them and notifications about modules disappearing.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pavelanni/submitter/internal/model"
)

// Open returns the project rooted at dir.
func Open(dir string) (model.Project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return model.Project{}, fmt.Errorf("resolve project dir: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return model.Project{}, fmt.Errorf("open project: %w", err)
	}
	if !info.IsDir() {
		return model.Project{}, fmt.Errorf("open project: %s is not a directory", root)
	}
	return model.Project{Name: filepath.Base(root), Root: root}, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// Modules lists project modules: the visible top-level directories of a project.
type Modules struct{}

func (Modules) Modules(project model.Project) ([]model.Module, error) {
	entries, err := os.ReadDir(project.Root)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	var modules []model.Module
	for _, e := range entries {
		if !e.IsDir() || hidden(e.Name()) {
			continue
		}
		modules = append(modules, model.Module{Name: e.Name(), Dir: filepath.Join(project.Root, e.Name())})
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	return modules, nil
}

func (Modules) Module(project model.Project, name string) (model.Module, bool) {
	if name == "" || hidden(name) || strings.ContainsRune(name, filepath.Separator) {
		return model.Module{}, false
	}
	dir := filepath.Join(project.Root, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return model.Module{}, false
	}
	return model.Module{Name: name, Dir: dir}, true
}

var errFound = errors.New("found")

// ErrFileNotFound is returned by FindFile when no file matches.
var ErrFileNotFound = errors.New("file not found")

// FindFile returns the first regular file called name below root, in lexical
// walk order, skipping hidden directories.
func FindFile(root, name string) (string, error) {
	var match string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && hidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name && d.Type().IsRegular() {
			match = path
			return errFound
		}
		return nil
	})
	switch {
	case errors.Is(err, errFound):
		return match, nil
	case err != nil:
		return "", fmt.Errorf("search %s: %w", root, err)
	}
	return "", ErrFileNotFound
}

// Finder adapts FindFile to the submit.FileFinder interface.
type Finder struct{}

func (Finder) Find(root, name string) (string, error) {
	return FindFile(root, name)
}

// NopSaver is the document saver for headless use: files on disk are already current.
type NopSaver struct{}

func (NopSaver) SaveAll() error { return nil }
