package submit

import "fmt"

// ModuleMissingError means an exercise is mapped to a module the project no longer has.
type ModuleMissingError struct {
	ModuleName string
}

func (e *ModuleMissingError) Error() string {
	return fmt.Sprintf("module %q not found in project", e.ModuleName)
}

// FileDoesNotExistError means a required file could not be found in a module.
type FileDoesNotExistError struct {
	Path string
	Name string
}

func (e *FileDoesNotExistError) Error() string {
	return fmt.Sprintf("file %q not found in %s", e.Name, e.Path)
}

// NetworkError wraps a failed call to the course service.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// LocalError wraps a failure of the local workspace, such as listing modules
// or saving open documents.
type LocalError struct {
	Op  string
	Err error
}

func (e *LocalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *LocalError) Unwrap() error {
	return e.Err
}

// DialogError means a dialog could not be shown or was interrupted.
type DialogError struct {
	Dialog string
	Err    error
}

func (e *DialogError) Error() string {
	return fmt.Sprintf("%s dialog: %v", e.Dialog, e.Err)
}

func (e *DialogError) Unwrap() error {
	return e.Err
}
