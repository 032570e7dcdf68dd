// Package course reads the project course file that ties a local project to a
// course on the course service.
package course

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/submit"
)

// FileName is the course file looked up in a project and its parents.
const FileName = ".aplus-course.yaml"

// ErrNotFound is returned when no course file exists above a directory.
var ErrNotFound = errors.New("course file not found")

// File is the content of a course file.
type File struct {
	CourseID int64  `yaml:"course_id" validate:"required,gt=0"`
	Name     string `yaml:"name" validate:"notblank"`
	Language string `yaml:"language" validate:"required,oneof=en fi"`
	APIURL   string `yaml:"api_url" validate:"omitempty,url"`
	// ExerciseModules maps exercise id to language to module name.
	ExerciseModules map[int64]map[string]string `yaml:"exercise_modules" validate:"dive,keys,gt=0,endkeys,dive,keys,oneof=en fi,endkeys,notblank"`

	path string
}

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterTranslation("notblank", translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " cannot be blank"
		})
}

// Path is where the file was read from.
func (f *File) Path() string { return f.path }

// Course returns the course the project belongs to.
func (f *File) Course() model.Course {
	return model.Course{ID: f.CourseID, Name: f.Name}
}

// ExerciseModulesFor returns the language to module mapping of an exercise, or nil.
func (f *File) ExerciseModulesFor(exerciseID int64) map[string]string {
	return f.ExerciseModules[exerciseID]
}

// Validate checks the file and returns a readable error listing every problem.
func (f *File) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return fmt.Errorf("invalid course file: %s", strings.Join(msgs, "; "))
}

// Load reads and validates the course file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	f.path = path
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Find looks for the course file in dir and its parents.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// FindAndLoad combines Find and Load.
func FindAndLoad(dir string) (*File, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the file back to its path.
func (f *File) Save() error {
	if err := f.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode course file: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write course file: %w", err)
	}
	return nil
}

// Mappings reads exercise modules from a primary source and falls back to
// the course file for exercises the primary source has no mapping for.
type Mappings struct {
	Primary submit.MappingSource
	File    *File
}

func (m Mappings) ExerciseModules(exerciseID int64) (map[string]string, error) {
	if m.Primary != nil {
		modules, err := m.Primary.ExerciseModules(exerciseID)
		if err != nil {
			return nil, err
		}
		if len(modules) > 0 {
			return modules, nil
		}
	}
	if m.File == nil {
		return nil, nil
	}
	return m.File.ExerciseModulesFor(exerciseID), nil
}
