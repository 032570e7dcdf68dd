package submit

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pavelanni/submitter/internal/model"
)

// Draft holds everything the confirmation dialog shows and builds the final
// payload once the user picked a group. It performs no I/O.
type Draft struct {
	exercise     model.Exercise
	info         model.SubmissionInfo
	history      model.SubmissionHistory
	groups       []model.Group
	defaultGroup *model.Group
	files        map[string]string
	language     string
}

func NewDraft(
	exercise model.Exercise,
	info model.SubmissionInfo,
	history model.SubmissionHistory,
	groups []model.Group,
	defaultGroup *model.Group,
	files map[string]string,
	language string,
) *Draft {
	return &Draft{
		exercise:     exercise,
		info:         info,
		history:      history,
		groups:       slices.Clone(groups),
		defaultGroup: defaultGroup,
		files:        maps.Clone(files),
		language:     language,
	}
}

func (d *Draft) Exercise() model.Exercise { return d.exercise }

func (d *Draft) Language() string { return d.language }

// SubmissionNumber is the number this submission will get.
func (d *Draft) SubmissionNumber() int {
	return d.history.Count() + 1
}

func (d *Draft) PresentableExerciseName() string {
	return d.exercise.PresentableName()
}

// Groups returns the selectable groups; index 0 is "submit alone".
func (d *Draft) Groups() []model.Group {
	return slices.Clone(d.groups)
}

// DefaultGroup returns the preselected group, if any.
func (d *Draft) DefaultGroup() (model.Group, bool) {
	if d.defaultGroup == nil {
		return model.Group{}, false
	}
	return *d.defaultGroup, true
}

// Files lists the required files with their resolved local paths, in form order.
func (d *Draft) Files() []ResolvedFile {
	var out []ResolvedFile
	for _, f := range d.info.FilesFor(d.language) {
		out = append(out, ResolvedFile{SubmittableFile: f, Path: d.files[f.Key]})
	}
	return out
}

// ResolvedFile is a required file and where it was found.
type ResolvedFile struct {
	model.SubmittableFile
	Path string
}

// Build returns the payload for the chosen group. The group must be one of Groups.
func (d *Draft) Build(group model.Group) (model.Submission, error) {
	if !slices.ContainsFunc(d.groups, func(g model.Group) bool { return g.ID == group.ID }) {
		return model.Submission{}, fmt.Errorf("group %d is not available for this submission", group.ID)
	}
	return model.Submission{
		Exercise: d.exercise,
		Group:    group,
		Files:    maps.Clone(d.files),
		Language: d.language,
	}, nil
}
