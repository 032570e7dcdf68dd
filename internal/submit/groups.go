package submit

import (
	"context"
	"log/slog"

	"github.com/pavelanni/submitter/internal/i18n"
	"github.com/pavelanni/submitter/internal/model"
)

// GroupResolver builds the group choices of a submission.
type GroupResolver struct {
	source   DataSource
	settings Settings
	log      *slog.Logger
}

func NewGroupResolver(source DataSource, settings Settings, log *slog.Logger) *GroupResolver {
	if log == nil {
		log = slog.Default()
	}
	return &GroupResolver{source: source, settings: settings, log: log}
}

// SubmitAlone returns the synthetic group for submitting without collaborators.
func SubmitAlone(ctx context.Context) model.Group {
	return model.Group{ID: model.SubmitAloneGroupID, Members: []string{i18n.T(ctx, "SubmitAlone")}}
}

// Resolve fetches the live groups, prepends the "submit alone" group and looks
// up the remembered default among them. The default is nil when nothing is
// remembered or the remembered group no longer exists.
func (r *GroupResolver) Resolve(ctx context.Context, course model.Course, auth model.Authentication) ([]model.Group, *model.Group, error) {
	remote, err := r.source.Groups(ctx, course, auth)
	if err != nil {
		return nil, nil, &NetworkError{Op: "fetch groups", Err: err}
	}
	groups := make([]model.Group, 0, len(remote)+1)
	groups = append(groups, SubmitAlone(ctx))
	groups = append(groups, remote...)

	return groups, r.defaultGroup(groups), nil
}

func (r *GroupResolver) defaultGroup(groups []model.Group) *model.Group {
	id, ok, err := r.settings.DefaultGroupID()
	if err != nil {
		r.log.Warn("failed to read default group", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	for i := range groups {
		if groups[i].ID == id {
			g := groups[i]
			return &g
		}
	}
	r.log.Debug("remembered group no longer available", "group_id", id)
	return nil
}

// Remember stores or clears the default group after the user confirmed a submission.
func (r *GroupResolver) Remember(c Confirmation) {
	var err error
	if c.RememberGroup {
		err = r.settings.SetDefaultGroupID(c.Group.ID)
	} else {
		err = r.settings.ClearDefaultGroupID()
	}
	if err != nil {
		r.log.Warn("failed to update default group", "group_id", c.Group.ID, "error", err)
	}
}
