// Package dialog implements the modal dialogs of a submission in the terminal.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pavelanni/submitter/internal/i18n"
	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/submit"
)

// Host shows dialogs as interactive terminal programs.
type Host struct {
	in  io.Reader
	out io.Writer
}

func NewHost(in io.Reader, out io.Writer) *Host {
	return &Host{in: in, out: out}
}

func (h *Host) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m, tea.WithInput(h.in), tea.WithOutput(h.out), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("run dialog: %w", err)
	}
	return final, nil
}

func (h *Host) SelectModule(ctx context.Context, project model.Project, modules []model.Module) (submit.DialogResult[model.Module], error) {
	m := moduleModel{
		title:   i18n.T(ctx, "SelectModuleTitle"),
		count:   i18n.Tp(ctx, "ModulesAvailable", len(modules)),
		help:    i18n.T(ctx, "DialogHelp"),
		modules: modules,
	}
	final, err := h.run(ctx, m)
	if err != nil {
		return submit.Cancelled[model.Module](), err
	}
	if mod, ok := final.(moduleModel).selected(); ok {
		return submit.Confirmed(mod), nil
	}
	return submit.Cancelled[model.Module](), nil
}

func (h *Host) ConfirmSubmission(ctx context.Context, project model.Project, draft *submit.Draft) (submit.DialogResult[submit.Confirmation], error) {
	m := newConfirmModel(draft, confirmTextFor(ctx, draft))
	final, err := h.run(ctx, m)
	if err != nil {
		return submit.Cancelled[submit.Confirmation](), err
	}
	if c, ok := final.(confirmModel).confirmation(); ok {
		return submit.Confirmed(c), nil
	}
	return submit.Cancelled[submit.Confirmation](), nil
}

func confirmTextFor(ctx context.Context, draft *submit.Draft) confirmText {
	return confirmText{
		title:    i18n.Td(ctx, "ConfirmSubmissionTitle", map[string]any{"Exercise": draft.PresentableExerciseName()}),
		number:   i18n.Td(ctx, "SubmissionNumber", map[string]any{"Number": draft.SubmissionNumber()}),
		files:    i18n.T(ctx, "SubmittedFiles"),
		group:    i18n.T(ctx, "SelectGroup"),
		remember: i18n.T(ctx, "RememberGroup"),
		help:     i18n.T(ctx, "ConfirmHelp"),
	}
}

// AutoHost answers dialogs without user interaction: a single module is
// chosen, and the remembered group is confirmed, falling back to submitting alone.
type AutoHost struct {
	Log *slog.Logger
}

func (a AutoHost) logger() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}

func (a AutoHost) SelectModule(_ context.Context, project model.Project, modules []model.Module) (submit.DialogResult[model.Module], error) {
	if len(modules) != 1 {
		a.logger().Warn("cannot choose a module without asking", "project", project.Name, "modules", len(modules))
		return submit.Cancelled[model.Module](), nil
	}
	return submit.Confirmed(modules[0]), nil
}

func (a AutoHost) ConfirmSubmission(_ context.Context, _ model.Project, draft *submit.Draft) (submit.DialogResult[submit.Confirmation], error) {
	if def, ok := draft.DefaultGroup(); ok {
		return submit.Confirmed(submit.Confirmation{Group: def, RememberGroup: true}), nil
	}
	groups := draft.Groups()
	if len(groups) == 0 {
		return submit.Cancelled[submit.Confirmation](), nil
	}
	return submit.Confirmed(submit.Confirmation{Group: groups[0]}), nil
}
