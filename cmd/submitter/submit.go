package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pavelanni/submitter/internal/aplus"
	"github.com/pavelanni/submitter/internal/course"
	"github.com/pavelanni/submitter/internal/dialog"
	"github.com/pavelanni/submitter/internal/notify"
	"github.com/pavelanni/submitter/internal/submit"
	"github.com/pavelanni/submitter/internal/tracker"
	"github.com/pavelanni/submitter/internal/workspace"
)

func submitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the solution of an exercise and wait for its grade",
		RunE:  runSubmit,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	f.StringP("exercise", "e", "", "Exercise id or URL (required)")
	f.BoolP("yes", "y", false, "Do not ask: use the mapped module and the remembered group")
	f.Bool("no-wait", false, "Return after sending instead of waiting for the grade")
	_ = cmd.MarkFlagRequired("exercise")
	return cmd
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	client, err := e.client()
	if err != nil {
		return err
	}
	exerciseID, err := aplus.ParseExerciseID(e.v.GetString("exercise"))
	if err != nil {
		return err
	}

	notifier := notify.Multi{notify.NewConsole(os.Stdout), e.db}

	session := tracker.NewSession(e.ctx)
	defer session.Close()
	trk := tracker.New(session, client, notifier,
		tracker.WithRecorder(e.db),
		tracker.WithLogger(slog.Default().With("exercise_id", exerciseID)))

	var dialogs submit.Dialogs = dialog.NewHost(os.Stdin, os.Stderr)
	if e.v.GetBool("yes") {
		dialogs = dialog.AutoHost{}
	}

	orch := submit.New(submit.Config{
		Source:   client,
		Dialogs:  dialogs,
		Modules:  workspace.Modules{},
		Mappings: course.Mappings{Primary: e.db, File: e.course},
		Finder:   workspace.Finder{},
		Saver:    workspace.NopSaver{},
		Notifier: notifier,
		Settings: e.db,
		Tagger:   e.db,
		Tracker:  trk,
		Recorder: e.db,
		Logger:   slog.Default(),
	})

	if w, err := workspace.NewWatcher(e.project, slog.Default()); err != nil {
		slog.Warn("module watcher unavailable", "error", err)
	} else {
		go w.Run(session.Context())
		go orch.ModuleResolver().Watch(session.Context(), w.Events())
	}

	res := orch.Submit(e.ctx, submit.Request{
		Project:    e.project,
		Course:     e.courseInfo(),
		Auth:       e.auth,
		ExerciseID: exerciseID,
		Language:   e.language,
	})
	slog.Debug("submission finished", "outcome", res.Outcome, "state", res.State, "url", res.TrackingURL)

	switch res.Outcome {
	case submit.OutcomeSent:
		if e.v.GetBool("no-wait") {
			return nil
		}
		session.Wait()
		return nil
	case submit.OutcomeCancelled:
		return nil
	}
	return fmt.Errorf("submission not sent: %s", res.Outcome)
}
