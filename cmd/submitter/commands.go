package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/spf13/cobra"

	"github.com/pavelanni/submitter/internal/aplus"
	"github.com/pavelanni/submitter/internal/handler"
	appI18n "github.com/pavelanni/submitter/internal/i18n"
	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/workspace"
)

func exercisesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "List the exercises of the project's course",
		RunE:  runExercises,
	}
	addCommonFlags(cmd.Flags())
	return cmd
}

func runExercises(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	client, err := e.client()
	if err != nil {
		return err
	}
	groups, err := client.Exercises(e.ctx, e.courseInfo(), e.auth)
	if err != nil {
		return fmt.Errorf("fetch exercises: %w", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(w, "%s\n", model.LocalizedName(g.Name, e.language))
		for _, ex := range g.Exercises {
			fmt.Fprintf(w, "  %d\t%s\n", ex.ID, model.LocalizedName(ex.Name, e.language))
		}
	}
	return w.Flush()
}

func modulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List project modules and manage exercise to module mappings",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List project modules and mapped exercises",
		Args:  cobra.NoArgs,
		RunE:  runModulesList,
	}
	addCommonFlags(list.Flags())

	mapCmd := &cobra.Command{
		Use:   "map EXERCISE MODULE",
		Short: "Submit EXERCISE from MODULE in the current language",
		Args:  cobra.ExactArgs(2),
		RunE:  runModulesMap,
	}
	addCommonFlags(mapCmd.Flags())

	unmap := &cobra.Command{
		Use:   "unmap EXERCISE",
		Short: "Forget the modules mapped to EXERCISE",
		Args:  cobra.ExactArgs(1),
		RunE:  runModulesUnmap,
	}
	addCommonFlags(unmap.Flags())

	cmd.AddCommand(list, mapCmd, unmap)
	return cmd
}

func runModulesList(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	modules, err := workspace.Modules{}.Modules(e.project)
	if err != nil {
		return err
	}
	fmt.Println(appI18n.Tp(e.ctx, "ModulesAvailable", len(modules)))
	for _, m := range modules {
		fmt.Printf("  %s\n", m.Name)
	}

	mappings, err := e.db.ListExerciseModules()
	if err != nil {
		return fmt.Errorf("list mappings: %w", err)
	}
	if len(mappings) == 0 && (e.course == nil || len(e.course.ExerciseModules) == 0) {
		return nil
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, m := range mappings {
		fmt.Fprintf(w, "%d\t%s\t%s\n", m.ExerciseID, m.Language, m.ModuleName)
	}
	if e.course != nil {
		for id, byLang := range e.course.ExerciseModules {
			for lang, name := range byLang {
				fmt.Fprintf(w, "%d\t%s\t%s\t(%s)\n", id, lang, name, e.course.Path())
			}
		}
	}
	return w.Flush()
}

func runModulesMap(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	exerciseID, err := aplus.ParseExerciseID(args[0])
	if err != nil {
		return err
	}
	if _, ok := (workspace.Modules{}).Module(e.project, args[1]); !ok {
		return fmt.Errorf("module %q not found in %s", args[1], e.project.Root)
	}
	if err := e.db.SetExerciseModule(exerciseID, e.language, args[1]); err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}
	slog.Info("mapped exercise", "exercise_id", exerciseID, "language", e.language, "module", args[1])
	return nil
}

func runModulesUnmap(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	exerciseID, err := aplus.ParseExerciseID(args[0])
	if err != nil {
		return err
	}
	if err := e.db.RemoveExerciseModules(exerciseID); err != nil {
		return fmt.Errorf("remove mapping: %w", err)
	}
	return nil
}

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Show or forget the remembered submission group",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the remembered group",
		Args:  cobra.NoArgs,
		RunE:  runGroupShow,
	}
	addCommonFlags(show.Flags())
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the remembered group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			return e.db.ClearDefaultGroupID()
		},
	}
	addCommonFlags(clearCmd.Flags())
	cmd.AddCommand(show, clearCmd)
	return cmd
}

func runGroupShow(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	id, ok, err := e.db.DefaultGroupID()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no group remembered")
		return nil
	}
	if id == model.SubmitAloneGroupID {
		fmt.Println(appI18n.T(e.ctx, "SubmitAlone"))
		return nil
	}

	// Show the members when the course can be reached.
	client, err := e.client()
	if err != nil {
		fmt.Println(id)
		return nil
	}
	groups, err := client.Groups(e.ctx, e.courseInfo(), e.auth)
	if err != nil {
		slog.Warn("fetch groups", "error", err)
		fmt.Println(id)
		return nil
	}
	for _, g := range groups {
		if g.ID == id {
			fmt.Printf("%d\t%s\n", id, g.Label())
			return nil
		}
	}
	fmt.Printf("%d\t(no longer available)\n", id)
	return nil
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List submissions sent from this machine",
		RunE:  runHistory,
	}
	addCommonFlags(cmd.Flags())
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	records, err := e.db.ListSubmissions()
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}
	if e.v.GetBool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		fmt.Println(appI18n.T(e.ctx, "FeedEmpty"))
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, r := range records {
		pts := ""
		if r.Points != nil && r.MaxPoints != nil {
			pts = strconv.Itoa(*r.Points) + "/" + strconv.Itoa(*r.MaxPoints)
		}
		fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\n", r.SubmissionNumber, r.ExerciseName, r.State, pts, humanize.Time(r.SubmittedAt))
	}
	return w.Flush()
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local submission feed over HTTP",
		RunE:  runServe,
	}
	addCommonFlags(cmd.Flags())
	cmd.Flags().StringP("addr", "a", "127.0.0.1:8080", "HTTP listen address")
	cmd.Flags().StringSlice("cors-origin", []string{"http://localhost:*", "http://127.0.0.1:*"}, "Origins allowed to read the feed API")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	logger := httplog.NewLogger("submitter", httplog.Options{
		LogLevel: slog.LevelInfo,
		JSON:     strings.EqualFold(e.v.GetString("log-format"), "json"),
		Concise:  true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: e.v.GetStringSlice("cors-origin"),
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language"},
		MaxAge:         600,
	}))
	r.Use(appI18n.Middleware(e.language))
	handler.New(e.db).Routes(r)

	addr := e.v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-e.ctx.Done()
		srv.Close()
	}()
	slog.Info("starting server", "addr", addr, "db", e.v.GetString("db"), "lang", e.language)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
