package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pavelanni/submitter/internal/aplus"
	"github.com/pavelanni/submitter/internal/course"
	appI18n "github.com/pavelanni/submitter/internal/i18n"
	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/store"
	"github.com/pavelanni/submitter/internal/workspace"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: read .env:", err)
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "submitter",
		Short:        "Submit exercise solutions to the A+ course service",
		SilenceUsage: true,
	}
	root.AddCommand(
		submitCmd(),
		exercisesCmd(),
		modulesCmd(),
		groupCmd(),
		historyCmd(),
		serveCmd(),
	)
	return root
}

func addCommonFlags(f *pflag.FlagSet) {
	f.StringP("project", "p", ".", "Project directory")
	f.String("db", defaultDBPath(), "SQLite database path")
	f.String("token", "", "A+ API token (or set APLUS_TOKEN)")
	f.String("api-url", "", "A+ API base URL (defaults to the course file, then "+aplus.DefaultBaseURL+")")
	f.StringP("language", "l", "", "Submission and UI language (en, fi); defaults to the course file")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "submitter.db"
	}
	return filepath.Join(dir, "submitter", "submitter.db")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("APLUS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("submitter")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/submitter")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// env is what every command needs: the project, its course file, the
// database and the localized context.
type env struct {
	v        *viper.Viper
	ctx      context.Context
	project  model.Project
	course   *course.File
	db       *store.Store
	language string
	auth     model.Authentication
	stop     context.CancelFunc
}

func setup(cmd *cobra.Command) (*env, error) {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	project, err := workspace.Open(v.GetString("project"))
	if err != nil {
		return nil, err
	}
	cf, err := course.FindAndLoad(project.Root)
	switch {
	case errors.Is(err, course.ErrNotFound):
		slog.Debug("no course file", "project", project.Root)
	case err != nil:
		return nil, err
	}

	lang := v.GetString("language")
	if lang == "" && cf != nil {
		lang = cf.Language
	}
	if lang == "" {
		lang = appI18n.DefaultLanguage
	}
	if err := appI18n.Init(lang); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}

	dbPath := v.GetString("db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	return &env{
		v:        v,
		ctx:      appI18n.WithLanguage(ctx, lang),
		project:  project,
		course:   cf,
		db:       db,
		language: lang,
		auth:     model.Authentication{Token: v.GetString("token")},
		stop:     stop,
	}, nil
}

func (e *env) Close() {
	e.stop()
	if err := e.db.Close(); err != nil {
		slog.Warn("close database", "error", err)
	}
}

func (e *env) courseInfo() model.Course {
	if e.course == nil {
		return model.Course{}
	}
	return e.course.Course()
}

// client returns an API client, or an error when the command cannot reach the course.
func (e *env) client() (*aplus.Client, error) {
	if e.course == nil {
		return nil, fmt.Errorf("no %s found in %s or its parents", course.FileName, e.project.Root)
	}
	if e.auth.Empty() {
		return nil, errors.New("no API token: set --token or APLUS_TOKEN")
	}
	apiURL := e.v.GetString("api-url")
	if apiURL == "" {
		apiURL = e.course.APIURL
	}
	if apiURL == "" {
		apiURL = aplus.DefaultBaseURL
	}
	return aplus.New(apiURL), nil
}
