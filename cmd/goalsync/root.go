package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ymatsuki/goalsync/internal/ident"
	"github.com/ymatsuki/goalsync/internal/localdb"
	"github.com/ymatsuki/goalsync/internal/remotedb"
	"github.com/ymatsuki/goalsync/internal/session"
	goalsync "github.com/ymatsuki/goalsync/internal/sync"
	"github.com/ymatsuki/goalsync/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "goalsync",
	Short: "Local-first personal goal tracker",
	Long: `goalsync tracks personal goals in a local SQLite database and keeps
it reconciled with a shared Postgres backend.

The local database is always the one read from, so everything works
offline. On session start the active user's goals are pulled down from
the remote (remote wins); every create, update and delete is written
locally first and then pushed best-effort.`,
	SilenceUsage: true,
}

// app bundles the stores and coordinator a command needs for one run.
type app struct {
	dir     string
	session *session.Store
	local   *localdb.Store
	remote  *remotedb.Store // nil when offline or unconfigured
	coord   *goalsync.Coordinator
}

func initConfig() (string, error) {
	dir := os.Getenv("GOALSYNC_DIR")
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine config directory: %w", err)
		}
		dir = filepath.Join(base, "goalsync")
	}

	viper.SetDefault("local.path", filepath.Join(dir, "goals.db"))
	viper.SetDefault("remote.dsn", "")
	viper.SetDefault("log.file", "")

	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(dir)
	viper.SetEnvPrefix("GOALSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return "", fmt.Errorf("failed to read config: %w", err)
		}
	}

	return dir, nil
}

// openApp wires stores, session and coordinator. A missing or
// unreachable remote degrades to offline mode with a warning; a local
// store that cannot be opened is fatal for the command.
func openApp(ctx context.Context) (*app, error) {
	dir, err := initConfig()
	if err != nil {
		return nil, err
	}

	local, err := localdb.Open(viper.GetString("local.path"))
	if err != nil {
		return nil, fmt.Errorf("cannot open local store: %w", err)
	}
	if err := local.Init(ctx); err != nil {
		_ = local.Close()
		return nil, fmt.Errorf("cannot initialize local store: %w", err)
	}

	var remote *remotedb.Store
	if dsn := viper.GetString("remote.dsn"); dsn != "" {
		remote, err = remotedb.Connect(ctx, dsn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s remote unavailable, running offline: %v\n", ui.RenderWarn("⚠"), err)
			remote = nil
		} else if err := remote.Init(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "%s remote schema init failed, running offline: %v\n", ui.RenderWarn("⚠"), err)
			remote.Close()
			remote = nil
		}
	}

	a := &app{
		dir:     dir,
		session: session.New(dir),
		local:   local,
		remote:  remote,
	}

	var syncRemote goalsync.Remote
	if remote != nil {
		syncRemote = remote
	}
	a.coord = goalsync.New(local, syncRemote, ident.New(), syncLogger(dir))
	return a, nil
}

func (a *app) close() {
	if a.remote != nil {
		a.remote.Close()
	}
	if err := a.local.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// owner returns the logged-in user, failing the command if none is set.
func (a *app) owner() (string, error) {
	owner, ok, err := a.session.Current()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no user set, run 'goalsync login <name>' first")
	}
	return owner, nil
}

// syncLogger routes the coordinator's log to a rotating file when
// log.file is configured, stderr otherwise.
func syncLogger(dir string) *log.Logger {
	file := viper.GetString("log.file")
	if file == "" {
		return nil // coordinator falls back to stderr
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(dir, file)
	}
	return log.New(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
	}, "[sync] ", log.LstdFlags)
}
