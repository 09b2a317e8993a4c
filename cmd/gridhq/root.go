// ABOUTME: Root cobra command, global flags, and the lazily opened board shared by subcommands.
// ABOUTME: Config comes from the YAML file, .env, and GRIDHQ_* variables, then --home and --db override.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/2389-research/gridhq/board/core"
	"github.com/2389-research/gridhq/board/server"
	"github.com/2389-research/gridhq/board/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries global flag values and the resources opened for one invocation.
type app struct {
	out io.Writer
	now func() time.Time

	configPath string
	envFile    string
	home       string
	dbPath     string
	verbose    bool

	cfg    *server.Config
	logger *zap.Logger
	db     *store.SQLite
	board  *core.Board

	// onListen is called with the bound address once serve is accepting.
	onListen func(addr string)
}

func newApp(out io.Writer) *app {
	return &app{out: out, now: time.Now}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "gridhq",
		Short: "gridhq - a small kanban board with a focus tracker",
		Long: `gridhq keeps cards in four lanes (backlog, doing, blocked, done), tracks
what you are focused on, and serves the board as a JSON API.

Run "gridhq serve" to start the API, or use the card and focus commands
to work with the board directly from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file (default: $GRIDHQ_CONFIG)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before GRIDHQ_* variables")
	pf.StringVar(&a.home, "home", "", "data directory (default: $GRIDHQ_HOME or ~/.gridhq)")
	pf.StringVar(&a.dbPath, "db", "", "database file (default: <home>/gridhq.db)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newServeCmd(a),
		newCardsCmd(a),
		newFocusCmd(a),
		newSummaryCmd(a),
		newExportCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger. The database is opened
// on first use so that version and help never touch disk.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := server.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}
	cfg.Rehome(a.home)
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	a.cfg = cfg

	level := "warn"
	if cmd.Name() == "serve" {
		level = cfg.LogLevel
	}
	if a.verbose {
		level = "debug"
	}
	a.logger, err = server.NewLogger(level)
	return err
}

// openBoard opens the store and, when enabled, the attachment blob store.
func (a *app) openBoard(ctx context.Context) (*core.Board, error) {
	if a.board != nil {
		return a.board, nil
	}
	if a.cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	if err := os.MkdirAll(filepath.Dir(a.cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := store.Open(ctx, a.cfg.DBDriver, a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.db = db

	opts := []core.Option{core.WithClock(a.now), core.WithLogger(a.logger)}
	if a.cfg.Attachments {
		blobs, err := store.NewFSBlobStore(a.cfg.AttachmentsDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, core.WithBlobStore(blobs, a.cfg.MaxAttachmentBytes))
	}
	a.board = core.NewBoard(db, opts...)
	a.logger.Debug("board opened",
		zap.String("component", "cli"),
		zap.String("driver", db.Driver()),
		zap.String("path", a.cfg.DBPath),
		zap.Bool("attachments", a.cfg.Attachments))
	return a.board, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
		a.board = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// resolveCardID accepts a full card id or a unique suffix of one, which is
// what the board view prints.
func (a *app) resolveCardID(ctx context.Context, b *core.Board, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", core.NotFoundError("card", ref)
	}
	if _, err := b.GetCard(ctx, ref); err == nil {
		return ref, nil
	} else if !errors.Is(err, core.ErrNotFound) {
		return "", err
	}

	cards, err := b.ListCards(ctx, core.ListFilter{IncludeArchived: true})
	if err != nil {
		return "", err
	}
	var matches []string
	for _, c := range cards {
		if strings.HasSuffix(strings.ToUpper(c.ID), strings.ToUpper(ref)) {
			matches = append(matches, c.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", core.NotFoundError("card", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("card id %q is ambiguous: matches %s", ref, strings.Join(matches, ", "))
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gridhq version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "gridhq %s\n", a.version())
			return nil
		},
	}
}

// version prefers GRIDHQ_VERSION over the version stamped at build time.
func (a *app) version() string {
	if a.cfg != nil && a.cfg.Version != "" && a.cfg.Version != "dev" {
		return a.cfg.Version
	}
	return version
}
