package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/akashic/internal/config"
	"github.com/roach88/akashic/internal/render"
	"github.com/roach88/akashic/internal/store"
	"github.com/roach88/akashic/internal/timer"
)

// state is shared by every command tree built for one process, so shell
// lines reuse the store and the controller opened for the shell.
type state struct {
	cfg  *config.Config
	sess *session
	out  *syncWriter
}

// session holds what a command needs to touch the ledger.
type session struct {
	cfg    *config.Config
	store  *store.Store
	timer  *timer.Controller
	loc    *time.Location
	logger *slog.Logger
	format string
	out    io.Writer

	// autoStopped receives the final snapshot of a watchdog stop.
	autoStopped chan timer.Snapshot
}

// syncWriter serializes writes from the command goroutine and the watchdog.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// loadConfig reads the configuration once per process.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.state.cfg != nil {
		return o.state.cfg, nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	o.state.cfg = cfg
	return cfg, nil
}

// writer returns the process-wide serialized stdout.
func (o *RootOptions) writer(cmd *cobra.Command) io.Writer {
	if o.state.out == nil {
		o.state.out = &syncWriter{w: cmd.OutOrStdout()}
	}
	return o.state.out
}

// formatter builds an OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    o.writer(cmd),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// session opens the store and the controller on first use.
func (o *RootOptions) session(cmd *cobra.Command) (*session, error) {
	if o.state.sess != nil {
		return o.state.sess, nil
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))

	dbPath := cfg.Database
	if o.Database != "" {
		if dbPath, err = config.ExpandHome(o.Database); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create database directory", err)
	}

	logger.Debug("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to open database", err)
	}

	s := &session{
		cfg:         cfg,
		store:       st,
		loc:         loc,
		logger:      logger,
		format:      o.Format,
		out:         o.writer(cmd),
		autoStopped: make(chan timer.Snapshot, 1),
	}

	timerOpts := []timer.Option{
		timer.WithLogger(logger),
		timer.WithAutoStopHook(s.onAutoStop),
	}
	if o.Clock != nil {
		timerOpts = append(timerOpts, timer.WithClock(o.Clock))
	}
	if o.Tokens != nil {
		timerOpts = append(timerOpts, timer.WithTokenGenerator(o.Tokens))
	}
	s.timer = timer.New(st, timerOpts...)

	o.state.sess = s
	return s, nil
}

// Close releases the session. Safe to call more than once.
func (o *RootOptions) Close() error {
	s := o.state.sess
	if s == nil {
		return nil
	}
	o.state.sess = nil

	if err := s.timer.Close(); err != nil {
		s.logger.Error("error closing timer", "error", err)
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// onAutoStop reports a watchdog stop. It runs on the watchdog goroutine.
func (s *session) onAutoStop(snap timer.Snapshot) {
	f := &OutputFormatter{Format: s.format, Writer: s.out}
	if err := f.Emit(newTimerView(snap, s.loc), func(w io.Writer) error {
		if _, err := io.WriteString(w, "\nTimer reached its deadline.\n"); err != nil {
			return err
		}
		return render.Status(w, snap, s.loc)
	}); err != nil {
		s.logger.Error("failed to report auto-stop", "error", err)
	}

	select {
	case s.autoStopped <- snap:
	default:
	}
}
