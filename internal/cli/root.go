// Package cli is the viva command line: the wizard TUI by default, plus
// commands for reading, answering and exporting saved invitations.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/viva/internal/auth"
	"github.com/sadopc/viva/internal/config"
	"github.com/sadopc/viva/internal/invite"
	"github.com/sadopc/viva/internal/logging"
	"github.com/sadopc/viva/internal/store"
	"github.com/sadopc/viva/internal/timeline"
	"github.com/sadopc/viva/internal/tui"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// EnvPassword supplies the host password to commands that sign in.
const EnvPassword = "VIVA_PASSWORD"

// env is what PersistentPreRunE opens for every command except version.
type env struct {
	flagConfigDir string

	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
	store     *store.Store
	auth      *auth.Provider
	drafts    *invite.DraftStore
	svc       *invite.Service

	// runTUI is replaced in tests.
	runTUI func(tea.Model) error
}

// NewRootCmd builds the viva command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{runTUI: runProgram})
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "viva",
		Short:         "Plan an event, schedule its activities and collect RSVPs",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return e.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runTUI(tui.NewApp(e.deps("")))
		},
	}

	root.PersistentFlags().StringVar(&e.flagConfigDir, "config-dir", "",
		"configuration directory (default: $"+config.EnvConfigDir+" or the user config dir)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newShowCmd(e))
	root.AddCommand(newRSVPCmd(e))
	root.AddCommand(newExportCmd(e))
	root.AddCommand(newHostCmd(e))
	root.AddCommand(newResetCmd(e))
	root.AddCommand(newEditCmd(e))
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(stderr io.Writer) int {
	e := &env{runTUI: runProgram}
	err := newRootCmd(e).Execute()
	// Post-run hooks are skipped when a command fails.
	if cerr := e.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if errors.Is(err, invite.ErrNotFound) {
			return 2
		}
		return 1
	}
	return 0
}

func (e *env) open() error {
	dir, err := config.ResolveDir(e.flagConfigDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	e.cfg = cfg

	log, closer, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	e.log, e.logCloser = log, closer

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	e.store = s

	e.auth = auth.NewProvider(s, auth.Options{
		Domain:      cfg.HostEmailDomain,
		MaxAttempts: cfg.MaxSignInAttempts,
		Lockout:     cfg.SignInLockout,
		Logger:      log,
	})
	e.drafts = invite.NewDraftStore(s, log)
	e.svc = invite.NewService(s, e.auth, e.drafts, log)
	e.log.Debug("opened", "config_dir", dir, "db", cfg.DBPath)
	return nil
}

func (e *env) close() error {
	var errs []error
	if e.store != nil {
		errs = append(errs, e.store.Close())
		e.store = nil
	}
	if e.logCloser != nil {
		errs = append(errs, e.logCloser.Close())
		e.logCloser = nil
	}
	return errors.Join(errs...)
}

// deps wires a fresh timeline editor for one TUI session.
func (e *env) deps(hostInvite string) tui.Deps {
	w := timeline.ResolveWindow(timeline.ClockPair{}, timeline.ClockPair{}, e.cfg.DefaultWindow())
	editor := timeline.NewEditor(w, timeline.NewBridge(e.store, e.log), e.log)
	return tui.Deps{
		Config:     e.cfg,
		Editor:     editor,
		Drafts:     e.drafts,
		Service:    e.svc,
		Auth:       e.auth,
		Log:        e.log,
		HostInvite: hostInvite,
	}
}

func runProgram(m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
