package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dolly-parseton/kql-panopticon/internal/auth"
	"github.com/dolly-parseton/kql-panopticon/internal/azure"
	"github.com/dolly-parseton/kql-panopticon/internal/executor"
	"github.com/dolly-parseton/kql-panopticon/internal/export"
	"github.com/dolly-parseton/kql-panopticon/internal/logging"
	"github.com/dolly-parseton/kql-panopticon/internal/pack"
	"github.com/dolly-parseton/kql-panopticon/internal/queryclient"
	"github.com/dolly-parseton/kql-panopticon/internal/session"
	"github.com/dolly-parseton/kql-panopticon/internal/settings"
	"github.com/dolly-parseton/kql-panopticon/internal/tui"
	"github.com/dolly-parseton/kql-panopticon/internal/workspace"
)

// deps bundles every wired collaborator a subcommand needs, built once in
// PersistentPreRunE so run-pack, export-pack, and the bare TUI launch all
// share one credential, one auth gate, and one executor (spec §4.10: "a
// single credential shared by C1 and C2").
type deps struct {
	logger       *logging.Logger
	discoverer   workspace.Discoverer
	client       queryclient.Client
	authGate     *auth.Gate
	executor     *executor.Executor
	sessionStore *session.Store
	packStore    *pack.Store
	homeDir      string
}

func buildDeps() (*deps, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		LogFile: "kql-panopticon.log",
		Service: "panopticon",
	})

	credSource, err := azure.NewCredentialSource()
	if err != nil {
		return nil, fmt.Errorf("build azure credential: %w", err)
	}

	gate := auth.New(credSource, settings.Default().ValidationInterval())
	if err := gate.Start(context.Background()); err != nil {
		return nil, fmt.Errorf("start auth gate: %w", err)
	}
	logger.Info("auth gate started")

	client, err := azure.NewClient(credSource.Cred(), gate)
	if err != nil {
		return nil, fmt.Errorf("build azure query client: %w", err)
	}

	writer := export.NewWriter()

	return &deps{
		logger:       logger,
		discoverer:   azure.NewDiscoverer(credSource.Cred()),
		client:       client,
		authGate:     gate,
		executor:     executor.New(client, writer),
		sessionStore: session.NewStore(home),
		packStore:    pack.NewStore(home),
		homeDir:      home,
	}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "panopticon",
		Short: "Run and manage KQL queries across Azure Log Analytics workspaces",
		Long: `KQL Panopticon dispatches Kusto queries against one or many Azure Log
Analytics workspaces concurrently, tracks each as a job through retry and
completion, and writes results to disk. With no subcommand it opens the
interactive TUI; see run-pack and export-pack for scripted use.`,
		RunE: runTUI,
	}

	root.AddCommand(newRunPackCmd())
	root.AddCommand(newExportPackCmd())
	return root
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("stdout is not a terminal; run with a subcommand (run-pack, export-pack) for non-interactive use")
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.logger.Close()
	defer d.authGate.Stop()
	defer d.executor.Close()

	m := tui.New(tui.Deps{
		Logger:       d.logger,
		Discoverer:   d.discoverer,
		Executor:     d.executor,
		AuthGate:     d.authGate,
		SessionStore: d.sessionStore,
		PackStore:    d.packStore,
		HomeDir:      d.homeDir,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
