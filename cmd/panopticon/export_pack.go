package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dolly-parseton/kql-panopticon/internal/pack"
	"github.com/dolly-parseton/kql-panopticon/internal/session"
)

// newExportPackCmd implements session-to-pack export from the command line
// (spec §4.6, §4.9: "export-pack <session> [--output PATH] [--format
// yaml|json]"): load a saved session, collapse its jobs' queries into a
// pack, and write it either into the pack library or to an explicit path.
func newExportPackCmd() *cobra.Command {
	var outputPath, format string

	cmd := &cobra.Command{
		Use:   "export-pack <session>",
		Short: "Export a saved session's queries as a reusable pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionName := args[0]
			if format != "yaml" && format != "json" {
				return fmt.Errorf("--format must be \"yaml\" or \"json\", got %q", format)
			}

			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home directory: %w", err)
			}
			sessStore := session.NewStore(home)

			s, err := sessStore.Load(sessionName)
			if err != nil {
				return err
			}

			p, err := s.ExportPack(s.Name)
			if err != nil {
				if err == session.ErrNoQueries {
					return fmt.Errorf("session %q has no queries to export", sessionName)
				}
				return err
			}

			packStore := pack.NewStore(home)
			dest := outputPath
			if dest == "" {
				dest = filepath.Join(packStore.Root, s.Name+"."+format)
			}

			path, err := packStore.SaveTo(p, dest, format, false)
			if err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "exact path to write the pack to; defaults to the pack library")
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}
