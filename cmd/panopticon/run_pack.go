package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dolly-parseton/kql-panopticon/internal/job"
	"github.com/dolly-parseton/kql-panopticon/internal/pack"
	"github.com/dolly-parseton/kql-panopticon/internal/settings"
	"github.com/dolly-parseton/kql-panopticon/internal/workspace"
)

// jobSummary is the per-job document run-pack emits to stdout in
// --format stdout mode (spec §4.9: "a single JSON document to stdout
// listing per-job {workspace, status, rows?, error?}"), deliberately
// narrower than the full job.Job record the files-mode path writes via
// C4.
type jobSummary struct {
	Workspace string `json:"workspace"`
	Status    string `json:"status"`
	Rows      *int   `json:"rows,omitempty"`
	Error     string `json:"error,omitempty"`
}

// newRunPackCmd implements the batch pack-execution path (spec §4.9, C9):
// dispatch every job through the executor, block until all are terminal,
// then either write results to disk (the default, --format files) or emit
// a single JSON summary document to stdout (--format stdout or --json).
// Exits non-zero if any job failed.
func newRunPackCmd() *cobra.Command {
	var (
		workspacePatterns []string
		validateOnly      bool
		outputOverride    string
		format            string
		jsonFlag          bool
	)

	cmd := &cobra.Command{
		Use:   "run-pack <pack>",
		Short: "Run a query pack against the discovered workspaces and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packPath := args[0]
			if jsonFlag {
				format = "stdout"
			}
			if format != "files" && format != "stdout" {
				return fmt.Errorf("--format must be \"files\" or \"stdout\", got %q", format)
			}

			p, err := pack.LoadFile(packPath)
			if err != nil {
				return err
			}
			if validateOnly {
				fmt.Printf("%s: valid (%d quer%s)\n", p.Name, len(p.AllQueries()), pluralSuffix(len(p.AllQueries())))
				return nil
			}

			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.logger.Close()
			defer d.authGate.Stop()
			defer d.executor.Close()

			ctx := context.Background()
			all, warnings, err := d.discoverer.Discover(ctx)
			if err != nil {
				return fmt.Errorf("discover workspaces: %w", err)
			}
			for _, w := range warnings {
				fmt.Fprintln(os.Stderr, "warning:", w.String())
				d.logger.Warn("partial workspace discovery", "subscription", w.SubscriptionID, "error", w.Err)
			}

			workspaces, err := resolveWorkspaces(p, all, workspacePatterns)
			if err != nil {
				return err
			}
			if len(workspaces) == 0 {
				return fmt.Errorf("no workspaces matched; discovered %d total", len(all))
			}

			base := settings.Default()
			if outputOverride != "" {
				base.OutputFolder = outputOverride
			}
			if format == "stdout" {
				// Either write to disk or emit to stdout, not both (spec §4.9).
				base.ExportCSV = false
				base.ExportJSON = false
			}

			jobs := p.Materialize(workspaces, base, time.Now())
			d.executor.RunAndWait(ctx, jobs)

			for _, j := range jobs {
				if j.Status == job.Failed {
					d.logger.Error("job failed", "job_id", j.ID, "job_name", j.Name, "error", j.Error)
				}
			}

			if format == "stdout" {
				if err := emitSummary(jobs); err != nil {
					return fmt.Errorf("encode job summary: %w", err)
				}
			}

			failed := 0
			for _, j := range jobs {
				if j.Status == job.Failed {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&workspacePatterns, "workspaces", nil, "glob patterns selecting workspaces by name; overrides the pack's own scope when set")
	cmd.Flags().BoolVar(&validateOnly, "validate-only", false, "validate the pack and exit without dispatching")
	cmd.Flags().StringVar(&outputOverride, "output", "", "override the output_folder setting for this run")
	cmd.Flags().StringVar(&format, "format", "files", "result delivery: files (write to disk via the pack's export settings) or stdout (a single JSON summary document)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "shorthand for --format stdout")
	return cmd
}

// emitSummary writes jobs as the narrow {workspace, status, rows?, error?}
// document spec §4.9 names for --format stdout.
func emitSummary(jobs []*job.Job) error {
	out := make([]jobSummary, 0, len(jobs))
	for _, j := range jobs {
		s := jobSummary{Status: j.Status.String()}
		if j.Context != nil {
			s.Workspace = j.Context.WorkspaceName
		}
		if j.Status == job.Completed {
			rows := j.RowCount
			s.Rows = &rows
		}
		if j.Status == job.Failed {
			s.Error = j.Error
		}
		out = append(out, s)
	}
	return json.NewEncoder(os.Stdout).Encode(out)
}

// resolveWorkspaces applies an explicit --workspaces override if given,
// otherwise defers to the pack's own scope (spec §4.9: "the pack's scope,
// unless --workspaces overrides it").
func resolveWorkspaces(p *pack.Pack, all []workspace.Workspace, patterns []string) ([]workspace.Workspace, error) {
	if len(patterns) == 0 {
		return p.ResolveWorkspaces(all, nil)
	}
	var out []workspace.Workspace
	for _, w := range all {
		for _, pat := range patterns {
			if workspace.MatchGlob(pat, w.Name) {
				out = append(out, w)
				break
			}
		}
	}
	return out, nil
}

func pluralSuffix(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
