package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	runsIdentity string
	runsLimit    int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent indexing runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its per-document outcomes",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.Flags().StringVar(&runsIdentity, "identity", "", "only runs for this index identity")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 0, "maximum number of runs (default 20)")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errors.New("run ledger not configured")
	}

	runs, err := runService.List(cmd.Context(), runsIdentity, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for i := range runs {
		r := &runs[i]
		cmd.Printf("%s  %-10s %-9s +%-5d %s  %s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Identity, r.Status, r.Added, r.ID, r.Folder)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errors.New("run ledger not configured")
	}

	run, outcomes, err := runService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no run with id %q", args[0])
		}
		return fmt.Errorf("failed to get run: %w", err)
	}

	cmd.Printf("Run:      %s\n", run.ID)
	cmd.Printf("Identity: %s\n", run.Identity)
	cmd.Printf("Folder:   %s\n", run.Folder)
	cmd.Printf("Status:   %s\n", run.Status)
	cmd.Printf("Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	if run.FinishedAt != nil {
		cmd.Printf("Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	cmd.Printf("Added:    %d chunks\n", run.Added)
	if run.Error != "" {
		cmd.Printf("Error:    %s\n", run.Error)
	}

	if len(outcomes) == 0 {
		return nil
	}
	cmd.Println()
	for _, o := range outcomes {
		line := fmt.Sprintf("  %-11s %s", o.Status, o.Filename)
		if o.Chunks > 0 {
			line += fmt.Sprintf(" (%d chunks)", o.Chunks)
		}
		if o.Error != "" {
			line += ": " + o.Error
		}
		cmd.Println(line)
	}
	return nil
}
