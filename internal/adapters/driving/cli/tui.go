package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui"
)

var tuiIdentity string

// runApp starts the interactive program. Tests replace it.
var runApp = func(app *tui.App) error { return app.Run() }

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface.

Type a question and press Enter to see the best matching passages.

Controls:
  ↑/k, ↓/j - Move between passages
  Enter    - Search / show the whole passage
  /        - New query
  Esc      - Back
  q        - Quit (from the menu)`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiIdentity, "identity", "", "index identity (default from settings)")
	rootCmd.AddCommand(tuiCmd)
}

func tuiPorts() *tui.Ports {
	identity := tuiIdentity
	if identity == "" {
		identity = defaultIdentity()
	}
	return &tui.Ports{
		Search:   searchService,
		Runs:     runService,
		Identity: identity,
	}
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	if searchService == nil {
		return errUnavailable("search service")
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n%s\n", r, debug.Stack())
			err = fmt.Errorf("TUI crashed: %v", r)
		}
	}()

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
