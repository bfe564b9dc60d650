// Package cli implements the folio command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Semantic search over folders of PDFs",
	Long: `folio builds a semantic index from a folder of PDFs and answers
free-text queries with the most relevant titled passages.

Each PDF's outline is extracted from its headings, the text is split into
sections at those headings, and every section is embedded and stored in a
named index. Searches return the best matching sections with their
document, page and a short snippet.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print folio's version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("folio version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.AddCommand(versionCmd)
}

// Services holds the driving ports the commands call into.
// Any field may be nil; commands that need a missing service fail with
// an explanatory error.
type Services struct {
	Index     driving.IndexService
	Search    driving.SearchService
	Outline   driving.OutlineService
	Runs      driving.RunService
	Settings  driving.SettingsService
	Sessions  driving.SessionService
	Validator driven.AIConfigValidator

	// EmbeddingErr explains why Index and Search are unavailable.
	EmbeddingErr error
}

var (
	indexService    driving.IndexService
	searchService   driving.SearchService
	outlineService  driving.OutlineService
	runService      driving.RunService
	settingsService driving.SettingsService
	sessionService  driving.SessionService
	aiValidator     driven.AIConfigValidator
	embeddingErr    error
)

// SetServices injects the services used by all commands.
func SetServices(s Services) {
	indexService = s.Index
	searchService = s.Search
	outlineService = s.Outline
	runService = s.Runs
	settingsService = s.Settings
	sessionService = s.Sessions
	aiValidator = s.Validator
	embeddingErr = s.EmbeddingErr
}

// SetVersion sets the version reported by 'folio version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// errUnavailable explains why an embedding-backed service is missing.
func errUnavailable(what string) error {
	if embeddingErr != nil {
		return fmt.Errorf("%s unavailable: %w", what, embeddingErr)
	}
	return fmt.Errorf("%s not configured", what)
}

// defaultIdentity returns the configured index identity.
func defaultIdentity() string {
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.Index.Identity != "" {
			return settings.Index.Identity
		}
	}
	return domain.DefaultAppSettings().Index.Identity
}

// explain turns well-known domain errors into actionable messages.
func explain(err error, identity string) error {
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		return fmt.Errorf("no index named %q: run 'folio index <folder> --identity %s' first", identity, identity)
	case errors.Is(err, domain.ErrDimensionMismatch):
		return fmt.Errorf("%w: the index %q was built with a different embedding model; rebuild it", err, identity)
	case errors.Is(err, domain.ErrIndexingInProgress):
		return fmt.Errorf("index %q is being built by another run: %w", identity, err)
	default:
		return err
	}
}
