package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	searchTopK     int
	searchIdentity string
	searchJSON     bool
)

var (
	resultTitleStyle = lipgloss.NewStyle().Bold(true)
	resultMetaStyle  = lipgloss.NewStyle().Faint(true)
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search an index",
	Long: `Embeds the query and returns the most similar sections of the indexed
PDFs. Near-duplicate passages and passages that merely repeat the query
are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().StringVar(&searchIdentity, "identity", "", "index identity (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errUnavailable("search service")
	}

	identity := searchIdentity
	if identity == "" {
		identity = defaultIdentity()
	}

	results, err := searchService.Search(cmd.Context(), args[0], domain.SearchOptions{
		Identity: identity,
		TopK:     searchTopK,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", explain(err, identity))
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchText(cmd, results)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	if results == nil {
		results = []domain.SearchResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No relevant passages found.")
		return
	}

	for i := range results {
		r := &results[i]
		cmd.Printf("[%d] %s\n", i+1, resultTitleStyle.Render(r.Title))
		cmd.Println("    " + resultMetaStyle.Render(fmt.Sprintf("%s, page %d (%.3f)", r.PDFName, r.PageNo, r.Score)))
		cmd.Printf("    %s\n\n", r.Snippet)
	}
}
