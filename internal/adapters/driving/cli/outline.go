package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var outlineJSON bool

var outlineCmd = &cobra.Command{
	Use:   "outline <file.pdf>",
	Short: "Show the title and headings detected in a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runOutline,
}

func init() {
	outlineCmd.Flags().BoolVar(&outlineJSON, "json", false, "output the outline as JSON")
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	if outlineService == nil {
		return errors.New("outline service not configured")
	}

	outline, err := outlineService.Outline(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("outline failed: %w", err)
	}

	if outlineJSON {
		data, err := json.MarshalIndent(outline, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal outline: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	title := outline.Title
	if title == "" {
		title = "(untitled)"
	}
	cmd.Printf("%s, %d pages\n", title, outline.PageCount)
	if len(outline.Headings) == 0 {
		cmd.Println("No headings found.")
		return nil
	}
	for _, h := range outline.Headings {
		indent := strings.Repeat("  ", max(int(h.Level)-1, 0))
		cmd.Printf("%s%s %s (p. %d)\n", indent, h.Level, h.Text, h.Page+1)
	}
	return nil
}
