package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, index location and
search defaults. Settings are stored in ~/.folio/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Choose the embedding provider used to index and search.

Changing the provider or model makes existing indexes unusable: vectors
from different models cannot be compared. Rebuild them afterwards.`,
	RunE: runSettingsEmbedding,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single configuration key",
	Long: `Set a single configuration key, for example:

  folio settings set search.top_k 5
  folio settings set headings.strategies markdown,font_size`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Current Settings (%s)\n", settingsService.ConfigPath())
	cmd.Println("================")
	cmd.Println()

	e := settings.Embedding
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", e.Provider.Description())
	cmd.Printf("  Model: %s\n", orDefault(e.Model))
	if e.Provider == domain.AIProviderOllama || e.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", orDefault(e.BaseURL))
	}
	if e.Provider.RequiresAPIKey() {
		if e.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(e.APIKey))
		} else {
			cmd.Println("  API Key: (not set)")
		}
	}
	if e.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", e.Dimensions)
	}
	if !e.Provider.IsLocal() {
		cmd.Printf("  Rate limit: %g/s (burst %d)\n", e.RequestsPerSecond, e.Burst)
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Directory: %s\n", settings.Index.Dir)
	cmd.Printf("  Identity: %s\n", settings.Index.Identity)
	cmd.Printf("  Max heading level: %d\n", settings.Index.MaxHeadingLevel)
	cmd.Printf("  Min chunk length: %d\n", settings.Index.MinChunkLength)
	cmd.Println()

	cmd.Println("[Headings]")
	cmd.Printf("  Strategies: %s\n", strings.Join(settings.Headings.Strategies, ", "))
	cmd.Printf("  Min font size: %g\n", settings.Headings.MinFontSize)
	cmd.Printf("  Max words: %d\n", settings.Headings.MaxWords)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Top K: %d\n", settings.Search.TopK)
	cmd.Printf("  Snippet length: %d\n", settings.Search.SnippetLength)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Sessions: %s\n", settings.Server.SessionsDir)
	cmd.Printf("  Max upload: %d bytes\n", settings.Server.MaxUploadBytes)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'folio settings embedding' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	cmd.Println("Select Embedding Provider")
	providers := []domain.AIProvider{
		domain.AIProviderOllama,
		domain.AIProviderOpenAI,
		domain.AIProviderHashing,
	}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	var model string
	if provider != domain.AIProviderHashing {
		cmd.Print("Enter model name [provider default]: ")
		model = readLine(reader)
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(in, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if aiValidator != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Print("Validating configuration... ")
		if err := aiValidator.ValidateEmbedding(&settings.Embedding); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider configured: %s\n", provider.Description())
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(s string) string {
	if s == "" {
		return "(provider default)"
	}
	return s
}
