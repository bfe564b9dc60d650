// Command folio indexes folders of PDFs and answers semantic queries over them.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/folio/internal/adapters/driven/ai"
	"github.com/custodia-labs/folio/internal/adapters/driven/config/file"
	"github.com/custodia-labs/folio/internal/adapters/driven/pdf"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/folio/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/folio/internal/adapters/driving/cli"
	"github.com/custodia-labs/folio/internal/chunker"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/detectors"
	"github.com/custodia-labs/folio/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	home, err := file.DefaultHome()
	if err != nil {
		return err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, home)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	db, err := sqlite.NewStore(filepath.Join(home, "data"))
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer db.Close()

	registry := detectors.NewRegistry()
	detectors.RegisterDefaults(registry)
	detector, err := registry.BuildMerger(settings.Headings)
	if err != nil {
		return fmt.Errorf("heading detectors: %w", err)
	}

	reader := pdf.NewReader()
	indexes := flat.NewFileStore(settings.Index.Dir)
	outline := services.NewOutlineService(reader, detector)

	svc := cli.Services{
		Outline:   outline,
		Runs:      services.NewRunService(db.RunStore()),
		Settings:  settingsService,
		Sessions:  services.NewSessionService(db.SessionStore(), indexes, settings.Server.SessionsDir),
		Validator: ai.NewConfigValidator(),
	}

	// Settings and outline work without an embedding provider, so a
	// failure here only disables indexing and search.
	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		logger.Debug("embedding unavailable: %v", err)
		svc.EmbeddingErr = err
	} else {
		defer embedder.Close()
		svc.Index = services.NewIndexService(
			reader,
			outline,
			services.NewSegmenter(settings.Index.MaxHeadingLevel),
			chunker.New(chunker.WithMinLength(settings.Index.MinChunkLength)),
			embedder,
			indexes,
			db.RunStore(),
		)
		svc.Search = services.NewSearchService(embedder, indexes, settings.Search, settings.Index.Identity)
	}

	cli.SetServices(svc)
	cli.SetVersion(version)
	return cli.Execute(ctx)
}
