package detectors

import (
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/detectors/fontsize"
	"github.com/custodia-labs/folio/internal/detectors/markdown"
)

// RegisterDefaults registers all built-in detectors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(string(domain.SourceMarkdown), buildMarkdown)
	r.Register(string(domain.SourceFontSize), buildFontSize)
}

func buildMarkdown(_ domain.HeadingSettings) (driven.HeadingDetector, error) {
	return markdown.New(), nil
}

// buildFontSize honours MinFontSize and MaxWords; zero values keep the defaults.
func buildFontSize(cfg domain.HeadingSettings) (driven.HeadingDetector, error) {
	return fontsize.New(
		fontsize.WithMinFontSize(cfg.MinFontSize),
		fontsize.WithMaxWords(cfg.MaxWords),
	), nil
}
