package ai

import (
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = ConfigValidator{}

// ConfigValidator backs "folio settings validate": it builds the embedder
// described by the settings and pings it.
type ConfigValidator struct{}

// NewConfigValidator returns a ConfigValidator.
func NewConfigValidator() ConfigValidator { return ConfigValidator{} }

func (ConfigValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(cfg)
}
