package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// AIConfigValidator validates embedding provider configurations.
// Implementations verify that configurations are valid by testing
// connectivity to the underlying service.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error
}
