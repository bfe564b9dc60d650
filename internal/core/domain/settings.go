package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API or a compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderHashing is the offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs on the local machine.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderHashing:
		return "Hashing (offline, lexical)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name. Empty means the provider default.
	Model string

	// BaseURL is the API endpoint. Empty means the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's output width where the provider allows it.
	Dimensions int

	// RequestsPerSecond caps the sustained request rate to remote providers.
	RequestsPerSecond float64

	// Burst is the rate limiter bucket size.
	Burst int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings controls how PDFs are turned into index entries.
type IndexSettings struct {
	// Dir holds the <identity>_index.flat and <identity>_metadata.json pairs.
	Dir string

	// Identity is the default index identity.
	Identity string

	// MaxHeadingLevel is the deepest heading that opens a section.
	MaxHeadingLevel int

	// MinChunkLength is the shortest chunk kept, in characters.
	MinChunkLength int
}

// SearchSettings holds retrieval defaults.
type SearchSettings struct {
	// TopK is the default result count.
	TopK int

	// SnippetLength is the snippet cut-off in characters.
	SnippetLength int
}

// HeadingSettings configures the heading detectors.
type HeadingSettings struct {
	// Strategies lists detector names in merge order.
	Strategies []string

	// MinFontSize is the size a line must exceed to count as a heading.
	MinFontSize float64

	// MaxWords is the word count a heading line must stay below.
	MaxWords int
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// SessionsDir holds one upload folder per session.
	SessionsDir string

	// MaxUploadBytes caps a single upload request.
	MaxUploadBytes int64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	Index     IndexSettings
	Search    SearchSettings
	Headings  HeadingSettings
	Server    ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Directory settings are left empty and resolved against the config home.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:          AIProviderOllama,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Index: IndexSettings{
			Identity:        "default",
			MaxHeadingLevel: 2,
			MinChunkLength:  30,
		},
		Search: SearchSettings{
			TopK:          3,
			SnippetLength: 200,
		},
		Headings: HeadingSettings{
			Strategies:  []string{string(SourceMarkdown), string(SourceFontSize)},
			MinFontSize: 12,
			MaxWords:    15,
		},
		Server: ServerSettings{
			Addr:           ":8080",
			MaxUploadBytes: 50 << 20,
		},
	}
}
