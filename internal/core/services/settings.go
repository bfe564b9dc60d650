package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedRPS        = "embedding.requests_per_second"
	keyEmbedBurst      = "embedding.burst"
	keyIndexDir        = "index.dir"
	keyIndexIdentity   = "index.identity"
	keyIndexMaxLevel   = "index.max_heading_level"
	keyIndexMinChunk   = "index.min_chunk_length"
	keySearchTopK      = "search.top_k"
	keySearchSnippet   = "search.snippet_length"
	keyHeadStrategies  = "headings.strategies"
	keyHeadMinFontSize = "headings.min_font_size"
	keyHeadMaxWords    = "headings.max_words"
	keyServerAddr      = "server.addr"
	keyServerSessions  = "server.sessions_dir"
	keyServerMaxUpload = "server.max_upload_bytes"
)

// Environment variables that override stored settings.
const (
	EnvEmbedProvider = "FOLIO_EMBEDDING_PROVIDER"
	EnvEmbedModel    = "FOLIO_EMBEDDING_MODEL"
	EnvEmbedBaseURL  = "FOLIO_EMBEDDING_BASE_URL"
	EnvOpenAIKey     = "OPENAI_API_KEY" //nolint:gosec // variable name, not a credential
	EnvIndexDir      = "FOLIO_INDEX_DIR"
	EnvIndexIdentity = "FOLIO_INDEX_IDENTITY"
	EnvServerAddr    = "FOLIO_SERVER_ADDR"
)

// valueKind is the type a config key holds.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindStrings
)

// settingKeys lists every key Set accepts.
var settingKeys = map[string]valueKind{
	keyEmbedProvider:   kindString,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedDims:       kindInt,
	keyEmbedRPS:        kindFloat,
	keyEmbedBurst:      kindInt,
	keyIndexDir:        kindString,
	keyIndexIdentity:   kindString,
	keyIndexMaxLevel:   kindInt,
	keyIndexMinChunk:   kindInt,
	keySearchTopK:      kindInt,
	keySearchSnippet:   kindInt,
	keyHeadStrategies:  kindStrings,
	keyHeadMinFontSize: kindFloat,
	keyHeadMaxWords:    kindInt,
	keyServerAddr:      kindString,
	keyServerSessions:  kindString,
	keyServerMaxUpload: kindInt,
}

// SettingKeys returns the keys accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultEmbeddingModels maps providers to the model used when none is set.
func DefaultEmbeddingModels() map[domain.AIProvider]string {
	return map[domain.AIProvider]string{
		domain.AIProviderOllama:  "nomic-embed-text",
		domain.AIProviderOpenAI:  "text-embedding-3-small",
		domain.AIProviderHashing: "",
	}
}

// SettingsService maps the config store onto typed settings.
type SettingsService struct {
	configStore driven.ConfigStore
	home        string
	getenv      func(string) string
}

// NewSettingsService creates a settings service. Relative directory
// defaults are placed under home, normally ~/.folio.
func NewSettingsService(configStore driven.ConfigStore, home string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		home:        home,
		getenv:      os.Getenv,
	}
}

// Get returns stored settings with defaults and environment overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	s.applyEnv(settings)
	return settings, nil
}

// stored reads the config store with defaults filled in.
func (s *SettingsService) stored() *domain.AppSettings {
	d := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.getInt(keyEmbedDims, d.Embedding.Dimensions),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, d.Embedding.RequestsPerSecond),
			Burst:             s.getInt(keyEmbedBurst, d.Embedding.Burst),
		},
		Index: domain.IndexSettings{
			Dir:             s.getString(keyIndexDir, filepath.Join(s.home, "indexes")),
			Identity:        s.getString(keyIndexIdentity, d.Index.Identity),
			MaxHeadingLevel: s.getInt(keyIndexMaxLevel, d.Index.MaxHeadingLevel),
			MinChunkLength:  s.getInt(keyIndexMinChunk, d.Index.MinChunkLength),
		},
		Search: domain.SearchSettings{
			TopK:          s.getInt(keySearchTopK, d.Search.TopK),
			SnippetLength: s.getInt(keySearchSnippet, d.Search.SnippetLength),
		},
		Headings: domain.HeadingSettings{
			Strategies:  s.getStrings(keyHeadStrategies, d.Headings.Strategies),
			MinFontSize: s.getFloat(keyHeadMinFontSize, d.Headings.MinFontSize),
			MaxWords:    s.getInt(keyHeadMaxWords, d.Headings.MaxWords),
		},
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, d.Server.Addr),
			SessionsDir:    s.getString(keyServerSessions, filepath.Join(s.home, "sessions")),
			MaxUploadBytes: int64(s.getInt(keyServerMaxUpload, int(d.Server.MaxUploadBytes))),
		},
	}
}

func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if v := s.getenv(EnvEmbedProvider); v != "" {
		settings.Embedding.Provider = domain.AIProvider(v)
	}
	if v := s.getenv(EnvEmbedModel); v != "" {
		settings.Embedding.Model = v
	}
	if v := s.getenv(EnvEmbedBaseURL); v != "" {
		settings.Embedding.BaseURL = v
	}
	if v := s.getenv(EnvOpenAIKey); v != "" && settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = v
	}
	if v := s.getenv(EnvIndexDir); v != "" {
		settings.Index.Dir = v
	}
	if v := s.getenv(EnvIndexIdentity); v != "" {
		settings.Index.Identity = v
	}
	if v := s.getenv(EnvServerAddr); v != "" {
		settings.Server.Addr = v
	}
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyEmbedBurst, settings.Embedding.Burst},
		{keyIndexDir, settings.Index.Dir},
		{keyIndexIdentity, settings.Index.Identity},
		{keyIndexMaxLevel, settings.Index.MaxHeadingLevel},
		{keyIndexMinChunk, settings.Index.MinChunkLength},
		{keySearchTopK, settings.Search.TopK},
		{keySearchSnippet, settings.Search.SnippetLength},
		{keyHeadStrategies, settings.Headings.Strategies},
		{keyHeadMinFontSize, settings.Headings.MinFontSize},
		{keyHeadMaxWords, settings.Headings.MaxWords},
		{keyServerAddr, settings.Server.Addr},
		{keyServerSessions, settings.Server.SessionsDir},
		{keyServerMaxUpload, settings.Server.MaxUploadBytes},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// An empty model selects the provider default.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()
	settings.Embedding.Provider = provider
	settings.Embedding.APIKey = apiKey

	if model == "" {
		model = DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.Model = model

	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	return s.Save(settings)
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindStrings:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		parsed = items
	default:
		parsed = value
	}

	return s.configStore.Set(key, parsed)
}

// Validate checks the effective settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	e := settings.Embedding
	switch {
	case !e.Provider.IsValid():
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, e.Provider)
	case e.Provider.RequiresAPIKey() && e.APIKey == "":
		return fmt.Errorf("%w: %s requires an API key (set %s or run 'folio settings embedding')",
			domain.ErrInvalidInput, e.Provider, EnvOpenAIKey)
	case e.Dimensions < 0:
		return fmt.Errorf("%w: embedding.dimensions must not be negative", domain.ErrInvalidInput)
	}

	if err := ValidateIdentity(settings.Index.Identity); err != nil {
		return err
	}
	if l := settings.Index.MaxHeadingLevel; l < 1 || l > int(domain.MaxHeadingLevel) {
		return fmt.Errorf("%w: index.max_heading_level must be between 1 and %d",
			domain.ErrInvalidInput, domain.MaxHeadingLevel)
	}
	if settings.Search.TopK < 1 {
		return fmt.Errorf("%w: search.top_k must be positive", domain.ErrInvalidInput)
	}
	if len(settings.Headings.Strategies) == 0 {
		return fmt.Errorf("%w: headings.strategies must not be empty", domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ConfigPath returns the config file path.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if val, ok := s.configStore.GetFloat(key); ok {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
