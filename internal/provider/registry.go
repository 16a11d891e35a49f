package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config is the vendor-independent subset of adapter configuration.
type Config struct {
	Vendor    string
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Retries   int
}

// New builds a retry-wrapped adapter for the configured vendor.
func New(ctx context.Context, cfg Config) (Adapter, error) {
	var (
		adapter Adapter
		err     error
	)
	switch cfg.Vendor {
	case "anthropic", "":
		adapter, err = NewAnthropic(ctx, &AnthropicConfig{
			APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model, MaxTokens: cfg.MaxTokens,
		})
	case "openai":
		adapter, err = NewOpenAI(ctx, &OpenAIConfig{
			APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model, MaxTokens: cfg.MaxTokens,
		})
	case "ark":
		adapter, err = NewArk(ctx, &ArkConfig{
			APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model, MaxTokens: cfg.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown provider vendor: %s", cfg.Vendor)
	}
	if err != nil {
		return nil, err
	}
	return WithRetry(adapter, cfg.Retries), nil
}

// Vendors lists the supported vendor identifiers.
func Vendors() []string {
	return []string{"anthropic", "ark", "openai"}
}

// Catalog returns the static model catalogs of all vendors. Ark is absent
// because its models are account-specific endpoints.
func Catalog() []Model {
	var models []Model
	models = append(models, anthropicModels()...)
	models = append(models, openAIModels()...)
	return models
}

// Registry holds constructed adapters by ID.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter, replacing any existing one with the same ID.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.ID()] = a
}

// Get retrieves an adapter by ID.
func (r *Registry) Get(id string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id]
	return a, ok
}

// IDs returns all registered adapter IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
