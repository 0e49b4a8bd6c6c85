package capabilities

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the descriptors of all supported external storage
// providers, loaded once from embedded YAML files.
type Registry struct {
	providers map[string]*ProviderDescriptor
	order     []string
	mu        sync.RWMutex
}

// NewRegistry creates a new provider registry and loads embedded YAML files
func NewRegistry() (*Registry, error) {
	r := &Registry{
		providers: make(map[string]*ProviderDescriptor),
	}

	// Load embedded YAML files
	if err := r.loadProviderFile("googledrive"); err != nil {
		return nil, fmt.Errorf("failed to load googledrive descriptor: %w", err)
	}

	if err := r.loadProviderFile("onedrive"); err != nil {
		return nil, fmt.Errorf("failed to load onedrive descriptor: %w", err)
	}

	return r, nil
}

// loadProviderFile loads one provider's descriptor YAML file
func (r *Registry) loadProviderFile(provider string) error {
	filename := fmt.Sprintf("config/%s.yaml", provider)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var desc ProviderDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	desc.Provider = provider

	if desc.AuthURL == "" || desc.TokenURL == "" || desc.APIBaseURL == "" {
		return fmt.Errorf("%s: descriptor is missing an endpoint", filename)
	}

	r.mu.Lock()
	r.providers[provider] = &desc
	r.order = append(r.order, provider)
	r.mu.Unlock()

	return nil
}

// Get returns the descriptor for a provider
func (r *Registry) Get(provider string) (*ProviderDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown external storage provider: %s", provider)
	}
	return desc, nil
}

// List returns all registered descriptors in load order
func (r *Registry) List() []*ProviderDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ProviderDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}

// Names returns the registered provider identifiers in load order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
