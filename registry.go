package llmdispatch

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/models.yaml
var defaultModelsYAML []byte

// registryFile is the on-disk shape of the model catalog.
type registryFile struct {
	Version     string              `yaml:"version"`
	LastUpdated string              `yaml:"last_updated"`
	Providers   map[string][]string `yaml:"providers"`
	Aliases     map[string]string   `yaml:"aliases"`
}

// ModelRegistry resolves model names and aliases to canonical model
// identifiers and their providers. The backing catalog is externally
// loaded configuration: an embedded default, a YAML file, or data
// registered in code. It is cached in memory and only re-read on an
// explicit Refresh, never per query.
type ModelRegistry struct {
	mu         sync.RWMutex
	source     string // file path, or "embedded"
	modelIndex map[string]ProviderID
	aliases    map[string]string
	providers  map[ProviderID][]string
}

// DefaultRegistry returns a registry loaded from the embedded catalog.
func DefaultRegistry() (*ModelRegistry, error) {
	r := &ModelRegistry{source: "embedded"}
	if err := r.load(defaultModelsYAML, "embedded"); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadRegistryFromFile returns a registry loaded from a YAML catalog
// file. Refresh re-reads the same file.
func LoadRegistryFromFile(path string) (*ModelRegistry, error) {
	r := &ModelRegistry{source: path}
	if err := r.Refresh(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewModelRegistry builds a registry from in-memory catalog data.
// Intended for tests and programmatic setup.
func NewModelRegistry(providers map[ProviderID][]string, aliases map[string]string) (*ModelRegistry, error) {
	raw := make(map[string][]string, len(providers))
	for p, models := range providers {
		raw[p.String()] = models
	}
	r := &ModelRegistry{source: "in-memory"}
	if err := r.install(registryFile{Providers: raw, Aliases: aliases}, "in-memory"); err != nil {
		return nil, err
	}
	return r, nil
}

// Refresh re-reads the registry's backing file. Registries created
// from embedded or in-memory data keep their current catalog.
func (r *ModelRegistry) Refresh() error {
	r.mu.RLock()
	source := r.source
	r.mu.RUnlock()

	switch source {
	case "embedded", "in-memory":
		return nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("read registry config: %w", err)
	}
	return r.load(data, source)
}

func (r *ModelRegistry) load(data []byte, source string) error {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return &ConfigError{Source: source, Reason: fmt.Sprintf("parse: %v", err)}
	}
	return r.install(file, source)
}

// install validates catalog integrity and swaps it in atomically.
// An alias pointing at an unlisted canonical model is a load-time
// failure, never deferred to query time.
func (r *ModelRegistry) install(file registryFile, source string) error {
	index := make(map[string]ProviderID)
	providers := make(map[ProviderID][]string, len(file.Providers))

	for name, models := range file.Providers {
		provider := ProviderID(name)
		if !provider.IsValid() {
			return &ConfigError{Source: source, Reason: fmt.Sprintf("unknown provider %q", name)}
		}
		for _, model := range models {
			if existing, ok := index[model]; ok && existing != provider {
				return &ConfigError{
					Source: source,
					Reason: fmt.Sprintf("model %q listed under both %q and %q", model, existing, provider),
				}
			}
			index[model] = provider
		}
		providers[provider] = append([]string(nil), models...)
	}

	aliases := make(map[string]string, len(file.Aliases))
	for alias, canonical := range file.Aliases {
		if _, ok := index[canonical]; !ok {
			return &ConfigError{
				Source: source,
				Reason: fmt.Sprintf("alias %q points to unsupported model %q", alias, canonical),
			}
		}
		aliases[alias] = canonical
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = source
	r.modelIndex = index
	r.aliases = aliases
	r.providers = providers
	return nil
}

// Resolve maps a model name or alias to its canonical identifier and
// provider. Aliases are resolved before support-checking so a friendly
// name transparently maps to its canonical model.
func (r *ModelRegistry) Resolve(name string) (string, ProviderID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	canonical := name
	if target, ok := r.aliases[name]; ok {
		canonical = target
	}
	provider, ok := r.modelIndex[canonical]
	if !ok {
		return "", "", &ModelError{
			Model:  name,
			Reason: "not found in model registry",
			Err:    ErrUnsupportedModel,
		}
	}
	return canonical, provider, nil
}

// IsSupported reports whether a model name or alias resolves.
func (r *ModelRegistry) IsSupported(name string) bool {
	_, _, err := r.Resolve(name)
	return err == nil
}

// Aliases returns a copy of the alias map.
func (r *ModelRegistry) Aliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// Models returns the catalog as a provider-to-models map, with model
// lists sorted for stable display.
func (r *ModelRegistry) Models() map[ProviderID][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[ProviderID][]string, len(r.providers))
	for provider, models := range r.providers {
		sorted := append([]string(nil), models...)
		sort.Strings(sorted)
		out[provider] = sorted
	}
	return out
}
