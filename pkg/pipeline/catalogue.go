package pipeline

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dd0wney/cluso-fable/pkg/validation"
	"gopkg.in/yaml.v3"
)

// FactoryID identifies a block factory: the plugin that contributes it plus
// the factory's local name. Equality is structural.
type FactoryID struct {
	Plugin  string `json:"plugin" yaml:"plugin" validate:"required"`
	Factory string `json:"factory" yaml:"factory" validate:"required"`
}

func (id FactoryID) String() string {
	return id.Plugin + "/" + id.Factory
}

// ConfigOption describes one configuration option a factory accepts.
type ConfigOption struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	ValueType   string `json:"value_type" yaml:"value_type"`
}

// BlockFactory is the immutable template a block instance is created from.
type BlockFactory struct {
	Kind                 Kind                    `json:"kind" yaml:"kind" validate:"required"`
	Title                string                  `json:"title" yaml:"title"`
	Description          string                  `json:"description,omitempty" yaml:"description,omitempty"`
	ConfigurationOptions map[string]ConfigOption `json:"configuration_options,omitempty" yaml:"configuration_options,omitempty" validate:"dive,keys,required,endkeys"`
	// Inputs lists the named input slots in display order. Empty for sources.
	Inputs []string `json:"inputs,omitempty" yaml:"inputs,omitempty" validate:"dive,required"`
}

// PluginCatalogue holds the factories a single plugin contributes.
type PluginCatalogue struct {
	Factories map[string]BlockFactory `json:"factories" yaml:"factories"`
}

// Catalogue maps a plugin identifier to the factories it contributes. It is
// read-only for the engine.
type Catalogue map[string]PluginCatalogue

// Entry is one resolved catalogue entry.
type Entry struct {
	ID      FactoryID    `json:"id"`
	Factory BlockFactory `json:"factory"`
}

// Resolve looks up a factory by id. A miss is reported as a *ResolveError
// wrapping ErrPluginNotFound or ErrFactoryNotFound; callers decide whether a
// miss means "skip" or "report".
func Resolve(cat Catalogue, id FactoryID) (BlockFactory, error) {
	plugin, ok := cat[id.Plugin]
	if !ok {
		return BlockFactory{}, &ResolveError{ID: id, Cause: ErrPluginNotFound}
	}
	factory, ok := plugin.Factories[id.Factory]
	if !ok {
		return BlockFactory{}, &ResolveError{ID: id, Cause: ErrFactoryNotFound}
	}
	return factory, nil
}

// Entries returns every factory in the catalogue, ordered by plugin id and
// then factory name.
func (c Catalogue) Entries() []Entry {
	plugins := make([]string, 0, len(c))
	for plugin := range c {
		plugins = append(plugins, plugin)
	}
	sort.Strings(plugins)

	entries := make([]Entry, 0)
	for _, plugin := range plugins {
		factories := c[plugin].Factories
		names := make([]string, 0, len(factories))
		for name := range factories {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			entries = append(entries, Entry{
				ID:      FactoryID{Plugin: plugin, Factory: name},
				Factory: factories[name],
			})
		}
	}
	return entries
}

// EntriesOfKind returns the entries whose factory has the given kind, in
// Entries order.
func (c Catalogue) EntriesOfKind(kind Kind) []Entry {
	filtered := make([]Entry, 0)
	for _, e := range c.Entries() {
		if e.Factory.Kind == kind {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Validate checks the catalogue's structure: non-empty identifiers, a kind on
// every factory and unique, non-empty input slot names. Kinds outside the
// known set are accepted so newer catalogues still load.
func (c Catalogue) Validate() error {
	for _, e := range c.Entries() {
		if e.ID.Plugin == "" || e.ID.Factory == "" {
			return fmt.Errorf("%w: empty identifier in %q", ErrInvalidCatalog, e.ID)
		}
		if err := validation.Struct(&e.Factory); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, e.ID, err)
		}
		seen := make(map[string]bool, len(e.Factory.Inputs))
		for _, slot := range e.Factory.Inputs {
			if seen[slot] {
				return fmt.Errorf("%w: %s: duplicate input slot %q", ErrInvalidCatalog, e.ID, slot)
			}
			seen[slot] = true
		}
	}
	return nil
}

// LoadCatalogue decodes a YAML catalogue document and validates it.
func LoadCatalogue(r io.Reader) (Catalogue, error) {
	var cat Catalogue
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		if err == io.EOF {
			return Catalogue{}, nil
		}
		return nil, fmt.Errorf("failed to parse catalogue: %w", err)
	}
	if cat == nil {
		cat = Catalogue{}
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// LoadCatalogueFile reads a YAML catalogue from disk.
func LoadCatalogueFile(path string) (Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer f.Close()

	return LoadCatalogue(f)
}
