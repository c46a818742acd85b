package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tradedesk/deskd/internal/domain"
)

// TabDescriptor describes one dashboard tab. Descriptors are immutable
// after the registry is built.
type TabDescriptor struct {
	// Name is the unique lookup and display key
	Name string `yaml:"name"`

	// Title is the human-readable tab title
	Title string `yaml:"title"`

	// Endpoint is the gateway fetch path. Empty means the tab performs no
	// backend call (e.g. a settings page) and is skipped during Load All.
	Endpoint string `yaml:"endpoint"`

	// Order is the fixed position in the registry, assigned at load
	Order int `yaml:"-"`
}

// HasEndpoint reports whether Load All should fetch this tab
func (d TabDescriptor) HasEndpoint() bool {
	return d.Endpoint != ""
}

// Registry is the ordered, read-only set of tab descriptors. Order is
// significant: it is both the display order and the fetch order.
type Registry struct {
	tabs  []TabDescriptor
	index map[string]int
}

// New builds a registry from descriptors, preserving their order
func New(tabs []TabDescriptor) (*Registry, error) {
	if len(tabs) == 0 {
		return nil, fmt.Errorf("registry must have at least one tab")
	}

	index := make(map[string]int, len(tabs))
	ordered := make([]TabDescriptor, len(tabs))
	for i, tab := range tabs {
		if tab.Name == "" {
			return nil, fmt.Errorf("tab at position %d has no name", i)
		}
		if _, exists := index[tab.Name]; exists {
			return nil, fmt.Errorf("duplicate tab name: %s", tab.Name)
		}
		tab.Order = i
		if tab.Title == "" {
			tab.Title = tab.Name
		}
		index[tab.Name] = i
		ordered[i] = tab
	}

	return &Registry{tabs: ordered, index: index}, nil
}

// tabsFile is the on-disk registry definition
type tabsFile struct {
	Tabs []TabDescriptor `yaml:"tabs"`
}

// LoadFile reads a registry definition from a YAML file
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tabs file: %w", err)
	}

	var file tabsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tabs file: %w", err)
	}

	return New(file.Tabs)
}

// All returns the descriptors in registry order
func (r *Registry) All() []TabDescriptor {
	tabs := make([]TabDescriptor, len(r.tabs))
	copy(tabs, r.tabs)
	return tabs
}

// Lookup returns the descriptor for a tab name
func (r *Registry) Lookup(name string) (TabDescriptor, error) {
	i, ok := r.index[name]
	if !ok {
		return TabDescriptor{}, &domain.UnknownTabError{Tab: name}
	}
	return r.tabs[i], nil
}

// Names returns all tab names in registry order
func (r *Registry) Names() []string {
	names := make([]string, len(r.tabs))
	for i, tab := range r.tabs {
		names[i] = tab.Name
	}
	return names
}

// Len returns the number of registered tabs
func (r *Registry) Len() int {
	return len(r.tabs)
}
