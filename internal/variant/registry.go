package variant

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
)

// Registry maps variant names to their definitions.
type Registry struct {
	variants map[string]Variant
}

// NewRegistry validates and indexes vs. Later entries replace earlier ones
// with the same name.
func NewRegistry(vs ...Variant) (*Registry, error) {
	r := &Registry{variants: make(map[string]Variant, len(vs))}
	for _, v := range vs {
		if err := r.Add(v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add validates v and registers it, replacing any variant of the same name.
func (r *Registry) Add(v Variant) error {
	if v.OccurredThreshold == 0 && v.Has(FilterOccurred) {
		v.OccurredThreshold = DefaultOccurredThreshold
	}
	if err := v.Validate(); err != nil {
		return err
	}
	r.variants[v.Name] = v
	return nil
}

// Get returns the named variant or ErrUnknownVariant.
func (r *Registry) Get(name string) (Variant, error) {
	v, ok := r.variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownVariant, name)
	}
	return v, nil
}

// List returns all variants sorted by name.
func (r *Registry) List() []Variant {
	out := make([]Variant, 0, len(r.variants))
	for _, v := range r.variants {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type variantsFile struct {
	Variants []Variant `yaml:"variants"`
}

// LoadFile merges the variants declared in a YAML file into r.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading variants file: %w", err)
	}
	var f variantsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing variants file: %w", err)
	}
	for _, v := range f.Variants {
		if err := r.Add(v); err != nil {
			return fmt.Errorf("variants file %s: %w", path, err)
		}
	}
	return nil
}

// Load returns the built-in registry extended by path, if set.
func Load(path string) (*Registry, error) {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := r.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return r, nil
}
