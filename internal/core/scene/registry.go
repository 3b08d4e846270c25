// Package scene describes the set of objects a simulator backend knows how
// to instantiate. Backends preload a registry at construction time; adding
// an object to the environment is only valid for a registered name.
package scene

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/embodia/embodia/internal/core/state"
)

// DefaultRadius is the bounding radius assumed for objects whose spec does
// not provide one.
const DefaultRadius = 0.1

// ObjectSpec describes one instantiable object kind.
type ObjectSpec struct {
	Name string `yaml:"name" json:"name"`
	// Radius is the object's bounding-sphere radius, used for the
	// occlusion checks during placement.
	Radius float64 `yaml:"radius,omitempty" json:"radius,omitempty"`
	// SemanticID optionally fixes the object's category label. When zero,
	// a stable label is derived from the name.
	SemanticID state.SemanticID `yaml:"semantic_id,omitempty" json:"semantic_id,omitempty"`
}

// ResolveSemanticID returns the spec's semantic label, deriving a stable
// non-zero default from the object name when none is configured.
func (s ObjectSpec) ResolveSemanticID() state.SemanticID {
	if s.SemanticID != 0 {
		return s.SemanticID
	}
	return DeriveSemanticID(s.Name)
}

// DeriveSemanticID maps an object name to a stable non-zero semantic
// label. The same name always yields the same label across runs.
func DeriveSemanticID(name string) state.SemanticID {
	sum := xxhash.Sum64String(name)
	id := state.SemanticID(sum>>32) ^ state.SemanticID(sum)
	if id == 0 {
		id = 1
	}
	return id
}

// Registry is the preloaded, name-keyed object catalog.
type Registry struct {
	objects map[string]ObjectSpec
}

// NewRegistry builds a registry from the given specs. Objects without a
// radius get DefaultRadius; duplicate names are rejected.
func NewRegistry(specs ...ObjectSpec) (*Registry, error) {
	reg := &Registry{objects: make(map[string]ObjectSpec, len(specs))}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("object spec with empty name")
		}
		if _, dup := reg.objects[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate object name %q", spec.Name)
		}
		if spec.Radius <= 0 {
			spec.Radius = DefaultRadius
		}
		reg.objects[spec.Name] = spec
	}
	return reg, nil
}

// registryFile is the YAML document shape for a registry.
type registryFile struct {
	Objects []ObjectSpec `yaml:"objects"`
}

// LoadYAML reads a registry from YAML.
func LoadYAML(r io.Reader) (*Registry, error) {
	var file registryFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode scene registry: %w", err)
	}
	return NewRegistry(file.Objects...)
}

// LoadFile reads a registry from a YAML file on disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (ObjectSpec, bool) {
	spec, ok := r.objects[name]
	return spec, ok
}

// Names returns all registered object names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.objects))
	for name := range r.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered object kinds.
func (r *Registry) Len() int { return len(r.objects) }
