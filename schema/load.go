package schema

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-openapi/inflect"
	"sigs.k8s.io/yaml"
)

// File is the on-disk schema format.
//
//	base_url: https://api.example.com/
//	types:
//	  articles: Article
//	entities:
//	  - name: Article
//	    table: articles
//	    columns: [...]
type File struct {
	// BaseURL is the default link prefix for builders created from this file.
	BaseURL string `json:"base_url,omitempty"`
	// Types maps resource type names to entity names. When empty, every
	// non-alias entity is registered under TypeName(entity.Name).
	Types    map[string]string `json:"types,omitempty"`
	Entities []Entity          `json:"entities"`
}

// LoadFile reads and parses a YAML (or JSON) schema file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a YAML (or JSON) schema document. Unknown keys are
// rejected so typos surface early.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if len(f.Entities) == 0 {
		return nil, fmt.Errorf("%w: no entities declared", ErrInvalidSchema)
	}
	return &f, nil
}

// Model validates the file's entities and returns the graph.
func (f *File) Model() (*Model, error) {
	return NewModel(f.Entities...)
}

// TypeMap returns the resource type name -> entity name mapping, deriving
// names from entity names when the file does not list them.
func (f *File) TypeMap() map[string]string {
	if len(f.Types) > 0 {
		out := make(map[string]string, len(f.Types))
		for k, v := range f.Types {
			out[k] = v
		}
		return out
	}
	out := make(map[string]string, len(f.Entities))
	for _, e := range f.Entities {
		if e.AliasOf != "" {
			continue
		}
		out[TypeName(e.Name)] = e.Name
	}
	return out
}

// TypeNames returns the sorted resource type names of TypeMap.
func (f *File) TypeNames() []string {
	m := f.TypeMap()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeName derives the conventional resource type name for an entity:
// pluralized, lower-cased and hyphenated (LeagueInvitation becomes
// league-invitations).
func TypeName(entity string) string {
	return inflect.Dasherize(inflect.Pluralize(entity))
}
