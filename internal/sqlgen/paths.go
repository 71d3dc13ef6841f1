package sqlgen

import (
	"strings"

	"github.com/pthm/docsql/schema"
)

// Subpaths expands dot-separated include paths into every prefix, keeping
// the first occurrence of each:
//
//	Subpaths([]string{"a.b.c", "a.d"}) == []string{"a", "a.b", "a.b.c", "a.d"}
func Subpaths(paths []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, path := range paths {
		if path == "" {
			continue
		}
		segments := strings.Split(path, ".")
		for i := range segments {
			prefix := strings.Join(segments[:i+1], ".")
			if !seen[prefix] {
				seen[prefix] = true
				out = append(out, prefix)
			}
		}
	}
	return out
}

// ResolveRelationshipChain resolves a dot path against the graph starting
// at root. An unknown segment fails with ErrUnknownField naming the segment
// and the entity it was looked up on.
func ResolveRelationshipChain(graph schema.Graph, root, path string) ([]schema.Relationship, error) {
	var chain []schema.Relationship
	current := root
	for _, segment := range strings.Split(path, ".") {
		entity, ok := graph.Entity(current)
		if !ok {
			return nil, unknownModel(current)
		}
		rel, ok := entity.Relationship(segment)
		if !ok {
			return nil, unknownRelationship(current, segment)
		}
		chain = append(chain, rel)
		current = rel.Target
	}
	return chain, nil
}
