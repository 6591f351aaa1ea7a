package gen

import (
	"strings"

	genspec "github.com/ama5ter/spec2testdata/internal/spec"
)

// emptyObject stands in for unresolvable nodes: dangling $refs and nil
// schemas both synthesize to an empty object rather than failing.
var emptyObject = &genspec.Schema{Type: "object"}

// resolve follows at most one $ref hop into the model's schema registry and
// returns the concrete schema to interpret. Refs nested inside the returned
// schema stay unresolved here; the recursive descent in value resolves each
// one lazily at its own level.
func (s *Synthesizer) resolve(node *genspec.SchemaOrRef) *genspec.Schema {
	if node == nil {
		return nil
	}
	if node.Ref != nil {
		name := refName(node.Ref.Ref)
		if name != "" && s.model != nil {
			if sc, ok := s.model.Schemas[name]; ok {
				return &sc
			}
		}
		return emptyObject
	}
	return node.Schema
}

// refName extracts the registry key from a reference like
// "#/components/schemas/Pet".
func refName(ref string) string {
	if ref == "" {
		return ""
	}
	i := strings.LastIndexByte(ref, '/')
	return ref[i+1:]
}
