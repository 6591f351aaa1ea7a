package gen

import (
	"math/rand"
	"sort"
	"time"

	genspec "github.com/ama5ter/spec2testdata/internal/spec"
)

// optionalPropRate is the probability that a non-required object property is
// included in a synthesized value. Required properties are always included.
const optionalPropRate = 0.8

// defaultMaxDepth bounds recursive descent through $ref graphs. Component
// schemas may reference each other (directly or mutually), and each descent
// level expands one $ref hop, so a depth cap turns a cyclic graph into a
// DepthError instead of unbounded recursion.
const defaultMaxDepth = 32

// Synthesizer produces randomized values conforming to the schemas of a
// service model. Each call draws fresh randomness; pass WithSeed or WithRand
// when reproducibility matters.
type Synthesizer struct {
	model    *genspec.ServiceModel
	rng      *rand.Rand
	maxDepth int
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRand replaces the random source. The source is not locked; callers
// sharing one Synthesizer across goroutines must supply their own
// synchronization or use per-goroutine instances.
func WithRand(r *rand.Rand) Option {
	return func(s *Synthesizer) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSeed fixes the random source seed for reproducible output.
func WithSeed(seed int64) Option {
	return func(s *Synthesizer) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithMaxDepth overrides the recursion depth limit.
func WithMaxDepth(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// New builds a Synthesizer over the given service model. The model is read
// but never mutated.
func New(model *genspec.ServiceModel, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		model:    model,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Value synthesizes a JSON-compatible value conforming to the given schema
// node. A nil node synthesizes to an empty object.
func (s *Synthesizer) Value(node *genspec.SchemaOrRef) (any, error) {
	return s.value(node, 0)
}

func (s *Synthesizer) value(node *genspec.SchemaOrRef, depth int) (any, error) {
	if depth > s.maxDepth {
		return nil, &DepthError{Limit: s.maxDepth}
	}

	sc := s.resolve(node)
	if sc == nil {
		return map[string]any{}, nil
	}
	if sc.Ref != "" {
		// Registry alias: this entry is itself a $ref. Each hop costs a
		// depth level, so alias cycles fail the same way ref cycles do.
		return s.value(&genspec.SchemaOrRef{Ref: &genspec.SchemaRef{Ref: sc.Ref}}, depth+1)
	}

	typ := sc.Type
	if typ == "" {
		typ = "object"
	}
	switch typ {
	case "object":
		return s.object(sc, depth)
	case "array":
		return s.array(sc, depth)
	case "string", "integer", "number", "boolean":
		return s.primitive(sc), nil
	default:
		// Unknown types degrade to null rather than failing; the engine
		// favors best-effort data over strictness.
		return nil, nil
	}
}

func (s *Synthesizer) object(sc *genspec.Schema, depth int) (any, error) {
	out := map[string]any{}
	if len(sc.Properties) == 0 {
		return out, nil
	}

	// Sorted property order keeps output stable under a fixed seed.
	names := make([]string, 0, len(sc.Properties))
	for name := range sc.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !sc.IsRequired(name) && s.rng.Float64() > optionalPropRate {
			continue
		}
		v, err := s.value(sc.Properties[name], depth+1)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func (s *Synthesizer) array(sc *genspec.Schema, depth int) (any, error) {
	lo := int(sc.MinItems)
	if lo == 0 {
		lo = 1
	}
	hi := 3
	if sc.MaxItems != nil {
		hi = int(*sc.MaxItems)
	}
	if hi < lo {
		hi = lo
	}

	n := lo + s.rng.Intn(hi-lo+1)
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := s.value(sc.Items, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
