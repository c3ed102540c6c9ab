package stategraph

import "reflect"

// MergePolicy controls how a node's partial update is folded into the
// shared state for one declared field.
type MergePolicy int

const (
	// MergeReplace overwrites the field with the delta's value when the
	// delta's value is non-zero. Zero-valued delta fields mean "unchanged".
	// When parallel branches write the same replace field, the branch
	// spawned last wins; the engine never crashes on the conflict.
	MergeReplace MergePolicy = iota

	// MergeAppend concatenates the delta's slice onto the field,
	// preserving arrival order. Parallel branch contributions arrive in
	// spawn order regardless of completion order.
	MergeAppend
)

// String returns the policy name.
func (p MergePolicy) String() string {
	switch p {
	case MergeReplace:
		return "replace"
	case MergeAppend:
		return "append"
	default:
		return "unknown"
	}
}

// Schema declares the merge policy for each field of a state type.
// Build one with NewSchema and the Replace/Append registration functions,
// then attach it to a graph with WithSchema.
//
// Fields are registered with a lens: a function from *S to a pointer at
// the field. Undeclared fields are never touched by the merge, so a node
// writing to an undeclared field has no effect; declare every field nodes
// produce.
//
// Example:
//
//	schema := stategraph.NewSchema[Report]()
//	stategraph.Replace(schema, "topic", func(s *Report) *string { return &s.Topic })
//	stategraph.Append(schema, "sections", func(s *Report) *[]string { return &s.Sections })
type Schema[S any] struct {
	rules []fieldRule[S]
	names map[string]MergePolicy
}

// fieldRule is one declared field: its policy plus the closures that
// detect and apply a change through the lens.
type fieldRule[S any] struct {
	name    string
	policy  MergePolicy
	changed func(delta *S) bool
	apply   func(dst, delta *S)
}

// NewSchema creates an empty schema for state type S.
func NewSchema[S any]() *Schema[S] {
	return &Schema[S]{names: make(map[string]MergePolicy)}
}

// Replace declares a field with replace semantics: a non-zero value in a
// node's delta overwrites the field. Registering the same name twice
// panics; field declaration is programmer-controlled, not data-driven.
func Replace[S, F any](schema *Schema[S], name string, lens func(*S) *F) *Schema[S] {
	schema.register(fieldRule[S]{
		name:   name,
		policy: MergeReplace,
		changed: func(delta *S) bool {
			return !reflect.ValueOf(*lens(delta)).IsZero()
		},
		apply: func(dst, delta *S) {
			*lens(dst) = *lens(delta)
		},
	})
	return schema
}

// Append declares a slice field with append semantics: a node's delta
// slice is concatenated onto the field in arrival order.
func Append[S, E any](schema *Schema[S], name string, lens func(*S) *[]E) *Schema[S] {
	schema.register(fieldRule[S]{
		name:   name,
		policy: MergeAppend,
		changed: func(delta *S) bool {
			return len(*lens(delta)) > 0
		},
		apply: func(dst, delta *S) {
			*lens(dst) = append(*lens(dst), (*lens(delta))...)
		},
	})
	return schema
}

func (schema *Schema[S]) register(rule fieldRule[S]) {
	if rule.name == "" {
		panic("stategraph: schema field name cannot be empty")
	}
	if _, exists := schema.names[rule.name]; exists {
		panic("stategraph: duplicate schema field: " + rule.name)
	}
	schema.rules = append(schema.rules, rule)
	schema.names[rule.name] = rule.policy
}

// Fields returns the declared field names in registration order.
func (schema *Schema[S]) Fields() []string {
	fields := make([]string, len(schema.rules))
	for i, rule := range schema.rules {
		fields[i] = rule.name
	}
	return fields
}

// PolicyOf returns the merge policy for a declared field.
func (schema *Schema[S]) PolicyOf(name string) (MergePolicy, bool) {
	policy, ok := schema.names[name]
	return policy, ok
}

// merge folds one delta into dst, field by field in declaration order.
func (schema *Schema[S]) merge(dst *S, delta S) {
	for _, rule := range schema.rules {
		if rule.changed(&delta) {
			rule.apply(dst, &delta)
		}
	}
}
