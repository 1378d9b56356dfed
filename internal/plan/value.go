package plan

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// refPattern matches the single recognized dependency reference syntax,
// ${output.<task_name>.<output_key>}, and nothing else. Partial matches and
// embedded references inside longer strings are treated as plain literals.
var refPattern = regexp.MustCompile(`^\$\{output\.([A-Za-z0-9_-]+)\.([A-Za-z0-9_-]+)\}$`)

// Reference names an output of an upstream task.
type Reference struct {
	Task string
	Key  string
}

// String renders the reference back in its document syntax.
func (r Reference) String() string {
	return fmt.Sprintf("${output.%s.%s}", r.Task, r.Key)
}

// ParseReference recognizes the reference syntax in a raw string. ok is false
// for anything that is not exactly one reference.
func ParseReference(s string) (Reference, bool) {
	m := refPattern.FindStringSubmatch(s)
	if m == nil {
		return Reference{}, false
	}
	return Reference{Task: m[1], Key: m[2]}, true
}

// Value is one input value of a task: a plain literal, a dependency
// reference, or a nested mapping that is resolved recursively. The variant is
// decided once, when the plan document is built or decoded, so execution
// never re-parses strings.
type Value struct {
	literal any
	ref     *Reference
	nested  InputMap
}

// InputMap is a task's raw input mapping prior to dependency resolution.
type InputMap map[string]Value

// Lit wraps a plain literal value. String slices are normalized to []any so
// a plan built in memory compares equal to the same plan after a document
// round trip.
func Lit(v any) Value {
	if ss, ok := v.([]string); ok {
		items := make([]any, len(ss))
		for i, s := range ss {
			items[i] = s
		}
		return Value{literal: items}
	}
	return Value{literal: v}
}

// Ref builds a dependency reference value.
func Ref(task, key string) Value { return Value{ref: &Reference{Task: task, Key: key}} }

// Nested wraps a nested input mapping.
func Nested(m InputMap) Value { return Value{nested: m} }

// Reference returns the reference variant, if any.
func (v Value) Reference() (Reference, bool) {
	if v.ref == nil {
		return Reference{}, false
	}
	return *v.ref, true
}

// Nested returns the nested-mapping variant, if any.
func (v Value) Nested() (InputMap, bool) {
	if v.nested == nil {
		return nil, false
	}
	return v.nested, true
}

// Literal returns the literal payload. Only meaningful when the value is
// neither a reference nor a nested mapping.
func (v Value) Literal() any { return v.literal }

// References returns every dependency reference reachable from v, including
// those inside nested mappings.
func (v Value) References() []Reference {
	if v.ref != nil {
		return []Reference{*v.ref}
	}
	var refs []Reference
	for _, nested := range v.nested {
		refs = append(refs, nested.References()...)
	}
	return refs
}

// UnmarshalYAML decodes a value, classifying reference strings and nested
// mappings up front.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var nested InputMap
		if err := node.Decode(&nested); err != nil {
			return err
		}
		*v = Value{nested: nested}
		return nil
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err == nil {
			if ref, ok := ParseReference(s); ok {
				*v = Value{ref: &ref}
				return nil
			}
		}
	}
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*v = Value{literal: raw}
	return nil
}

// MarshalYAML renders references back to their document syntax so a saved
// plan is byte-for-byte replayable.
func (v Value) MarshalYAML() (any, error) {
	switch {
	case v.ref != nil:
		return v.ref.String(), nil
	case v.nested != nil:
		return v.nested, nil
	default:
		return marshalLiteral(v.literal), nil
	}
}

// marshalLiteral keeps numeric literal types stable across a document round
// trip. An integral float64 renders as a plain integer scalar, which decodes
// back as int; tagging it !!float preserves the type.
func marshalLiteral(raw any) any {
	f, ok := raw.(float64)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return raw
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eE") {
		return raw
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}
