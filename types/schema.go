package types

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/datazip-inc/tap-monday/utils/typeutils"
)

// Schema is the JSON schema subset used to describe stream records
type Schema struct {
	Type                 TypeList           `json:"type,omitempty"`
	Format               string             `json:"format,omitempty"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

func NewSchema(types ...DataType) *Schema {
	return &Schema{Type: types}
}

func NullableString() *Schema {
	return NewSchema(Null, String)
}

func NullableInteger() *Schema {
	return NewSchema(Null, Integer)
}

func NullableNumber() *Schema {
	return NewSchema(Null, Number)
}

func NullableBoolean() *Schema {
	return NewSchema(Null, Boolean)
}

func NullableDateTime() *Schema {
	return &Schema{Type: TypeList{Null, String}, Format: DateTimeFormat}
}

func NullableObject(properties map[string]*Schema) *Schema {
	return &Schema{Type: TypeList{Null, Object}, Properties: properties}
}

func NullableArray(items *Schema) *Schema {
	return &Schema{Type: TypeList{Null, Array}, Items: items}
}

func (s *Schema) Copy() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Type = append(TypeList{}, s.Type...)
	if s.Properties != nil {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.Copy()
		}
	}
	out.Items = s.Items.Copy()
	if s.AdditionalProperties != nil {
		allowed := *s.AdditionalProperties
		out.AdditionalProperties = &allowed
	}
	return &out
}

// PropertyNames returns top level property names in sorted order
func (s *Schema) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Conform shapes a raw value to the schema: undeclared object fields are
// dropped and integral numbers are rendered as strings for string-only fields.
// It never fails; Validate reports anything Conform could not fix.
func (s *Schema) Conform(value any) any {
	if s == nil || value == nil {
		return value
	}

	switch typed := value.(type) {
	case map[string]any:
		if len(s.Properties) == 0 {
			return typed
		}
		out := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			if v, found := typed[name]; found {
				out[name] = prop.Conform(v)
			}
		}
		return out
	case Record:
		return Record(s.Conform(map[string]any(typed)).(map[string]any))
	case []any:
		if s.Items == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = s.Items.Conform(v)
		}
		return out
	}

	if s.Type.Has(String) && !s.Type.Has(Number) && !s.Type.Has(Integer) {
		if f, ok := toFloat(value); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return value
}

// ConformRecord conforms a record against an object schema
func (s *Schema) ConformRecord(record Record) Record {
	conformed, _ := s.Conform(map[string]any(record)).(map[string]any)
	return Record(conformed)
}

// Validate checks value against the schema and returns the first violation found
func (s *Schema) Validate(value any) error {
	return s.validate("$", value)
}

func (s *Schema) validate(path string, value any) error {
	if s == nil || len(s.Type) == 0 && len(s.Properties) == 0 && s.Items == nil {
		return nil
	}

	if value == nil {
		if len(s.Type) == 0 || s.Type.Nullable() {
			return nil
		}
		return &ValidationError{Path: path, Reason: fmt.Sprintf("null is not allowed, expected %v", s.Type)}
	}

	switch typed := value.(type) {
	case string:
		if !s.allows(String) {
			return s.mismatch(path, String)
		}
		if s.Format == DateTimeFormat {
			if _, err := typeutils.ParseTime(typed); err != nil {
				return &ValidationError{Path: path, Reason: fmt.Sprintf("value %q is not a valid date-time", typed)}
			}
		}
	case bool:
		if !s.allows(Boolean) {
			return s.mismatch(path, Boolean)
		}
	case map[string]any:
		return s.validateObject(path, typed)
	case Record:
		return s.validateObject(path, typed)
	case []any:
		if !s.allows(Array) {
			return s.mismatch(path, Array)
		}
		for i, item := range typed {
			if err := s.Items.validate(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}
	default:
		f, ok := toFloat(value)
		if !ok {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("unsupported value type %T", value)}
		}
		if s.allows(Number) {
			return nil
		}
		if s.allows(Integer) && f == math.Trunc(f) {
			return nil
		}
		return s.mismatch(path, Number)
	}

	return nil
}

func (s *Schema) validateObject(path string, object map[string]any) error {
	if !s.allows(Object) {
		return s.mismatch(path, Object)
	}

	for _, name := range sortedKeys(object) {
		prop, declared := s.Properties[name]
		if !declared {
			if s.AdditionalProperties != nil && !*s.AdditionalProperties {
				return &ValidationError{Path: path + "." + name, Reason: "additional property is not allowed"}
			}
			continue
		}
		if err := prop.validate(path+"."+name, object[name]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) allows(dt DataType) bool {
	return len(s.Type) == 0 || s.Type.Has(dt)
}

func (s *Schema) mismatch(path string, got DataType) error {
	return &ValidationError{Path: path, Reason: fmt.Sprintf("%s is not allowed, expected %v", got, s.Type)}
}

// ValidationError reports a record value that does not satisfy its stream schema
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Reason)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case interface{ Float64() (float64, error) }:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t TypeList) String() string {
	parts := make([]string, len(t))
	for i, dt := range t {
		parts[i] = string(dt)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
