package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema is the subset of JSON Schema understood by the chat providers'
// function-calling APIs.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Default     any                `json:"default,omitempty"`

	// AdditionalProperties is either a bool or a *Schema.
	AdditionalProperties any `json:"additionalProperties,omitempty"`
}

// GenerateJSONSchema builds the schema of T. Pointer types are dereferenced.
// A struct field is required when it is not a pointer and its json tag has no
// omitempty, or when its jsonschema tag says so.
func GenerateJSONSchema[T any]() (*Schema, error) {
	return schemaFor(reflect.TypeFor[T](), make(map[reflect.Type]bool))
}

func schemaFor(t reflect.Type, stack map[reflect.Type]bool) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}, nil
	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil
	case reflect.Slice, reflect.Array:
		items, err := schemaFor(t.Elem(), stack)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case reflect.Map:
		values, err := schemaFor(t.Elem(), stack)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil
	case reflect.Struct:
		if stack[t] {
			return nil, fmt.Errorf("recursive type %s is not supported", t)
		}
		stack[t] = true
		defer delete(stack, t)
		return structSchema(t, stack)
	default:
		return &Schema{Type: "object"}, nil
	}
}

func structSchema(t reflect.Type, stack map[reflect.Type]bool) (*Schema, error) {
	schema := &Schema{Type: "object", Properties: map[string]*Schema{}}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		fieldSchema, err := schemaFor(field.Type, stack)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		fieldSchema.Description = field.Tag.Get("description")

		requiredByTag, err := applyTag(field.Type, field.Tag.Get("jsonschema"), fieldSchema)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		schema.Properties[name] = fieldSchema
		if requiredByTag || (field.Type.Kind() != reflect.Pointer && !omitEmpty) {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema, nil
}

func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, strings.Contains(opts, "omitempty"), false
}

// applyTag interprets a jsonschema tag such as "required,enum=text|markdown".
// Enum values are converted to the field's kind.
func applyTag(fieldType reflect.Type, tag string, schema *Schema) (bool, error) {
	if tag == "" {
		return false, nil
	}
	for fieldType.Kind() == reflect.Pointer {
		fieldType = fieldType.Elem()
	}

	required := false
	for _, item := range strings.Split(tag, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(item), "=")
		switch key {
		case "required":
			required = true
		case "enum":
			for _, raw := range strings.Split(value, "|") {
				v, err := enumValue(fieldType.Kind(), raw)
				if err != nil {
					return false, err
				}
				schema.Enum = append(schema.Enum, v)
			}
		case "default":
			v, err := enumValue(fieldType.Kind(), value)
			if err != nil {
				return false, err
			}
			schema.Default = v
		}
	}
	return required, nil
}

func enumValue(kind reflect.Kind, raw string) (any, error) {
	switch kind {
	case reflect.String:
		return raw, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse value %q as integer: %w", raw, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse value %q as number: %w", raw, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parse value %q as bool: %w", raw, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("tag values unsupported for kind %s", kind)
	}
}

// String returns the compact JSON encoding of the schema.
func (s *Schema) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}
