// Package jsonschema derives the JSON Schema advertised for a tool's input from
// the Go struct the tool decodes its arguments into.
//
// The main entry point is [GenerateJSONSchema]. Field names follow the json
// tag, descriptions come from the description tag, and the jsonschema tag
// accepts "required" and "enum=a|b" items.
package jsonschema
