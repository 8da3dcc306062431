package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStringAs decodes a JSON document into T. Blank content decodes as an
// empty object. When the first decode fails the content is repaired with
// jsonrepair and decoded again.
//
//	type searchInput struct {
//	    Query string `json:"query"`
//	}
//
//	in, err := ParseStringAs[searchInput](`{query: 'sports news'}`)
func ParseStringAs[T any](content string) (T, error) {
	var result T

	content = strings.TrimSpace(content)
	if content == "" {
		content = "{}"
	}

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := repair(content)
	if repairErr != nil {
		return result, fmt.Errorf("unmarshal %T: %w (repair failed: %v)", result, err, repairErr)
	}

	var retry T
	if err = json.Unmarshal([]byte(repaired), &retry); err != nil {
		return result, fmt.Errorf("unmarshal repaired JSON as %T: %w (original: %s, repaired: %s)", result, err, content, repaired)
	}
	return retry, nil
}

// Arg is one key/value pair of a top-level JSON object. Value is the raw
// string for JSON strings and the compact JSON encoding otherwise.
type Arg struct {
	Key   string
	Value string
}

// OrderedArgs returns the members of the JSON object in content in document
// order. Blank content yields no arguments. Content that is not an object,
// even after repair, is an error.
func OrderedArgs(content string) ([]Arg, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	args, err := orderedArgs(content)
	if err == nil {
		return args, nil
	}

	repaired, repairErr := repair(content)
	if repairErr != nil {
		return nil, fmt.Errorf("decode arguments: %w (repair failed: %v)", err, repairErr)
	}
	return orderedArgs(repaired)
}

func orderedArgs(content string) ([]Arg, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("arguments are not a JSON object")
	}

	var args []Arg
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode value of %q: %w", key, err)
		}
		args = append(args, Arg{Key: key, Value: renderValue(raw)})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after arguments object")
	}
	return args, nil
}

func renderValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

func repair(content string) (string, error) {
	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return "", err
	}
	if repaired == content {
		return "", errors.New("nothing to repair")
	}
	return repaired, nil
}
