package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GetPath resolves a dot-separated path (e.g. "reportingOptions.outputDir" or
// "testSuites.0.name") inside a generic configuration document.
func GetPath(doc map[string]interface{}, path string) (interface{}, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	var current interface{} = doc
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			value, ok := node[segment]
			if !ok {
				return nil, fmt.Errorf("key %q not found", path)
			}
			current = value
		case []interface{}:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return nil, fmt.Errorf("key %q: %q is not an array index", path, segment)
			}
			if idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("key %q: index %d out of range", path, idx)
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("key %q: cannot descend into %T", path, current)
		}
	}
	return current, nil
}

// SetPath sets a dot-separated path inside a generic configuration document,
// creating intermediate objects as needed. Array elements can be addressed by
// index but not appended.
func SetPath(doc map[string]interface{}, path string, value interface{}) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("key cannot be empty")
	}

	segments := strings.Split(path, ".")
	var current interface{} = doc
	for i, segment := range segments[:len(segments)-1] {
		switch node := current.(type) {
		case map[string]interface{}:
			next, ok := node[segment]
			if !ok {
				created := map[string]interface{}{}
				node[segment] = created
				current = created
				continue
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return fmt.Errorf("key %q: %q is not an array index", path, segment)
			}
			if idx < 0 || idx >= len(node) {
				return fmt.Errorf("key %q: index %d out of range", path, idx)
			}
			current = node[idx]
		default:
			return fmt.Errorf("key %q: cannot descend into %T at %q", path, current, strings.Join(segments[:i+1], "."))
		}
	}

	last := segments[len(segments)-1]
	switch node := current.(type) {
	case map[string]interface{}:
		node[last] = value
	case []interface{}:
		idx, err := strconv.Atoi(last)
		if err != nil {
			return fmt.Errorf("key %q: %q is not an array index", path, last)
		}
		if idx < 0 || idx >= len(node) {
			return fmt.Errorf("key %q: index %d out of range", path, idx)
		}
		node[idx] = value
	default:
		return fmt.Errorf("key %q: cannot assign into %T", path, current)
	}
	return nil
}

// ParseValue interprets a raw CLI string best-effort: valid JSON (numbers,
// booleans, null, arrays, objects, quoted strings) parses as JSON, anything
// else is taken as a plain string.
func ParseValue(raw string) interface{} {
	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed
	}
	return raw
}
