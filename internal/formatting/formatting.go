// Package formatting renders arbitrary data for terminal output in the
// formats the CLI exposes: json, yaml, and table.
package formatting

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// Formatter renders a value to a string for terminal display.
type Formatter interface {
	Format(data interface{}) (string, error)
}

// New returns the formatter for the named format.
func New(format string) (Formatter, error) {
	switch format {
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatYAML:
		return yamlFormatter{}, nil
	case FormatTable:
		return tableFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: %s, %s, %s)",
			format, FormatJSON, FormatYAML, FormatTable)
	}
}

type jsonFormatter struct{}

func (jsonFormatter) Format(data interface{}) (string, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type yamlFormatter struct{}

func (yamlFormatter) Format(data interface{}) (string, error) {
	// Round-trip through JSON so yaml output honors the json struct tags.
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type tableFormatter struct{}

// Format renders the value as a rounded key/value table. The value is
// flattened through JSON so any struct or map renders the same way; nested
// values are shown as compact JSON.
func (tableFormatter) Format(data interface{}) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Not an object, fall back to a single-cell table.
		t := newTable()
		t.AppendRow(table.Row{strings.TrimSpace(string(raw))})
		return t.Render(), nil
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, key := range keys {
		t.AppendRow(table.Row{
			text.FgHiCyan.Sprint(key),
			renderValue(doc[key]),
		})
	}
	return t.Render(), nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

func renderValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		compact, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(compact)
	}
}
