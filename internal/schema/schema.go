// Package schema provides structural validation of raw configuration
// documents before they are decoded. The JSON Schema is generated from the
// TestConfiguration type itself, so the schema can never drift from the code.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"testdeck/internal/config"
)

const schemaName = "testconfiguration.json"

var (
	compileOnce sync.Once
	compiled    *sjsonschema.Schema
	compileErr  error
)

// Generate reflects the configuration type into a JSON Schema document.
// Only fields explicitly tagged as required are enforced, so partial
// documents produced by templates still validate structurally.
func Generate() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             false,
	}
	s := reflector.Reflect(&config.TestConfiguration{})
	return json.MarshalIndent(s, "", "  ")
}

func compiledSchema() (*sjsonschema.Schema, error) {
	compileOnce.Do(func() {
		raw, err := Generate()
		if err != nil {
			compileErr = fmt.Errorf("failed to generate schema: %w", err)
			return
		}
		doc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compileErr = fmt.Errorf("failed to decode generated schema: %w", err)
			return
		}
		compiler := sjsonschema.NewCompiler()
		if err := compiler.AddResource(schemaName, doc); err != nil {
			compileErr = fmt.Errorf("failed to register schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaName)
	})
	return compiled, compileErr
}

// ValidateDocument checks a raw JSON configuration document against the
// generated schema. Returns a ParseError with field-path context on the first
// structural defect; type decoding still happens afterwards in the caller.
func ValidateDocument(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	instance, err := sjsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &config.ParseError{Source: "import", Err: err}
	}

	// The library's error message carries the instance location of every
	// defect, so wrapping it gives field-path context for free.
	if err := sch.Validate(instance); err != nil {
		return &config.ParseError{Source: "import", Err: err}
	}
	return nil
}
