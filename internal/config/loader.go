package config

import (
	"encoding/json"
	"errors"
	"os"

	"testdeck/pkg/logging"
)

// DefaultConfigFile is the single configuration document the `config`
// command group operates on when no --file flag is given. Unlike the Store,
// which indexes many documents by ID, this is one literal file on disk.
const DefaultConfigFile = "testdeck.json"

// LoadFile reads one configuration document from a file. A missing file is
// reported as a NotFoundError, malformed JSON as a ParseError.
func LoadFile(path string) (TestConfiguration, error) {
	var cfg TestConfiguration

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, NewNotFoundError("configuration file", path)
		}
		return cfg, &IOError{Op: "read", Path: path, Err: err}
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, &ParseError{Source: path, Err: err}
	}

	logging.Debug("ConfigLoader", "Loaded configuration from %s", path)
	return cfg, nil
}

// LoadFileOrDefault reads the configuration file if it exists and falls back
// to DefaultConfiguration when it does not. Parse failures are still errors:
// a broken file must not silently degrade to defaults.
func LoadFileOrDefault(path string) (TestConfiguration, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			logging.Info("ConfigLoader", "No configuration at %s, using defaults", path)
			return DefaultConfiguration(), nil
		}
		return TestConfiguration{}, err
	}
	return cfg, nil
}

// SaveFile writes one configuration document to a file atomically.
func SaveFile(path string, cfg TestConfiguration) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return atomicWrite(path, data)
}
