package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadJSON loads configuration from a JSON file. Fields absent from the
// file keep their Default values.
func LoadJSON(path string) (Config, error) {
	cfg := Default()

	// #nosec G304 -- path is provided by the caller (library function); callers should validate/lock down inputs if untrusted.
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read JSON file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return cfg, nil
}

// SaveJSON saves configuration to a JSON file.
func SaveJSON(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}
