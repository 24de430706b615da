package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// DefaultFileName is the file written by `codesentry init`.
const DefaultFileName = DefaultConfigFile + "." + DefaultConfigType

// WriteConfig serializes the given Config to YAML and writes it to path.
func WriteConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	content := "# CodeSentry configuration\n" + string(data)
	return os.WriteFile(path, []byte(content), 0644)
}
