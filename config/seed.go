package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk shape of a bot seed: a `bots` list of untyped
// configuration documents. The documents are NOT trusted; they go
// through the same full validation as API input.
type seedFile struct {
	Bots []map[string]any `yaml:"bots"`
}

// LoadBotSeeds reads a YAML file of bot configuration documents. Only the
// file-level structure is checked here; per-document validation belongs
// to the schema layer.
func LoadBotSeeds(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file '%s': %w", path, err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file '%s': %w", path, err)
	}
	if len(seed.Bots) == 0 {
		return nil, fmt.Errorf("seed file '%s' contains no bots", path)
	}
	return seed.Bots, nil
}
