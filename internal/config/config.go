// Package config loads the optional YAML file --config points at: per-project
// extensions to the constraint generator's built-in ignore tables, so a
// codebase with its own allocator wrappers or generated-code directories
// doesn't need a fork to silence them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides is the --config file's shape.
type Overrides struct {
	IgnoreFuncs   []string `yaml:"ignoreFuncs"`
	IgnoreMembers []string `yaml:"ignoreMembers"`
	IgnoreDirs    []string `yaml:"ignoreDirs"`
}

// Load parses the YAML file at path.
func Load(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return o, nil
}
