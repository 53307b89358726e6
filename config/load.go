package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TerrainTypes is the ordered list of terrain definitions. Order matters as
// the first matching definition wins, so it is decoded from the mapping node
// rather than through a Go map.
type TerrainTypes []Terrain

// UnmarshalYAML implements yaml.Unmarshaler.
func (tt *TerrainTypes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("config: line %d: terrain_types must be a mapping", value.Line)
	}

	out := make(TerrainTypes, 0, len(value.Content)/2)
	seen := make(map[string]struct{})
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]

		if _, ok := seen[k.Value]; ok {
			return fmt.Errorf("config: line %d: duplicate terrain %q", k.Line, k.Value)
		}
		seen[k.Value] = struct{}{}

		t := Terrain{Name: k.Value}
		if err := v.Decode(&t); err != nil {
			return fmt.Errorf("config: terrain %q: %w", k.Value, err)
		}
		out = append(out, t)
	}

	*tt = out
	return nil
}

func (tt TerrainTypes) lookup(name string) (Terrain, bool) {
	for _, t := range tt {
		if t.Name == name {
			return t, true
		}
	}
	return Terrain{}, false
}

// Load reads the configuration file at path over the defaults and validates
// the result. Both JSON and YAML are accepted.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads config from a file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
