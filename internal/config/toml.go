package config

import "github.com/pelletier/go-toml/v2"

// parseTOML decodes one config file's contents into a Config whose
// zero-valued fields mean "not set" (merge fills those from a lower-
// priority source), so a project file only needs to override what it
// actually cares about.
func parseTOML(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
