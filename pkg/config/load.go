package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/pg-sharding/poolcat/pkg/catlog"
	"github.com/pg-sharding/poolcat/pkg/models/pcerror"
)

// LoadConfig reads and decodes the configuration file located at path.
//
// Decoding happens over a fully defaulted Config: fields absent from the
// source keep their default values, unknown fields are ignored, and a type
// mismatch fails the decode. The given path is stamped onto the result so
// that later reloads can reuse it. No partial result is ever returned: on
// any failure the caller gets the unified bad-config error and nil.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		catlog.Zero.Error().Err(err).Str("path", path).Msg("could not open config file")
		return nil, pcerror.BadConfig("could not open '%s'", path)
	}
	defer func() {
		if err := file.Close(); err != nil {
			catlog.Zero.Error().Err(err).Str("path", path).Msg("failed to close config file")
		}
	}()

	raw, err := io.ReadAll(file)
	if err != nil {
		catlog.Zero.Error().Err(err).Str("path", path).Msg("could not read config file")
		return nil, pcerror.BadConfig("could not read '%s'", path)
	}

	cfg := Default()
	// The shards section replaces the default mapping wholesale rather than
	// merging into it.
	cfg.Shards = nil
	if err := decodeConfig(raw, path, cfg); err != nil {
		catlog.Zero.Error().Err(err).Str("path", path).Msg("could not parse config file")
		return nil, pcerror.BadConfig("could not parse '%s': %v", path, err)
	}

	if len(cfg.Shards) == 0 {
		cfg.Shards = map[string]Shard{"1": DefaultShard()}
	}
	for key, shard := range cfg.Shards {
		if shard.Database == "" {
			shard.Database = "postgres"
			cfg.Shards[key] = shard
		}
	}

	cfg.Path = path
	return cfg, nil
}

func decodeConfig(raw []byte, path string, target *Config) error {
	switch {
	case strings.HasSuffix(path, ".toml"):
		return toml.Unmarshal(raw, target)
	case strings.HasSuffix(path, ".yaml"):
		return yaml.Unmarshal(raw, target)
	case strings.HasSuffix(path, ".json"):
		return json.Unmarshal(raw, target)
	default:
		return fmt.Errorf("unknown config format type: %s. Use .toml, .yaml or .json suffix in filename", path)
	}
}
