package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pg-sharding/poolcat/pkg/models/pcerror"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const threeShardTOML = `
[general]
host = "0.0.0.0"
port = 6432

[user]
name = "admin"
password = "secret"

[shards.0]
servers = [
    ["localhost", 5432, "primary"],
    ["localhost", 5433, "replica"],
]
database = "app"

[shards.1]
servers = [["127.0.0.1", 5432, "primary"]]
database = "app"

[shards.2]
servers = [["10.0.0.1", 5432, "primary"]]
database = "app"

[query_router]
query_parser_enabled = true
`

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "poolcat.toml", threeShardTOML)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(path, cfg.Path)
	assert.Len(cfg.Shards, 3)
	assert.Equal("primary", cfg.Shards["0"].Servers[0].Role)
	assert.Equal("127.0.0.1", cfg.Shards["1"].Servers[0].Host)
	assert.Equal(uint16(6432), cfg.General.Port)
	assert.Equal("admin", cfg.User.Name)

	// Omitted fields keep their defaults.
	assert.Equal(15, cfg.General.PoolSize)
	assert.Equal("transaction", cfg.General.PoolMode)
	assert.Equal("any", cfg.QueryRouter.DefaultRole)
	assert.True(cfg.QueryRouter.QueryParserEnabled)
}

func TestLoadConfigYAML(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "poolcat.yaml", `
general:
  pool_size: 21
shards:
  "0":
    servers:
      - ["localhost", 5432, "primary"]
    database: app
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(21, cfg.General.PoolSize)
	assert.Len(cfg.Shards, 1)
	assert.Equal(ServerEntry{Host: "localhost", Port: 5432, Role: "primary"}, cfg.Shards["0"].Servers[0])
	assert.Equal("app", cfg.Shards["0"].Database)
}

func TestLoadConfigJSON(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "poolcat.json", `{
  "general": {"pool_size": 7},
  "shards": {"0": {"servers": [["localhost", 5432, "primary"]], "database": "app"}}
}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(7, cfg.General.PoolSize)
	assert.Equal(ServerEntry{Host: "localhost", Port: 5432, Role: "primary"}, cfg.Shards["0"].Servers[0])
}

func TestLoadConfigEmptySourceIsDefault(t *testing.T) {
	path := writeFile(t, "poolcat.toml", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	want := Default()
	want.Path = path
	assert.True(t, cfg.Equal(want))
}

func TestLoadConfigShardDatabaseDefaults(t *testing.T) {
	path := writeFile(t, "poolcat.toml", `
[shards.0]
servers = [["localhost", 5432, "primary"]]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Shards["0"].Database)
}

func TestLoadConfigUnknownFieldsIgnored(t *testing.T) {
	path := writeFile(t, "poolcat.toml", `
[general]
pool_size = 3
does_not_exist = "whatever"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.General.PoolSize)
}

func TestLoadConfigFailures(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.toml")
			},
		},
		{
			name: "malformed toml",
			path: func(t *testing.T) string {
				return writeFile(t, "poolcat.toml", "[general\npool_size = ")
			},
		},
		{
			name: "type mismatch",
			path: func(t *testing.T) string {
				return writeFile(t, "poolcat.toml", "[general]\npool_size = \"a lot\"")
			},
		},
		{
			name: "bad server tuple",
			path: func(t *testing.T) string {
				return writeFile(t, "poolcat.toml", "[shards.0]\nservers = [[\"localhost\", 5432]]")
			},
		},
		{
			name: "unknown suffix",
			path: func(t *testing.T) string {
				return writeFile(t, "poolcat.ini", "[general]")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.path(t))
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.True(t, pcerror.IsBadConfig(err))
		})
	}
}

// Parsing the serialized form of the default configuration yields a value
// equal to the default.
func TestLoadConfigDefaultRoundTrip(t *testing.T) {
	path := writeFile(t, "poolcat.toml", `
[general]
host = "localhost"
port = 5432
pool_size = 15
pool_mode = "transaction"
connect_timeout = 5000
healthcheck_timeout = 1000
ban_time = 60
autoreload = false

[user]
name = "postgres"
password = ""

[shards.1]
servers = [["localhost", 5432, "primary"]]
database = "postgres"

[query_router]
default_role = "any"
query_parser_enabled = false
primary_reads_enabled = true
sharding_function = "pg_bigint_hash"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	want := Default()
	want.Path = path
	assert.True(t, cfg.Equal(want))
}
