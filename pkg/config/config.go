package config

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/pg-sharding/poolcat/pkg/catlog"
)

const defaultPath = "poolcat.toml"

// User is the administrative credential pair the proxy connects with.
//
// The default is the well-known postgres account with an empty password and
// is insecure on purpose: deployments must override it.
type User struct {
	Name     string `json:"name" toml:"name" yaml:"name"`
	Password string `json:"password" toml:"password" yaml:"password"`
}

func DefaultUser() User {
	return User{
		Name:     "postgres",
		Password: "",
	}
}

// General holds proxy-wide settings.
type General struct {
	Host               string `json:"host" toml:"host" yaml:"host"`
	Port               uint16 `json:"port" toml:"port" yaml:"port"`
	PoolSize           int    `json:"pool_size" toml:"pool_size" yaml:"pool_size"`
	PoolMode           string `json:"pool_mode" toml:"pool_mode" yaml:"pool_mode"`
	ConnectTimeout     uint64 `json:"connect_timeout" toml:"connect_timeout" yaml:"connect_timeout"`             // milliseconds
	HealthcheckTimeout uint64 `json:"healthcheck_timeout" toml:"healthcheck_timeout" yaml:"healthcheck_timeout"` // milliseconds
	BanTime            int64  `json:"ban_time" toml:"ban_time" yaml:"ban_time"`                                  // seconds
	Autoreload         bool   `json:"autoreload" toml:"autoreload" yaml:"autoreload"`

	// TLS is enabled when both files are set. Empty means disabled.
	TLSCertificate string `json:"tls_certificate" toml:"tls_certificate" yaml:"tls_certificate"`
	TLSPrivateKey  string `json:"tls_private_key" toml:"tls_private_key" yaml:"tls_private_key"`
}

func DefaultGeneral() General {
	return General{
		Host:               "localhost",
		Port:               5432,
		PoolSize:           15,
		PoolMode:           "transaction",
		ConnectTimeout:     5000,
		HealthcheckTimeout: 1000,
		BanTime:            60,
		Autoreload:         false,
		TLSCertificate:     "",
		TLSPrivateKey:      "",
	}
}

// ServerEntry is one (host, port, role) tuple of a shard. On the wire it is
// a 3-element array, e.g. ["localhost", 5432, "primary"].
type ServerEntry struct {
	Host string
	Port uint16
	Role string
}

var _ json.Unmarshaler = &ServerEntry{}

func (s *ServerEntry) UnmarshalTOML(v any) error {
	tuple, ok := v.([]any)
	if !ok {
		return fmt.Errorf("shard server must be a [host, port, role] tuple, got: %T", v)
	}
	return s.fromTuple(tuple)
}

func (s *ServerEntry) UnmarshalYAML(unmarshal func(any) error) error {
	var tuple []any
	if err := unmarshal(&tuple); err != nil {
		return err
	}
	return s.fromTuple(tuple)
}

func (s *ServerEntry) UnmarshalJSON(data []byte) error {
	var tuple []any
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	return s.fromTuple(tuple)
}

func (s *ServerEntry) fromTuple(tuple []any) error {
	if len(tuple) != 3 {
		return fmt.Errorf("shard server must be a [host, port, role] tuple, got %d elements", len(tuple))
	}
	host, ok := tuple[0].(string)
	if !ok {
		return fmt.Errorf("shard server host must be a string, got: %T", tuple[0])
	}
	var port int64
	switch p := tuple[1].(type) {
	case int64:
		port = p
	case int:
		port = int64(p)
	case float64:
		port = int64(p)
	default:
		return fmt.Errorf("shard server port must be a number, got: %T", tuple[1])
	}
	if port <= 0 || port > math.MaxUint16 {
		return fmt.Errorf("shard server port out of range: %d", port)
	}
	role, ok := tuple[2].(string)
	if !ok {
		return fmt.Errorf("shard server role must be a string, got: %T", tuple[2])
	}
	s.Host = host
	s.Port = uint16(port)
	s.Role = role
	return nil
}

// Shard is an ordered list of backend servers plus the database they serve.
type Shard struct {
	Servers  []ServerEntry `json:"servers" toml:"servers" yaml:"servers"`
	Database string        `json:"database" toml:"database" yaml:"database"`
}

func DefaultShard() Shard {
	return Shard{
		Servers:  []ServerEntry{{Host: "localhost", Port: 5432, Role: "primary"}},
		Database: "postgres",
	}
}

func (s Shard) Copy() Shard {
	return Shard{
		Servers:  slices.Clone(s.Servers),
		Database: s.Database,
	}
}

func (s Shard) Equal(o Shard) bool {
	return s.Database == o.Database && slices.Equal(s.Servers, o.Servers)
}

// QueryRouter configures routing decisions made per statement.
type QueryRouter struct {
	DefaultRole         string `json:"default_role" toml:"default_role" yaml:"default_role"`
	QueryParserEnabled  bool   `json:"query_parser_enabled" toml:"query_parser_enabled" yaml:"query_parser_enabled"`
	PrimaryReadsEnabled bool   `json:"primary_reads_enabled" toml:"primary_reads_enabled" yaml:"primary_reads_enabled"`
	ShardingFunction    string `json:"sharding_function" toml:"sharding_function" yaml:"sharding_function"`
}

func DefaultQueryRouter() QueryRouter {
	return QueryRouter{
		DefaultRole:         "any",
		QueryParserEnabled:  false,
		PrimaryReadsEnabled: true,
		ShardingFunction:    "pg_bigint_hash",
	}
}

// Config is the aggregate configuration root. Instances are produced by
// LoadConfig and are treated as immutable once validated.
type Config struct {
	Path string `json:"path" toml:"path" yaml:"path"`

	General     General          `json:"general" toml:"general" yaml:"general"`
	User        User             `json:"user" toml:"user" yaml:"user"`
	Shards      map[string]Shard `json:"shards" toml:"shards" yaml:"shards"`
	QueryRouter QueryRouter      `json:"query_router" toml:"query_router" yaml:"query_router"`
}

func Default() *Config {
	return &Config{
		Path:        defaultPath,
		General:     DefaultGeneral(),
		User:        DefaultUser(),
		Shards:      map[string]Shard{"1": DefaultShard()},
		QueryRouter: DefaultQueryRouter(),
	}
}

// Copy returns a full value copy sharing no mutable state with c.
func (c *Config) Copy() Config {
	cp := *c
	cp.Shards = make(map[string]Shard, len(c.Shards))
	for key, shard := range c.Shards {
		cp.Shards[key] = shard.Copy()
	}
	return cp
}

func (c *Config) Equal(o *Config) bool {
	return c.Path == o.Path &&
		c.General == o.General &&
		c.User == o.User &&
		c.QueryRouter == o.QueryRouter &&
		ShardsEqual(c.Shards, o.Shards)
}

func ShardsEqual(a map[string]Shard, b map[string]Shard) bool {
	if len(a) != len(b) {
		return false
	}
	for key, sa := range a {
		sb, ok := b[key]
		if !ok || !sa.Equal(sb) {
			return false
		}
	}
	return true
}

// TopologyChanged reports whether moving from old to next requires backend
// connection pools to be recreated: the shard mapping or the administrative
// user changed.
func TopologyChanged(old *Config, next *Config) bool {
	return !ShardsEqual(old.Shards, next.Shards) || old.User != next.User
}

// Params returns the flat settings view served by the admin console.
func (c *Config) Params() map[string]string {
	return map[string]string{
		"host":                  c.General.Host,
		"port":                  strconv.FormatUint(uint64(c.General.Port), 10),
		"pool_size":             strconv.Itoa(c.General.PoolSize),
		"pool_mode":             c.General.PoolMode,
		"connect_timeout":       strconv.FormatUint(c.General.ConnectTimeout, 10),
		"healthcheck_timeout":   strconv.FormatUint(c.General.HealthcheckTimeout, 10),
		"ban_time":              strconv.FormatInt(c.General.BanTime, 10),
		"default_role":          c.QueryRouter.DefaultRole,
		"query_parser_enabled":  strconv.FormatBool(c.QueryRouter.QueryParserEnabled),
		"primary_reads_enabled": strconv.FormatBool(c.QueryRouter.PrimaryReadsEnabled),
		"sharding_function":     c.QueryRouter.ShardingFunction,
	}
}

// Show logs the running configuration.
func (c *Config) Show() {
	catlog.Zero.Info().
		Int("pool_size", c.General.PoolSize).
		Str("pool_mode", c.General.PoolMode).
		Int64("ban_time", c.General.BanTime).
		Uint64("healthcheck_timeout", c.General.HealthcheckTimeout).
		Uint64("connect_timeout", c.General.ConnectTimeout).
		Str("sharding_function", c.QueryRouter.ShardingFunction).
		Bool("primary_reads_enabled", c.QueryRouter.PrimaryReadsEnabled).
		Bool("query_parser_enabled", c.QueryRouter.QueryParserEnabled).
		Int("shards", len(c.Shards)).
		Msg("running configuration")

	if c.General.TLSCertificate != "" && c.General.TLSPrivateKey != "" {
		catlog.Zero.Info().
			Str("tls_certificate", c.General.TLSCertificate).
			Str("tls_private_key", c.General.TLSPrivateKey).
			Msg("TLS support is enabled")
	} else {
		catlog.Zero.Info().Msg("TLS support is disabled")
	}
}
