package config

import (
	"strconv"

	"github.com/pg-sharding/poolcat/pkg/catlog"
	"github.com/pg-sharding/poolcat/pkg/models/pcerror"
)

// CredentialDecoder confirms that referenced TLS credential files decode.
// The real implementation lives in pkg/tlsutil; validation only cares that
// decoding succeeds, not about the decoded material.
type CredentialDecoder interface {
	DecodeCertificate(path string) error
	DecodePrivateKey(path string) error
}

// Validate checks the structural invariants of a freshly decoded Config.
// It fails fast: only the first violated invariant is reported, as the
// unified bad-config error, and c is left unmodified either way.
func (c *Config) Validate(dec CredentialDecoder) error {
	switch c.QueryRouter.ShardingFunction {
	case "pg_bigint_hash", "sha1":
	default:
		catlog.Zero.Error().
			Str("sharding_function", c.QueryRouter.ShardingFunction).
			Msg("supported sharding functions are 'pg_bigint_hash' and 'sha1'")
		return pcerror.BadConfig("unsupported sharding function: '%s'", c.QueryRouter.ShardingFunction)
	}

	for key, shard := range c.Shards {
		if _, err := strconv.ParseUint(key, 10, 64); err != nil {
			catlog.Zero.Error().
				Str("shard", key).
				Msg("shard is not a valid number, shards must be numbered starting at 0")
			return pcerror.BadConfig("shard '%s' is not a valid number", key)
		}

		if len(shard.Servers) == 0 {
			catlog.Zero.Error().Str("shard", key).Msg("shard has no servers configured")
			return pcerror.BadConfig("shard '%s' has no servers configured", key)
		}

		// Server tuples double as unique identifiers downstream, so they
		// must be unique here as well.
		dupCheck := make(map[ServerEntry]struct{}, len(shard.Servers))
		primaryCount := 0

		for _, server := range shard.Servers {
			dupCheck[server] = struct{}{}

			switch server.Role {
			case "primary":
				primaryCount++
			case "replica":
			default:
				catlog.Zero.Error().
					Str("shard", key).
					Str("role", server.Role).
					Msg("server role must be either 'primary' or 'replica'")
				return pcerror.BadConfig("shard '%s' server role must be either 'primary' or 'replica', got: '%s'", key, server.Role)
			}
		}

		if primaryCount > 1 {
			catlog.Zero.Error().Str("shard", key).Msg("shard has more than one primary configured")
			return pcerror.BadConfig("shard '%s' has more than one primary configured", key)
		}

		if len(dupCheck) != len(shard.Servers) {
			catlog.Zero.Error().Str("shard", key).Msg("shard contains duplicate server configs")
			return pcerror.BadConfig("shard '%s' contains duplicate server configs", key)
		}
	}

	switch c.QueryRouter.DefaultRole {
	case "any", "primary", "replica":
	default:
		catlog.Zero.Error().
			Str("default_role", c.QueryRouter.DefaultRole).
			Msg("query_router default_role must be 'primary', 'replica', or 'any'")
		return pcerror.BadConfig("query_router default_role must be 'primary', 'replica', or 'any', got: '%s'", c.QueryRouter.DefaultRole)
	}

	if c.General.TLSCertificate != "" {
		if err := dec.DecodeCertificate(c.General.TLSCertificate); err != nil {
			catlog.Zero.Error().Err(err).
				Str("tls_certificate", c.General.TLSCertificate).
				Msg("tls_certificate is incorrectly configured")
			return pcerror.BadConfig("tls_certificate is incorrectly configured: %v", err)
		}
		if c.General.TLSPrivateKey == "" {
			catlog.Zero.Error().Msg("tls_certificate is set, but the tls_private_key is not")
			return pcerror.BadConfig("tls_certificate is set, but the tls_private_key is not")
		}
		if err := dec.DecodePrivateKey(c.General.TLSPrivateKey); err != nil {
			catlog.Zero.Error().Err(err).
				Str("tls_private_key", c.General.TLSPrivateKey).
				Msg("tls_private_key is incorrectly configured")
			return pcerror.BadConfig("tls_private_key is incorrectly configured: %v", err)
		}
	}

	return nil
}
