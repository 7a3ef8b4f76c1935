package pool

import "github.com/pg-sharding/poolcat/pkg/config"

// Mgr recreates backend connection pools after a topology change. Pooling
// itself lives outside the configuration subsystem; the reload coordinator
// only signals it with the freshly published Config.
type Mgr interface {
	RecreatePools(cfg *config.Config) error
}
