package coord

import (
	"github.com/pg-sharding/poolcat/pkg/catlog"
	"github.com/pg-sharding/poolcat/pkg/config"
	"github.com/pg-sharding/poolcat/pkg/pool"
	"github.com/pg-sharding/poolcat/pkg/store"
)

// Coordinator runs the load pipeline (parse, validate, publish) against a
// config store and classifies reloads by whether they change the backend
// topology.
type Coordinator struct {
	store *store.Store
	pools pool.Mgr
	creds config.CredentialDecoder
}

func NewCoordinator(st *store.Store, pools pool.Mgr, creds config.CredentialDecoder) *Coordinator {
	return &Coordinator{
		store: st,
		pools: pools,
		creds: creds,
	}
}

// Load parses and validates the configuration at path and publishes it as
// the active one. On failure the store is left untouched.
func (c *Coordinator) Load(path string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(c.creds); err != nil {
		return err
	}

	c.store.Publish(cfg)
	cfg.Show()
	return nil
}

// Reload re-runs the load pipeline against the path stamped on the active
// configuration and reports whether anything changed.
//
// A change to the shard mapping or to the administrative user is a topology
// change: the new configuration is published and the pool manager is told to
// recreate all backend pools from it. A recreation failure propagates to the
// caller without unpublishing the new configuration, so the process may end
// up with new configuration but stale pools. Any other difference publishes
// and reports a change without touching pools. On parse or validation
// failure the active configuration and its path stay as they were.
//
// Concurrent Reload calls are not serialized: both may publish, last one
// wins. Callers needing strict ordering must wrap Reload in their own
// mutual exclusion.
func (c *Coordinator) Reload() (bool, error) {
	oldConfig := c.store.Current()

	newConfig, err := config.LoadConfig(oldConfig.Path)
	if err != nil {
		catlog.Zero.Error().Err(err).Msg("config reload error")
		return false, err
	}
	if err := newConfig.Validate(c.creds); err != nil {
		catlog.Zero.Error().Err(err).Msg("config reload error")
		return false, err
	}

	if config.TopologyChanged(&oldConfig, newConfig) {
		catlog.Zero.Info().Msg("sharding configuration changed, re-creating server pools")
		c.store.Publish(newConfig)
		if err := c.pools.RecreatePools(newConfig); err != nil {
			catlog.Zero.Error().Err(err).Msg("pool recreation failed")
			return true, err
		}
		return true, nil
	}

	if !oldConfig.Equal(newConfig) {
		c.store.Publish(newConfig)
		return true, nil
	}

	return false, nil
}
