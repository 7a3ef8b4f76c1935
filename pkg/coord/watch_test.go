package coord_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const autoreloadTOML = `
[general]
pool_size = 20
autoreload = true

[user]
name = "postgres"
password = "secret"

[shards.0]
servers = [["localhost", 5432, "primary"]]
database = "postgres"
`

func TestWatchDisabledIsNoop(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t, baseTOML)

	done := make(chan error, 1)
	go func() { done <- c.Watch(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return with autoreload disabled")
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	c, st, _, path := newTestCoordinator(t, autoreloadTOML)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()

	// Give the watcher a moment to register before the write.
	time.Sleep(200 * time.Millisecond)

	writeConfig(t, path, `
[general]
pool_size = 35
autoreload = true

[user]
name = "postgres"
password = "secret"

[shards.0]
servers = [["localhost", 5432, "primary"]]
database = "postgres"
`)

	assert.Eventually(t, func() bool {
		return st.Current().General.PoolSize == 35
	}, 5*time.Second, 50*time.Millisecond, "watcher did not pick up the change")

	cancel()
	require.NoError(t, <-done)
}

func TestWatchKeepsConfigOnBadWrite(t *testing.T) {
	c, st, _, path := newTestCoordinator(t, autoreloadTOML)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()

	time.Sleep(200 * time.Millisecond)

	writeConfig(t, path, "[general\nbroken = ")

	// The previous configuration must stay active.
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, 20, st.Current().General.PoolSize)

	cancel()
	require.NoError(t, <-done)
}
