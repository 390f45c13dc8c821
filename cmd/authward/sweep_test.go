package main

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestOpenStoreRequiresBackendEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_URL", "")

	_, _, err := openStore(&sweepConfig{})
	require.Error(t, err)
}

func TestOpenStoreRejectsAmbiguousEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DATABASE_URL", "postgres://localhost/authward")

	_, _, err := openStore(&sweepConfig{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "exactly one")
}

func TestOpenStoreSelectsRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("DATABASE_URL", "")

	st, backend, err := openStore(&sweepConfig{redisPrefix: "aw"})
	require.NoError(t, err)
	defer st.Close()

	require.Equal(t, "redis", backend)

	n, err := st.PurgeExpired(t.Context(), time.Now())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRootCommandWiresSubcommands(t *testing.T) {
	root := newRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["migrate"], "migrate subcommand missing")
	require.True(t, names["sweep"], "sweep subcommand missing")
}

func TestSweepOnceAgainstRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("DATABASE_URL", "")

	root := newRootCmd()
	root.SetArgs([]string{"sweep", "--once"})
	require.NoError(t, root.Execute())
}
