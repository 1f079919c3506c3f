package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setChainEnv(t *testing.T) {
	t.Setenv("CHAIN_RPC_URL", "http://node")
	t.Setenv("CHAIN_RELAY_URL", "http://relay")
	t.Setenv("CHAIN_PACKAGE_ID", "0xpkg")
	t.Setenv("CHAIN_GAME_STATE_ID", "0xstate")
}

func TestNewChainDefaults(t *testing.T) {
	setChainEnv(t)

	c, err := NewChain()
	require.NoError(t, err)
	assert.Equal(t, "game", c.Module)
	assert.Equal(t, uint64(10_000_000), c.GasBudget)
	assert.Equal(t, 15*time.Second, c.Timeout)
}

func TestNewChainOverrides(t *testing.T) {
	setChainEnv(t)
	t.Setenv("CHAIN_MODULE", "cubes")
	t.Setenv("CHAIN_GAS_BUDGET", "5000")
	t.Setenv("CHAIN_TIMEOUT", "2s")

	c, err := NewChain()
	require.NoError(t, err)
	assert.Equal(t, "cubes", c.Module)
	assert.Equal(t, uint64(5000), c.GasBudget)
	assert.Equal(t, 2*time.Second, c.Timeout)
}

func TestNewChainInvalid(t *testing.T) {
	setChainEnv(t)
	t.Setenv("CHAIN_TIMEOUT", "soon")

	_, err := NewChain()
	assert.Error(t, err)
}

func TestLuckFactor(t *testing.T) {
	luck, err := LuckFactor()
	require.NoError(t, err)
	assert.Equal(t, 1.0, luck)

	t.Setenv("GAME_LUCK_FACTOR", "2.5")
	luck, err = LuckFactor()
	require.NoError(t, err)
	assert.Equal(t, 2.5, luck)

	t.Setenv("GAME_LUCK_FACTOR", "lucky")
	_, err = LuckFactor()
	assert.Error(t, err)
}

func TestFlags(t *testing.T) {
	t.Setenv("DEVELOPMENT", "0")
	assert.False(t, Development())
	t.Setenv("DEVELOPMENT", "1")
	assert.True(t, Development())

	t.Setenv("CHAIN_OFFLINE", "1")
	assert.True(t, ChainOffline())
}

func TestDevelopmentValues(t *testing.T) {
	for _, v := range []string{"", "0", "false", "FALSE"} {
		t.Setenv("DEVELOPMENT", v)
		assert.False(t, Development(), v)
	}
	t.Setenv("DEVELOPMENT", "yes")
	assert.True(t, Development())
}

func setPostgresEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "hunter")
	t.Setenv("POSTGRES_PASSWORD", "p@ss word")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_DB", "cubehunt")
}

func TestNewDatabase(t *testing.T) {
	setPostgresEnv(t)

	cfg, err := NewDatabase()
	require.NoError(t, err)
	assert.Equal(t, uint16(5432), cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, "postgresql://hunter:p%40ss+word@db:5432/cubehunt?sslmode=disable", cfg.URL())

	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("POSTGRES_MAX_CONNS", "8")
	cfg, err = NewDatabase()
	require.NoError(t, err)
	assert.Equal(t, uint16(6543), cfg.Port)
	assert.Equal(t, int32(8), cfg.MaxConns)

	t.Setenv("POSTGRES_PORT", "99999")
	_, err = NewDatabase()
	assert.Error(t, err)
}

func TestNewDatabaseMissing(t *testing.T) {
	setPostgresEnv(t)
	os.Unsetenv("POSTGRES_HOST")

	_, err := NewDatabase()
	assert.EqualError(t, err, "no POSTGRES_HOST env variable set")
}

func TestDbURLPrefersDatabaseURL(t *testing.T) {
	setPostgresEnv(t)
	t.Setenv("DATABASE_URL", "postgresql://elsewhere/db")

	u, err := DbURL()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://elsewhere/db", u)
}

func TestWebSocketOrigins(t *testing.T) {
	ws, err := NewWebSocket()
	require.NoError(t, err)
	assert.Equal(t, 1024, ws.Upgrader.ReadBufferSize)

	t.Setenv("WS_ALLOWED_ORIGINS", "https://cubehunt.app, http://localhost:5173")
	t.Setenv("WS_WRITE_BUFFER_SIZE", "4096")
	ws, err = NewWebSocket()
	require.NoError(t, err)
	assert.Equal(t, 4096, ws.Upgrader.WriteBufferSize)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, ws.Upgrader.CheckOrigin(r))
	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, ws.Upgrader.CheckOrigin(r))

	t.Setenv("WS_READ_BUFFER_SIZE", "-1")
	_, err = NewWebSocket()
	assert.Error(t, err)
}

func TestSessionCache(t *testing.T) {
	size, ttl, err := SessionCache()
	require.NoError(t, err)
	assert.Zero(t, size)
	assert.Zero(t, ttl)

	t.Setenv("SESSION_CACHE_SIZE", "64")
	t.Setenv("SESSION_IDLE_TTL", "5m")
	size, ttl, err = SessionCache()
	require.NoError(t, err)
	assert.Equal(t, 64, size)
	assert.Equal(t, 5*time.Minute, ttl)

	t.Setenv("SESSION_CACHE_SIZE", "0")
	_, _, err = SessionCache()
	assert.Error(t, err)
}
