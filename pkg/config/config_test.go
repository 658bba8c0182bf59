package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.Store.FlushDebounce)
	assert.Equal(t, "reject", cfg.Store.ConflictPolicy)
	assert.False(t, cfg.Ledger.AuditRestore)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("FLUSH_DEBOUNCE", "2s")
	t.Setenv("STORE_CONFLICT_POLICY", "last-write-wins")
	t.Setenv("LEDGER_AUDIT_RESTORE", "true")
	t.Setenv("REDIS_DB", "3")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 2*time.Second, cfg.Store.FlushDebounce)
	assert.Equal(t, "last-write-wins", cfg.Store.ConflictPolicy)
	assert.True(t, cfg.Ledger.AuditRestore)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_DebounceEnMilisegundos(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("FLUSH_DEBOUNCE", "300")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 300*time.Millisecond, cfg.Store.FlushDebounce)
}

func TestLoad_BackendDesconocido(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/ledger?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
