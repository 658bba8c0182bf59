package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func TestNew_JSONConCampoApp(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "production", Level: "info", App: "inventario-ledger"}, &buf)

	l.Info().Str("company_id", "c1").Msg("inventario cargado")
	l.Debug().Msg("no debe salir")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &event), "una sola línea JSON")
	assert.Equal(t, "inventario-ledger", event["app"])
	assert.Equal(t, "c1", event["company_id"])
	assert.Equal(t, "inventario cargado", event["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel("WARN"))
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel(" debug "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("desconocido"))
}
