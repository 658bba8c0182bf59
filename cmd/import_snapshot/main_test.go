package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const export = `{"products":[{"id":"p1","name":"Cartucho Tóner","serialized":false,"stock":4}],"ledger":[]}`

func TestDecodeExport_UTF8(t *testing.T) {
	snap, err := decodeExport(strings.NewReader(export), "utf-8")
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Cartucho Tóner", snap.Products[0].Name)
	assert.NotNil(t, snap.Units)
}

func TestDecodeExport_Windows1252(t *testing.T) {
	raw, err := charmap.Windows1252.NewEncoder().Bytes([]byte(export))
	require.NoError(t, err)

	snap, err := decodeExport(bytes.NewReader(raw), "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "Cartucho Tóner", snap.Products[0].Name)
}

func TestDecodeExport_CodificacionDesconocida(t *testing.T) {
	_, err := decodeExport(strings.NewReader(export), "ebcdic")
	assert.Error(t, err)
}

func TestDecodeExport_Vacia(t *testing.T) {
	_, err := decodeExport(strings.NewReader(`{}`), "utf-8")
	assert.Error(t, err)
}
