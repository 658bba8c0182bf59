// import_snapshot carga en el almacén configurado una exportación JSON de inventario
// (productos, unidades, historial, movimientos, órdenes y pendientes) de una empresa.
//
// Uso: go run ./cmd/import_snapshot -company <id> [-encoding windows-1252] [-dry-run] export.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/storage"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	companyID := flag.String("company", "", "empresa destino (obligatorio)")
	encoding := flag.String("encoding", "utf-8", "codificación del archivo: utf-8 | windows-1252 | iso-8859-1")
	dryRun := flag.Bool("dry-run", false, "solo revisar consistencia, sin guardar")
	flag.Parse()

	if *companyID == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: import_snapshot -company <id> [-encoding windows-1252] [-dry-run] export.json")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, App: "import_snapshot"})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir exportación")
	}
	defer f.Close()

	snap, err := decodeExport(f, *encoding)
	if err != nil {
		log.Fatal().Err(err).Msg("decodificar exportación")
	}
	snap.CompanyID = *companyID

	warnings := inventory.CheckConsistency(inventory.StateFromSnapshot(snap))
	for _, w := range warnings {
		log.Warn().Str("kind", string(w.Kind)).Str("product_id", w.ProductID).Msg(w.Message)
	}
	log.Info().
		Int("products", len(snap.Products)).
		Int("ledger", len(snap.Ledger)).
		Int("orders", len(snap.Orders)).
		Int("warnings", len(warnings)).
		Msg("exportación leída")
	if *dryRun {
		return
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	current, err := backend.Store.Load(ctx, *companyID)
	if err != nil {
		log.Fatal().Err(err).Msg("leer estado actual")
	}
	version, err := backend.Store.Save(ctx, snap, current.Version)
	if err != nil {
		log.Fatal().Err(err).Msg("guardar")
	}
	log.Info().Str("company_id", *companyID).Int64("version", version).Msg("importación completada")
}

// decodeExport lee el JSON de exportación, convirtiendo a UTF-8 si el archivo viene en otra codificación.
func decodeExport(r io.Reader, encoding string) (*repository.Snapshot, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
	case "windows-1252", "cp1252":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	case "iso-8859-1", "latin1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("codificación no soportada: %q", encoding)
	}
	var snap repository.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Products == nil && snap.Ledger == nil && snap.Orders == nil {
		return nil, errors.New("exportación vacía")
	}
	if snap.Units == nil {
		snap.Units = map[string][]entity.ProductUnit{}
	}
	return &snap, nil
}
