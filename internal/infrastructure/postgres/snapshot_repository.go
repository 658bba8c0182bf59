package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.SnapshotRepository    = (*SnapshotRepo)(nil)
	_ repository.OrderReportRepository = (*SnapshotRepo)(nil)
)

// SnapshotRepo guarda cada colección de la empresa como una fila JSONB en stock_collections.
// Todas las filas de una empresa comparten la misma versión. Los totales de las órdenes se
// proyectan además en order_totals (NUMERIC) dentro de la misma transacción.
type SnapshotRepo struct {
	q  Querier
	tx *TxRunner
}

// NewSnapshotRepository construye el adaptador; Save usa tx para reescribir todas las colecciones juntas.
func NewSnapshotRepository(q Querier, tx *TxRunner) *SnapshotRepo {
	return &SnapshotRepo{q: q, tx: tx}
}

// Load lee todas las colecciones de la empresa.
func (r *SnapshotRepo) Load(ctx context.Context, companyID string) (*repository.Snapshot, error) {
	query := `
		SELECT collection, records, version
		FROM stock_collections WHERE company_id = $1`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	snap := &repository.Snapshot{CompanyID: companyID}
	for rows.Next() {
		var (
			name    string
			records []byte
			version int64
		)
		if err := rows.Scan(&name, &records, &version); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		if err := repository.DecodeCollection(snap, name, records); err != nil {
			return nil, err
		}
		if version > snap.Version {
			snap.Version = version
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Save reescribe todas las colecciones si la versión almacenada es expectedVersion.
func (r *SnapshotRepo) Save(ctx context.Context, snap *repository.Snapshot, expectedVersion int64) (int64, error) {
	cols, err := repository.EncodeCollections(snap)
	if err != nil {
		return 0, err
	}
	next := expectedVersion + 1
	err = r.tx.Run(ctx, func(q Querier) error {
		current, err := lockedVersion(ctx, q, snap.CompanyID)
		if err != nil {
			return err
		}
		if current != expectedVersion {
			return fmt.Errorf("%w: versión %d, esperada %d", domain.ErrConflict, current, expectedVersion)
		}
		for _, name := range repository.Collections {
			if err := writeCollection(ctx, q, snap.CompanyID, name, cols[name], next, expectedVersion == 0); err != nil {
				return err
			}
		}
		return writeOrderTotals(ctx, q, snap)
	})
	if err != nil {
		if isUniqueViolation(err) {
			// otra instancia creó la empresa primero
			return 0, fmt.Errorf("%w: alta concurrente de %s", domain.ErrConflict, snap.CompanyID)
		}
		return 0, err
	}
	return next, nil
}

// lockedVersion bloquea las filas de la empresa (SELECT FOR UPDATE) y devuelve su versión; 0 si no hay filas.
func lockedVersion(ctx context.Context, q Querier, companyID string) (int64, error) {
	query := `
		SELECT version FROM stock_collections
		WHERE company_id = $1
		ORDER BY collection
		LIMIT 1
		FOR UPDATE`
	var v int64
	err := q.QueryRow(ctx, query, companyID).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("lock snapshot: %w", err)
	}
	return v, nil
}

func writeCollection(ctx context.Context, q Querier, companyID, name string, records []byte, version int64, insert bool) error {
	query := `
		UPDATE stock_collections SET records = $3, version = $4, updated_at = now()
		WHERE company_id = $1 AND collection = $2`
	if insert {
		query = `
			INSERT INTO stock_collections (company_id, collection, records, version, updated_at)
			VALUES ($1, $2, $3, $4, now())`
	}
	tag, err := q.Exec(ctx, query, companyID, name, records, version)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if !insert && tag.RowsAffected() == 0 {
		// colección agregada después del primer guardado
		_, err = q.Exec(ctx, `
			INSERT INTO stock_collections (company_id, collection, records, version, updated_at)
			VALUES ($1, $2, $3, $4, now())`, companyID, name, records, version)
		if err != nil {
			return fmt.Errorf("insert %s: %w", name, err)
		}
	}
	return nil
}

// writeOrderTotals actualiza la proyección de totales por orden; las órdenes nunca se eliminan del estado.
func writeOrderTotals(ctx context.Context, q Querier, snap *repository.Snapshot) error {
	query := `
		INSERT INTO order_totals (company_id, order_id, number, supplier, status, total, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (company_id, order_id) DO UPDATE
		SET number = EXCLUDED.number, supplier = EXCLUDED.supplier, status = EXCLUDED.status,
		    total = EXCLUDED.total, updated_at = now()`
	for i := range snap.Orders {
		o := &snap.Orders[i]
		if _, err := q.Exec(ctx, query, snap.CompanyID, o.ID, o.Number, o.Supplier, string(o.Status), o.Total()); err != nil {
			return fmt.Errorf("order total %s: %w", o.Number, err)
		}
	}
	return nil
}

// SupplierSpend suma de totales por proveedor leída de order_totals, sin órdenes canceladas.
func (r *SnapshotRepo) SupplierSpend(ctx context.Context, companyID string) ([]repository.SupplierSpend, error) {
	query := `
		SELECT supplier, COUNT(*), SUM(total)
		FROM order_totals
		WHERE company_id = $1 AND status <> $2
		GROUP BY supplier
		ORDER BY SUM(total) DESC, supplier`
	rows, err := r.q.Query(ctx, query, companyID, string(entity.OrderStatusCancelled))
	if err != nil {
		return nil, fmt.Errorf("supplier spend: %w", err)
	}
	defer rows.Close()
	out := make([]repository.SupplierSpend, 0)
	for rows.Next() {
		var (
			row    repository.SupplierSpend
			orders int64
		)
		if err := rows.Scan(&row.Supplier, &orders, &row.Total); err != nil {
			return nil, fmt.Errorf("scan supplier spend: %w", err)
		}
		row.Orders = int(orders)
		out = append(out, row)
	}
	return out, rows.Err()
}

// Companies empresas con estado guardado.
func (r *SnapshotRepo) Companies(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT company_id FROM stock_collections ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
