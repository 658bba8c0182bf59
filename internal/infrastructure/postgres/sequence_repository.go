package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.OrderSequenceRepository = (*OrderSequenceRepo)(nil)

// OrderSequenceRepo contador de órdenes por empresa en order_sequences.
type OrderSequenceRepo struct {
	q Querier
}

// NewOrderSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderSequenceRepository(q Querier) *OrderSequenceRepo {
	return &OrderSequenceRepo{q: q}
}

// Next incrementa y devuelve el siguiente número; la primera llamada de una empresa devuelve 1.
func (r *OrderSequenceRepo) Next(ctx context.Context, companyID string) (int64, error) {
	query := `
		INSERT INTO order_sequences (company_id, last_value, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (company_id)
		DO UPDATE SET last_value = order_sequences.last_value + 1, updated_at = now()
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, companyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return n, nil
}
