package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.OrderSequenceRepository = (*OrderSequence)(nil)

// OrderSequence contador de órdenes por empresa con INCR.
type OrderSequence struct {
	client *redis.Client
}

func NewOrderSequence(client *redis.Client) *OrderSequence {
	return &OrderSequence{client: client}
}

// Next incrementa ledger:{company}:order_seq; la primera llamada devuelve 1.
func (s *OrderSequence) Next(ctx context.Context, companyID string) (int64, error) {
	n, err := s.client.Incr(ctx, "ledger:{"+companyID+"}:order_seq").Result()
	if err != nil {
		return 0, fmt.Errorf("redis next order number: %w", err)
	}
	return n, nil
}
