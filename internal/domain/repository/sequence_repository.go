package repository

import "context"

// OrderSequenceRepository contador durable y atómico de números de orden por empresa.
type OrderSequenceRepository interface {
	Next(ctx context.Context, companyID string) (int64, error)
}
