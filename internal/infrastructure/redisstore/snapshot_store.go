package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotStore)(nil)

const versionField = "version"

// SnapshotKey hash con una entrada por colección más la versión.
func SnapshotKey(companyID string) string {
	return "ledger:{" + companyID + "}:snapshot"
}

// SnapshotStore persistencia del estado de inventario en un hash de Redis por empresa.
type SnapshotStore struct {
	client *redis.Client
}

// NewSnapshotStore construye el almacén.
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// Load lee el hash completo; sin clave devuelve un snapshot vacío con versión 0.
func (s *SnapshotStore) Load(ctx context.Context, companyID string) (*repository.Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, SnapshotKey(companyID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load snapshot: %w", err)
	}
	snap := &repository.Snapshot{CompanyID: companyID}
	for name, raw := range fields {
		if name == versionField {
			if snap.Version, err = strconv.ParseInt(raw, 10, 64); err != nil {
				return nil, fmt.Errorf("redis snapshot version %q: %w", raw, err)
			}
			continue
		}
		if err := repository.DecodeCollection(snap, name, []byte(raw)); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// Save reescribe el hash dentro de WATCH/MULTI; si la versión cambió entre la lectura y
// el EXEC devuelve domain.ErrConflict.
func (s *SnapshotStore) Save(ctx context.Context, snap *repository.Snapshot, expectedVersion int64) (int64, error) {
	cols, err := repository.EncodeCollections(snap)
	if err != nil {
		return 0, err
	}
	key := SnapshotKey(snap.CompanyID)
	next := expectedVersion + 1

	values := make([]any, 0, 2*len(cols)+2)
	for _, name := range repository.Collections {
		values = append(values, name, cols[name])
	}
	values = append(values, versionField, next)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, versionField).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != expectedVersion {
			return fmt.Errorf("%w: versión %d, esperada %d", domain.ErrConflict, current, expectedVersion)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, values...)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return 0, fmt.Errorf("%w: %s modificado durante el guardado", domain.ErrConflict, key)
	}
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("redis save snapshot: %w", err)
	}
	return next, nil
}

// Companies empresas con estado guardado (SCAN sobre las claves de snapshot).
func (s *SnapshotStore) Companies(ctx context.Context) ([]string, error) {
	var out []string
	iter := s.client.Scan(ctx, 0, "ledger:{*}:snapshot", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		lo, hi := strings.IndexByte(key, '{'), strings.LastIndexByte(key, '}')
		if lo < 0 || hi <= lo {
			continue
		}
		out = append(out, key[lo+1:hi])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan companies: %w", err)
	}
	sort.Strings(out)
	return out, nil
}
