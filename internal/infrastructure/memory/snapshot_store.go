package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.SnapshotRepository    = (*SnapshotStore)(nil)
	_ repository.OrderReportRepository = (*SnapshotStore)(nil)
)

// SnapshotStore almacén en memoria con la misma semántica de versión que los backends durables.
// Guarda copias serializadas para que el llamador no comparta memoria con lo almacenado.
type SnapshotStore struct {
	mu    sync.Mutex
	snaps map[string][]byte
	vers  map[string]int64
}

// NewSnapshotStore construye el almacén vacío.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snaps: make(map[string][]byte), vers: make(map[string]int64)}
}

// Load devuelve una copia del snapshot o uno vacío con versión 0.
func (s *SnapshotStore) Load(_ context.Context, companyID string) (*repository.Snapshot, error) {
	s.mu.Lock()
	raw, ok := s.snaps[companyID]
	version := s.vers[companyID]
	s.mu.Unlock()
	if !ok {
		return &repository.Snapshot{CompanyID: companyID}, nil
	}
	var snap repository.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.CompanyID = companyID
	snap.Version = version
	return &snap, nil
}

// Save reemplaza el snapshot si expectedVersion coincide con la almacenada.
func (s *SnapshotStore) Save(_ context.Context, snap *repository.Snapshot, expectedVersion int64) (int64, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if current := s.vers[snap.CompanyID]; current != expectedVersion {
		return 0, fmt.Errorf("%w: versión %d, esperada %d", domain.ErrConflict, current, expectedVersion)
	}
	next := expectedVersion + 1
	s.snaps[snap.CompanyID] = raw
	s.vers[snap.CompanyID] = next
	return next, nil
}

// Version versión almacenada de la empresa (0 si no hay datos).
func (s *SnapshotStore) Version(companyID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vers[companyID]
}

// Companies empresas con estado guardado, en orden alfabético.
func (s *SnapshotStore) Companies(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.snaps))
	for id := range s.snaps {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// SupplierSpend compras por proveedor según lo último guardado.
func (s *SnapshotStore) SupplierSpend(ctx context.Context, companyID string) ([]repository.SupplierSpend, error) {
	snap, err := s.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return repository.SupplierSpendOf(snap.Orders), nil
}
