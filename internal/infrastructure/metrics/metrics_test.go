package metrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
)

func TestRegistry_ObserveEffects(t *testing.T) {
	m := metrics.New()
	m.ObserveEffects(inventory.Effects{
		Ledger: []entity.StockHistoryEntry{
			{Action: entity.StockActionOrderReceived},
			{Action: entity.StockActionOrderReceived},
			{Action: entity.StockActionAdjust},
		},
		Movements:       []entity.StockMovement{{}, {}},
		ResolvedPending: []string{"ps-1"},
	})
	m.ObserveFlush("ok")
	m.ObserveConflict()
	m.ObserveReconcileWarnings(0)
	m.ObserveReconcileWarnings(3)

	n, err := testutil.GatherAndCount(m.Gatherer(), "ledger_entries_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "una serie por acción")

	count, err := testutil.GatherAndCount(m.Gatherer(),
		"ledger_movements_total", "ledger_pending_resolved_total", "ledger_flush_total",
		"ledger_version_conflicts_total", "ledger_reconcile_warnings_total")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestRegistry_TrackJob(t *testing.T) {
	m := metrics.New()
	boom := errors.New("boom")

	assert.NoError(t, m.TrackJob("stock:reconcile")(nil))
	assert.ErrorIs(t, m.TrackJob("stock:reconcile")(boom), boom)

	n, err := testutil.GatherAndCount(m.Gatherer(), "ledger_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "éxito y fallo son series distintas")
}
