package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

var _ appinv.Metrics = (*Registry)(nil)

// Registry colectores Prometheus del motor de inventario y de las tareas en segundo plano.
type Registry struct {
	reg          *prometheus.Registry
	ledger       *prometheus.CounterVec
	movements    prometheus.Counter
	resolved     prometheus.Counter
	flushes      *prometheus.CounterVec
	conflicts    prometheus.Counter
	warnings     prometheus.Counter
	jobRuns      *prometheus.CounterVec
	jobDurations *prometheus.HistogramVec
}

// New registra los colectores en un registro propio (más los de proceso y runtime).
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		ledger: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_entries_total",
			Help: "Entradas de historial de stock emitidas, por acción.",
		}, []string{"action"}),
		movements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_movements_total",
			Help: "Traslados de unidades registrados.",
		}),
		resolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_pending_resolved_total",
			Help: "Pendientes de órdenes resueltos por completo.",
		}),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_flush_total",
			Help: "Escrituras diferidas al almacén, por resultado.",
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_version_conflicts_total",
			Help: "Conflictos de versión detectados al guardar.",
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_reconcile_warnings_total",
			Help: "Advertencias de consistencia reportadas.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_jobs_total",
			Help: "Ejecuciones de tareas en segundo plano por tarea y estado.",
		}, []string{"job", "status"}),
		jobDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_job_duration_seconds",
			Help:    "Duración de las tareas en segundo plano.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}
	r.reg.MustRegister(
		r.ledger, r.movements, r.resolved, r.flushes, r.conflicts, r.warnings,
		r.jobRuns, r.jobDurations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Gatherer acceso de lectura para pruebas y exportadores.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler expone el registro en formato de texto Prometheus.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Registry) ObserveEffects(eff inventory.Effects) {
	for _, e := range eff.Ledger {
		r.ledger.WithLabelValues(string(e.Action)).Inc()
	}
	r.movements.Add(float64(len(eff.Movements)))
	r.resolved.Add(float64(len(eff.ResolvedPending)))
}

func (r *Registry) ObserveFlush(outcome string) { r.flushes.WithLabelValues(outcome).Inc() }

func (r *Registry) ObserveConflict() { r.conflicts.Inc() }

func (r *Registry) ObserveReconcileWarnings(n int) {
	if n > 0 {
		r.warnings.Add(float64(n))
	}
}

// TrackJob devuelve una función que registra duración y estado al terminar la tarea.
//
//	done := m.TrackJob("stock:reconcile")
//	return done(err)
func (r *Registry) TrackJob(job string) func(error) error {
	start := time.Now()
	return func(err error) error {
		status := "success"
		if err != nil {
			status = "failure"
		}
		r.jobRuns.WithLabelValues(job, status).Inc()
		r.jobDurations.WithLabelValues(job).Observe(time.Since(start).Seconds())
		return err
	}
}
