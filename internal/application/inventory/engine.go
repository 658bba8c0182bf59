package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// DefaultFlushDebounce espera antes de escribir cambios acumulados.
const DefaultFlushDebounce = 750 * time.Millisecond

const flushTimeout = 30 * time.Second

// Config parámetros del motor.
type Config struct {
	FlushDebounce  time.Duration
	ConflictPolicy string // reject | last-write-wins
	AuditRestore   bool
}

// Deps colaboradores del motor. Catalog, Directory, Reports y Metrics son opcionales.
type Deps struct {
	Store     SnapshotStore
	Sequence  OrderSequence
	Catalog   CatalogPort
	Directory DirectoryPort
	Reports   OrderReportPort
	Metrics   Metrics
	Logger    zerolog.Logger
}

// Engine mantiene una sesión en memoria por empresa. Las transiciones de cada empresa
// se serializan con su mutex; la escritura al almacén es diferida y colapsada.
type Engine struct {
	store     SnapshotStore
	sequence  OrderSequence
	catalog   CatalogPort
	directory DirectoryPort
	reports   OrderReportPort
	metrics   Metrics
	log       zerolog.Logger
	cfg       Config
	reducer   *inventory.Reducer

	mu       sync.Mutex
	sessions map[string]*session
	flights  singleflight.Group
}

// session estado autoritativo de una empresa.
type session struct {
	companyID string

	mu      sync.Mutex
	state   *inventory.State
	version int64  // versión del almacén sobre la que se construyó state
	gen     uint64 // transiciones aplicadas
	saved   uint64 // última gen persistida
	staged  []stagedReceipt
	timer   *time.Timer
}

func (s *session) dirty() bool { return s.gen != s.saved }

// NewEngine construye el motor.
func NewEngine(deps Deps, cfg Config, opts ...inventory.Option) *Engine {
	if cfg.FlushDebounce <= 0 {
		cfg.FlushDebounce = DefaultFlushDebounce
	}
	if cfg.ConflictPolicy == "" {
		cfg.ConflictPolicy = ConflictReject
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	opts = append([]inventory.Option{inventory.WithRestoreAudit(cfg.AuditRestore)}, opts...)
	return &Engine{
		store:     deps.Store,
		sequence:  deps.Sequence,
		catalog:   deps.Catalog,
		directory: deps.Directory,
		reports:   deps.Reports,
		metrics:   metrics,
		log:       deps.Logger.With().Str("component", "inventory_engine").Logger(),
		cfg:       cfg,
		reducer:   inventory.NewReducer(opts...),
		sessions:  make(map[string]*session),
	}
}

// session devuelve la sesión de la empresa, cargándola del almacén la primera vez.
func (e *Engine) session(ctx context.Context, companyID string) (*session, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: empresa requerida", domain.ErrValidation)
	}
	e.mu.Lock()
	sess, ok := e.sessions[companyID]
	e.mu.Unlock()
	if ok {
		return sess, nil
	}
	v, err, _ := e.flights.Do("load:"+companyID, func() (interface{}, error) {
		e.mu.Lock()
		if s, ok := e.sessions[companyID]; ok {
			e.mu.Unlock()
			return s, nil
		}
		e.mu.Unlock()

		snap, err := e.store.Load(ctx, companyID)
		if err != nil {
			return nil, err
		}
		st := inventory.StateFromSnapshot(snap)
		st.CompanyID = companyID
		e.reportWarnings(companyID, inventory.CheckConsistency(st))

		s := &session{companyID: companyID, state: st, version: snap.Version}
		e.mu.Lock()
		e.sessions[companyID] = s
		e.mu.Unlock()
		e.log.Info().Str("company_id", companyID).Int64("version", snap.Version).
			Int("products", len(st.Products)).Msg("inventario cargado")
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cargar inventario de %s: %w", companyID, err)
	}
	return v.(*session), nil
}

func (e *Engine) reportWarnings(companyID string, warnings []inventory.ReconciliationWarning) {
	e.metrics.ObserveReconcileWarnings(len(warnings))
	for _, w := range warnings {
		e.log.Warn().
			Str("company_id", companyID).
			Str("kind", string(w.Kind)).
			Str("product_id", w.ProductID).
			Str("pending_stock_id", w.PendingStockID).
			Int("expected", w.Expected).
			Int("actual", w.Actual).
			Msg(w.Message)
	}
}

// mutate aplica fn sobre el estado de la empresa y programa la escritura diferida.
func (e *Engine) mutate(ctx context.Context, companyID string, fn func(*inventory.State) (*inventory.State, inventory.Effects, error)) (inventory.Effects, error) {
	sess, err := e.session(ctx, companyID)
	if err != nil {
		return inventory.Effects{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	next, eff, err := fn(sess.state)
	if err != nil {
		return inventory.Effects{}, err
	}
	e.commit(sess, next, eff)
	return eff, nil
}

// commit requiere sess.mu tomado.
func (e *Engine) commit(sess *session, next *inventory.State, eff inventory.Effects) {
	sess.state = next
	sess.gen++
	e.metrics.ObserveEffects(eff)
	e.scheduleFlush(sess)
}

// view ejecuta fn con el estado actual; fn no debe retener ni modificar el estado.
func (e *Engine) view(ctx context.Context, companyID string, fn func(*inventory.State)) error {
	sess, err := e.session(ctx, companyID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess.state)
	return nil
}

// scheduleFlush reinicia el temporizador de la sesión. Requiere sess.mu tomado.
func (e *Engine) scheduleFlush(sess *session) {
	if sess.timer != nil {
		sess.timer.Stop()
	}
	companyID := sess.companyID
	sess.timer = time.AfterFunc(e.cfg.FlushDebounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		_ = e.Flush(ctx, companyID)
	})
}

// Flush escribe el estado de la empresa si tiene cambios. Llamadas concurrentes se colapsan en una.
func (e *Engine) Flush(ctx context.Context, companyID string) error {
	e.mu.Lock()
	sess, ok := e.sessions[companyID]
	e.mu.Unlock()
	if !ok {
		return nil
	}
	_, err, _ := e.flights.Do("flush:"+companyID, func() (interface{}, error) {
		return nil, e.flush(ctx, sess)
	})
	return err
}

func (e *Engine) flush(ctx context.Context, sess *session) error {
	sess.mu.Lock()
	if !sess.dirty() {
		sess.mu.Unlock()
		return nil
	}
	gen := sess.gen
	expected := sess.version
	snap := sess.state.ToSnapshot(expected)
	sess.mu.Unlock()

	log := e.log.With().Str("company_id", sess.companyID).Int64("version", expected).Logger()

	newVersion, err := e.store.Save(ctx, snap, expected)
	if errors.Is(err, domain.ErrConflict) {
		e.metrics.ObserveConflict()
		if e.cfg.ConflictPolicy == ConflictLastWriteWins {
			log.Warn().Msg("conflicto de versión: se sobrescribe con el estado local")
			newVersion, err = e.overwrite(ctx, snap)
		}
	}
	if err != nil {
		outcome := FlushError
		if errors.Is(err, domain.ErrConflict) {
			outcome = FlushConflict
		}
		e.metrics.ObserveFlush(outcome)
		log.Warn().Err(err).Str("outcome", outcome).Msg("no se pudo guardar el inventario")

		sess.mu.Lock()
		if outcome == FlushError {
			e.scheduleFlush(sess)
		}
		sess.mu.Unlock()
		return err
	}

	sess.mu.Lock()
	sess.version = newVersion
	if sess.saved < gen {
		sess.saved = gen
	}
	if sess.dirty() {
		e.scheduleFlush(sess)
	}
	sess.mu.Unlock()

	e.metrics.ObserveFlush(FlushOK)
	log.Debug().Int64("new_version", newVersion).Msg("inventario guardado")
	return nil
}

// overwrite guarda snap sobre la versión vigente del almacén, descartando la escritura ajena.
func (e *Engine) overwrite(ctx context.Context, snap *repository.Snapshot) (int64, error) {
	current, err := e.store.Load(ctx, snap.CompanyID)
	if err != nil {
		return 0, err
	}
	snap.Version = current.Version
	return e.store.Save(ctx, snap, current.Version)
}

// Reload descarta la sesión en memoria (incluidos cambios sin guardar); la próxima operación recarga del almacén.
func (e *Engine) Reload(companyID string) {
	e.mu.Lock()
	sess, ok := e.sessions[companyID]
	delete(e.sessions, companyID)
	e.mu.Unlock()
	if ok {
		sess.mu.Lock()
		if sess.timer != nil {
			sess.timer.Stop()
		}
		sess.mu.Unlock()
	}
}

// Close detiene los temporizadores y guarda todas las sesiones con cambios.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	ids := make([]string, 0, len(e.sessions))
	for id, sess := range e.sessions {
		sess.mu.Lock()
		if sess.timer != nil {
			sess.timer.Stop()
		}
		sess.mu.Unlock()
		ids = append(ids, id)
	}
	e.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := e.flushUntilClean(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("guardar %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// flushUntilClean repite Flush mientras queden cambios. Un Flush puede unirse a una escritura
// en curso que solo cubre una generación anterior, y su reintento queda en un temporizador.
func (e *Engine) flushUntilClean(ctx context.Context, companyID string) error {
	for {
		if err := e.Flush(ctx, companyID); err != nil {
			return err
		}
		e.mu.Lock()
		sess, ok := e.sessions[companyID]
		e.mu.Unlock()
		if !ok {
			return nil
		}
		sess.mu.Lock()
		if sess.timer != nil {
			sess.timer.Stop()
		}
		dirty := sess.dirty()
		sess.mu.Unlock()
		if !dirty {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
