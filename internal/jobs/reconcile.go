package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
)

// Reconciler lo que la tarea necesita del motor.
type Reconciler interface {
	Reconcile(ctx context.Context, companyID string) (dto.ReconciliationReport, error)
	Reload(companyID string)
}

// CompanyLister empresas con estado guardado en el almacén.
type CompanyLister interface {
	Companies(ctx context.Context) ([]string, error)
}

// ReconcileJob revisa la consistencia a partir del estado guardado. Solo reporta.
type ReconcileJob struct {
	engine    Reconciler
	companies CompanyLister
	log       zerolog.Logger
	track     func(job string) func(error) error
}

// NewReconcileJob construye la tarea; track puede ser nil.
func NewReconcileJob(engine Reconciler, companies CompanyLister, log zerolog.Logger, track func(string) func(error) error) *ReconcileJob {
	if track == nil {
		track = func(string) func(error) error { return func(err error) error { return err } }
	}
	return &ReconcileJob{
		engine:    engine,
		companies: companies,
		log:       log.With().Str("job", TaskStockReconcile).Logger(),
		track:     track,
	}
}

// Handle procesa TaskStockReconcile.
func (j *ReconcileJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	done := j.track(TaskStockReconcile)

	ids := []string{payload.CompanyID}
	if payload.CompanyID == "" {
		var err error
		if ids, err = j.companies.Companies(ctx); err != nil {
			return done(err)
		}
	}

	var errs []error
	for _, id := range ids {
		total, err := j.reconcile(ctx, id)
		if err != nil {
			j.log.Error().Err(err).Str("company_id", id).Msg("revisión de consistencia fallida")
			errs = append(errs, err)
			continue
		}
		j.log.Info().Str("company_id", id).Int("warnings", total).Msg("revisión de consistencia")
	}
	return done(errors.Join(errs...))
}

// reconcile lee el estado recién guardado y libera la sesión al terminar.
func (j *ReconcileJob) reconcile(ctx context.Context, companyID string) (int, error) {
	j.engine.Reload(companyID)
	defer j.engine.Reload(companyID)
	report, err := j.engine.Reconcile(ctx, companyID)
	if err != nil {
		return 0, err
	}
	return len(report.Warnings), nil
}
