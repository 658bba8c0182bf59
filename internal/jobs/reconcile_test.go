package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/jobs"
)

type fakeReconciler struct {
	reloads  []string
	reviewed []string
	fail     map[string]error
}

func (f *fakeReconciler) Reconcile(_ context.Context, companyID string) (dto.ReconciliationReport, error) {
	if err := f.fail[companyID]; err != nil {
		return dto.ReconciliationReport{}, err
	}
	f.reviewed = append(f.reviewed, companyID)
	return dto.ReconciliationReport{CompanyID: companyID, Warnings: []dto.ReconciliationWarningDTO{{Kind: "stock_mismatch"}}}, nil
}

func (f *fakeReconciler) Reload(companyID string) { f.reloads = append(f.reloads, companyID) }

type fakeLister []string

func (l fakeLister) Companies(context.Context) ([]string, error) { return l, nil }

func TestNewReconcileTask(t *testing.T) {
	task, err := jobs.NewReconcileTask("c1")
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskStockReconcile, task.Type())

	var payload jobs.ReconcilePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "c1", payload.CompanyID)
}

func TestReconcileJob_UnaEmpresa(t *testing.T) {
	rec := &fakeReconciler{}
	job := jobs.NewReconcileJob(rec, fakeLister{"c1", "c2"}, zerolog.Nop(), nil)
	task, _ := jobs.NewReconcileTask("c2")

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []string{"c2"}, rec.reviewed)
	assert.Equal(t, []string{"c2", "c2"}, rec.reloads, "recarga antes y libera después")
}

func TestReconcileJob_TodasLasEmpresas(t *testing.T) {
	boom := errors.New("almacén caído")
	rec := &fakeReconciler{fail: map[string]error{"c2": boom}}
	var tracked []error
	track := func(string) func(error) error {
		return func(err error) error { tracked = append(tracked, err); return err }
	}
	job := jobs.NewReconcileJob(rec, fakeLister{"c1", "c2", "c3"}, zerolog.Nop(), track)
	task, _ := jobs.NewReconcileTask("")

	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"c1", "c3"}, rec.reviewed, "un fallo no detiene al resto")
	require.Len(t, tracked, 1)
}

func TestReconcileJob_PayloadInvalido(t *testing.T) {
	job := jobs.NewReconcileJob(&fakeReconciler{}, fakeLister{}, zerolog.Nop(), nil)
	err := job.Handle(context.Background(), asynq.NewTask(jobs.TaskStockReconcile, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
