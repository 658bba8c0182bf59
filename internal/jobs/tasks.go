package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola de las tareas de inventario.
	QueueDefault = "ledger"
	// TaskStockReconcile revisión de consistencia de una o todas las empresas.
	TaskStockReconcile = "stock:reconcile"
)

// ReconcilePayload CompanyID vacío revisa todas las empresas con estado guardado.
type ReconcilePayload struct {
	CompanyID string `json:"company_id,omitempty"`
}

// NewReconcileTask construye la tarea de revisión.
func NewReconcileTask(companyID string) (*asynq.Task, error) {
	body, err := json.Marshal(ReconcilePayload{CompanyID: companyID})
	if err != nil {
		return nil, fmt.Errorf("reconcile payload: %w", err)
	}
	return asynq.NewTask(TaskStockReconcile, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
