package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// stagedReceipt recepción complementaria en espera de SavePendingChanges.
type stagedReceipt struct {
	receipt  inventory.PendingReceipt
	input    []dto.TopUpLineInput
	stagedAt time.Time
}

// StagePendingReceipt agrega una recepción complementaria al conjunto de cambios pendientes.
// Se valida junto con lo ya preparado, pero el estado no cambia hasta SavePendingChanges.
func (e *Engine) StagePendingReceipt(ctx context.Context, companyID, userID, pendingStockID string, in dto.StagePendingReceiptRequest) error {
	lines := make([]inventory.TopUpLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		loc, err := parseLocation(l.Location)
		if err != nil {
			return fmt.Errorf("línea %d: %w", l.ItemIndex, err)
		}
		lines = append(lines, inventory.TopUpLine{
			ItemIndex:     l.ItemIndex,
			Quantity:      l.Quantity,
			Location:      loc,
			SerialNumbers: l.SerialNumbers,
		})
	}
	rc := inventory.PendingReceipt{PendingStockID: pendingStockID, Lines: lines, Actor: userID}

	sess, err := e.session(ctx, companyID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	candidate := append(stagedReceipts(sess.staged), rc)
	if _, _, err := e.reducer.ApplyPendingReceipts(sess.state, candidate); err != nil {
		return err
	}
	sess.staged = append(sess.staged, stagedReceipt{receipt: rc, input: in.Lines, stagedAt: time.Now().UTC()})
	return nil
}

// PendingChanges recepciones preparadas y aún no guardadas.
func (e *Engine) PendingChanges(ctx context.Context, companyID string) ([]dto.StagedReceiptDTO, error) {
	sess, err := e.session(ctx, companyID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]dto.StagedReceiptDTO, 0, len(sess.staged))
	for _, st := range sess.staged {
		out = append(out, dto.StagedReceiptDTO{
			PendingStockID: st.receipt.PendingStockID,
			Lines:          st.input,
			StagedBy:       st.receipt.Actor,
			StagedAt:       st.stagedAt,
		})
	}
	return out, nil
}

// DiscardPendingChanges vacía el conjunto preparado sin tocar el estado. Devuelve cuántas recepciones descartó.
func (e *Engine) DiscardPendingChanges(ctx context.Context, companyID string) (int, error) {
	sess, err := e.session(ctx, companyID)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	n := len(sess.staged)
	sess.staged = nil
	return n, nil
}

// SavePendingChanges aplica todas las recepciones preparadas como una sola transición.
// Si alguna falla no se aplica ninguna y el conjunto se conserva.
func (e *Engine) SavePendingChanges(ctx context.Context, companyID string) (inventory.Effects, error) {
	sess, err := e.session(ctx, companyID)
	if err != nil {
		return inventory.Effects{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if len(sess.staged) == 0 {
		return inventory.Effects{}, domain.ErrNoPendingChanges
	}
	next, eff, err := e.reducer.ApplyPendingReceipts(sess.state, stagedReceipts(sess.staged))
	if err != nil {
		return inventory.Effects{}, err
	}
	e.commit(sess, next, eff)
	e.log.Info().Str("company_id", companyID).Int("receipts", len(sess.staged)).
		Int("ledger_entries", len(eff.Ledger)).Strs("resolved", eff.ResolvedPending).
		Msg("recepciones complementarias guardadas")
	sess.staged = nil
	return eff, nil
}

func stagedReceipts(staged []stagedReceipt) []inventory.PendingReceipt {
	out := make([]inventory.PendingReceipt, 0, len(staged)+1)
	for _, st := range staged {
		out = append(out, st.receipt)
	}
	return out
}
