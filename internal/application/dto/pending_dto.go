package dto

import "time"

// TopUpLineInput cantidad que llega ahora para una línea del pendiente.
type TopUpLineInput struct {
	ItemIndex     int      `json:"item_index" validate:"min=0"`
	Quantity      int      `json:"quantity" validate:"required,min=1"`
	Location      string   `json:"location" validate:"required"`
	SerialNumbers []string `json:"serial_numbers"`
}

// StagePendingReceiptRequest body para POST /api/pending-stocks/:id/stage.
type StagePendingReceiptRequest struct {
	Lines []TopUpLineInput `json:"lines" validate:"required,min=1,dive"`
}

// UpdateArrivalsRequest reprogramación de llegadas de una línea.
type UpdateArrivalsRequest struct {
	Arrivals []ArrivalInput `json:"arrivals" validate:"dive"`
}

// StagedReceiptDTO recepción en espera de guardarse.
type StagedReceiptDTO struct {
	PendingStockID string           `json:"pending_stock_id"`
	Lines          []TopUpLineInput `json:"lines"`
	StagedBy       string           `json:"staged_by"`
	StagedAt       time.Time        `json:"staged_at"`
}
