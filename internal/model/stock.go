package model

import "time"

// StockSeverity is the stock-health classification, always derived from the
// current stock and threshold, never stored.
type StockSeverity string

const (
	SeverityNormal   StockSeverity = "normal"
	SeverityLow      StockSeverity = "bajo"
	SeverityCritical StockSeverity = "critico"
	SeverityOut      StockSeverity = "agotado"
)

// ClassifySeverity buckets current stock against the minimum threshold:
// agotado at zero, critico at or below half the threshold, bajo at or below
// the threshold, normal above it.
func ClassifySeverity(stock, minStock int) StockSeverity {
	switch {
	case stock <= 0:
		return SeverityOut
	case stock*2 <= minStock:
		return SeverityCritical
	case stock <= minStock:
		return SeverityLow
	default:
		return SeverityNormal
	}
}

// Movement types recorded in the stock ledger.
const (
	MovementReserve = "reserva"
	MovementRelease = "liberacion"
	MovementRestock = "reposicion"
	MovementAdjust  = "ajuste"
	MovementCancel  = "cancelacion"
)

// StockMovement is an append-only audit row; rows are never updated or
// deleted. Current stock can be rebuilt by folding deltas.
type StockMovement struct {
	ID           string    `db:"id" json:"id"`
	ItemID       string    `db:"item_id" json:"item_id"`
	MovementType string    `db:"movement_type" json:"movement_type"`
	Delta        int       `db:"delta" json:"delta"`
	StockBefore  int       `db:"stock_before" json:"stock_before"`
	StockAfter   int       `db:"stock_after" json:"stock_after"`
	Reason       string    `db:"reason" json:"reason"`
	ReferenceID  *string   `db:"reference_id" json:"reference_id"`
	CreatedBy    *string   `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StockReportEntry is the read-side row for the stock dashboard.
type StockReportEntry struct {
	ItemID   string        `db:"item_id" json:"item_id"`
	Name     string        `db:"name" json:"name"`
	Stock    int           `db:"stock" json:"stock"`
	MinStock int           `db:"min_stock" json:"min_stock"`
	Severity StockSeverity `db:"-" json:"severity"`
}
