package dto

import (
	"time"

	"github.com/arvera/comanda-service/internal/model"
)

type RestockInput struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
	ActorID  string `json:"-"`
}

type ReleaseInput struct {
	ItemID       string
	Quantity     int
	MovementType string
	Reason       string
	ReferenceID  string
	ActorID      string
}

// AdjustInput mirrors the manual stock screen: aumentar/disminuir apply a
// delta, establecer sets an absolute count.
type AdjustInput struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Mode     string `json:"mode"` // "aumentar" | "disminuir" | "establecer"
	Reason   string `json:"reason"`
	ActorID  string `json:"-"`
}

// StockResult is the per-item outcome of a stock operation. In RestockMany
// responses a failed item carries Error and leaves the rest untouched.
type StockResult struct {
	ItemID   string              `json:"item_id"`
	Stock    int                 `json:"stock"`
	Severity model.StockSeverity `json:"severity"`
	Error    string              `json:"error,omitempty"`
}

type MovementFilters struct {
	ItemID       string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}
