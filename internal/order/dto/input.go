package dto

import "github.com/arvera/comanda-service/internal/model"

// CreateOrderLineInput carries no prices on purpose: unit and extra prices
// are always resolved server-side from the catalog.
type CreateOrderLineInput struct {
	ItemID   string   `json:"item_id"`
	Quantity int      `json:"quantity"`
	ExtraIDs []string `json:"extra_ids"`
	Note     string   `json:"note"`
}

type CreateOrderInput struct {
	TableID   string                 `json:"table_id"`
	CreatedBy string                 `json:"created_by"`
	Lines     []CreateOrderLineInput `json:"lines"`
}

type TransitionInput struct {
	OrderID string              `json:"-"`
	Station model.Station       `json:"-"`
	Target  model.StationStatus `json:"status"`
	// ExpectedVersion 0 means "whatever is current"; callers that care about
	// lost updates must pass the version they last read.
	ExpectedVersion int64 `json:"expected_version"`
}

type CancelInput struct {
	OrderID         string `json:"-"`
	Reason          string `json:"reason"`
	ActorID         string `json:"-"`
	ExpectedVersion int64  `json:"expected_version"`
}

type DeliverInput struct {
	OrderID         string `json:"-"`
	ExpectedVersion int64  `json:"expected_version"`
}
