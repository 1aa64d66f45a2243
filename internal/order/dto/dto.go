package dto

import "github.com/arvera/comanda-service/internal/model"

// AdminSummary is the dashboard projection: the raw orders plus counts
// recomputed from current aggregate state, never cached independently.
type AdminSummary struct {
	Orders    []model.Order `json:"orders"`
	Total     int           `json:"total"`
	Pending   int           `json:"pending"`
	Preparing int           `json:"preparing"`
	Partial   int           `json:"partial"`
	Ready     int           `json:"ready"`
	Delivered int           `json:"delivered"`
	Cancelled int           `json:"cancelled"`
}
