package dto

import "github.com/arvera/comanda-service/internal/model"

type ItemFilters struct {
	CategoryID    string
	SubcategoryID string
	Station       model.Station
	OnlyAvailable bool
	Search        string
	Page          int
	PageSize      int
}

type SetAvailabilityInput struct {
	Available bool `json:"available"`
}
