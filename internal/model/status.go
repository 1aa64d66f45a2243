package model

// StationStatus is the per-station progress of an order. Transitions are
// strictly forward: pendiente → preparando → listo.
type StationStatus string

const (
	StationPending   StationStatus = "pendiente"
	StationPreparing StationStatus = "preparando"
	StationReady     StationStatus = "listo"
)

func (s StationStatus) Valid() bool {
	switch s {
	case StationPending, StationPreparing, StationReady:
		return true
	}
	return false
}

var stationRank = map[StationStatus]int{
	StationPending:   0,
	StationPreparing: 1,
	StationReady:     2,
}

// CanTransitionTo permits exactly one step forward. Skipping ahead and
// regressing are both rejected.
func (s StationStatus) CanTransitionTo(target StationStatus) bool {
	from, ok := stationRank[s]
	if !ok {
		return false
	}
	to, ok := stationRank[target]
	if !ok {
		return false
	}
	return to == from+1
}

// GeneralStatus is the order-level status shown to waitstaff, derived from the
// two station statuses plus the cancellation and delivery flags.
type GeneralStatus string

const (
	GeneralPending   GeneralStatus = "pendiente"
	GeneralPreparing GeneralStatus = "preparando"
	GeneralPartial   GeneralStatus = "parcial"
	GeneralReady     GeneralStatus = "listo"
	GeneralDelivered GeneralStatus = "entregado"
	GeneralCancelled GeneralStatus = "cancelado"
)

// DeriveGeneralStatus is the single source of truth for the consolidated
// order status. Cancellation wins over everything, then delivery.
func DeriveGeneralStatus(kitchen, bar StationStatus, cancelled, delivered bool) GeneralStatus {
	switch {
	case cancelled:
		return GeneralCancelled
	case delivered:
		return GeneralDelivered
	case kitchen == StationReady && bar == StationReady:
		return GeneralReady
	case kitchen == StationReady || bar == StationReady:
		return GeneralPartial
	case kitchen == StationPreparing || bar == StationPreparing:
		return GeneralPreparing
	default:
		return GeneralPending
	}
}
