package model

import "time"

type Order struct {
	ID            string        `db:"id" json:"id"`
	TableID       string        `db:"table_id" json:"table_id"`
	CreatedBy     string        `db:"created_by" json:"created_by"`
	KitchenStatus StationStatus `db:"kitchen_status" json:"kitchen_status"`
	BarStatus     StationStatus `db:"bar_status" json:"bar_status"`
	GeneralStatus GeneralStatus `db:"general_status" json:"general_status"`
	Delivered     bool          `db:"delivered" json:"delivered"`
	Total         float64       `db:"total" json:"total"`
	CancelReason  *string       `db:"cancel_reason" json:"cancel_reason"`
	CancelledBy   *string       `db:"cancelled_by" json:"cancelled_by"`
	CancelledAt   *time.Time    `db:"cancelled_at" json:"cancelled_at"`
	Version       int64         `db:"version" json:"version"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`

	Lines []OrderLine `db:"-" json:"lines"`
}

// OrderLine is owned by its parent order. Prices are snapshots resolved from
// the catalog at creation time; LineIndex preserves ticket order.
type OrderLine struct {
	OrderID   string  `db:"order_id" json:"-"`
	LineIndex int     `db:"line_index" json:"line_index"`
	ItemID    string  `db:"item_id" json:"item_id"`
	ItemName  string  `db:"item_name" json:"item_name"`
	Station   Station `db:"station" json:"station"`
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	Note      string  `db:"note" json:"note"`
	Subtotal  float64 `db:"subtotal" json:"subtotal"`

	Extras []OrderLineExtra `db:"-" json:"extras"`
}

type OrderLineExtra struct {
	OrderID   string  `db:"order_id" json:"-"`
	LineIndex int     `db:"line_index" json:"-"`
	ExtraID   string  `db:"extra_id" json:"extra_id"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
}

func (o *Order) Cancelled() bool {
	return o.CancelledAt != nil
}

// Active reports whether the order still needs attention from any station or
// the waiter. Cancelled and delivered orders are terminal.
func (o *Order) Active() bool {
	return !o.Cancelled() && !o.Delivered
}

// RecomputeStatus refreshes the derived general status from the current
// station statuses and flags.
func (o *Order) RecomputeStatus() {
	o.GeneralStatus = DeriveGeneralStatus(o.KitchenStatus, o.BarStatus, o.Cancelled(), o.Delivered)
}

// StationStatusFor returns the tracked status for the given station.
func (o *Order) StationStatusFor(st Station) StationStatus {
	if st == StationBar {
		return o.BarStatus
	}
	return o.KitchenStatus
}

func (o *Order) SetStationStatus(st Station, status StationStatus) {
	if st == StationBar {
		o.BarStatus = status
		return
	}
	o.KitchenStatus = status
}
