package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arvera/comanda-service/internal/apperr"
	"github.com/arvera/comanda-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO orders (
			id, table_id, created_by, kitchen_status, bar_status, general_status,
			delivered, total, version, created_at, updated_at
		)
		VALUES (
			:id, :table_id, :created_by, :kitchen_status, :bar_status, :general_status,
			:delivered, :total, :version, :created_at, :updated_at
		)
	`, o)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO order_lines (
				order_id, line_index, item_id, item_name, station,
				quantity, unit_price, note, subtotal
			)
			VALUES (
				:order_id, :line_index, :item_id, :item_name, :station,
				:quantity, :unit_price, :note, :subtotal
			)
		`, line)
		if err != nil {
			return fmt.Errorf("insert order line %d: %w", i, err)
		}

		for j := range line.Extras {
			_, err = tx.NamedExecContext(ctx, `
				INSERT INTO order_line_extras (order_id, line_index, extra_id, name, price)
				VALUES (:order_id, :line_index, :extra_id, :name, :price)
			`, &line.Extras[j])
			if err != nil {
				return fmt.Errorf("insert order line extra: %w", err)
			}
		}
	}

	return tx.Commit()
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("order", id)
		}
		return nil, err
	}

	orders := []model.Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PGRepository) UpdateWithVersion(ctx context.Context, o *model.Order, expectedVersion int64) error {
	res, err := r.DB.NamedExecContext(ctx, `
		UPDATE orders SET
			kitchen_status = :kitchen_status,
			bar_status     = :bar_status,
			general_status = :general_status,
			delivered      = :delivered,
			cancel_reason  = :cancel_reason,
			cancelled_by   = :cancelled_by,
			cancelled_at   = :cancelled_at,
			version        = :expected_version + 1,
			updated_at     = now()
		WHERE id = :id AND version = :expected_version
	`, map[string]interface{}{
		"id":               o.ID,
		"kitchen_status":   o.KitchenStatus,
		"bar_status":       o.BarStatus,
		"general_status":   o.GeneralStatus,
		"delivered":        o.Delivered,
		"cancel_reason":    o.CancelReason,
		"cancelled_by":     o.CancelledBy,
		"cancelled_at":     o.CancelledAt,
		"expected_version": expectedVersion,
	})
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the order vanished or another writer bumped the version.
		var exists bool
		if err := r.DB.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, o.ID); err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("order", o.ID)
		}
		return apperr.ErrConcurrentModification
	}

	o.Version = expectedVersion + 1
	return nil
}

func (r *PGRepository) ListForStation(ctx context.Context, station model.Station, includeReady bool) ([]model.Order, error) {
	statusColumn := "kitchen_status"
	if station == model.StationBar {
		statusColumn = "bar_status"
	}

	query := `
		SELECT * FROM orders
		WHERE cancelled_at IS NULL AND delivered = false
	`
	if !includeReady {
		query += fmt.Sprintf(" AND %s <> '%s'", statusColumn, model.StationReady)
	}
	query += " ORDER BY created_at ASC"

	return r.selectOrders(ctx, query)
}

func (r *PGRepository) ListActiveByCreator(ctx context.Context, creatorID string) ([]model.Order, error) {
	return r.selectOrders(ctx, `
		SELECT * FROM orders
		WHERE created_by = $1 AND cancelled_at IS NULL AND delivered = false
		ORDER BY created_at ASC
	`, creatorID)
}

func (r *PGRepository) ListByTable(ctx context.Context, tableID string) ([]model.Order, error) {
	return r.selectOrders(ctx, `
		SELECT * FROM orders
		WHERE table_id = $1
		ORDER BY created_at ASC
	`, tableID)
}

func (r *PGRepository) ListCancelled(ctx context.Context) ([]model.Order, error) {
	return r.selectOrders(ctx, `
		SELECT * FROM orders
		WHERE cancelled_at IS NOT NULL
		ORDER BY cancelled_at DESC
	`)
}

func (r *PGRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.selectOrders(ctx, `SELECT * FROM orders ORDER BY created_at ASC`)
}

func (r *PGRepository) selectOrders(ctx context.Context, query string, args ...interface{}) ([]model.Order, error) {
	var orders []model.Order
	if err := r.DB.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachLines loads lines and line extras for the given orders in two
// batched queries and stitches them in memory.
func (r *PGRepository) attachLines(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*model.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
		orders[i].Lines = []model.OrderLine{}
	}

	query, args, err := sqlx.In(`
		SELECT * FROM order_lines WHERE order_id IN (?)
		ORDER BY order_id, line_index ASC
	`, ids)
	if err != nil {
		return err
	}
	query = r.DB.Rebind(query)

	var lines []model.OrderLine
	if err := r.DB.SelectContext(ctx, &lines, query, args...); err != nil {
		return err
	}

	query, args, err = sqlx.In(`
		SELECT * FROM order_line_extras WHERE order_id IN (?)
		ORDER BY order_id, line_index ASC
	`, ids)
	if err != nil {
		return err
	}
	query = r.DB.Rebind(query)

	var extras []model.OrderLineExtra
	if err := r.DB.SelectContext(ctx, &extras, query, args...); err != nil {
		return err
	}

	extrasByLine := make(map[string][]model.OrderLineExtra)
	for _, extra := range extras {
		key := fmt.Sprintf("%s/%d", extra.OrderID, extra.LineIndex)
		extrasByLine[key] = append(extrasByLine[key], extra)
	}

	for _, line := range lines {
		line.Extras = extrasByLine[fmt.Sprintf("%s/%d", line.OrderID, line.LineIndex)]
		if line.Extras == nil {
			line.Extras = []model.OrderLineExtra{}
		}
		if o, ok := byID[line.OrderID]; ok {
			o.Lines = append(o.Lines, line)
		}
	}

	return nil
}
