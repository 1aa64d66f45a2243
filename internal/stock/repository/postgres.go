package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/arvera/comanda-service/internal/apperr"
	"github.com/arvera/comanda-service/internal/model"
	"github.com/arvera/comanda-service/internal/stock/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertMovementQuery = `
	INSERT INTO stock_movements (
		id, item_id, movement_type, delta, stock_before, stock_after,
		reason, reference_id, created_by, created_at
	)
	VALUES (
		:id, :item_id, :movement_type, :delta, :stock_before, :stock_after,
		:reason, :reference_id, :created_by, :created_at
	)
`

func (r *PGRepository) GetItem(ctx context.Context, itemID string) (*model.MenuItem, error) {
	var item model.MenuItem
	err := r.DB.GetContext(ctx, &item, `SELECT * FROM menu_items WHERE id = $1`, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("menu item", itemID)
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) ReserveWithMovement(ctx context.Context, itemID string, qty int, m *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The stock >= qty guard and the decrement are one statement, so two
	// concurrent reservations can never both succeed on the last unit.
	var stockAfter int
	err = tx.GetContext(ctx, &stockAfter, `
		UPDATE menu_items
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING stock
	`, itemID, qty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.classifyConditionalMiss(ctx, itemID)
		}
		return fmt.Errorf("reserve stock: %w", err)
	}

	m.StockBefore = stockAfter + qty
	m.StockAfter = stockAfter
	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, m); err != nil {
		return fmt.Errorf("log reserve movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) ReleaseWithMovement(ctx context.Context, itemID string, qty int, m *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var stockAfter int
	err = tx.GetContext(ctx, &stockAfter, `
		UPDATE menu_items
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock
	`, itemID, qty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("menu item", itemID)
		}
		return fmt.Errorf("release stock: %w", err)
	}

	m.StockBefore = stockAfter - qty
	m.StockAfter = stockAfter
	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, m); err != nil {
		return fmt.Errorf("log release movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) SetStockWithMovement(ctx context.Context, itemID string, newStock int, m *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE menu_items
		SET stock = $2, updated_at = now()
		WHERE id = $1
	`, itemID, newStock)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound("menu item", itemID)
	}

	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, m); err != nil {
		return fmt.Errorf("log stock movement: %w", err)
	}

	return tx.Commit()
}

// classifyConditionalMiss distinguishes "unknown item" from "known item with
// not enough stock" after a conditional update matched no rows.
func (r *PGRepository) classifyConditionalMiss(ctx context.Context, itemID string) error {
	var stock int
	err := r.DB.GetContext(ctx, &stock, `SELECT stock FROM menu_items WHERE id = $1`, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("menu item", itemID)
		}
		return err
	}
	return apperr.ErrInsufficientStock
}

func (r *PGRepository) StockReport(ctx context.Context) ([]model.StockReportEntry, error) {
	var entries []model.StockReportEntry
	err := r.DB.SelectContext(ctx, &entries, `
		SELECT id AS item_id, name, stock, min_stock
		FROM menu_items
		ORDER BY name ASC
	`)
	return entries, err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ItemID != "" {
		conditions = append(conditions, "item_id = :item_id")
		args["item_id"] = f.ItemID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var movements []model.StockMovement
	err = nstmt.SelectContext(ctx, &movements, args)
	return movements, count, err
}
