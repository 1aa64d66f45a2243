package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/arvera/comanda-service/internal/apperr"
	"github.com/arvera/comanda-service/internal/catalog/dto"
	"github.com/arvera/comanda-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetItem(ctx context.Context, id string) (*model.MenuItem, error) {
	var item model.MenuItem
	err := r.DB.GetContext(ctx, &item, `SELECT * FROM menu_items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("menu item", id)
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) GetItemsByIDs(ctx context.Context, ids []string) ([]model.MenuItem, error) {
	if len(ids) == 0 {
		return []model.MenuItem{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM menu_items WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var items []model.MenuItem
	err = r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (r *PGRepository) GetExtra(ctx context.Context, id string) (*model.Extra, error) {
	var extra model.Extra
	err := r.DB.GetContext(ctx, &extra, `SELECT * FROM extras WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("extra", id)
		}
		return nil, err
	}
	return &extra, nil
}

func (r *PGRepository) GetExtrasByIDs(ctx context.Context, ids []string) ([]model.Extra, error) {
	if len(ids) == 0 {
		return []model.Extra{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM extras WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var extras []model.Extra
	err = r.DB.SelectContext(ctx, &extras, query, args...)
	return extras, err
}

func (r *PGRepository) FindItems(ctx context.Context, f *dto.ItemFilters) ([]model.MenuItem, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.SubcategoryID != "" {
		conditions = append(conditions, "subcategory_id = :subcategory_id")
		args["subcategory_id"] = f.SubcategoryID
	}
	if f.Station != "" {
		conditions = append(conditions, "station = :station")
		args["station"] = f.Station
	}
	if f.OnlyAvailable {
		conditions = append(conditions, "available = true AND stock > 0")
	}
	if f.Search != "" {
		conditions = append(conditions, "name ILIKE :search")
		args["search"] = "%" + f.Search + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := "SELECT count(*) FROM menu_items" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM menu_items" + whereClause + " ORDER BY name ASC"
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

	var items []model.MenuItem
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) FindExtras(ctx context.Context) ([]model.Extra, error) {
	var extras []model.Extra
	err := r.DB.SelectContext(ctx, &extras,
		`SELECT * FROM extras WHERE is_active = true ORDER BY name ASC`)
	return extras, err
}

func (r *PGRepository) FindCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.DB.SelectContext(ctx, &categories,
		`SELECT * FROM categories WHERE is_active = true ORDER BY sort_order ASC, name ASC`)
	return categories, err
}

func (r *PGRepository) UpdateAvailability(ctx context.Context, id string, available bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE menu_items SET available = $2, updated_at = now() WHERE id = $1`, id, available)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound("menu item", id)
	}
	return nil
}
