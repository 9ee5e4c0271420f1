package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"spendwise-server/src/models"
)

func CreateCategory(ctx context.Context, pool *pgxpool.Pool, userID int, name string) (*models.Category, error) {
	query := `
		INSERT INTO categories (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, created_at, updated_at
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, userID, name).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrDuplicateCategory
		}
		return nil, err
	}
	return &c, nil
}

func GetCategoryByID(ctx context.Context, pool *pgxpool.Pool, userID, categoryID int) (*models.Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories WHERE id = $1 AND user_id = $2
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, categoryID, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func GetAllCategoriesForUser(ctx context.Context, pool *pgxpool.Pool, userID int) ([]models.Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories WHERE user_id = $1
		ORDER BY name
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func UpdateCategory(ctx context.Context, pool *pgxpool.Pool, userID, categoryID int, name string) (*models.Category, error) {
	query := `
		UPDATE categories
		SET name = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, name, created_at, updated_at
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, name, categoryID, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrDuplicateCategory
		}
		return nil, err
	}
	return &c, nil
}

// DeleteCategory removes a category unless any expense still references it.
// The FK on expenses.category_id is ON DELETE RESTRICT, so the pre-check and
// the constraint agree.
func DeleteCategory(ctx context.Context, pool *pgxpool.Pool, userID, categoryID int) error {
	var inUse bool
	check := `SELECT EXISTS (SELECT 1 FROM expenses WHERE category_id = $1 AND user_id = $2)`
	if err := pool.QueryRow(ctx, check, categoryID, userID).Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return models.ErrCategoryInUse
	}

	query := `DELETE FROM categories WHERE id = $1 AND user_id = $2`
	cmd, err := pool.Exec(ctx, query, categoryID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.ErrCategoryInUse
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
