package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"spendwise-server/src/models"
)

// checkCategoryOwnership rejects a category id that does not exist or
// belongs to a different user.
func checkCategoryOwnership(ctx context.Context, pool *pgxpool.Pool, userID int, categoryID *int) error {
	if categoryID == nil {
		return nil
	}
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND user_id = $2)`
	if err := pool.QueryRow(ctx, query, *categoryID, userID).Scan(&ok); err != nil {
		return err
	}
	if !ok {
		return models.ErrInvalidCategory
	}
	return nil
}

func CreateExpense(ctx context.Context, pool *pgxpool.Pool, expense *models.Expense) (*models.Expense, error) {
	if expense.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if err := checkCategoryOwnership(ctx, pool, expense.UserID, expense.CategoryID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO expenses (user_id, category_id, amount, description, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, category_id, amount, description, date, created_at, updated_at
	`
	var e models.Expense
	err := pool.QueryRow(ctx, query, expense.UserID, expense.CategoryID, expense.Amount, expense.Description, expense.Date).
		Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &e.Description, &e.Date, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.CategoryName = categoryName(ctx, pool, e.CategoryID)
	return &e, nil
}

func GetExpenseByID(ctx context.Context, pool *pgxpool.Pool, userID, expenseID int) (*models.Expense, error) {
	query := `
		SELECT e.id, e.user_id, e.category_id, c.name, e.amount, e.description, e.date, e.created_at, e.updated_at
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.id = $1 AND e.user_id = $2
	`
	var e models.Expense
	err := pool.QueryRow(ctx, query, expenseID, userID).
		Scan(&e.ID, &e.UserID, &e.CategoryID, &e.CategoryName, &e.Amount, &e.Description, &e.Date, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func GetAllExpensesForUser(ctx context.Context, pool *pgxpool.Pool, userID int) ([]models.Expense, error) {
	query := `
		SELECT e.id, e.user_id, e.category_id, c.name, e.amount, e.description, e.date, e.created_at, e.updated_at
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1
		ORDER BY e.date DESC, e.created_at DESC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.CategoryName, &e.Amount, &e.Description, &e.Date, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func UpdateExpense(ctx context.Context, pool *pgxpool.Pool, expense *models.Expense) (*models.Expense, error) {
	if expense.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if err := checkCategoryOwnership(ctx, pool, expense.UserID, expense.CategoryID); err != nil {
		return nil, err
	}

	query := `
		UPDATE expenses
		SET category_id = $1, amount = $2, description = $3, date = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING id, user_id, category_id, amount, description, date, created_at, updated_at
	`
	var e models.Expense
	err := pool.QueryRow(ctx, query, expense.CategoryID, expense.Amount, expense.Description, expense.Date, expense.ID, expense.UserID).
		Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &e.Description, &e.Date, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	e.CategoryName = categoryName(ctx, pool, e.CategoryID)
	return &e, nil
}

func DeleteExpense(ctx context.Context, pool *pgxpool.Pool, userID, expenseID int) error {
	query := `DELETE FROM expenses WHERE id = $1 AND user_id = $2`
	cmd, err := pool.Exec(ctx, query, expenseID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func categoryName(ctx context.Context, pool *pgxpool.Pool, categoryID *int) *string {
	if categoryID == nil {
		return nil
	}
	var name string
	err := pool.QueryRow(ctx, `SELECT name FROM categories WHERE id = $1`, *categoryID).Scan(&name)
	if err != nil {
		return nil
	}
	return &name
}

// Dashboard aggregate queries.

func TotalExpenses(ctx context.Context, pool *pgxpool.Pool, userID int) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1`
	err := pool.QueryRow(ctx, query, userID).Scan(&total)
	return total, err
}

func MonthTotal(ctx context.Context, pool *pgxpool.Pool, userID, year int, month time.Month) (float64, error) {
	var total float64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = $1
		  AND EXTRACT(YEAR FROM date) = $2
		  AND EXTRACT(MONTH FROM date) = $3
	`
	err := pool.QueryRow(ctx, query, userID, year, int(month)).Scan(&total)
	return total, err
}

// CategoryMonthTotals returns every category the user owns with its total
// for the given month, including categories with no expenses.
func CategoryMonthTotals(ctx context.Context, pool *pgxpool.Pool, userID, year int, month time.Month) ([]models.CategoryExpense, error) {
	query := `
		SELECT c.name, COALESCE(SUM(e.amount), 0)
		FROM categories c
		LEFT JOIN expenses e
		       ON e.category_id = c.id
		      AND e.user_id = c.user_id
		      AND EXTRACT(YEAR FROM e.date) = $2
		      AND EXTRACT(MONTH FROM e.date) = $3
		WHERE c.user_id = $1
		GROUP BY c.id, c.name
		ORDER BY c.name
	`
	rows, err := pool.Query(ctx, query, userID, year, int(month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []models.CategoryExpense
	for rows.Next() {
		var ce models.CategoryExpense
		if err := rows.Scan(&ce.Category, &ce.Amount); err != nil {
			return nil, err
		}
		totals = append(totals, ce)
	}
	return totals, rows.Err()
}

func RecentExpenses(ctx context.Context, pool *pgxpool.Pool, userID, limit int) ([]models.Expense, error) {
	query := `
		SELECT e.id, e.user_id, e.category_id, c.name, e.amount, e.description, e.date, e.created_at, e.updated_at
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1
		ORDER BY e.date DESC, e.created_at DESC
		LIMIT $2
	`
	rows, err := pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.CategoryName, &e.Amount, &e.Description, &e.Date, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
