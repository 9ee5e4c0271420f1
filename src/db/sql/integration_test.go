package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdb "spendwise-server/src/db"
	"spendwise-server/src/models"
)

// These tests need a real Postgres because the constraints they exercise
// (RESTRICT on expenses.category_id, ownership pre-checks) live in SQL.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database tests")
	}

	pool, err := appdb.Connect(url)
	require.NoError(t, err)
	require.NoError(t, appdb.RunMigrations(url))
	t.Cleanup(pool.Close)
	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool) *models.RegisterResponse {
	t.Helper()
	name := fmt.Sprintf("it_%d", time.Now().UnixNano())
	req := models.RegisterRequest{Username: name, Email: name + "@example.com"}
	user, err := CreateUser(context.Background(), pool, req, "not-a-real-hash")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = DeleteUser(context.Background(), pool, user.ID)
	})
	return user
}

func TestDeleteCategoryWithExpensesFailsWithConflict(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	user := createTestUser(t, pool)

	cat, err := CreateCategory(ctx, pool, user.ID, "Integration")
	require.NoError(t, err)

	expense, err := CreateExpense(ctx, pool, &models.Expense{
		UserID:      user.ID,
		CategoryID:  &cat.ID,
		Amount:      12.50,
		Description: "lunch",
		Date:        time.Now(),
	})
	require.NoError(t, err)

	err = DeleteCategory(ctx, pool, user.ID, cat.ID)
	assert.ErrorIs(t, err, models.ErrCategoryInUse)

	// Once the expense is gone the delete goes through.
	require.NoError(t, DeleteExpense(ctx, pool, user.ID, expense.ID))
	assert.NoError(t, DeleteCategory(ctx, pool, user.ID, cat.ID))
}

func TestExpenseRejectsCategoryOwnedByAnotherUser(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	owner := createTestUser(t, pool)
	other := createTestUser(t, pool)

	cat, err := CreateCategory(ctx, pool, owner.ID, "Private")
	require.NoError(t, err)

	_, err = CreateExpense(ctx, pool, &models.Expense{
		UserID:      other.ID,
		CategoryID:  &cat.ID,
		Amount:      5,
		Description: "coffee",
		Date:        time.Now(),
	})
	assert.ErrorIs(t, err, models.ErrInvalidCategory)

	// Reassigning an existing expense to a foreign category fails the same way.
	expense, err := CreateExpense(ctx, pool, &models.Expense{
		UserID:      other.ID,
		Amount:      5,
		Description: "coffee",
		Date:        time.Now(),
	})
	require.NoError(t, err)

	expense.CategoryID = &cat.ID
	_, err = UpdateExpense(ctx, pool, expense)
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestDeleteUserWithCategorizedExpenses(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	user := createTestUser(t, pool)

	// Registration seeds default categories; file an expense against one so
	// the delete has to clear expenses before categories.
	categories, err := GetAllCategoriesForUser(ctx, pool, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	_, err = CreateExpense(ctx, pool, &models.Expense{
		UserID:      user.ID,
		CategoryID:  &categories[0].ID,
		Amount:      99.99,
		Description: "groceries",
		Date:        time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, DeleteUser(ctx, pool, user.ID))

	_, err = GetUserByID(user.ID, pool)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	remaining, err := GetAllCategoriesForUser(ctx, pool, user.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	expenses, err := GetAllExpensesForUser(ctx, pool, user.ID)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}
