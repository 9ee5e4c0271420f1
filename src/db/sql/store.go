package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"spendwise-server/src/models"
)

// Store adapts the package-level queries to the interfaces the service
// layer consumes.
type Store struct {
	Pool *pgxpool.Pool
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return GetUserByEmail(ctx, s.Pool, email)
}

func (s *Store) CreateOTP(ctx context.Context, userID int, code string, createdAt time.Time) (*models.PasswordResetOTP, error) {
	return CreateOTP(ctx, s.Pool, userID, code, createdAt)
}

func (s *Store) GetLatestUnusedOTP(ctx context.Context, userID int, code string) (*models.PasswordResetOTP, error) {
	return GetLatestUnusedOTP(ctx, s.Pool, userID, code)
}

func (s *Store) ResetPassword(ctx context.Context, userID int, hashedPassword string, otpID int) error {
	return ResetPassword(ctx, s.Pool, userID, hashedPassword, otpID)
}

func (s *Store) TotalExpenses(ctx context.Context, userID int) (float64, error) {
	return TotalExpenses(ctx, s.Pool, userID)
}

func (s *Store) MonthTotal(ctx context.Context, userID, year int, month time.Month) (float64, error) {
	return MonthTotal(ctx, s.Pool, userID, year, month)
}

func (s *Store) CategoryMonthTotals(ctx context.Context, userID, year int, month time.Month) ([]models.CategoryExpense, error) {
	return CategoryMonthTotals(ctx, s.Pool, userID, year, month)
}

func (s *Store) RecentExpenses(ctx context.Context, userID, limit int) ([]models.Expense, error) {
	return RecentExpenses(ctx, s.Pool, userID, limit)
}
