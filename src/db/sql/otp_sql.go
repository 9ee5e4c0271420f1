package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"spendwise-server/src/models"
)

func CreateOTP(ctx context.Context, pool *pgxpool.Pool, userID int, code string, createdAt time.Time) (*models.PasswordResetOTP, error) {
	query := `
		INSERT INTO password_reset_otps (user_id, otp, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, otp, is_used, created_at
	`
	var o models.PasswordResetOTP
	err := pool.QueryRow(ctx, query, userID, code, createdAt).
		Scan(&o.ID, &o.UserID, &o.OTP, &o.IsUsed, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create otp: %w", err)
	}
	return &o, nil
}

// GetLatestUnusedOTP returns the most recently created unused record for
// (user, code). Older matching records stay untouched.
func GetLatestUnusedOTP(ctx context.Context, pool *pgxpool.Pool, userID int, code string) (*models.PasswordResetOTP, error) {
	query := `
		SELECT id, user_id, otp, is_used, created_at
		FROM password_reset_otps
		WHERE user_id = $1 AND otp = $2 AND is_used = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
	var o models.PasswordResetOTP
	err := pool.QueryRow(ctx, query, userID, code).
		Scan(&o.ID, &o.UserID, &o.OTP, &o.IsUsed, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrInvalidOTP
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &o, nil
}

// ResetPassword overwrites the user's password hash and marks the OTP used
// in a single transaction, so a consumed code can never replay against the
// old password.
func ResetPassword(ctx context.Context, pool *pgxpool.Pool, userID int, hashedPassword string, otpID int) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hashedPassword, userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	cmd, err := tx.Exec(ctx, `UPDATE password_reset_otps SET is_used = TRUE WHERE id = $1 AND is_used = FALSE`, otpID)
	if err != nil {
		return fmt.Errorf("failed to mark otp used: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		// Lost a race with a concurrent verify on the same code.
		return models.ErrInvalidOTP
	}

	return tx.Commit(ctx)
}
