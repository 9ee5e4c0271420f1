package models

import "time"

// PasswordResetOTP is a single emailed reset code. Several may exist per
// user; verification only ever considers the most recent unused one.
type PasswordResetOTP struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	OTP       string    `json:"-"`
	IsUsed    bool      `json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}
