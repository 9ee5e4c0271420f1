package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"spendwise-server/src/models"
)

const otpValidityDuration = 10 * time.Minute

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type OTPStore interface {
	CreateOTP(ctx context.Context, userID int, code string, createdAt time.Time) (*models.PasswordResetOTP, error)
	GetLatestUnusedOTP(ctx context.Context, userID int, code string) (*models.PasswordResetOTP, error)
	ResetPassword(ctx context.Context, userID int, hashedPassword string, otpID int) error
}

type Mailer interface {
	Send(to, subject, body string) error
}

// OTPManager implements the email password-reset flow: issue a short-lived
// 6-digit code, then accept it once to overwrite the password.
type OTPManager struct {
	Users  UserStore
	OTPs   OTPStore
	Mailer Mailer
	Rand   *rand.Rand
	Now    func() time.Time
}

func NewOTPManager(users UserStore, otps OTPStore, mailer Mailer) *OTPManager {
	return &OTPManager{
		Users:  users,
		OTPs:   otps,
		Mailer: mailer,
		Rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:    time.Now,
	}
}

// generateCode draws six independent uniform digits. Collisions with codes
// issued earlier are allowed and never checked.
func (m *OTPManager) generateCode() string {
	const digits = "0123456789"
	code := make([]byte, 6)
	for i := range code {
		code[i] = digits[m.Rand.Intn(len(digits))]
	}
	return string(code)
}

// RequestReset issues a fresh OTP for the account behind email and mails
// it out. Previously issued codes stay valid until they expire or get used.
// The record is persisted before dispatch, so a delivery failure leaves it
// behind.
func (m *OTPManager) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return models.ErrMissingFields
	}

	user, err := m.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	code := m.generateCode()
	if _, err := m.OTPs.CreateOTP(ctx, user.ID, code, m.Now()); err != nil {
		return err
	}

	subject := "Password Reset OTP - Spendwise"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour OTP for password reset is: %s\n\nThis OTP will expire in 10 minutes.\n\nIf you didn't request this password reset, please ignore this email.\n\nBest regards,\nSpendwise Team\n",
		user.Username, code,
	)
	if err := m.Mailer.Send(user.Email, subject, body); err != nil {
		return fmt.Errorf("%w: %v", models.ErrDeliveryFailed, err)
	}

	return nil
}

// VerifyAndReset consumes the most recently issued unused code matching
// (email, code) and overwrites the account password. A consumed code is
// invalid forever, no matter how much of its window remains.
func (m *OTPManager) VerifyAndReset(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return models.ErrMissingFields
	}

	user, err := m.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	otp, err := m.OTPs.GetLatestUnusedOTP(ctx, user.ID, code)
	if err != nil {
		return err
	}

	if m.Now().After(otp.CreatedAt.Add(otpValidityDuration)) {
		return models.ErrOTPExpired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return m.OTPs.ResetPassword(ctx, user.ID, string(hashed), otp.ID)
}
