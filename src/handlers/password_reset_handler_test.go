package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise-server/src/models"
	"spendwise-server/src/service"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

type fakeOTPStore struct {
	otps      []models.PasswordResetOTP
	passwords map[int]string
}

func (s *fakeOTPStore) CreateOTP(_ context.Context, userID int, code string, createdAt time.Time) (*models.PasswordResetOTP, error) {
	otp := models.PasswordResetOTP{ID: len(s.otps) + 1, UserID: userID, OTP: code, CreatedAt: createdAt}
	s.otps = append(s.otps, otp)
	return &otp, nil
}

func (s *fakeOTPStore) GetLatestUnusedOTP(_ context.Context, userID int, code string) (*models.PasswordResetOTP, error) {
	for i := len(s.otps) - 1; i >= 0; i-- {
		if s.otps[i].UserID == userID && s.otps[i].OTP == code && !s.otps[i].IsUsed {
			return &s.otps[i], nil
		}
	}
	return nil, models.ErrInvalidOTP
}

func (s *fakeOTPStore) ResetPassword(_ context.Context, userID int, hashedPassword string, otpID int) error {
	if s.passwords == nil {
		s.passwords = make(map[int]string)
	}
	s.passwords[userID] = hashedPassword
	for i := range s.otps {
		if s.otps[i].ID == otpID {
			s.otps[i].IsUsed = true
		}
	}
	return nil
}

type fakeMailer struct {
	sent int
	fail bool
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent++
	return nil
}

func newTestManager() (*service.OTPManager, *fakeOTPStore, *fakeMailer) {
	users := &fakeUserStore{users: map[string]*models.User{
		"alice@example.com": {ID: 1, Username: "alice", Email: "alice@example.com"},
	}}
	otps := &fakeOTPStore{}
	mailer := &fakeMailer{}
	manager := service.NewOTPManager(users, otps, mailer)
	return manager, otps, mailer
}

func TestRequestPasswordResetOK(t *testing.T) {
	manager, otps, mailer := newTestManager()
	handler := RequestPasswordReset(manager, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/request-password-reset", strings.NewReader(`{"email":"alice@example.com"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, mailer.sent)
	assert.Len(t, otps.otps, 1)
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	manager, _, _ := newTestManager()
	handler := RequestPasswordReset(manager, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/request-password-reset", strings.NewReader(`{"email":"nobody@example.com"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestPasswordResetMissingEmail(t *testing.T) {
	manager, _, _ := newTestManager()
	handler := RequestPasswordReset(manager, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/request-password-reset", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestPasswordResetDeliveryFailure(t *testing.T) {
	manager, otps, mailer := newTestManager()
	mailer.fail = true
	handler := RequestPasswordReset(manager, true)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/request-password-reset", strings.NewReader(`{"email":"alice@example.com"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// The record stays persisted despite the failed send.
	assert.Len(t, otps.otps, 1)

	// Debug mode surfaces the detail field.
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["detail"])
}

func TestVerifyOTPMissingFields(t *testing.T) {
	manager, _, _ := newTestManager()
	handler := VerifyOTP(manager, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-otp", strings.NewReader(`{"email":"alice@example.com","otp":"123456"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyOTPRoundTrip(t *testing.T) {
	manager, otps, _ := newTestManager()

	requestReset := RequestPasswordReset(manager, false)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/request-password-reset", strings.NewReader(`{"email":"alice@example.com"}`))
	rec := httptest.NewRecorder()
	requestReset(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, otps.otps, 1)
	code := otps.otps[0].OTP

	verify := VerifyOTP(manager, false)
	payload := `{"email":"alice@example.com","otp":"` + code + `","new_password":"N3wPass!word"}`
	req = httptest.NewRequest(http.MethodPost, "/api/auth/verify-otp", strings.NewReader(payload))
	rec = httptest.NewRecorder()
	verify(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, otps.otps[0].IsUsed)
	assert.NotEmpty(t, otps.passwords[1])

	// Replaying the consumed code fails.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/verify-otp", strings.NewReader(payload))
	rec = httptest.NewRecorder()
	verify(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	manager, _, _ := newTestManager()
	handler := VerifyOTP(manager, false)

	payload := `{"email":"alice@example.com","otp":"000000","new_password":"N3wPass!word"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-otp", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
