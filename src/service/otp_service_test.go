package service

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"spendwise-server/src/models"
)

type memUserStore struct {
	users map[string]*models.User
}

func (s *memUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

type memOTPStore struct {
	otps      []models.PasswordResetOTP
	passwords map[int]string
	nextID    int
	resetErr  error
}

func (s *memOTPStore) CreateOTP(_ context.Context, userID int, code string, createdAt time.Time) (*models.PasswordResetOTP, error) {
	s.nextID++
	otp := models.PasswordResetOTP{
		ID:        s.nextID,
		UserID:    userID,
		OTP:       code,
		CreatedAt: createdAt,
	}
	s.otps = append(s.otps, otp)
	return &otp, nil
}

func (s *memOTPStore) GetLatestUnusedOTP(_ context.Context, userID int, code string) (*models.PasswordResetOTP, error) {
	var matches []models.PasswordResetOTP
	for _, otp := range s.otps {
		if otp.UserID == userID && otp.OTP == code && !otp.IsUsed {
			matches = append(matches, otp)
		}
	}
	if len(matches) == 0 {
		return nil, models.ErrInvalidOTP
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	return &matches[0], nil
}

func (s *memOTPStore) ResetPassword(_ context.Context, userID int, hashedPassword string, otpID int) error {
	if s.resetErr != nil {
		return s.resetErr
	}
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

type memMailer struct {
	sent    []string
	sendErr error
}

func (m *memMailer) Send(to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, to)
	return nil
}

type OTPManagerTestSuite struct {
	suite.Suite
	users   *memUserStore
	otps    *memOTPStore
	mailer  *memMailer
	manager *OTPManager
	now     time.Time
}

func (suite *OTPManagerTestSuite) SetupTest() {
	suite.now = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	suite.users = &memUserStore{users: map[string]*models.User{
		"alice@example.com": {ID: 1, Username: "alice", Email: "alice@example.com"},
	}}
	suite.otps = &memOTPStore{}
	suite.mailer = &memMailer{}
	suite.manager = &OTPManager{
		Users:  suite.users,
		OTPs:   suite.otps,
		Mailer: suite.mailer,
		Rand:   rand.New(rand.NewSource(42)),
		Now:    func() time.Time { return suite.now },
	}
}

func (suite *OTPManagerTestSuite) TestGenerateCodeIsSixDigits() {
	for i := 0; i < 100; i++ {
		code := suite.manager.generateCode()
		require.Len(suite.T(), code, 6)
		for _, c := range code {
			assert.True(suite.T(), c >= '0' && c <= '9', "unexpected rune %q in code %s", c, code)
		}
	}
}

func (suite *OTPManagerTestSuite) TestRequestResetUnknownEmail() {
	err := suite.manager.RequestReset(context.Background(), "nobody@example.com")
	assert.ErrorIs(suite.T(), err, models.ErrUserNotFound)
	assert.Empty(suite.T(), suite.otps.otps)
}

func (suite *OTPManagerTestSuite) TestRequestResetMissingEmail() {
	err := suite.manager.RequestReset(context.Background(), "")
	assert.ErrorIs(suite.T(), err, models.ErrMissingFields)
}

func (suite *OTPManagerTestSuite) TestRequestResetPersistsAndSends() {
	err := suite.manager.RequestReset(context.Background(), "alice@example.com")
	require.NoError(suite.T(), err)

	require.Len(suite.T(), suite.otps.otps, 1)
	otp := suite.otps.otps[0]
	assert.Equal(suite.T(), 1, otp.UserID)
	assert.Len(suite.T(), otp.OTP, 6)
	assert.False(suite.T(), otp.IsUsed)
	assert.Equal(suite.T(), suite.now, otp.CreatedAt)
	assert.Equal(suite.T(), []string{"alice@example.com"}, suite.mailer.sent)
}

func (suite *OTPManagerTestSuite) TestRequestResetDeliveryFailureKeepsRecord() {
	suite.mailer.sendErr = errors.New("smtp down")

	err := suite.manager.RequestReset(context.Background(), "alice@example.com")
	assert.ErrorIs(suite.T(), err, models.ErrDeliveryFailed)

	// The OTP record survives the failed dispatch.
	assert.Len(suite.T(), suite.otps.otps, 1)
}

func (suite *OTPManagerTestSuite) TestRequestResetTwiceKeepsBothRecords() {
	require.NoError(suite.T(), suite.manager.RequestReset(context.Background(), "alice@example.com"))
	suite.now = suite.now.Add(time.Minute)
	require.NoError(suite.T(), suite.manager.RequestReset(context.Background(), "alice@example.com"))

	assert.Len(suite.T(), suite.otps.otps, 2)
}

func (suite *OTPManagerTestSuite) TestVerifyMissingFields() {
	for _, tc := range []struct{ email, code, password string }{
		{"", "123456", "N3wPass!word"},
		{"alice@example.com", "", "N3wPass!word"},
		{"alice@example.com", "123456", ""},
	} {
		err := suite.manager.VerifyAndReset(context.Background(), tc.email, tc.code, tc.password)
		assert.ErrorIs(suite.T(), err, models.ErrMissingFields)
	}
}

func (suite *OTPManagerTestSuite) TestVerifyUnknownEmail() {
	err := suite.manager.VerifyAndReset(context.Background(), "nobody@example.com", "123456", "N3wPass!word")
	assert.ErrorIs(suite.T(), err, models.ErrUserNotFound)
}

func (suite *OTPManagerTestSuite) TestVerifyWrongCode() {
	require.NoError(suite.T(), suite.manager.RequestReset(context.Background(), "alice@example.com"))

	err := suite.manager.VerifyAndReset(context.Background(), "alice@example.com", "000000", "N3wPass!word")
	assert.ErrorIs(suite.T(), err, models.ErrInvalidOTP)
}

func (suite *OTPManagerTestSuite) TestVerifyResetsPasswordAndConsumesOTP() {
	require.NoError(suite.T(), suite.manager.RequestReset(context.Background(), "alice@example.com"))
	code := suite.otps.otps[0].OTP

	err := suite.manager.VerifyAndReset(context.Background(), "alice@example.com", code, "N3wPass!word")
	require.NoError(suite.T(), err)

	hashed := suite.otps.passwords[1]
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(hashed), []byte("N3wPass!word")))
	assert.True(suite.T(), suite.otps.otps[0].IsUsed)

	// A consumed code never verifies again, even inside its time window.
	err = suite.manager.VerifyAndReset(context.Background(), "alice@example.com", code, "An0ther!Pass")
	assert.ErrorIs(suite.T(), err, models.ErrInvalidOTP)
}

func (suite *OTPManagerTestSuite) TestVerifyValidAtExactExpiryBoundary() {
	require.NoError(suite.T(), suite.manager.RequestReset(context.Background(), "alice@example.com"))
	code := suite.otps.otps[0].OTP

	suite.now = suite.now.Add(10 * time.Minute)
	err := suite.manager.VerifyAndReset(context.Background(), "alice@example.com", code, "N3wPass!word")
	assert.NoError(suite.T(), err)
}

func (suite *OTPManagerTestSuite) TestVerifyExpiredCode() {
	require.NoError(suite.T(), suite.manager.RequestReset(context.Background(), "alice@example.com"))
	code := suite.otps.otps[0].OTP

	suite.now = suite.now.Add(10*time.Minute + time.Second)
	err := suite.manager.VerifyAndReset(context.Background(), "alice@example.com", code, "N3wPass!word")
	assert.ErrorIs(suite.T(), err, models.ErrOTPExpired)

	// The record stays unused; it can still never verify because it expired.
	assert.False(suite.T(), suite.otps.otps[0].IsUsed)
}

func (suite *OTPManagerTestSuite) TestVerifyUsesLatestOfTwoCodes() {
	require.NoError(suite.T(), suite.manager.RequestReset(context.Background(), "alice@example.com"))
	suite.now = suite.now.Add(2 * time.Minute)
	require.NoError(suite.T(), suite.manager.RequestReset(context.Background(), "alice@example.com"))

	require.Len(suite.T(), suite.otps.otps, 2)
	latest := suite.otps.otps[1].OTP

	// The second (latest) code verifies even though the first is still
	// unexpired.
	err := suite.manager.VerifyAndReset(context.Background(), "alice@example.com", latest, "N3wPass!word")
	assert.NoError(suite.T(), err)
}

func TestOTPManagerTestSuite(t *testing.T) {
	suite.Run(t, new(OTPManagerTestSuite))
}
