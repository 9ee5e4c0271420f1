package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// authed mimics what JWTAuthMiddleware puts on the request context.
func authed(r *http.Request, userID int64) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "user_id", userID))
}

// Validation failures must reject before any store access, so a nil pool is
// safe here.
func TestCreateExpenseRejectsNonPositiveAmount(t *testing.T) {
	handler := CreateExpense(nil)

	for _, payload := range []string{
		`{"amount":0,"description":"coffee","date":"2025-03-14"}`,
		`{"amount":-12.50,"description":"coffee","date":"2025-03-14"}`,
	} {
		req := authed(httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(payload)), 1)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "payload %s", payload)
		assert.Contains(t, rec.Body.String(), "amount")
	}
}

func TestCreateExpenseRejectsBadDate(t *testing.T) {
	handler := CreateExpense(nil)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(`{"amount":10,"description":"coffee","date":"14/03/2025"}`)), 1)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateExpenseRejectsMissingDescription(t *testing.T) {
	handler := CreateExpense(nil)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(`{"amount":10,"date":"2025-03-14"}`)), 1)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCategoryRejectsEmptyName(t *testing.T) {
	handler := CreateCategory(nil)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"  "}`)), 1)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
