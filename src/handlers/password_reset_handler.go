package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"spendwise-server/src/models"
	"spendwise-server/src/service"
)

// RequestPasswordReset issues a fresh OTP and mails it to the account's
// address.
func RequestPasswordReset(manager *service.OTPManager, debug bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode password reset request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		err := manager.RequestReset(r.Context(), req.Email)
		switch {
		case err == nil:
			log.Printf("INFO: Password reset OTP sent - Email: %s", req.Email)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "OTP has been sent to your email"})
		case errors.Is(err, models.ErrMissingFields):
			http.Error(w, "Email is required", http.StatusBadRequest)
		case errors.Is(err, models.ErrUserNotFound):
			log.Printf("ERROR: Password reset requested for unknown email: %s", req.Email)
			http.Error(w, "No user found with this email address", http.StatusNotFound)
		case errors.Is(err, models.ErrDeliveryFailed):
			log.Printf("ERROR: Failed to send OTP email to %s: %v", req.Email, err)
			writeInternalError(w, "Failed to send OTP email. Please try again later.", err, debug)
		default:
			log.Printf("ERROR: Password reset failed for %s: %v", req.Email, err)
			writeInternalError(w, "Failed to process password reset. Please try again later.", err, debug)
		}
	}
}

// VerifyOTP consumes a reset code and overwrites the account password.
func VerifyOTP(manager *service.OTPManager, debug bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email       string `json:"email"`
			OTP         string `json:"otp"`
			NewPassword string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode verify otp request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		err := manager.VerifyAndReset(r.Context(), req.Email, req.OTP, req.NewPassword)
		switch {
		case err == nil:
			log.Printf("INFO: Password reset successful - Email: %s", req.Email)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Password has been reset successfully"})
		case errors.Is(err, models.ErrMissingFields):
			http.Error(w, "Email, OTP, and new password are required", http.StatusBadRequest)
		case errors.Is(err, models.ErrUserNotFound):
			log.Printf("ERROR: OTP verify for unknown email: %s", req.Email)
			http.Error(w, "Invalid email", http.StatusNotFound)
		case errors.Is(err, models.ErrInvalidOTP):
			log.Printf("ERROR: Invalid OTP for email: %s", req.Email)
			http.Error(w, "Invalid or expired OTP", http.StatusBadRequest)
		case errors.Is(err, models.ErrOTPExpired):
			log.Printf("ERROR: Expired OTP for email: %s", req.Email)
			http.Error(w, "OTP has expired", http.StatusBadRequest)
		default:
			log.Printf("ERROR: Password reset failed for %s: %v", req.Email, err)
			writeInternalError(w, "Failed to reset password. Please try again later.", err, debug)
		}
	}
}

// writeInternalError reports a 500 with the underlying detail only when
// debug mode is on.
func writeInternalError(w http.ResponseWriter, msg string, err error, debug bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	body := map[string]string{"error": msg}
	if debug {
		body["detail"] = err.Error()
	}
	json.NewEncoder(w).Encode(body)
}
