package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cache "spendwise-server/src/db"
	db "spendwise-server/src/db/sql"
	"spendwise-server/src/models"
	"spendwise-server/src/service"
	"spendwise-server/src/util"
)

type expenseRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CategoryID  *int    `json:"category"`
}

// parseExpenseRequest validates the payload before anything touches the
// store.
func parseExpenseRequest(r *http.Request, userID int) (*models.Expense, string) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "invalid request"
	}
	if !util.ValidateAmount(req.Amount) {
		return nil, "amount must be greater than 0"
	}
	if req.Description == "" {
		return nil, "description is required"
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, "date must be in YYYY-MM-DD format"
	}

	return &models.Expense{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Amount:      math.Round(req.Amount*100) / 100,
		Description: req.Description,
		Date:        date,
	}, ""
}

func CreateExpense(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		expense, msg := parseExpenseRequest(r, int(userID))
		if msg != "" {
			log.Printf("ERROR: Invalid create expense request for user %d: %s", userID, msg)
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		created, err := db.CreateExpense(r.Context(), pool, expense)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCategory) {
				log.Printf("ERROR: Invalid category for user %d", userID)
				http.Error(w, "invalid category selected", http.StatusBadRequest)
				return
			}
			if errors.Is(err, models.ErrInvalidAmount) {
				http.Error(w, "amount must be greater than 0", http.StatusBadRequest)
				return
			}
			log.Printf("ERROR: Failed to create expense for user %d: %v", userID, err)
			http.Error(w, "failed to create expense", http.StatusInternalServerError)
			return
		}

		cache.DelDashboardCache(int(userID))
		log.Printf("INFO: Created expense id %d for user %d", created.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetExpense(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		expenseIDStr := chi.URLParam(r, "expense_id")
		expenseID, err := strconv.Atoi(expenseIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid expense id param: %s", expenseIDStr)
			http.Error(w, "invalid expense id", http.StatusBadRequest)
			return
		}

		expense, err := db.GetExpenseByID(r.Context(), pool, int(userID), expenseID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				http.Error(w, "expense not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to get expense id %d for user %d: %v", expenseID, userID, err)
			http.Error(w, "failed to get expense", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expense)
	}
}

func GetAllExpenses(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		expenses, err := db.GetAllExpensesForUser(r.Context(), pool, int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get expenses for user %d: %v", userID, err)
			http.Error(w, "failed to get expenses", http.StatusInternalServerError)
			return
		}
		if expenses == nil {
			expenses = []models.Expense{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expenses)
	}
}

func UpdateExpense(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		expenseIDStr := chi.URLParam(r, "expense_id")
		expenseID, err := strconv.Atoi(expenseIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid expense id param: %s", expenseIDStr)
			http.Error(w, "invalid expense id", http.StatusBadRequest)
			return
		}

		expense, msg := parseExpenseRequest(r, int(userID))
		if msg != "" {
			log.Printf("ERROR: Invalid update expense request for user %d: %s", userID, msg)
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		expense.ID = expenseID

		updated, err := db.UpdateExpense(r.Context(), pool, expense)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrNotFound):
				http.Error(w, "expense not found", http.StatusNotFound)
			case errors.Is(err, models.ErrInvalidCategory):
				http.Error(w, "invalid category selected", http.StatusBadRequest)
			case errors.Is(err, models.ErrInvalidAmount):
				http.Error(w, "amount must be greater than 0", http.StatusBadRequest)
			default:
				log.Printf("ERROR: Failed to update expense id %d for user %d: %v", expenseID, userID, err)
				http.Error(w, "failed to update expense", http.StatusInternalServerError)
			}
			return
		}

		cache.DelDashboardCache(int(userID))
		log.Printf("INFO: Updated expense id %d for user %d", updated.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteExpense(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		expenseIDStr := chi.URLParam(r, "expense_id")
		expenseID, err := strconv.Atoi(expenseIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid expense id param: %s", expenseIDStr)
			http.Error(w, "invalid expense id", http.StatusBadRequest)
			return
		}

		err = db.DeleteExpense(r.Context(), pool, int(userID), expenseID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				http.Error(w, "expense not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to delete expense id %d for user %d: %v", expenseID, userID, err)
			http.Error(w, "failed to delete expense", http.StatusInternalServerError)
			return
		}

		cache.DelDashboardCache(int(userID))
		log.Printf("INFO: Deleted expense id %d for user %d", expenseID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "expense deleted"})
	}
}

// Dashboard serves the aggregate stats payload, cached per user until the
// next mutation or TTL expiry.
func Dashboard(aggregator *service.DashboardAggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		if stats, ok := cache.GetDashboardCache(int(userID)); ok {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(stats)
			return
		}

		stats, err := aggregator.Stats(r.Context(), int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to compute dashboard stats for user %d: %v", userID, err)
			http.Error(w, "failed to fetch dashboard statistics", http.StatusInternalServerError)
			return
		}

		cache.SetDashboardCache(int(userID), stats)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}
