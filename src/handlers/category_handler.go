package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cache "spendwise-server/src/db"
	db "spendwise-server/src/db/sql"
	"spendwise-server/src/models"
)

func CreateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create category request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		created, err := db.CreateCategory(r.Context(), pool, int(userID), req.Name)
		if err != nil {
			if errors.Is(err, models.ErrDuplicateCategory) {
				log.Printf("ERROR: Duplicate category %q for user %d", req.Name, userID)
				http.Error(w, "a category with this name already exists for your account", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to create category for user %d: %v", userID, err)
			http.Error(w, "failed to create category", http.StatusInternalServerError)
			return
		}

		cache.DelDashboardCache(int(userID))
		log.Printf("INFO: Created category id %d for user %d", created.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		categoryIDStr := chi.URLParam(r, "category_id")
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", categoryIDStr)
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}

		category, err := db.GetCategoryByID(r.Context(), pool, int(userID), categoryID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				http.Error(w, "category not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to get category id %d for user %d: %v", categoryID, userID, err)
			http.Error(w, "failed to get category", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(category)
	}
}

func GetAllCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		categories, err := db.GetAllCategoriesForUser(r.Context(), pool, int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get categories for user %d: %v", userID, err)
			http.Error(w, "failed to get categories", http.StatusInternalServerError)
			return
		}
		if categories == nil {
			categories = []models.Category{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(categories)
	}
}

func UpdateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		categoryIDStr := chi.URLParam(r, "category_id")
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", categoryIDStr)
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update category request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		updated, err := db.UpdateCategory(r.Context(), pool, int(userID), categoryID, req.Name)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrNotFound):
				http.Error(w, "category not found", http.StatusNotFound)
			case errors.Is(err, models.ErrDuplicateCategory):
				http.Error(w, "a category with this name already exists for your account", http.StatusConflict)
			default:
				log.Printf("ERROR: Failed to update category id %d for user %d: %v", categoryID, userID, err)
				http.Error(w, "failed to update category", http.StatusInternalServerError)
			}
			return
		}

		cache.DelDashboardCache(int(userID))
		log.Printf("INFO: Updated category id %d for user %d", updated.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		categoryIDStr := chi.URLParam(r, "category_id")
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", categoryIDStr)
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}

		err = db.DeleteCategory(r.Context(), pool, int(userID), categoryID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrCategoryInUse):
				log.Printf("ERROR: Category id %d for user %d still has expenses", categoryID, userID)
				http.Error(w, "cannot delete category with associated expenses; delete or reassign expenses first", http.StatusConflict)
			case errors.Is(err, models.ErrNotFound):
				http.Error(w, "category not found", http.StatusNotFound)
			default:
				log.Printf("ERROR: Failed to delete category id %d for user %d: %v", categoryID, userID, err)
				http.Error(w, "failed to delete category", http.StatusInternalServerError)
			}
			return
		}

		cache.DelDashboardCache(int(userID))
		log.Printf("INFO: Deleted category id %d for user %d", categoryID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "category deleted"})
	}
}
