package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "spendwise-server/src/db/sql"
	"spendwise-server/src/handlers"
	"spendwise-server/src/middleware"
	"spendwise-server/src/service"
)

func NewRouter(pool *pgxpool.Pool, mailer service.Mailer, debug bool) *chi.Mux {
	store := &db.Store{Pool: pool}
	otpManager := service.NewOTPManager(store, store, mailer)
	aggregator := service.NewDashboardAggregator(store)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", handlers.Register(pool))
		r.Post("/auth/login", handlers.Login(pool))
		r.Post("/auth/refresh", handlers.Refresh(pool))
		r.Post("/auth/request-password-reset", handlers.RequestPasswordReset(otpManager, debug))
		r.Post("/auth/verify-otp", handlers.VerifyOTP(otpManager, debug))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// User
			r.Get("/user", handlers.GetUser(pool))
			r.Post("/user/change-password", handlers.ChangePassword(pool))
			r.Delete("/user", handlers.DeleteUser(pool))

			// Categories
			r.Post("/categories", handlers.CreateCategory(pool))
			r.Get("/categories", handlers.GetAllCategories(pool))
			r.Get("/categories/{category_id}", handlers.GetCategory(pool))
			r.Put("/categories/{category_id}", handlers.UpdateCategory(pool))
			r.Delete("/categories/{category_id}", handlers.DeleteCategory(pool))

			// Expenses
			r.Post("/expenses", handlers.CreateExpense(pool))
			r.Get("/expenses", handlers.GetAllExpenses(pool))
			r.Get("/expenses/dashboard", handlers.Dashboard(aggregator))
			r.Get("/expenses/{expense_id}", handlers.GetExpense(pool))
			r.Put("/expenses/{expense_id}", handlers.UpdateExpense(pool))
			r.Delete("/expenses/{expense_id}", handlers.DeleteExpense(pool))
		})
	})

	return r
}
