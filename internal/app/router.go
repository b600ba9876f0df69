package app

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/bizledger/cashbank/internal/config"
	"github.com/bizledger/cashbank/internal/handlers"
	"github.com/bizledger/cashbank/internal/logging"
	mW "github.com/bizledger/cashbank/internal/middleware"
)

// NewRouter mounts the cash & bank API under /api/v1.
func NewRouter(
	cfg *config.Config,
	log logrus.FieldLogger,
	cashBank *handlers.CashBankHandler,
	accounts *handlers.AccountHandler,
	qr *handlers.QRHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-UPI-URI"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mW.NewAuthMiddleware([]byte(cfg.JWT.SecretKey)))

		r.Route("/cash-bank", func(r chi.Router) {
			r.Get("/transactions/dashboard", cashBank.Dashboard)
			r.Get("/transactions", cashBank.ListTransactions)
			r.Post("/transactions", cashBank.CreateTransaction)
			r.Post("/adjustments", cashBank.CreateAdjustment)
			r.Post("/transfers", cashBank.CreateTransfer)

			r.Get("/accounts", accounts.ListAccounts)
			r.Post("/accounts", accounts.CreateBankAccount)
			r.Get("/accounts/{accountId}", accounts.GetAccount)
			r.Get("/accounts/{accountId}/verify", accounts.VerifyAccount)
			r.Get("/accounts/{accountId}/upi-qr", qr.UPIQR)
		})
	})

	return r
}
