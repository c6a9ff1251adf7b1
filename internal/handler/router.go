package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/sacco-engine/pkg/response"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Routes groups what NewRouter mounts.
type Routes struct {
	Loans   *LoanHandler
	Members *MemberHandler
	Health  *HealthHandler

	// Global runs on every request, health probes included.
	Global []Middleware
	// API runs on every /api/v1 request, authentication first.
	API []Middleware
	// Admin gates the routes that move money or change loan state.
	Admin Middleware
}

func NewRouter(routes Routes) *mux.Router {
	router := mux.NewRouter()
	for _, m := range routes.Global {
		router.Use(mux.MiddlewareFunc(m))
	}
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	// Health check
	router.HandleFunc("/health", routes.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", routes.Health.Ready).Methods(http.MethodGet)

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	for _, m := range routes.API {
		api.Use(mux.MiddlewareFunc(m))
	}

	admin := func(h http.HandlerFunc) http.Handler {
		if routes.Admin == nil {
			return h
		}
		return routes.Admin(h)
	}

	loans := routes.Loans
	api.HandleFunc("/loans/preview", loans.PreviewLoan).Methods(http.MethodPost)
	api.Handle("/loans/import", admin(loans.ImportLoans)).Methods(http.MethodPost)
	api.HandleFunc("/loans", loans.CreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}", loans.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/schedule", loans.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/payments", loans.ListPayments).Methods(http.MethodGet)
	api.Handle("/loans/{loanId}/payments", admin(loans.MakePayment)).Methods(http.MethodPost)
	api.Handle("/loans/{loanId}/approve", admin(loans.ApproveLoan)).Methods(http.MethodPost)
	api.Handle("/loans/{loanId}/reject", admin(loans.RejectLoan)).Methods(http.MethodPost)
	api.Handle("/loans/{loanId}/status", admin(loans.SetStatus)).Methods(http.MethodPut)

	members := routes.Members
	api.HandleFunc("/members/{memberId}/eligibility", members.Eligibility).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberId}/loans", loans.ListMemberLoans).Methods(http.MethodGet)
	api.Handle("/members/{memberId}/deposits", admin(members.Deposit)).Methods(http.MethodPost)
	api.Handle("/members/{memberId}/dividends", admin(members.PayDividend)).Methods(http.MethodPost)

	return router
}
