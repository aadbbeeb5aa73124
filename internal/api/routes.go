package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Investment and ledger routes
	api.HandleFunc("/investments", handler.GetInvestments).Methods("GET")
	api.HandleFunc("/investments", handler.CreateInvestment).Methods("POST")
	api.HandleFunc("/investments/{id}/entries", handler.GetLedgerEntries).Methods("GET")
	api.HandleFunc("/investments/{id}/entries", handler.CreateLedgerEntry).Methods("POST")
	api.HandleFunc("/investments/{id}/holding", handler.GetHolding).Methods("GET")

	// Obligation routes
	api.HandleFunc("/obligations", handler.GetObligations).Methods("GET")
	api.HandleFunc("/obligations", handler.CreateObligation).Methods("POST")
	api.HandleFunc("/obligations/sync", handler.SyncObligations).Methods("POST")
	api.HandleFunc("/obligations/{id}/paid", handler.SetObligationPaid).Methods("PUT")
	api.HandleFunc("/obligations/{id}/installments", handler.GetInstallments).Methods("GET")
	api.HandleFunc("/obligations/{id}/installments", handler.CreateInstallments).Methods("POST")
	api.HandleFunc("/installments/{id}/paid", handler.SetInstallmentPaid).Methods("PUT")

	// Alert routes
	api.HandleFunc("/alerts", handler.GetAlerts).Methods("GET")
	api.HandleFunc("/alerts", handler.CreateAlert).Methods("POST")
	api.HandleFunc("/alerts/evaluate", handler.EvaluateAlerts).Methods("POST")
	api.HandleFunc("/alerts/{id}", handler.DeleteAlert).Methods("DELETE")

	// Goal routes
	api.HandleFunc("/goals", handler.GetGoals).Methods("GET")
	api.HandleFunc("/goals", handler.CreateGoal).Methods("POST")
	api.HandleFunc("/goals/projections", handler.GetGoalProjections).Methods("GET")
	api.HandleFunc("/goals/{id}/progress", handler.UpdateGoalProgress).Methods("PUT")

	// Scenario routes
	api.HandleFunc("/whatif", handler.RunWhatIf).Methods("POST")

	return r
}
