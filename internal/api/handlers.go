package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/trogers1052/finance-tracker-system/internal/alerts"
	"github.com/trogers1052/finance-tracker-system/internal/ledger"
	"github.com/trogers1052/finance-tracker-system/internal/models"
	"github.com/trogers1052/finance-tracker-system/internal/projection"
	"github.com/trogers1052/finance-tracker-system/internal/scheduler"
	"github.com/trogers1052/finance-tracker-system/internal/whatif"
)

// Store defines the record-store operations the HTTP handlers need.
// Implemented by *database.DB.
type Store interface {
	CreateInvestment(inv *models.Investment) error
	GetInvestmentByID(id int) (*models.Investment, error)
	GetInvestmentsByUser(userID int) ([]*models.Investment, error)
	CreateLedgerEntry(e *models.LedgerEntry) error
	GetLedgerEntriesByInvestment(investmentID int) ([]models.LedgerEntry, error)

	CreateObligation(o *models.RecurringObligation) error
	GetObligationByID(id int) (*models.RecurringObligation, error)
	GetObligationsByUser(userID int) ([]*models.RecurringObligation, error)
	UpdateObligationPaid(id int, paid bool, paidDate *time.Time) error
	CreateInstallments(installments []models.Installment) error
	GetInstallmentsByObligation(obligationID int) ([]models.Installment, error)
	UpdateInstallmentPaid(id int, paid bool, paidDate *time.Time) error

	CreatePriceAlert(a *models.PriceAlert) error
	GetAlertsByUser(userID int) ([]*models.PriceAlert, error)
	DeletePriceAlert(id int) error

	CreateGoal(g *models.Goal) error
	GetActiveGoals(userID int) ([]*models.Goal, error)
	UpdateGoalCurrentAmount(id int, amount float64) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store     Store
	syncer    *scheduler.Syncer
	evaluator *alerts.Evaluator
	engine    *projection.Engine
	quotes    alerts.QuoteService
	logger    zerolog.Logger
}

// NewHandler creates a new Handler. quotes may be nil; holdings are then
// served without market-value enrichment.
func NewHandler(store Store, syncer *scheduler.Syncer, evaluator *alerts.Evaluator, engine *projection.Engine, quotes alerts.QuoteService, logger zerolog.Logger) *Handler {
	return &Handler{
		store:     store,
		syncer:    syncer,
		evaluator: evaluator,
		engine:    engine,
		quotes:    quotes,
		logger:    logger,
	}
}

// CreateInvestment handles POST /investments
func (h *Handler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    int    `json:"user_id"`
		Symbol    string `json:"symbol"`
		Name      string `json:"name"`
		AssetType string `json:"asset_type"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	if req.UserID <= 0 {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	inv := &models.Investment{
		UserID:    req.UserID,
		Symbol:    req.Symbol,
		Name:      req.Name,
		AssetType: req.AssetType,
	}
	if err := h.store.CreateInvestment(inv); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, inv)
}

// GetInvestments handles GET /investments
func (h *Handler) GetInvestments(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	investments, err := h.store.GetInvestmentsByUser(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, investments)
}

// CreateLedgerEntry handles POST /investments/{id}/entries
func (h *Handler) CreateLedgerEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req struct {
		EntryType  string    `json:"entry_type"`
		Quantity   float64   `json:"quantity"`
		Amount     float64   `json:"amount"`
		Fees       float64   `json:"fees"`
		Taxes      float64   `json:"taxes"`
		ExecutedAt time.Time `json:"executed_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch req.EntryType {
	case models.EntryTypeBuy, models.EntryTypeSell, models.EntryTypeSIP, models.EntryTypeFee:
	default:
		http.Error(w, "entry_type must be BUY, SELL, SIP or FEE", http.StatusBadRequest)
		return
	}
	if req.ExecutedAt.IsZero() {
		http.Error(w, "executed_at is required", http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetInvestmentByID(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	entry := &models.LedgerEntry{
		InvestmentID: id,
		EntryType:    req.EntryType,
		Quantity:     req.Quantity,
		Amount:       req.Amount,
		Fees:         req.Fees,
		Taxes:        req.Taxes,
		ExecutedAt:   req.ExecutedAt,
	}
	if err := h.store.CreateLedgerEntry(entry); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// GetLedgerEntries handles GET /investments/{id}/entries
func (h *Handler) GetLedgerEntries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.store.GetLedgerEntriesByInvestment(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

type holdingResponse struct {
	models.Holding
	Price         *float64 `json:"price,omitempty"`
	MarketValue   *float64 `json:"market_value,omitempty"`
	UnrealizedPnl *float64 `json:"unrealized_pnl,omitempty"`
}

// GetHolding handles GET /investments/{id}/holding. The position is folded
// from the full ledger on every request; an optional as_of query parameter
// (RFC 3339) bounds which entries are included.
func (h *Handler) GetHolding(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "as_of must be RFC 3339", http.StatusBadRequest)
			return
		}
	}

	inv, err := h.store.GetInvestmentByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	entries, err := h.store.GetLedgerEntriesByInvestment(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	holding := ledger.ComputeHolding(inv.ID, entries, asOf)
	holding.Symbol = inv.Symbol

	resp := holdingResponse{Holding: holding}
	if h.quotes != nil {
		quotes, err := h.quotes.GetQuotes(r.Context(), []string{inv.Symbol})
		if err != nil {
			h.logger.Warn().Err(err).Str("symbol", inv.Symbol).Msg("quote lookup failed, serving holding without market value")
		} else if q, ok := quotes[inv.Symbol]; ok {
			price := q.Price
			value := holding.MarketValue(price)
			pnl := holding.UnrealizedPnl(price)
			resp.Price = &price
			resp.MarketValue = &value
			resp.UnrealizedPnl = &pnl
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// CreateObligation handles POST /obligations
func (h *Handler) CreateObligation(w http.ResponseWriter, r *http.Request) {
	var o models.RecurringObligation
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if o.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if o.UserID <= 0 {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	switch o.Cadence {
	case models.CadenceMonthly, models.CadenceYearly, models.CadenceOneTime:
	default:
		http.Error(w, "cadence must be MONTHLY, YEARLY or ONE_TIME", http.StatusBadRequest)
		return
	}
	switch o.Kind {
	case models.ObligationSubscription, models.ObligationSIP, models.ObligationCommittee:
	default:
		http.Error(w, "kind must be SUBSCRIPTION, SIP or COMMITTEE", http.StatusBadRequest)
		return
	}
	if o.DueDate.IsZero() {
		http.Error(w, "due_date is required", http.StatusBadRequest)
		return
	}

	if err := h.store.CreateObligation(&o); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, &o)
}

// GetObligations handles GET /obligations
func (h *Handler) GetObligations(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	obligations, err := h.store.GetObligationsByUser(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, obligations)
}

// SetObligationPaid handles PUT /obligations/{id}/paid
func (h *Handler) SetObligationPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req struct {
		Paid bool `json:"paid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.store.GetObligationByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if req.Paid {
		scheduler.MarkPaid(o, time.Now())
	} else {
		scheduler.MarkUnpaid(o)
	}
	if err := h.store.UpdateObligationPaid(o.ID, o.Paid, o.PaidDate); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

// SyncObligations handles POST /obligations/sync
func (h *Handler) SyncObligations(w http.ResponseWriter, r *http.Request) {
	summary, err := h.syncer.SyncDueDates(r.Context(), time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// CreateInstallments handles POST /obligations/{id}/installments.
// The obligation's amount is split evenly over the requested months, with
// the final installment absorbing any rounding remainder.
func (h *Handler) CreateInstallments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req struct {
		Months int `json:"months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.store.GetObligationByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if o.Kind != models.ObligationCommittee {
		http.Error(w, "installments are only supported for COMMITTEE obligations", http.StatusBadRequest)
		return
	}

	installments, err := scheduler.BuildInstallments(o.ID, o.Amount, req.Months)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.CreateInstallments(installments); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, installments)
}

// GetInstallments handles GET /obligations/{id}/installments
func (h *Handler) GetInstallments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	installments, err := h.store.GetInstallmentsByObligation(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, installments)
}

// SetInstallmentPaid handles PUT /installments/{id}/paid
func (h *Handler) SetInstallmentPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req struct {
		Paid bool `json:"paid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var paidDate *time.Time
	if req.Paid {
		now := time.Now()
		paidDate = &now
	}
	if err := h.store.UpdateInstallmentPaid(id, req.Paid, paidDate); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateAlert handles POST /alerts
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var a models.PriceAlert
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if a.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	if a.UserID <= 0 {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if a.Direction != models.DirectionAbove && a.Direction != models.DirectionBelow {
		http.Error(w, "direction must be ABOVE or BELOW", http.StatusBadRequest)
		return
	}
	if a.TargetPrice <= 0 {
		http.Error(w, "target_price must be positive", http.StatusBadRequest)
		return
	}

	if err := h.store.CreatePriceAlert(&a); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, &a)
}

// GetAlerts handles GET /alerts
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	alertList, err := h.store.GetAlertsByUser(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, alertList)
}

// DeleteAlert handles DELETE /alerts/{id}
func (h *Handler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.DeletePriceAlert(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EvaluateAlerts handles POST /alerts/evaluate
func (h *Handler) EvaluateAlerts(w http.ResponseWriter, r *http.Request) {
	summary, err := h.evaluator.EvaluateAll(r.Context(), time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// CreateGoal handles POST /goals
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var g models.Goal
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if g.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if g.UserID <= 0 {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if g.TargetAmount <= 0 {
		http.Error(w, "target_amount must be positive", http.StatusBadRequest)
		return
	}

	if err := h.store.CreateGoal(&g); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, &g)
}

// GetGoals handles GET /goals
func (h *Handler) GetGoals(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	goals, err := h.store.GetActiveGoals(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, goals)
}

// UpdateGoalProgress handles PUT /goals/{id}/progress
func (h *Handler) UpdateGoalProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req struct {
		CurrentAmount float64 `json:"current_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CurrentAmount < 0 {
		http.Error(w, "current_amount must not be negative", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateGoalCurrentAmount(id, req.CurrentAmount); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetGoalProjections handles GET /goals/projections
func (h *Handler) GetGoalProjections(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	projections, err := h.engine.ProjectForUser(userID, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, projections)
}

// RunWhatIf handles POST /whatif
func (h *Handler) RunWhatIf(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Corpus              float64  `json:"corpus"`
		MonthlyContribution float64  `json:"monthly_contribution"`
		AnnualReturnPct     float64  `json:"annual_return_pct"`
		Years               float64  `json:"years"`
		GoalAmount          *float64 `json:"goal_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Years <= 0 {
		http.Error(w, "years must be positive", http.StatusBadRequest)
		return
	}

	resp := struct {
		FutureValue  float64 `json:"future_value"`
		MonthsToGoal *int    `json:"months_to_goal,omitempty"`
		GoalReached  *bool   `json:"goal_reached,omitempty"`
	}{
		FutureValue: whatif.FutureValue(req.Corpus, req.MonthlyContribution, req.AnnualReturnPct, req.Years),
	}

	if req.GoalAmount != nil {
		months, ok := whatif.MonthsToGoal(req.Corpus, req.MonthlyContribution, req.AnnualReturnPct, *req.GoalAmount)
		resp.GoalReached = &ok
		if ok {
			resp.MonthsToGoal = &months
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func userIDParam(r *http.Request) (int, error) {
	userID, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil || userID <= 0 {
		return 0, errInvalidUserID
	}
	return userID, nil
}

var errInvalidUserID = errors.New("user_id query parameter is required")

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
