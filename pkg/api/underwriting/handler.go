package underwriting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"deal_underwriting/pkg/core/config"
	"deal_underwriting/pkg/core/deal"
	"deal_underwriting/pkg/core/dealfile"
	"deal_underwriting/pkg/core/logging"
	"deal_underwriting/pkg/core/returns"
	core "deal_underwriting/pkg/core/underwriting"

	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies. A compare request at max_scenarios is far below it.
const maxBodyBytes = 4 << 20

// Handler holds dependencies for underwriting endpoints
type Handler struct {
	Evaluator *core.Evaluator
	Compare   config.CompareConfig
	Logger    logging.Logger
}

// NewHandler creates a new underwriting handler
func NewHandler(evaluator *core.Evaluator, compare config.CompareConfig, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{
		Evaluator: evaluator,
		Compare:   compare,
		Logger:    logger,
	}
}

// EvaluateResponse is the body of a successful evaluation.
type EvaluateResponse struct {
	EvaluationID   string                 `json:"evaluation_id"`
	Metrics        *deal.ReturnMetrics    `json:"metrics"`
	Underwriting   core.UnderwritingView  `json:"underwriting"`
	Profitability  core.ProfitabilityView `json:"profitability"`
	Investor       core.InvestorView      `json:"investor"`
	Reconciliation core.Reconciliation    `json:"reconciliation"`
	Bid            *returns.BidResult     `json:"bid,omitempty"` // Set when ?target_irr= is given
}

// ErrorResponse is returned for every failed evaluation. Field and Constraint are set
// for validation failures only.
type ErrorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}

// CompareRequest lists named scenarios. Each scenario carries its inputs inline.
type CompareRequest struct {
	Scenarios []deal.Scenario `json:"scenarios"`
}

// CompareResult is one scenario's row in a compare response.
type CompareResult struct {
	Name    string              `json:"name"`
	Metrics *deal.ReturnMetrics `json:"metrics,omitempty"`
	Error   *ErrorResponse      `json:"error,omitempty"`
}

type CompareResponse struct {
	ComparisonID string          `json:"comparison_id"`
	Results      []CompareResult `json:"results"`
}

func setCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// classify maps an evaluation error to its wire shape and HTTP status.
func classify(err error) (int, *ErrorResponse) {
	var verr *deal.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, &ErrorResponse{
			Error:      err.Error(),
			Kind:       "validation",
			Field:      verr.Field,
			Constraint: verr.Constraint,
		}
	}
	if errors.Is(err, deal.ErrArithmetic) {
		return http.StatusInternalServerError, &ErrorResponse{Error: err.Error(), Kind: "arithmetic"}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, &ErrorResponse{Error: err.Error(), Kind: "cancelled"}
	}
	return http.StatusInternalServerError, &ErrorResponse{Error: err.Error(), Kind: "internal"}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "request"})
		return nil, false
	}
	if len(body) > maxBodyBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large", Kind: "request"})
		return nil, false
	}
	return body, true
}

// HandleEvaluate evaluates one deal. POST /api/underwriting/evaluate[?target_irr=0.12]
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var in deal.Inputs
	if err := dealfile.DecodeJSON(body, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "request"})
		return
	}

	var targetIRR *float64
	if raw := r.URL.Query().Get("target_irr"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid target_irr %q", raw), Kind: "request"})
			return
		}
		targetIRR = &v
	}

	id := uuid.New().String()
	log := h.Logger.With(logging.String("evaluation_id", id))
	start := time.Now()

	metrics, err := h.Evaluator.Evaluate(in)
	if err != nil {
		status, resp := classify(err)
		log.Warn("evaluation rejected",
			logging.String("kind", resp.Kind),
			logging.Int("status", status),
			logging.Err(err))
		writeJSON(w, status, resp)
		return
	}

	resp := EvaluateResponse{
		EvaluationID:   id,
		Metrics:        metrics,
		Underwriting:   core.NewUnderwritingView(metrics),
		Profitability:  core.NewProfitabilityView(metrics),
		Investor:       core.NewInvestorView(metrics),
		Reconciliation: core.Reconcile(in, metrics),
	}
	if !resp.Reconciliation.IsBalanced {
		log.Error("metrics do not reconcile", logging.Any("warnings", resp.Reconciliation.Warnings))
	}

	if targetIRR != nil {
		bid, err := h.Evaluator.MaxPurchasePrice(in, *targetIRR)
		if err != nil {
			status, errResp := classify(err)
			writeJSON(w, status, errResp)
			return
		}
		resp.Bid = &bid
	}

	log.Info("evaluation complete",
		logging.Float64("purchase_price", in.PurchasePrice),
		logging.Int("lease_term", in.LeaseTerm),
		logging.Float64("total_profit", metrics.TotalProfit),
		logging.Any("elapsed", time.Since(start)))

	writeJSON(w, http.StatusOK, resp)
}

// HandleCompare evaluates several named scenarios side by side. A failing scenario is
// reported in its own row and does not fail the request. POST /api/underwriting/compare
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req CompareRequest
	if err := dealfile.DecodeJSON(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "request"})
		return
	}
	if len(req.Scenarios) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "at least one scenario is required", Kind: "request"})
		return
	}
	if h.Compare.MaxScenarios > 0 && len(req.Scenarios) > h.Compare.MaxScenarios {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("too many scenarios: %d > %d", len(req.Scenarios), h.Compare.MaxScenarios),
			Kind:  "request",
		})
		return
	}

	id := uuid.New().String()
	outcomes := h.Evaluator.EvaluateAll(r.Context(), req.Scenarios, h.Compare.Workers)

	resp := CompareResponse{ComparisonID: id, Results: make([]CompareResult, len(outcomes))}
	failed := 0
	for i, o := range outcomes {
		name := o.Scenario.Name
		if name == "" {
			name = fmt.Sprintf("scenario-%d", i+1)
		}
		resp.Results[i] = CompareResult{Name: name, Metrics: o.Metrics}
		if o.Err != nil {
			_, resp.Results[i].Error = classify(o.Err)
			failed++
		}
	}

	h.Logger.Info("comparison complete",
		logging.String("comparison_id", id),
		logging.Int("scenarios", len(outcomes)),
		logging.Int("failed", failed))

	writeJSON(w, http.StatusOK, resp)
}

// HandlePolicy reports the waterfall terms in effect. GET /api/underwriting/policy
func (h *Handler) HandlePolicy(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "GET, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	policy := h.Evaluator.Policy()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"waterfall":      policy,
		"total_lp_share": policy.TotalLPShare(),
		"max_scenarios":  h.Compare.MaxScenarios,
	})
}
