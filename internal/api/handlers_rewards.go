package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/substrate-wallet-core/internal/logging"
	"github.com/substrate-wallet-core/internal/service"
)

// RewardsResponse wraps a reward report with optional fiat valuation
type RewardsResponse struct {
	*service.RewardReport
	FiatCurrency string  `json:"fiatCurrency,omitempty"`
	FiatRate     float64 `json:"fiatRate,omitempty"`
}

// handleGetRewards handles GET /api/accounts/{account}/rewards
func (s *Server) handleGetRewards(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]

	chain, ok := parseChain(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "unsupported chain", nil)
		return
	}

	interval := service.IntervalCompact
	if raw := r.URL.Query().Get("interval"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "interval must be an integer", nil)
			return
		}
		interval = parsed
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "page must be a non-negative integer", nil)
			return
		}
		page = parsed
	}

	report, err := s.rewardsService.GetRewards(r.Context(), chain, account, interval, page)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	response := RewardsResponse{RewardReport: report}

	// Fiat valuation is best effort: a price lookup failure degrades the
	// response rather than failing it.
	if fiat := r.URL.Query().Get("fiat"); fiat != "" && s.prices != nil {
		rate, err := s.prices.Price(r.Context(), chain, fiat)
		if err != nil {
			logging.FromContext(r.Context()).WithError(err).Warn("Fiat price lookup failed")
		} else {
			response.FiatCurrency = fiat
			response.FiatRate = rate
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// handleRefreshRewards handles POST /api/accounts/{account}/rewards/refresh
func (s *Server) handleRefreshRewards(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]

	chain, ok := parseChain(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "unsupported chain", nil)
		return
	}

	if err := s.rewardsService.Refresh(r.Context(), chain, account); err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("Reward refresh failed")
		respondError(w, http.StatusBadGateway, ErrCodeUpstreamError, "reward refresh failed", nil)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status":  "refreshed",
		"account": account,
		"chain":   string(chain),
	})
}
