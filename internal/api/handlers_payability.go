package api

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/substrate-wallet-core/internal/logging"
	"github.com/substrate-wallet-core/internal/service"
	"github.com/substrate-wallet-core/internal/types"
)

// CheckPayabilityRequest is the payability endpoint request body. Amounts
// are decimal strings in plancks; zero-value fields are treated as absent.
type CheckPayabilityRequest struct {
	Chain         string `json:"chain"`
	ProxyAccount  string `json:"proxyAccount,omitempty"`
	CallHex       string `json:"callHex,omitempty"`
	EstimatedFee  string `json:"estimatedFee,omitempty"`
	DepositAmount string `json:"depositAmount,omitempty"`
}

// handleCheckPayability handles POST /api/accounts/{account}/payability
func (s *Server) handleCheckPayability(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]

	var req CheckPayabilityRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body", nil)
		return
	}

	chain := types.ChainID(req.Chain)
	if chain == "" {
		chain = types.ChainPolkadot
	}

	fee, ok := parseOptionalAmount(req.EstimatedFee)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "estimatedFee must be a decimal string", nil)
		return
	}
	deposit, ok := parseOptionalAmount(req.DepositAmount)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "depositAmount must be a decimal string", nil)
		return
	}

	resolution, err := s.payabilityService.CheckPayability(r.Context(), &service.CheckPayabilityInput{
		Chain:         chain,
		Account:       account,
		ProxyAccount:  req.ProxyAccount,
		CallHex:       req.CallHex,
		EstimatedFee:  fee,
		DepositAmount: deposit,
	})
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("Payability check failed")
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, resolution)
}

// parseOptionalAmount parses a decimal amount string, treating empty as
// absent. The second return value reports validity.
func parseOptionalAmount(s string) (*big.Int, bool) {
	if s == "" {
		return nil, true
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}
