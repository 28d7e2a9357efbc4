package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/substrate-wallet-core/internal/logging"
)

// BalanceResponse is the balance endpoint payload. Amounts are decimal
// strings in plancks.
type BalanceResponse struct {
	Account      string `json:"account"`
	Chain        string `json:"chain"`
	Free         string `json:"free"`
	Reserved     string `json:"reserved"`
	Frozen       string `json:"frozen"`
	Transferable string `json:"transferable"`
}

// handleGetBalance handles GET /api/accounts/{account}/balance
func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]

	chain, ok := parseChain(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "unsupported chain", nil)
		return
	}

	balance, err := s.balances.Balance(r.Context(), chain, account)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("Balance lookup failed")
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, BalanceResponse{
		Account:      account,
		Chain:        string(chain),
		Free:         balance.Free.String(),
		Reserved:     balance.Reserved.String(),
		Frozen:       balance.Frozen.String(),
		Transferable: balance.Transferable().String(),
	})
}
