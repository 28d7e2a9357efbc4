package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/substrate-wallet-core/internal/logging"
	"github.com/substrate-wallet-core/internal/service"
	"github.com/substrate-wallet-core/internal/types"
)

// ProxyEditRequest is the body for preview and call assembly requests
type ProxyEditRequest struct {
	Chain string              `json:"chain"`
	Edits []service.ProxyEdit `json:"edits"`
}

// handleGetProxies handles GET /api/accounts/{account}/proxies
func (s *Server) handleGetProxies(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]

	chain, ok := parseChain(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "unsupported chain", nil)
		return
	}

	items, err := s.proxyService.CurrentProxies(r.Context(), chain, account)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("Proxy lookup failed")
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"account": account,
		"chain":   string(chain),
		"proxies": items,
	})
}

// handlePreviewProxies handles POST /api/accounts/{account}/proxies/preview
func (s *Server) handlePreviewProxies(w http.ResponseWriter, r *http.Request) {
	preview, ok := s.previewFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, preview)
}

// ProxyCallsResponse pairs the assembled submission call with the deposit
// delta the submission will lock.
type ProxyCallsResponse struct {
	Call         *types.SubmissionCall `json:"call"`
	NewDeposit   string                `json:"newDeposit"`
	DepositToPay string                `json:"depositToPay"`
}

// handleAssembleProxyCalls handles POST /api/accounts/{account}/proxies/calls.
// It returns the submission call for the requested edits plus the deposit
// delta.
func (s *Server) handleAssembleProxyCalls(w http.ResponseWriter, r *http.Request) {
	preview, ok := s.previewFromRequest(w, r)
	if !ok {
		return
	}
	if preview.Call == nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "no pending changes to submit", nil)
		return
	}
	respondJSON(w, http.StatusOK, ProxyCallsResponse{
		Call:         preview.Call,
		NewDeposit:   preview.NewDeposit,
		DepositToPay: preview.DepositToPay,
	})
}

// previewFromRequest parses an edit request and runs the proxy preview,
// writing the error response itself on failure.
func (s *Server) previewFromRequest(w http.ResponseWriter, r *http.Request) (*service.ProxyPreview, bool) {
	account := mux.Vars(r)["account"]

	var req ProxyEditRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body", nil)
		return nil, false
	}

	chain, ok := parseChainString(req.Chain)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "unsupported chain", nil)
		return nil, false
	}

	preview, err := s.proxyService.Preview(r.Context(), chain, account, req.Edits)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("Proxy preview failed")
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return nil, false
	}
	return preview, true
}
