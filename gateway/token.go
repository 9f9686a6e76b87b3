package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountToken(r chi.Router) {
	r.Post("/transfer", s.handleTransfer)
	r.Post("/fee", s.handleSetFee)
	r.Post("/pairs", s.handleSetPair)
	r.Post("/roles/grant", s.handleGrantRole)
	r.Post("/roles/revoke", s.handleRevokeRole)
	r.Post("/recover", s.handleTokenRecover)
	r.Get("/fee", s.handleGetFee)
	r.Get("/supply/{symbol}", s.handleGetSupply)
	r.Get("/balance/{symbol}/{address}", s.handleGetBalance)
	r.Get("/pairs/{address}", s.handleGetPair)
	r.Get("/roles/{role}/{address}", s.handleGetRole)
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	from, err := parseAddressField("from", req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := parseAddressField("to", req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := parseAmountField("amount", req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engines.Token.Transfer(from, to, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type setFeeRequest struct {
	Caller      string `json:"caller"`
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

func (s *Server) handleSetFee(w http.ResponseWriter, r *http.Request) {
	var req setFeeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddressField("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engines.Token.SetFee(caller, req.Numerator, req.Denominator); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type setPairRequest struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
	IsPair  bool   `json:"isPair"`
}

func (s *Server) handleSetPair(w http.ResponseWriter, r *http.Request) {
	var req setPairRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddressField("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	addr, err := parseAddressField("address", req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engines.Token.SetPair(caller, addr, req.IsPair); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type roleRequest struct {
	Caller  string `json:"caller"`
	Role    string `json:"role"`
	Account string `json:"account"`
}

func (s *Server) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	s.handleRoleUpdate(w, r, true)
}

func (s *Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	s.handleRoleUpdate(w, r, false)
}

func (s *Server) handleRoleUpdate(w http.ResponseWriter, r *http.Request, grant bool) {
	var req roleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddressField("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	account, err := parseAddressField("account", req.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if grant {
		err = s.engines.Token.GrantRole(caller, req.Role, account)
	} else {
		err = s.engines.Token.RevokeRole(caller, req.Role, account)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type recoverRequest struct {
	Caller string `json:"caller"`
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
}

func (s *Server) handleTokenRecover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddressField("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := parseAmountField("amount", req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engines.Token.Recover(caller, req.Symbol, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetFee(w http.ResponseWriter, r *http.Request) {
	fee, err := s.engines.Token.FeeInfo()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{
		"numerator":   fee.Numerator,
		"denominator": fee.Denominator,
	})
}

func (s *Server) handleGetSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := s.engines.Token.TotalSupply(chi.URLParam(r, "symbol"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"supply": amountString(supply)})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	balance, err := s.engines.Token.BalanceOf(chi.URLParam(r, "symbol"), addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": amountString(balance)})
}

func (s *Server) handleGetPair(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	isPair, err := s.engines.Token.IsPair(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isPair": isPair})
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	has, err := s.engines.Token.HasRole(chi.URLParam(r, "role"), addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasRole": has})
}
