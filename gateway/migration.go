package gateway

import (
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tokenforge/core/types"
)

func (s *Server) mountMigration(r chi.Router) {
	r.Post("/deposit/rsun", s.handleDepositRSUN)
	r.Post("/deposit/inf", s.handleDepositINF)
	r.Get("/user/{address}", s.handleMigrationUser)
	r.Get("/totals", s.handleMigrationTotals)
}

func (s *Server) handleDepositRSUN(w http.ResponseWriter, r *http.Request) {
	s.handleLegacyDeposit(w, r, s.engines.Migration.DepositRSUN)
}

func (s *Server) handleDepositINF(w http.ResponseWriter, r *http.Request) {
	s.handleLegacyDeposit(w, r, s.engines.Migration.DepositINF)
}

func (s *Server) handleLegacyDeposit(w http.ResponseWriter, r *http.Request, deposit func(types.Address, *big.Int) error) {
	var req callerAmountRequest
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
	if err := deposit(caller, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMigrationUser(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	balances, err := s.engines.Migration.UserBalances(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"rsun": amountString(balances.RSUN),
		"inf":  amountString(balances.INF),
	})
}

func (s *Server) handleMigrationTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.engines.Migration.Totals()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"rsun": amountString(totals.RSUN),
		"inf":  amountString(totals.INF),
	})
}
