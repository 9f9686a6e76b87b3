package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountVesting(r chi.Router) {
	r.Post("/unlock", s.handleUnlock)
	r.Post("/claim", s.handleVestingClaim)
	r.Post("/deposit", s.handleVestingDeposit)
	r.Get("/to-deposit", s.handleToDeposit)
	r.Get("/user/{address}", s.handleVestingUser)
	r.Get("/unlocks/{address}/{id}", s.handleVestingUnlock)
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddressField("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := s.engines.Vesting.Unlock(caller)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"id": id})
}

func (s *Server) handleVestingClaim(w http.ResponseWriter, r *http.Request) {
	var req callerIDRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddressField("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engines.Vesting.Claim(caller, req.ID); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVestingDeposit(w http.ResponseWriter, r *http.Request) {
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
	if err := s.engines.Vesting.Deposit(caller, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleToDeposit(w http.ResponseWriter, r *http.Request) {
	toDeposit, err := s.engines.Vesting.ToDeposit()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	total, err := s.engines.Vesting.TotalUnlockBalance()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"toDeposit":          amountString(toDeposit),
		"totalUnlockBalance": amountString(total),
	})
}

func (s *Server) handleVestingUser(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	balance, err := s.engines.Vesting.UserUnlockBalance(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	ids, err := s.engines.Vesting.UserUnlockIDs(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unlockBalance": amountString(balance),
		"unlockIDs":     ids,
	})
}

func (s *Server) handleVestingUnlock(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	record, err := s.engines.Vesting.UserUnlock(addr, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	passed, claimable, err := s.engines.Vesting.GetClaimableAmount(addr, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fullAmount":    amountString(record.FullAmount),
		"vestedAmount":  amountString(record.VestedAmount),
		"claimedAmount": amountString(record.ClaimedAmount),
		"createdAt":     record.CreatedAt,
		"passedSeconds": passed,
		"claimable":     amountString(claimable),
	})
}
