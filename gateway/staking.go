package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountStaking(r chi.Router) {
	r.Post("/stake", s.handleStake)
	r.Post("/withdraw", s.handleWithdraw)
	r.Post("/withdraw-all", s.handleWithdrawAll)
	r.Post("/claim", s.handleStakingClaim)
	r.Post("/cancel", s.handleCancelPending)
	r.Post("/rewards/add", s.handleAddReward)
	r.Post("/rewards/decrease", s.handleDecreaseReward)
	r.Post("/rewards/reset", s.handleResetReward)
	r.Post("/params/duration", s.handleUpdateRewardDuration)
	r.Post("/params/pending", s.handleUpdatePendingPeriod)
	r.Post("/params/fee", s.handleStakingFee)
	r.Post("/pause", s.handlePause)
	r.Post("/unpause", s.handleUnpause)
	r.Post("/recover", s.handleStakingRecover)
	r.Get("/params", s.handleStakingParams)
	r.Get("/user/{address}", s.handleStakingUser)
	r.Get("/pending/{address}/{id}", s.handleStakingPending)
}

type callerAmountRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type callerRequest struct {
	Caller string `json:"caller"`
}

type callerIDRequest struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
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
	if err := s.engines.Staking.Stake(caller, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
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
	id, err := s.engines.Staking.Withdraw(caller, amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"id": id})
}

func (s *Server) handleWithdrawAll(w http.ResponseWriter, r *http.Request) {
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
	id, err := s.engines.Staking.WithdrawAll(caller)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"id": id})
}

func (s *Server) handleStakingClaim(w http.ResponseWriter, r *http.Request) {
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
	if err := s.engines.Staking.Claim(caller, req.ID); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCancelPending(w http.ResponseWriter, r *http.Request) {
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
	if err := s.engines.Staking.CancelPending(caller, req.ID); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAddReward(w http.ResponseWriter, r *http.Request) {
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
	if err := s.engines.Staking.AddReward(caller, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDecreaseReward(w http.ResponseWriter, r *http.Request) {
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
	if err := s.engines.Staking.DecreaseReward(caller, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResetReward(w http.ResponseWriter, r *http.Request) {
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
	if err := s.engines.Staking.ResetReward(caller); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type durationRequest struct {
	Caller  string `json:"caller"`
	Seconds uint64 `json:"seconds"`
}

func (s *Server) handleUpdateRewardDuration(w http.ResponseWriter, r *http.Request) {
	var req durationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddressField("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engines.Staking.UpdateRewardDuration(caller, req.Seconds); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type pendingPeriodRequest struct {
	Caller string `json:"caller"`
	Repeat uint64 `json:"repeat"`
	Period uint64 `json:"period"`
}

func (s *Server) handleUpdatePendingPeriod(w http.ResponseWriter, r *http.Request) {
	var req pendingPeriodRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddressField("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engines.Staking.UpdatePendingPeriod(caller, req.Repeat, req.Period); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStakingFee(w http.ResponseWriter, r *http.Request) {
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
	if err := s.engines.Staking.SetFee(caller, req.Numerator, req.Denominator); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.handlePauseToggle(w, r, true)
}

func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	s.handlePauseToggle(w, r, false)
}

func (s *Server) handlePauseToggle(w http.ResponseWriter, r *http.Request, pause bool) {
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
	if pause {
		err = s.engines.Staking.Pause(caller)
	} else {
		err = s.engines.Staking.Unpause(caller)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStakingRecover(w http.ResponseWriter, r *http.Request) {
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
	if err := s.engines.Staking.Recover(caller, req.Symbol, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStakingParams(w http.ResponseWriter, r *http.Request) {
	global, err := s.engines.Staking.Params()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	rewardPerToken, err := s.engines.Staking.RewardPerToken()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	totalStake, err := s.engines.Staking.TotalStake()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	totalReward, err := s.engines.Staking.TotalDurationReward()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalStake":          amountString(totalStake),
		"rewardRate":          amountString(global.RewardRate),
		"rewardPerToken":      amountString(rewardPerToken),
		"totalDurationReward": amountString(totalReward),
		"periodFinish":        global.PeriodFinish,
		"rewardDuration":      global.RewardDuration,
		"pendingRepeat":       global.PendingRepeat,
		"pendingPeriod":       global.PendingPeriod,
		"feeNumerator":        global.FeeNumerator,
		"feeDenominator":      global.FeeDenominator,
		"paused":              global.Paused,
	})
}

func (s *Server) handleStakingUser(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	stake, err := s.engines.Staking.UserStake(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	ids, err := s.engines.Staking.UserPendingIDs(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stake":      amountString(stake),
		"pendingIDs": ids,
	})
}

func (s *Server) handleStakingPending(w http.ResponseWriter, r *http.Request) {
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
	pending, err := s.engines.Staking.UserPending(addr, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	percent, err := s.engines.Staking.PendingClaimablePercent(addr, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fullAmount":       amountString(pending.FullAmount),
		"claimedAmount":    amountString(pending.ClaimedAmount),
		"createdAt":        pending.CreatedAt,
		"claimablePercent": amountString(percent),
	})
}
