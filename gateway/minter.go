package gateway

import (
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tokenforge/core/types"
)

func (s *Server) mountMinter(r chi.Router) {
	r.Post("/special", s.handleSpecialMint)
	r.Post("/increment", s.handleIncrementBalances)
	r.Post("/rate", s.handleSetMintRate)
	r.Post("/cap", s.handleSetMintCap)
	r.Get("/channels/{channel}", s.handleGetChannel)
}

type specialMintRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

func (s *Server) handleSpecialMint(w http.ResponseWriter, r *http.Request) {
	var req specialMintRequest
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
	if err := s.engines.Minter.SpecialMint(caller, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type incrementRequest struct {
	Caller    string   `json:"caller"`
	Accounts  []string `json:"accounts"`
	Values    []string `json:"values"`
	ValuesSum string   `json:"valuesSum"`
}

func (s *Server) handleIncrementBalances(w http.ResponseWriter, r *http.Request) {
	var req incrementRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddressField("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	accounts := make([]types.Address, len(req.Accounts))
	for i, raw := range req.Accounts {
		accounts[i], err = parseAddressField("account", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	values := make([]*big.Int, len(req.Values))
	for i, raw := range req.Values {
		values[i], err = parseAmountField("value", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	valuesSum, err := parseAmountField("valuesSum", req.ValuesSum)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engines.Minter.IncrementBalances(caller, accounts, values, valuesSum); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type channelParamRequest struct {
	Caller  string `json:"caller"`
	Channel string `json:"channel"`
	Value   string `json:"value"`
}

func (s *Server) handleSetMintRate(w http.ResponseWriter, r *http.Request) {
	s.handleChannelParam(w, r, s.engines.Minter.SetRatePerSecond)
}

func (s *Server) handleSetMintCap(w http.ResponseWriter, r *http.Request) {
	s.handleChannelParam(w, r, s.engines.Minter.SetHardCap)
}

func (s *Server) handleChannelParam(w http.ResponseWriter, r *http.Request, apply func(types.Address, string, *big.Int) error) {
	var req channelParamRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddressField("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	value, err := parseAmountField("value", req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := apply(caller, req.Channel, value); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	info, err := s.engines.Minter.ChannelInfo(channel)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	mintable, err := s.engines.Minter.Mintable(channel)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ratePerSecond": amountString(info.RatePerSecond),
		"hardCap":       amountString(info.HardCap),
		"lastMintedAt":  info.LastMintedAt,
		"mintable":      amountString(mintable),
	})
}
