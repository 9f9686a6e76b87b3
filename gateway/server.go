package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tokenforge/core/events"
	"tokenforge/core/types"
	"tokenforge/gateway/middleware"
	"tokenforge/native/migration"
	"tokenforge/native/minter"
	"tokenforge/native/staking"
	"tokenforge/native/token"
	"tokenforge/native/vesting"
)

// Engines bundles the native engines the gateway fronts.
type Engines struct {
	Token     *token.Engine
	Minter    *minter.Engine
	Staking   *staking.Engine
	Vesting   *vesting.Engine
	Migration *migration.Engine
}

// Config wires the gateway server.
type Config struct {
	Engines     Engines
	Events      *events.RingEmitter
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter
}

// Server serves the HTTP API over the native engines.
type Server struct {
	engines Engines
	events  *events.RingEmitter
	logger  *slog.Logger
	limiter *middleware.RateLimiter
}

// NewServer creates a gateway server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engines: cfg.Engines,
		events:  cfg.Events,
		logger:  logger,
		limiter: cfg.RateLimiter,
	}
}

// Router assembles the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	obs := middleware.NewObservability(s.logger)
	r.Use(obs.Middleware("gateway"))
	if s.limiter != nil {
		r.Use(s.limiter.Middleware())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", obs.MetricsHandler())
	r.Get("/v1/events", s.handleEvents)

	r.Route("/v1/token", s.mountToken)
	r.Route("/v1/mint", s.mountMinter)
	r.Route("/v1/staking", s.mountStaking)
	r.Route("/v1/vesting", s.mountVesting)
	r.Route("/v1/migration", s.mountMigration)

	return r
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("gateway: invalid limit %q", raw))
			return
		}
		limit = parsed
	}
	var recent []*types.Event
	if s.events != nil {
		recent = s.events.Recent(limit)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": recent})
}

func decodeBody(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("gateway: invalid request body: %w", err)
	}
	return nil
}

func parseAddressField(name, value string) (types.Address, error) {
	addr, err := types.ParseAddress(value)
	if err != nil {
		return types.Address{}, fmt.Errorf("gateway: invalid %s: %w", name, err)
	}
	return addr, nil
}

func parseAmountField(name, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("gateway: missing %s", name)
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("gateway: invalid %s %q", name, value)
	}
	return amount, nil
}

func pathAddress(r *http.Request, param string) (types.Address, error) {
	return parseAddressField(param, chi.URLParam(r, param))
}

func pathID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("gateway: invalid id %q", raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeEngineError maps engine sentinel errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, token.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, staking.ErrNotFound), errors.Is(err, vesting.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, minter.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
	}
	writeError(w, status, err)
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
