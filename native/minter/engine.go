package minter

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"tokenforge/core/events"
	"tokenforge/core/state"
	"tokenforge/core/types"
	"tokenforge/native/token"
)

const (
	// ChannelAdmin is the slow, capped administrative emission channel.
	ChannelAdmin = "admin"
	// ChannelGame is the independently tuned gameplay-reward emission
	// channel.
	ChannelGame = "game"
)

var (
	// ErrInvalidAmount indicates a zero mint request.
	ErrInvalidAmount = errors.New("minter: invalid amount")
	// ErrRateLimitExceeded indicates the request exceeds the channel's
	// accrued mintable amount.
	ErrRateLimitExceeded = errors.New("minter: amount exceeds the mintable tokens amount")
	// ErrLengthMismatch indicates accounts and values differ in length.
	ErrLengthMismatch = errors.New("minter: arrays must have the same length")
	// ErrSumMismatch indicates the declared sum does not match the values.
	ErrSumMismatch = errors.New("minter: sum does not match valuesSum")
	// ErrUnknownChannel indicates a channel name outside admin/game.
	ErrUnknownChannel = errors.New("minter: unknown channel")
)

var errNilState = errors.New("minter engine: state not configured")

// State describes the limiter persistence the engine needs.
type State interface {
	MintChannelState(channel string) (state.MintChannel, bool, error)
	SetMintChannelState(channel string, ch state.MintChannel) error
}

// ChannelDefaults seeds a channel's limiter on first run.
type ChannelDefaults struct {
	RatePerSecond *big.Int
	HardCap       *big.Int
}

// Engine bounds cumulative minting per channel via a per-second accrual rate
// and a hard cap, crediting minted amounts through the ledger.
type Engine struct {
	state   State
	ledger  *token.Engine
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates a minter engine bound to the ledger.
func NewEngine(ledger *token.Engine) *Engine {
	return &Engine{
		ledger:  ledger,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(st State) { e.state = st }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily
// intended for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) requireState() error {
	if e == nil || e.state == nil || e.ledger == nil {
		return errNilState
	}
	return nil
}

func validChannel(channel string) error {
	switch channel {
	case ChannelAdmin, ChannelGame:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}
}

// InitChannel seeds the channel limiter when it has never been persisted.
// The accrual clock starts at the current time.
func (e *Engine) InitChannel(channel string, defaults ChannelDefaults) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := validChannel(channel); err != nil {
		return err
	}
	_, ok, err := e.state.MintChannelState(channel)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return e.state.SetMintChannelState(channel, state.MintChannel{
		RatePerSecond: defaults.RatePerSecond,
		HardCap:       defaults.HardCap,
		LastMintedAt:  uint64(e.now()),
	})
}

func (e *Engine) channel(channel string) (state.MintChannel, error) {
	if err := e.requireState(); err != nil {
		return state.MintChannel{}, err
	}
	if err := validChannel(channel); err != nil {
		return state.MintChannel{}, err
	}
	ch, _, err := e.state.MintChannelState(channel)
	return ch, err
}

func mintableAt(ch state.MintChannel, now int64) *big.Int {
	elapsed := now - int64(ch.LastMintedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	accrued := new(big.Int).Mul(ch.RatePerSecond, big.NewInt(elapsed))
	if accrued.Cmp(ch.HardCap) > 0 {
		return new(big.Int).Set(ch.HardCap)
	}
	return accrued
}

// Mintable returns the amount the channel could mint at the current time:
// min(rate x elapsed, hard cap).
func (e *Engine) Mintable(channel string) (*big.Int, error) {
	ch, err := e.channel(channel)
	if err != nil {
		return nil, err
	}
	return mintableAt(ch, e.now()), nil
}

// ChannelInfo exposes the persisted limiter parameters for inspection.
func (e *Engine) ChannelInfo(channel string) (state.MintChannel, error) {
	return e.channel(channel)
}

// SpecialMint credits amount to the caller through the admin channel.
// Requires the admin capability.
func (e *Engine) SpecialMint(caller types.Address, amount *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	ch, err := e.channel(ChannelAdmin)
	if err != nil {
		return err
	}
	now := e.now()
	if amount.Cmp(mintableAt(ch, now)) > 0 {
		return fmt.Errorf("%w: requested %s", ErrRateLimitExceeded, amount)
	}
	if err := e.ledger.Mint(token.SymbolPrimary, caller, amount); err != nil {
		return err
	}
	ch.LastMintedAt = uint64(now)
	if err := e.state.SetMintChannelState(ChannelAdmin, ch); err != nil {
		return err
	}
	e.emit(events.MintAdminIncremented{Recipient: caller, Amount: amount})
	return nil
}

// IncrementBalances credits each account its value through the game channel.
// Requires the minter capability. valuesSum is validated against the limiter
// before the per-value sum is checked, mirroring the channel's abuse-ceiling
// semantics.
func (e *Engine) IncrementBalances(caller types.Address, accounts []types.Address, values []*big.Int, valuesSum *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleMinter, caller); err != nil {
		return err
	}
	if len(accounts) != len(values) {
		return ErrLengthMismatch
	}
	if valuesSum == nil || valuesSum.Sign() <= 0 {
		return ErrInvalidAmount
	}
	ch, err := e.channel(ChannelGame)
	if err != nil {
		return err
	}
	now := e.now()
	if valuesSum.Cmp(mintableAt(ch, now)) > 0 {
		return fmt.Errorf("%w: valuesSum %s", ErrRateLimitExceeded, valuesSum)
	}
	sum := big.NewInt(0)
	for _, value := range values {
		if value == nil || value.Sign() < 0 {
			return ErrInvalidAmount
		}
		sum.Add(sum, value)
	}
	if sum.Cmp(valuesSum) != 0 {
		return fmt.Errorf("%w: declared %s, got %s", ErrSumMismatch, valuesSum, sum)
	}
	for i, account := range accounts {
		if values[i].Sign() == 0 {
			continue
		}
		if err := e.ledger.Mint(token.SymbolPrimary, account, values[i]); err != nil {
			return err
		}
	}
	ch.LastMintedAt = uint64(now)
	if err := e.state.SetMintChannelState(ChannelGame, ch); err != nil {
		return err
	}
	e.emit(events.MintGameIncremented{Accounts: len(accounts), ValuesSum: valuesSum})
	return nil
}

// SetRatePerSecond updates the channel's accrual rate. Admin only. The
// limiter's LastMintedAt is preserved so headroom accrued before the change
// survives it.
func (e *Engine) SetRatePerSecond(caller types.Address, channel string, rate *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	if rate == nil || rate.Sign() < 0 {
		return ErrInvalidAmount
	}
	ch, err := e.channel(channel)
	if err != nil {
		return err
	}
	ch.RatePerSecond = rate
	if err := e.state.SetMintChannelState(channel, ch); err != nil {
		return err
	}
	e.emit(events.MintParamUpdated{Channel: channel, HardCap: false, Value: rate})
	return nil
}

// SetHardCap updates the channel's hard cap. Admin only. LastMintedAt is
// preserved.
func (e *Engine) SetHardCap(caller types.Address, channel string, cap *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	if cap == nil || cap.Sign() < 0 {
		return ErrInvalidAmount
	}
	ch, err := e.channel(channel)
	if err != nil {
		return err
	}
	ch.HardCap = cap
	if err := e.state.SetMintChannelState(channel, ch); err != nil {
		return err
	}
	e.emit(events.MintParamUpdated{Channel: channel, HardCap: true, Value: cap})
	return nil
}
