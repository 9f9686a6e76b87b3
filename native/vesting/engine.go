package vesting

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
	// DefaultVestingPeriod is the window over which the vested share of an
	// unlock releases linearly.
	DefaultVestingPeriod = 30 * 24 * 60 * 60 // 30 days

	// Conversion ratios from legacy balances to primary-token entitlement.
	rsunRatioNum = 10
	rsunRatioDen = 1000
	infRatioNum  = 10
	infRatioDen  = 125

	// immediatePercent of every entitlement is paid at unlock time; the
	// remainder vests.
	immediatePercent = 10
)

// ModuleAddr holds the tokens backing outstanding unlock balances.
var ModuleAddr = types.ModuleAddress("vesting")

var (
	// ErrInvalidAmount indicates there is nothing to unlock or claim.
	ErrInvalidAmount = errors.New("vesting: invalid amount")
	// ErrNotFound indicates an unknown unlock id.
	ErrNotFound = errors.New("vesting: unlock not found")
)

var errNilState = errors.New("vesting engine: state not configured")

// State describes the unlock bookkeeping the engine needs.
type State interface {
	VestingUserState(addr types.Address) (state.VestingUser, error)
	SetVestingUserState(addr types.Address, user state.VestingUser) error
	UnlockRecordState(addr types.Address, id uint64) (state.UnlockRecord, bool, error)
	SetUnlockRecordState(addr types.Address, id uint64, record state.UnlockRecord) error
	DeleteUnlockRecordState(addr types.Address, id uint64) error
	UnlockIDs(addr types.Address) ([]uint64, error)
	SetUnlockIDs(addr types.Address, ids []uint64) error
	TotalUnlockBalance() (*big.Int, error)
	SetTotalUnlockBalance(total *big.Int) error
}

// MigrationSource exposes the deposited legacy balances an unlock converts.
type MigrationSource interface {
	UserBalances(addr types.Address) (state.MigrationBalances, error)
}

// Engine converts migration deposits into unlock entitlements paid out
// linearly over the vesting period, with 10% released immediately.
type Engine struct {
	state         State
	ledger        *token.Engine
	migration     MigrationSource
	emitter       events.Emitter
	nowFn         func() int64
	vestingPeriod uint64
}

// NewEngine creates a vesting engine bound to the ledger and the migration
// deposit tracker.
func NewEngine(ledger *token.Engine, migration MigrationSource) *Engine {
	return &Engine{
		ledger:        ledger,
		migration:     migration,
		emitter:       events.NoopEmitter{},
		nowFn:         func() int64 { return time.Now().Unix() },
		vestingPeriod: DefaultVestingPeriod,
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

// SetVestingPeriod overrides the vesting window. Zero restores the default.
func (e *Engine) SetVestingPeriod(seconds uint64) {
	if seconds == 0 {
		e.vestingPeriod = DefaultVestingPeriod
		return
	}
	e.vestingPeriod = seconds
}

// VestingPeriod returns the configured vesting window in seconds.
func (e *Engine) VestingPeriod() uint64 { return e.vestingPeriod }

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
	if e == nil || e.state == nil || e.ledger == nil || e.migration == nil {
		return errNilState
	}
	return nil
}

// entitlement converts unconverted legacy balances into primary-token units.
func entitlement(rsun, inf *big.Int) *big.Int {
	fromRSUN := new(big.Int).Mul(rsun, big.NewInt(rsunRatioNum))
	fromRSUN.Quo(fromRSUN, big.NewInt(rsunRatioDen))
	fromINF := new(big.Int).Mul(inf, big.NewInt(infRatioNum))
	fromINF.Quo(fromINF, big.NewInt(infRatioDen))
	return fromRSUN.Add(fromRSUN, fromINF)
}

// Unlock converts the caller's unconverted migration deposits into a new
// unlock record, paying 10% immediately. Each deposited balance converts at
// most once across all of the caller's unlocks.
func (e *Engine) Unlock(caller types.Address) (uint64, error) {
	if err := e.requireState(); err != nil {
		return 0, err
	}
	deposits, err := e.migration.UserBalances(caller)
	if err != nil {
		return 0, err
	}
	user, err := e.state.VestingUserState(caller)
	if err != nil {
		return 0, err
	}
	newRSUN := new(big.Int).Sub(deposits.RSUN, user.RSUNConverted)
	newINF := new(big.Int).Sub(deposits.INF, user.INFConverted)
	if newRSUN.Sign() < 0 || newINF.Sign() < 0 {
		return 0, fmt.Errorf("vesting: conversion watermark ahead of deposits for %s", caller)
	}
	full := entitlement(newRSUN, newINF)
	if full.Sign() <= 0 {
		return 0, fmt.Errorf("%w: nothing to unlock", ErrInvalidAmount)
	}
	immediate := new(big.Int).Mul(full, big.NewInt(immediatePercent))
	immediate.Quo(immediate, big.NewInt(100))
	vested := new(big.Int).Sub(full, immediate)

	total, err := e.state.TotalUnlockBalance()
	if err != nil {
		return 0, err
	}
	ids, err := e.state.UnlockIDs(caller)
	if err != nil {
		return 0, err
	}

	// The immediate payout runs first: an underfunded engine fails here
	// with the ledger's InsufficientBalance before any record exists.
	if err := e.ledger.Move(token.SymbolPrimary, ModuleAddr, caller, immediate); err != nil {
		return 0, err
	}

	now := uint64(e.now())
	id := user.NextUnlockID
	record := state.UnlockRecord{
		FullAmount:    full,
		VestedAmount:  vested,
		ClaimedAmount: big.NewInt(0),
		CreatedAt:     now,
	}
	if err := e.state.SetUnlockRecordState(caller, id, record); err != nil {
		return 0, err
	}
	if err := e.state.SetUnlockIDs(caller, append(ids, id)); err != nil {
		return 0, err
	}
	user.NextUnlockID = id + 1
	user.RSUNConverted = deposits.RSUN
	user.INFConverted = deposits.INF
	user.UnlockBalance = new(big.Int).Add(user.UnlockBalance, vested)
	if err := e.state.SetVestingUserState(caller, user); err != nil {
		return 0, err
	}
	if err := e.state.SetTotalUnlockBalance(new(big.Int).Add(total, vested)); err != nil {
		return 0, err
	}

	e.emit(events.UnlockCreated{Account: caller, ID: id, FullAmount: full, Immediate: immediate, Vested: vested})
	return id, nil
}

// GetClaimableAmount returns the elapsed vesting time (capped at the vesting
// period) and the amount claimable right now. It never mutates state.
func (e *Engine) GetClaimableAmount(addr types.Address, id uint64) (uint64, *big.Int, error) {
	if err := e.requireState(); err != nil {
		return 0, nil, err
	}
	record, ok, err := e.state.UnlockRecordState(addr, id)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	passed, claimable := claimableAt(record, e.vestingPeriod, e.now())
	return passed, claimable, nil
}

func claimableAt(record state.UnlockRecord, vestingPeriod uint64, now int64) (uint64, *big.Int) {
	var passed uint64
	if now > int64(record.CreatedAt) {
		passed = uint64(now) - record.CreatedAt
	}
	if passed > vestingPeriod {
		passed = vestingPeriod
	}
	vestedSoFar := new(big.Int).Mul(record.VestedAmount, new(big.Int).SetUint64(passed))
	vestedSoFar.Quo(vestedSoFar, new(big.Int).SetUint64(vestingPeriod))
	claimable := vestedSoFar.Sub(vestedSoFar, record.ClaimedAmount)
	if claimable.Sign() < 0 {
		claimable = big.NewInt(0)
	}
	return passed, claimable
}

// Claim pays out the linearly vested portion of the unlock and removes the
// record once it is fully claimed.
func (e *Engine) Claim(caller types.Address, id uint64) error {
	if err := e.requireState(); err != nil {
		return err
	}
	record, ok, err := e.state.UnlockRecordState(caller, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	_, claimable := claimableAt(record, e.vestingPeriod, e.now())
	if claimable.Sign() <= 0 {
		return fmt.Errorf("%w: nothing to claim", ErrInvalidAmount)
	}
	user, err := e.state.VestingUserState(caller)
	if err != nil {
		return err
	}
	total, err := e.state.TotalUnlockBalance()
	if err != nil {
		return err
	}

	if err := e.ledger.Move(token.SymbolPrimary, ModuleAddr, caller, claimable); err != nil {
		return err
	}

	record.ClaimedAmount = new(big.Int).Add(record.ClaimedAmount, claimable)
	user.UnlockBalance = new(big.Int).Sub(user.UnlockBalance, claimable)
	if user.UnlockBalance.Sign() < 0 {
		user.UnlockBalance = big.NewInt(0)
	}
	newTotal := new(big.Int).Sub(total, claimable)
	if newTotal.Sign() < 0 {
		newTotal = big.NewInt(0)
	}

	finished := record.ClaimedAmount.Cmp(record.VestedAmount) >= 0
	if finished {
		if err := e.state.DeleteUnlockRecordState(caller, id); err != nil {
			return err
		}
		ids, err := e.state.UnlockIDs(caller)
		if err != nil {
			return err
		}
		if err := e.state.SetUnlockIDs(caller, removeID(ids, id)); err != nil {
			return err
		}
	} else {
		if err := e.state.SetUnlockRecordState(caller, id, record); err != nil {
			return err
		}
	}
	if err := e.state.SetVestingUserState(caller, user); err != nil {
		return err
	}
	if err := e.state.SetTotalUnlockBalance(newTotal); err != nil {
		return err
	}

	e.emit(events.UnlockClaimed{Account: caller, ID: id, Paid: claimable, Claimed: record.ClaimedAmount, Finished: finished})
	return nil
}

// Deposit moves amount of the primary token from the caller into the engine
// to back outstanding unlock balances.
func (e *Engine) Deposit(caller types.Address, amount *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.ledger.Move(token.SymbolPrimary, caller, ModuleAddr, amount); err != nil {
		return err
	}
	e.emit(events.UnlockDeposited{From: caller, Amount: amount})
	return nil
}

// ToDeposit returns the outstanding unlock balance minus the engine's
// current holdings. A positive value is the amount the administrator still
// owes; a negative value means the engine is over-funded. The value is
// observable only and never clamped.
func (e *Engine) ToDeposit() (*big.Int, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	total, err := e.state.TotalUnlockBalance()
	if err != nil {
		return nil, err
	}
	held, err := e.ledger.BalanceOf(token.SymbolPrimary, ModuleAddr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(total, held), nil
}

// UserUnlockBalance returns the caller's outstanding vested-not-claimed
// balance.
func (e *Engine) UserUnlockBalance(addr types.Address) (*big.Int, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	user, err := e.state.VestingUserState(addr)
	if err != nil {
		return nil, err
	}
	return user.UnlockBalance, nil
}

// TotalUnlockBalance returns the outstanding vested-not-claimed balance
// across all users.
func (e *Engine) TotalUnlockBalance() (*big.Int, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	return e.state.TotalUnlockBalance()
}

// UserUnlockIDs returns the caller's active unlock ids in insertion order.
func (e *Engine) UserUnlockIDs(addr types.Address) ([]uint64, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	return e.state.UnlockIDs(addr)
}

// UserUnlock returns the unlock record owned by (addr, id).
func (e *Engine) UserUnlock(addr types.Address, id uint64) (state.UnlockRecord, error) {
	if err := e.requireState(); err != nil {
		return state.UnlockRecord{}, err
	}
	record, ok, err := e.state.UnlockRecordState(addr, id)
	if err != nil {
		return state.UnlockRecord{}, err
	}
	if !ok {
		return state.UnlockRecord{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return record, nil
}

func removeID(ids []uint64, id uint64) []uint64 {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
