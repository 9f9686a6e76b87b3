package migration

import (
	"errors"
	"math/big"

	"tokenforge/core/events"
	"tokenforge/core/state"
	"tokenforge/core/types"
	"tokenforge/native/token"
)

// ModuleAddr holds deposited legacy tokens. There is no withdrawal path;
// deposits are final.
var ModuleAddr = types.ModuleAddress("migration")

// ErrInvalidAmount indicates a zero deposit.
var ErrInvalidAmount = errors.New("migration: invalid amount")

var errNilState = errors.New("migration engine: state not configured")

// State describes the deposit bookkeeping the engine needs.
type State interface {
	MigrationUserBalances(addr types.Address) (state.MigrationBalances, error)
	SetMigrationUserBalances(addr types.Address, balances state.MigrationBalances) error
	MigrationTotals() (state.MigrationBalances, error)
	SetMigrationTotals(totals state.MigrationBalances) error
}

// Engine records irrevocable one-way deposits of the two legacy tokens.
type Engine struct {
	state   State
	ledger  *token.Engine
	emitter events.Emitter
}

// NewEngine creates a migration engine bound to the ledger.
func NewEngine(ledger *token.Engine) *Engine {
	return &Engine{ledger: ledger, emitter: events.NoopEmitter{}}
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

// DepositRSUN pulls amount of RSUN from the caller and records it.
func (e *Engine) DepositRSUN(caller types.Address, amount *big.Int) error {
	return e.deposit(token.SymbolRSUN, caller, amount)
}

// DepositINF pulls amount of INF from the caller and records it.
func (e *Engine) DepositINF(caller types.Address, amount *big.Int) error {
	return e.deposit(token.SymbolINF, caller, amount)
}

func (e *Engine) deposit(symbol string, caller types.Address, amount *big.Int) error {
	if e == nil || e.state == nil || e.ledger == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.ledger.Move(symbol, caller, ModuleAddr, amount); err != nil {
		return err
	}
	balances, err := e.state.MigrationUserBalances(caller)
	if err != nil {
		return err
	}
	totals, err := e.state.MigrationTotals()
	if err != nil {
		return err
	}
	var newUserTotal *big.Int
	if symbol == token.SymbolINF {
		balances.INF = new(big.Int).Add(balances.INF, amount)
		totals.INF = new(big.Int).Add(totals.INF, amount)
		newUserTotal = balances.INF
	} else {
		balances.RSUN = new(big.Int).Add(balances.RSUN, amount)
		totals.RSUN = new(big.Int).Add(totals.RSUN, amount)
		newUserTotal = balances.RSUN
	}
	if err := e.state.SetMigrationUserBalances(caller, balances); err != nil {
		return err
	}
	if err := e.state.SetMigrationTotals(totals); err != nil {
		return err
	}
	if e.emitter != nil {
		e.emitter.Emit(events.MigrationDeposited{Symbol: symbol, Account: caller, Amount: amount, NewTotal: newUserTotal})
	}
	return nil
}

// UserBalances returns the caller's recorded deposits of both legacy tokens.
func (e *Engine) UserBalances(addr types.Address) (state.MigrationBalances, error) {
	if e == nil || e.state == nil {
		return state.MigrationBalances{}, errNilState
	}
	return e.state.MigrationUserBalances(addr)
}

// Totals returns the global running deposit totals.
func (e *Engine) Totals() (state.MigrationBalances, error) {
	if e == nil || e.state == nil {
		return state.MigrationBalances{}, errNilState
	}
	return e.state.MigrationTotals()
}
