package token

import (
	"errors"
	"fmt"
	"math/big"

	"tokenforge/core/events"
	"tokenforge/core/state"
	"tokenforge/core/types"
	"tokenforge/observability/metrics"
)

var errNilState = errors.New("token engine: state not configured")

// State describes the functionality the ledger needs from the surrounding
// state implementation.
type State interface {
	Balance(symbol string, addr types.Address) (*big.Int, error)
	SetBalance(symbol string, addr types.Address, amount *big.Int) error
	Supply(symbol string) (*big.Int, error)
	AdjustSupply(symbol string, delta *big.Int) (*big.Int, error)
	TransferFee() (state.Fee, error)
	SetTransferFee(state.Fee) error
	IsPair(addr types.Address) (bool, error)
	SetPair(addr types.Address, isPair bool) error
	HasRole(role string, addr types.Address) (bool, error)
	SetRole(role string, addr types.Address, granted bool) error
	GenesisApplied() (bool, error)
	MarkGenesisApplied() error
}

// Engine implements the fungible ledger: taxed transfers, pair and fee
// configuration, capability management and mint credits.
type Engine struct {
	state   State
	emitter events.Emitter
}

// NewEngine creates a ledger engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
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

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) requireState() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return nil
}

// RequireRole fails with ErrUnauthorized unless the caller holds the role.
func (e *Engine) RequireRole(role string, caller types.Address) error {
	if err := e.requireState(); err != nil {
		return err
	}
	ok, err := e.state.HasRole(role, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s missing %s", ErrUnauthorized, caller, role)
	}
	return nil
}

// InitGenesis mints the initial supply to the treasury and grants it the
// admin and minter capabilities. It runs at most once per database.
func (e *Engine) InitGenesis(treasury types.Address, initialSupply *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	applied, err := e.state.GenesisApplied()
	if err != nil {
		return err
	}
	if applied {
		return nil
	}
	if initialSupply != nil && initialSupply.Sign() > 0 {
		if err := e.Mint(SymbolPrimary, treasury, initialSupply); err != nil {
			return err
		}
	}
	if err := e.state.SetRole(RoleAdmin, treasury, true); err != nil {
		return err
	}
	if err := e.state.SetRole(RoleMinter, treasury, true); err != nil {
		return err
	}
	return e.state.MarkGenesisApplied()
}

// Transfer moves amount of the primary token from the sender to the
// recipient, applying the pair tax when exactly one side is a registered
// pair and the other is not the ledger's own address.
func (e *Engine) Transfer(from, to types.Address, amount *big.Int) error {
	if err := e.transfer(from, to, amount); err != nil {
		metrics.Engine().RecordFailure("token", "transfer")
		return err
	}
	metrics.Engine().RecordOperation("token", "transfer")
	return nil
}

func (e *Engine) transfer(from, to types.Address, amount *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	fromBalance, err := e.state.Balance(SymbolPrimary, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, fromBalance, amount)
	}
	// A self-transfer is always untaxed and must not touch balances: the
	// credit would otherwise overwrite the debit on the same key.
	if from == to {
		e.emit(events.TokenTransferred{Symbol: SymbolPrimary, From: from, To: to, Amount: amount, Tax: big.NewInt(0)})
		return nil
	}
	taxed, err := e.transferTaxed(from, to)
	if err != nil {
		return err
	}
	tax := big.NewInt(0)
	if taxed {
		fee, err := e.state.TransferFee()
		if err != nil {
			return err
		}
		if fee.Denominator != 0 && fee.Numerator != 0 {
			tax = new(big.Int).Mul(amount, new(big.Int).SetUint64(fee.Numerator))
			tax.Quo(tax, new(big.Int).SetUint64(fee.Denominator))
		}
	}
	net := new(big.Int).Sub(amount, tax)

	toBalance, err := e.state.Balance(SymbolPrimary, to)
	if err != nil {
		return err
	}
	if err := e.state.SetBalance(SymbolPrimary, from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	if err := e.state.SetBalance(SymbolPrimary, to, new(big.Int).Add(toBalance, net)); err != nil {
		return err
	}
	if tax.Sign() > 0 {
		moduleBalance, err := e.state.Balance(SymbolPrimary, ModuleAddr)
		if err != nil {
			return err
		}
		if err := e.state.SetBalance(SymbolPrimary, ModuleAddr, new(big.Int).Add(moduleBalance, tax)); err != nil {
			return err
		}
	}

	e.emit(events.TokenTransferred{Symbol: SymbolPrimary, From: from, To: to, Amount: net, Tax: tax})
	if tax.Sign() > 0 {
		e.emit(events.TokenTransferred{Symbol: SymbolPrimary, From: from, To: ModuleAddr, Amount: tax})
		taxUnits, _ := new(big.Float).SetInt(tax).Float64()
		metrics.Engine().RecordTax(taxUnits)
	}
	return nil
}

// transferTaxed applies the pair rule: taxed when exactly one endpoint is a
// pair and neither endpoint is the ledger module address.
func (e *Engine) transferTaxed(from, to types.Address) (bool, error) {
	if from == ModuleAddr || to == ModuleAddr {
		return false, nil
	}
	fromPair, err := e.state.IsPair(from)
	if err != nil {
		return false, err
	}
	toPair, err := e.state.IsPair(to)
	if err != nil {
		return false, err
	}
	return fromPair != toPair, nil
}

// Move transfers amount of any symbol without tax. It is the primitive the
// sibling engines use to pull deposits and pay out escrowed balances.
func (e *Engine) Move(symbol string, from, to types.Address, amount *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromBalance, err := e.state.Balance(symbol, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, fromBalance, amount)
	}
	if from == to {
		e.emit(events.TokenTransferred{Symbol: symbol, From: from, To: to, Amount: amount})
		return nil
	}
	toBalance, err := e.state.Balance(symbol, to)
	if err != nil {
		return err
	}
	if err := e.state.SetBalance(symbol, from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	if err := e.state.SetBalance(symbol, to, new(big.Int).Add(toBalance, amount)); err != nil {
		return err
	}
	e.emit(events.TokenTransferred{Symbol: symbol, From: from, To: to, Amount: amount})
	return nil
}

// CanCover reports whether the holder's balance covers amount. Engines call
// it to front-load balance validation before their first state write.
func (e *Engine) CanCover(symbol string, holder types.Address, amount *big.Int) (bool, error) {
	if err := e.requireState(); err != nil {
		return false, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return true, nil
	}
	balance, err := e.state.Balance(symbol, holder)
	if err != nil {
		return false, err
	}
	return balance.Cmp(amount) >= 0, nil
}

// Mint credits amount to the recipient and raises total supply. Rate and
// capability enforcement live in the minter engine; sibling engines must not
// call this directly.
func (e *Engine) Mint(symbol string, to types.Address, amount *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := e.state.Balance(symbol, to)
	if err != nil {
		return err
	}
	if _, err := e.state.AdjustSupply(symbol, amount); err != nil {
		return err
	}
	return e.state.SetBalance(symbol, to, new(big.Int).Add(balance, amount))
}

// SetFee updates the transfer tax. Admin only; the denominator must be
// non-zero.
func (e *Engine) SetFee(caller types.Address, numerator, denominator uint64) error {
	if err := e.RequireRole(RoleAdmin, caller); err != nil {
		return err
	}
	if denominator == 0 {
		return fmt.Errorf("%w: denominator must not equal 0", ErrInvalidConfiguration)
	}
	if err := e.state.SetTransferFee(state.Fee{Numerator: numerator, Denominator: denominator}); err != nil {
		return err
	}
	e.emit(events.TokenFeeUpdated{Numerator: numerator, Denominator: denominator})
	return nil
}

// SetPair toggles the pair flag on an address. Admin only; idempotent.
func (e *Engine) SetPair(caller, addr types.Address, isPair bool) error {
	if err := e.RequireRole(RoleAdmin, caller); err != nil {
		return err
	}
	if err := e.state.SetPair(addr, isPair); err != nil {
		return err
	}
	e.emit(events.TokenPairUpdated{Address: addr, IsPair: isPair})
	return nil
}

// GrantRole grants the capability to the account. Admin only.
func (e *Engine) GrantRole(caller types.Address, role string, account types.Address) error {
	if err := e.RequireRole(RoleAdmin, caller); err != nil {
		return err
	}
	if err := e.state.SetRole(role, account, true); err != nil {
		return err
	}
	e.emit(events.TokenRoleUpdated{Role: role, Account: account, Granted: true})
	return nil
}

// RevokeRole revokes the capability from the account. Admin only.
func (e *Engine) RevokeRole(caller types.Address, role string, account types.Address) error {
	if err := e.RequireRole(RoleAdmin, caller); err != nil {
		return err
	}
	if err := e.state.SetRole(role, account, false); err != nil {
		return err
	}
	e.emit(events.TokenRoleUpdated{Role: role, Account: account, Granted: false})
	return nil
}

// Recover sweeps amount of the ledger module's own holdings (accrued tax or
// stray deposits of any symbol) to the caller. Admin only.
func (e *Engine) Recover(caller types.Address, symbol string, amount *big.Int) error {
	if err := e.RequireRole(RoleAdmin, caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	held, err := e.state.Balance(symbol, ModuleAddr)
	if err != nil {
		return err
	}
	if held.Cmp(amount) < 0 {
		return fmt.Errorf("%w: ledger holds %s", ErrInvalidAmount, held)
	}
	if err := e.Move(symbol, ModuleAddr, caller, amount); err != nil {
		return err
	}
	e.emit(events.TokenRecovered{Symbol: symbol, To: caller, Amount: amount})
	return nil
}

// BalanceOf returns the holder's balance for the symbol.
func (e *Engine) BalanceOf(symbol string, addr types.Address) (*big.Int, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	return e.state.Balance(symbol, addr)
}

// TotalSupply returns the total supply of the symbol.
func (e *Engine) TotalSupply(symbol string) (*big.Int, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	return e.state.Supply(symbol)
}

// FeeInfo returns the configured transfer tax.
func (e *Engine) FeeInfo() (state.Fee, error) {
	if err := e.requireState(); err != nil {
		return state.Fee{}, err
	}
	return e.state.TransferFee()
}

// IsPair reports whether the address is flagged as a pair endpoint.
func (e *Engine) IsPair(addr types.Address) (bool, error) {
	if err := e.requireState(); err != nil {
		return false, err
	}
	return e.state.IsPair(addr)
}

// HasRole reports whether the account holds the capability.
func (e *Engine) HasRole(role string, addr types.Address) (bool, error) {
	if err := e.requireState(); err != nil {
		return false, err
	}
	return e.state.HasRole(role, addr)
}
