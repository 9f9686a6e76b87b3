package state

import (
	"fmt"
	"math/big"

	"tokenforge/core/types"
)

// Fee holds the transfer tax parameters as a rational numerator/denominator
// pair.
type Fee struct {
	Numerator   uint64
	Denominator uint64
}

// Balance returns the stored balance of the address for the given symbol.
// Missing entries default to zero.
func (m *Manager) Balance(symbol string, addr types.Address) (*big.Int, error) {
	return m.readBigInt(balanceKey(symbol, addr))
}

// SetBalance overwrites the stored balance of the address.
func (m *Manager) SetBalance(symbol string, addr types.Address, amount *big.Int) error {
	return m.writeBigInt(balanceKey(symbol, addr), amount)
}

// Supply returns the persisted total supply for the given symbol. Missing
// entries default to zero.
func (m *Manager) Supply(symbol string) (*big.Int, error) {
	return m.readBigInt(supplyKey(symbol))
}

// AdjustSupply increments the stored total supply by delta and returns the
// updated total. Negative results are rejected.
func (m *Manager) AdjustSupply(symbol string, delta *big.Int) (*big.Int, error) {
	total, err := m.Supply(symbol)
	if err != nil {
		return nil, err
	}
	updated := new(big.Int).Add(total, nonNil(delta))
	if updated.Sign() < 0 {
		return nil, fmt.Errorf("state: supply for %s would turn negative", normalizeSymbol(symbol))
	}
	if err := m.writeBigInt(supplyKey(symbol), updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// TransferFee returns the configured transfer tax. Missing configuration
// defaults to 0/1000.
func (m *Manager) TransferFee() (Fee, error) {
	fee := Fee{}
	ok, err := m.readRecord(feeKey, &fee)
	if err != nil {
		return Fee{}, err
	}
	if !ok {
		return Fee{Numerator: 0, Denominator: 1000}, nil
	}
	return fee, nil
}

// SetTransferFee persists the transfer tax parameters.
func (m *Manager) SetTransferFee(fee Fee) error {
	return m.writeRecord(feeKey, fee)
}

// IsPair reports whether the address is flagged as a liquidity-pair
// endpoint.
func (m *Manager) IsPair(addr types.Address) (bool, error) {
	var flag bool
	ok, err := m.readRecord(pairKey(addr), &flag)
	if err != nil {
		return false, err
	}
	return ok && flag, nil
}

// SetPair toggles the pair flag for the address.
func (m *Manager) SetPair(addr types.Address, isPair bool) error {
	if !isPair {
		return m.deleteRecord(pairKey(addr))
	}
	return m.writeRecord(pairKey(addr), true)
}

// HasRole reports whether the account holds the capability.
func (m *Manager) HasRole(role string, addr types.Address) (bool, error) {
	var flag bool
	ok, err := m.readRecord(roleKey(role, addr), &flag)
	if err != nil {
		return false, err
	}
	return ok && flag, nil
}

// SetRole grants or revokes the capability for the account.
func (m *Manager) SetRole(role string, addr types.Address, granted bool) error {
	if !granted {
		return m.deleteRecord(roleKey(role, addr))
	}
	return m.writeRecord(roleKey(role, addr), true)
}

// GenesisApplied reports whether the one-time genesis initialisation ran.
func (m *Manager) GenesisApplied() (bool, error) {
	var flag bool
	ok, err := m.readRecord(genesisKey, &flag)
	if err != nil {
		return false, err
	}
	return ok && flag, nil
}

// MarkGenesisApplied records that genesis initialisation completed.
func (m *Manager) MarkGenesisApplied() error {
	return m.writeRecord(genesisKey, true)
}
