package state

import (
	"math/big"

	"tokenforge/core/types"
)

// MigrationBalances persists the two legacy deposit totals, either for one
// account or globally.
type MigrationBalances struct {
	RSUN *big.Int
	INF  *big.Int
}

func (b MigrationBalances) normalized() MigrationBalances {
	b.RSUN = nonNil(b.RSUN)
	b.INF = nonNil(b.INF)
	return b
}

// MigrationUserBalances returns the deposited totals of the address,
// defaulting to zero.
func (m *Manager) MigrationUserBalances(addr types.Address) (MigrationBalances, error) {
	balances := MigrationBalances{}
	if _, err := m.readRecord(migrationUserKey(addr), &balances); err != nil {
		return MigrationBalances{}, err
	}
	return balances.normalized(), nil
}

// SetMigrationUserBalances persists the deposited totals of the address.
func (m *Manager) SetMigrationUserBalances(addr types.Address, balances MigrationBalances) error {
	return m.writeRecord(migrationUserKey(addr), balances.normalized())
}

// MigrationTotals returns the global running deposit totals.
func (m *Manager) MigrationTotals() (MigrationBalances, error) {
	totals := MigrationBalances{}
	if _, err := m.readRecord(migrationTotalsKey, &totals); err != nil {
		return MigrationBalances{}, err
	}
	return totals.normalized(), nil
}

// SetMigrationTotals persists the global running deposit totals.
func (m *Manager) SetMigrationTotals(totals MigrationBalances) error {
	return m.writeRecord(migrationTotalsKey, totals.normalized())
}
