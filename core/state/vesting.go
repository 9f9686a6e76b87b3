package state

import (
	"math/big"

	"tokenforge/core/types"
)

// VestingUser persists one account's conversion watermarks and outstanding
// unlock balance. The watermarks record how much of each legacy deposit has
// already been converted so a balance is never converted twice.
type VestingUser struct {
	RSUNConverted *big.Int
	INFConverted  *big.Int
	UnlockBalance *big.Int
	NextUnlockID  uint64
}

// UnlockRecord persists one vesting unlock entry.
type UnlockRecord struct {
	FullAmount    *big.Int
	VestedAmount  *big.Int
	ClaimedAmount *big.Int
	CreatedAt     uint64
}

// VestingUserState returns the stored vesting position of the address,
// defaulting to an empty position.
func (m *Manager) VestingUserState(addr types.Address) (VestingUser, error) {
	user := VestingUser{}
	if _, err := m.readRecord(vestingUserKey(addr), &user); err != nil {
		return VestingUser{}, err
	}
	user.RSUNConverted = nonNil(user.RSUNConverted)
	user.INFConverted = nonNil(user.INFConverted)
	user.UnlockBalance = nonNil(user.UnlockBalance)
	return user, nil
}

// SetVestingUserState persists the vesting position of the address.
func (m *Manager) SetVestingUserState(addr types.Address, user VestingUser) error {
	user.RSUNConverted = nonNil(user.RSUNConverted)
	user.INFConverted = nonNil(user.INFConverted)
	user.UnlockBalance = nonNil(user.UnlockBalance)
	return m.writeRecord(vestingUserKey(addr), user)
}

// UnlockRecordState returns the unlock entry owned by (addr, id).
func (m *Manager) UnlockRecordState(addr types.Address, id uint64) (UnlockRecord, bool, error) {
	record := UnlockRecord{}
	ok, err := m.readRecord(vestingUnlockKey(addr, id), &record)
	if err != nil {
		return UnlockRecord{}, false, err
	}
	record.FullAmount = nonNil(record.FullAmount)
	record.VestedAmount = nonNil(record.VestedAmount)
	record.ClaimedAmount = nonNil(record.ClaimedAmount)
	return record, ok, nil
}

// SetUnlockRecordState persists the unlock entry owned by (addr, id).
func (m *Manager) SetUnlockRecordState(addr types.Address, id uint64, record UnlockRecord) error {
	record.FullAmount = nonNil(record.FullAmount)
	record.VestedAmount = nonNil(record.VestedAmount)
	record.ClaimedAmount = nonNil(record.ClaimedAmount)
	return m.writeRecord(vestingUnlockKey(addr, id), record)
}

// DeleteUnlockRecordState removes the unlock entry owned by (addr, id).
func (m *Manager) DeleteUnlockRecordState(addr types.Address, id uint64) error {
	return m.deleteRecord(vestingUnlockKey(addr, id))
}

// UnlockIDs returns the insertion-ordered active unlock ids of the address.
func (m *Manager) UnlockIDs(addr types.Address) ([]uint64, error) {
	var ids []uint64
	if _, err := m.readRecord(vestingIDsKey(addr), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetUnlockIDs overwrites the active unlock id list of the address.
func (m *Manager) SetUnlockIDs(addr types.Address, ids []uint64) error {
	if len(ids) == 0 {
		return m.deleteRecord(vestingIDsKey(addr))
	}
	return m.writeRecord(vestingIDsKey(addr), ids)
}

// TotalUnlockBalance returns the vested-not-yet-claimed total across all
// live unlocks.
func (m *Manager) TotalUnlockBalance() (*big.Int, error) {
	return m.readBigInt(vestingTotalKey)
}

// SetTotalUnlockBalance persists the global outstanding unlock balance.
func (m *Manager) SetTotalUnlockBalance(total *big.Int) error {
	return m.writeBigInt(vestingTotalKey, total)
}
