package state

import (
	"math/big"

	"tokenforge/core/types"
)

// StakingGlobal persists the engine-wide staking and reward accrual state.
type StakingGlobal struct {
	TotalStake           *big.Int
	RewardRate           *big.Int
	RewardPerTokenStored *big.Int
	LastUpdateTime       uint64
	PeriodFinish         uint64
	RewardDuration       uint64
	PendingRepeat        uint64
	PendingPeriod        uint64
	FeeNumerator         uint64
	FeeDenominator       uint64
	Paused               bool
}

// StakingUser persists one account's staking position.
type StakingUser struct {
	Stake              *big.Int
	RewardPerTokenPaid *big.Int
	NextPendingID      uint64
}

// PendingWithdrawal persists one escrowed withdrawal entry.
type PendingWithdrawal struct {
	FullAmount    *big.Int
	ClaimedAmount *big.Int
	CreatedAt     uint64
}

func (g StakingGlobal) normalized() StakingGlobal {
	g.TotalStake = nonNil(g.TotalStake)
	g.RewardRate = nonNil(g.RewardRate)
	g.RewardPerTokenStored = nonNil(g.RewardPerTokenStored)
	return g
}

// StakingGlobalState returns the stored global staking state. It reports
// false when the engine has never been initialised.
func (m *Manager) StakingGlobalState() (StakingGlobal, bool, error) {
	global := StakingGlobal{}
	ok, err := m.readRecord(stakingGlobalKey, &global)
	if err != nil {
		return StakingGlobal{}, false, err
	}
	return global.normalized(), ok, nil
}

// SetStakingGlobalState persists the global staking state.
func (m *Manager) SetStakingGlobalState(global StakingGlobal) error {
	return m.writeRecord(stakingGlobalKey, global.normalized())
}

// StakingUserState returns the stored staking position of the address,
// defaulting to an empty position.
func (m *Manager) StakingUserState(addr types.Address) (StakingUser, error) {
	user := StakingUser{}
	if _, err := m.readRecord(stakingUserKey(addr), &user); err != nil {
		return StakingUser{}, err
	}
	user.Stake = nonNil(user.Stake)
	user.RewardPerTokenPaid = nonNil(user.RewardPerTokenPaid)
	return user, nil
}

// SetStakingUserState persists the staking position of the address.
func (m *Manager) SetStakingUserState(addr types.Address, user StakingUser) error {
	user.Stake = nonNil(user.Stake)
	user.RewardPerTokenPaid = nonNil(user.RewardPerTokenPaid)
	return m.writeRecord(stakingUserKey(addr), user)
}

// PendingWithdrawalRecord returns the pending entry owned by (addr, id).
func (m *Manager) PendingWithdrawalRecord(addr types.Address, id uint64) (PendingWithdrawal, bool, error) {
	pending := PendingWithdrawal{}
	ok, err := m.readRecord(stakingPendingKey(addr, id), &pending)
	if err != nil {
		return PendingWithdrawal{}, false, err
	}
	pending.FullAmount = nonNil(pending.FullAmount)
	pending.ClaimedAmount = nonNil(pending.ClaimedAmount)
	return pending, ok, nil
}

// SetPendingWithdrawalRecord persists the pending entry owned by (addr, id).
func (m *Manager) SetPendingWithdrawalRecord(addr types.Address, id uint64, pending PendingWithdrawal) error {
	pending.FullAmount = nonNil(pending.FullAmount)
	pending.ClaimedAmount = nonNil(pending.ClaimedAmount)
	return m.writeRecord(stakingPendingKey(addr, id), pending)
}

// DeletePendingWithdrawalRecord removes the pending entry owned by (addr, id).
func (m *Manager) DeletePendingWithdrawalRecord(addr types.Address, id uint64) error {
	return m.deleteRecord(stakingPendingKey(addr, id))
}

// PendingIDs returns the insertion-ordered active pending ids of the address.
func (m *Manager) PendingIDs(addr types.Address) ([]uint64, error) {
	var ids []uint64
	if _, err := m.readRecord(stakingIDsKey(addr), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetPendingIDs overwrites the active pending id list of the address.
func (m *Manager) SetPendingIDs(addr types.Address, ids []uint64) error {
	if len(ids) == 0 {
		return m.deleteRecord(stakingIDsKey(addr))
	}
	return m.writeRecord(stakingIDsKey(addr), ids)
}
