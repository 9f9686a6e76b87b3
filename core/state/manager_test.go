package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"tokenforge/core/types"
	"tokenforge/storage"
)

var (
	addrOne = types.MustParseAddress("0x1111111111111111111111111111111111111111")
	addrTwo = types.MustParseAddress("0x2222222222222222222222222222222222222222")
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func TestBalanceRoundTrip(t *testing.T) {
	m := newManager(t)
	balance, err := m.Balance("SLG", addrOne)
	require.NoError(t, err)
	require.Zero(t, balance.Sign(), "missing balance defaults to zero")

	require.NoError(t, m.SetBalance("SLG", addrOne, big.NewInt(12345)))
	balance, err = m.Balance("SLG", addrOne)
	require.NoError(t, err)
	require.Equal(t, int64(12345), balance.Int64())

	// Symbols are independent namespaces.
	other, err := m.Balance("RSUN", addrOne)
	require.NoError(t, err)
	require.Zero(t, other.Sign())
}

func TestNegativeBalanceRejected(t *testing.T) {
	m := newManager(t)
	require.Error(t, m.SetBalance("SLG", addrOne, big.NewInt(-1)))
}

func TestAdjustSupply(t *testing.T) {
	m := newManager(t)
	total, err := m.AdjustSupply("SLG", big.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, int64(1000), total.Int64())

	total, err = m.AdjustSupply("SLG", big.NewInt(-400))
	require.NoError(t, err)
	require.Equal(t, int64(600), total.Int64())

	_, err = m.AdjustSupply("SLG", big.NewInt(-601))
	require.Error(t, err, "supply must not turn negative")

	total, err = m.Supply("SLG")
	require.NoError(t, err)
	require.Equal(t, int64(600), total.Int64(), "failed adjustment leaves supply unchanged")
}

func TestTransferFeeDefaults(t *testing.T) {
	m := newManager(t)
	fee, err := m.TransferFee()
	require.NoError(t, err)
	require.Equal(t, Fee{Numerator: 0, Denominator: 1000}, fee)

	require.NoError(t, m.SetTransferFee(Fee{Numerator: 77, Denominator: 500}))
	fee, err = m.TransferFee()
	require.NoError(t, err)
	require.Equal(t, Fee{Numerator: 77, Denominator: 500}, fee)
}

func TestPairFlagLifecycle(t *testing.T) {
	m := newManager(t)
	ok, err := m.IsPair(addrOne)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.SetPair(addrOne, true))
	ok, err = m.IsPair(addrOne)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.SetPair(addrOne, false))
	ok, err = m.IsPair(addrOne)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRoleLifecycle(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.SetRole("ROLE_ADMIN", addrOne, true))
	ok, err := m.HasRole("ROLE_ADMIN", addrOne)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.HasRole("ROLE_MINTER", addrOne)
	require.NoError(t, err)
	require.False(t, ok, "roles are independent")

	require.NoError(t, m.SetRole("ROLE_ADMIN", addrOne, false))
	ok, err = m.HasRole("ROLE_ADMIN", addrOne)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGenesisFlag(t *testing.T) {
	m := newManager(t)
	ok, err := m.GenesisApplied()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.MarkGenesisApplied())
	ok, err = m.GenesisApplied()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMintChannelRoundTrip(t *testing.T) {
	m := newManager(t)
	_, ok, err := m.MintChannelState("admin")
	require.NoError(t, err)
	require.False(t, ok)

	in := MintChannel{RatePerSecond: big.NewInt(10), HardCap: big.NewInt(500), LastMintedAt: 42}
	require.NoError(t, m.SetMintChannelState("admin", in))
	out, ok, err := m.MintChannelState("admin")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, out.RatePerSecond.Cmp(in.RatePerSecond))
	require.Equal(t, 0, out.HardCap.Cmp(in.HardCap))
	require.Equal(t, uint64(42), out.LastMintedAt)

	// Channels are independent records.
	_, ok, err = m.MintChannelState("game")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStakingGlobalRoundTrip(t *testing.T) {
	m := newManager(t)
	in := StakingGlobal{
		TotalStake:           big.NewInt(1000),
		RewardRate:           big.NewInt(5),
		RewardPerTokenStored: big.NewInt(777),
		LastUpdateTime:       100,
		PeriodFinish:         200,
		RewardDuration:       300,
		PendingRepeat:        4,
		PendingPeriod:        50,
		FeeNumerator:         10,
		FeeDenominator:       1000,
		Paused:               true,
	}
	require.NoError(t, m.SetStakingGlobalState(in))
	out, ok, err := m.StakingGlobalState()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, out.TotalStake.Cmp(in.TotalStake))
	require.Equal(t, 0, out.RewardPerTokenStored.Cmp(in.RewardPerTokenStored))
	require.True(t, out.Paused)
	require.Equal(t, in.PendingRepeat, out.PendingRepeat)
}

func TestStakingUserDefaults(t *testing.T) {
	m := newManager(t)
	user, err := m.StakingUserState(addrOne)
	require.NoError(t, err)
	require.Zero(t, user.Stake.Sign())
	require.Zero(t, user.RewardPerTokenPaid.Sign())
	require.Zero(t, user.NextPendingID)
}

func TestPendingWithdrawalLifecycle(t *testing.T) {
	m := newManager(t)
	_, ok, err := m.PendingWithdrawalRecord(addrOne, 0)
	require.NoError(t, err)
	require.False(t, ok)

	in := PendingWithdrawal{FullAmount: big.NewInt(400), ClaimedAmount: big.NewInt(100), CreatedAt: 7}
	require.NoError(t, m.SetPendingWithdrawalRecord(addrOne, 0, in))
	out, ok, err := m.PendingWithdrawalRecord(addrOne, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, out.FullAmount.Cmp(in.FullAmount))
	require.Equal(t, 0, out.ClaimedAmount.Cmp(in.ClaimedAmount))

	// Records are keyed per owner.
	_, ok, err = m.PendingWithdrawalRecord(addrTwo, 0)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.DeletePendingWithdrawalRecord(addrOne, 0))
	_, ok, err = m.PendingWithdrawalRecord(addrOne, 0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPendingIDs(t *testing.T) {
	m := newManager(t)
	ids, err := m.PendingIDs(addrOne)
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, m.SetPendingIDs(addrOne, []uint64{3, 1, 2}))
	ids, err = m.PendingIDs(addrOne)
	require.NoError(t, err)
	require.Equal(t, []uint64{3, 1, 2}, ids, "insertion order is preserved")

	require.NoError(t, m.SetPendingIDs(addrOne, nil))
	ids, err = m.PendingIDs(addrOne)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestVestingRoundTrips(t *testing.T) {
	m := newManager(t)
	user, err := m.VestingUserState(addrOne)
	require.NoError(t, err)
	require.Zero(t, user.RSUNConverted.Sign())

	user.RSUNConverted = big.NewInt(100)
	user.INFConverted = big.NewInt(200)
	user.UnlockBalance = big.NewInt(300)
	user.NextUnlockID = 2
	require.NoError(t, m.SetVestingUserState(addrOne, user))
	out, err := m.VestingUserState(addrOne)
	require.NoError(t, err)
	require.Equal(t, 0, out.UnlockBalance.Cmp(big.NewInt(300)))
	require.Equal(t, uint64(2), out.NextUnlockID)

	record := UnlockRecord{
		FullAmount:    big.NewInt(1000),
		VestedAmount:  big.NewInt(900),
		ClaimedAmount: big.NewInt(0),
		CreatedAt:     55,
	}
	require.NoError(t, m.SetUnlockRecordState(addrOne, 0, record))
	got, ok, err := m.UnlockRecordState(addrOne, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, got.VestedAmount.Cmp(record.VestedAmount))

	total, err := m.TotalUnlockBalance()
	require.NoError(t, err)
	require.Zero(t, total.Sign())
	require.NoError(t, m.SetTotalUnlockBalance(big.NewInt(900)))
	total, err = m.TotalUnlockBalance()
	require.NoError(t, err)
	require.Equal(t, int64(900), total.Int64())
}

func TestMigrationRoundTrips(t *testing.T) {
	m := newManager(t)
	balances, err := m.MigrationUserBalances(addrOne)
	require.NoError(t, err)
	require.Zero(t, balances.RSUN.Sign())
	require.Zero(t, balances.INF.Sign())

	balances.RSUN = big.NewInt(700)
	balances.INF = big.NewInt(500)
	require.NoError(t, m.SetMigrationUserBalances(addrOne, balances))
	out, err := m.MigrationUserBalances(addrOne)
	require.NoError(t, err)
	require.Equal(t, 0, out.RSUN.Cmp(big.NewInt(700)))

	totals, err := m.MigrationTotals()
	require.NoError(t, err)
	require.Zero(t, totals.RSUN.Sign())
	totals.RSUN = big.NewInt(700)
	require.NoError(t, m.SetMigrationTotals(totals))
	totals, err = m.MigrationTotals()
	require.NoError(t, err)
	require.Equal(t, 0, totals.RSUN.Cmp(big.NewInt(700)))
}
