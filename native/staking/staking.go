package staking

import (
	"errors"
	"math/big"

	"tokenforge/core/types"
)

const (
	// DefaultRewardDuration spreads each added reward over four weeks.
	DefaultRewardDuration = 4 * 7 * 24 * 60 * 60
	// DefaultPendingRepeat is the number of release steps of a pending
	// withdrawal.
	DefaultPendingRepeat = 4
	// DefaultPendingPeriod is the duration of one release step.
	DefaultPendingPeriod = 7 * 24 * 60 * 60
)

// PercentScale scales claimable percentages: 100 * PercentScale == 100%.
var PercentScale = big.NewInt(1_000_000_000)

// precision scales reward-per-token accumulation to keep integer division
// losses negligible.
var precision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ModuleAddr escrows staked balances, pending withdrawals and undistributed
// rewards.
var ModuleAddr = types.ModuleAddress("staking")

var (
	// ErrInsufficientStake indicates a withdrawal larger than the caller's
	// settled stake.
	ErrInsufficientStake = errors.New("staking: insufficient stake")
	// ErrInvalidAmount indicates a zero or otherwise nonsensical amount.
	ErrInvalidAmount = errors.New("staking: invalid amount")
	// ErrInvalidConfiguration indicates malformed parameters, e.g. a zero
	// denominator or a zero-length period.
	ErrInvalidConfiguration = errors.New("staking: invalid configuration")
	// ErrNotFound indicates an unknown pending id.
	ErrNotFound = errors.New("staking: pending not found")
	// ErrPaused indicates staking is paused.
	ErrPaused = errors.New("staking: paused")
)
