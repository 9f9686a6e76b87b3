package staking

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"tokenforge/core/events"
	"tokenforge/core/state"
	"tokenforge/core/types"
	"tokenforge/native/token"
	"tokenforge/observability/metrics"
)

var errNilState = errors.New("staking engine: state not configured")

// State describes the staking persistence the engine needs.
type State interface {
	StakingGlobalState() (state.StakingGlobal, bool, error)
	SetStakingGlobalState(global state.StakingGlobal) error
	StakingUserState(addr types.Address) (state.StakingUser, error)
	SetStakingUserState(addr types.Address, user state.StakingUser) error
	PendingWithdrawalRecord(addr types.Address, id uint64) (state.PendingWithdrawal, bool, error)
	SetPendingWithdrawalRecord(addr types.Address, id uint64, pending state.PendingWithdrawal) error
	DeletePendingWithdrawalRecord(addr types.Address, id uint64) error
	PendingIDs(addr types.Address) ([]uint64, error)
	SetPendingIDs(addr types.Address, ids []uint64) error
}

// Engine accepts stake, continuously accrues rewards per staked unit and
// escrows withdrawals into step-released pending entries. Settled rewards
// compound into the staker's active position.
type Engine struct {
	state   State
	ledger  *token.Engine
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates a staking engine bound to the ledger.
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

func defaultGlobal() state.StakingGlobal {
	return state.StakingGlobal{
		TotalStake:           big.NewInt(0),
		RewardRate:           big.NewInt(0),
		RewardPerTokenStored: big.NewInt(0),
		RewardDuration:       DefaultRewardDuration,
		PendingRepeat:        DefaultPendingRepeat,
		PendingPeriod:        DefaultPendingPeriod,
		FeeNumerator:         0,
		FeeDenominator:       1000,
	}
}

func (e *Engine) global() (state.StakingGlobal, error) {
	global, ok, err := e.state.StakingGlobalState()
	if err != nil {
		return state.StakingGlobal{}, err
	}
	if !ok {
		return defaultGlobal(), nil
	}
	return global, nil
}

// Init persists the default global parameters when the engine has never run.
func (e *Engine) Init() error {
	if err := e.requireState(); err != nil {
		return err
	}
	_, ok, err := e.state.StakingGlobalState()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return e.state.SetStakingGlobalState(defaultGlobal())
}

// lastTimeRewardApplicable caps accrual at the end of the reward period.
func lastTimeRewardApplicable(global state.StakingGlobal, now int64) int64 {
	if now > int64(global.PeriodFinish) {
		return int64(global.PeriodFinish)
	}
	return now
}

func rewardPerTokenAt(global state.StakingGlobal, now int64) *big.Int {
	stored := new(big.Int).Set(global.RewardPerTokenStored)
	if global.TotalStake.Sign() == 0 {
		return stored
	}
	applicable := lastTimeRewardApplicable(global, now)
	elapsed := applicable - int64(global.LastUpdateTime)
	if elapsed <= 0 {
		return stored
	}
	accrued := new(big.Int).Mul(global.RewardRate, big.NewInt(elapsed))
	accrued.Mul(accrued, precision)
	accrued.Quo(accrued, global.TotalStake)
	return stored.Add(stored, accrued)
}

func earnedAt(global state.StakingGlobal, user state.StakingUser, now int64) *big.Int {
	delta := new(big.Int).Sub(rewardPerTokenAt(global, now), user.RewardPerTokenPaid)
	if delta.Sign() <= 0 {
		return big.NewInt(0)
	}
	earned := new(big.Int).Mul(user.Stake, delta)
	return earned.Quo(earned, precision)
}

// settleGlobal advances the reward-per-token accumulator to now. It must run
// before any mutation of totalStake, preserving the pre-mutation accrual
// ratio.
func settleGlobal(global *state.StakingGlobal, now int64) {
	global.RewardPerTokenStored = rewardPerTokenAt(*global, now)
	applicable := lastTimeRewardApplicable(*global, now)
	if applicable > int64(global.LastUpdateTime) {
		global.LastUpdateTime = uint64(applicable)
	}
}

// settleUser folds the user's earned reward into their active stake,
// compounding it into totalStake as well.
func settleUser(global *state.StakingGlobal, user *state.StakingUser, now int64) {
	settleGlobal(global, now)
	delta := new(big.Int).Sub(global.RewardPerTokenStored, user.RewardPerTokenPaid)
	if delta.Sign() > 0 && user.Stake.Sign() > 0 {
		earned := new(big.Int).Mul(user.Stake, delta)
		earned.Quo(earned, precision)
		user.Stake = new(big.Int).Add(user.Stake, earned)
		global.TotalStake = new(big.Int).Add(global.TotalStake, earned)
	}
	user.RewardPerTokenPaid = new(big.Int).Set(global.RewardPerTokenStored)
}

// undistributed returns the reward not yet streamed out of the current
// period.
func undistributed(global state.StakingGlobal, now int64) *big.Int {
	if now >= int64(global.PeriodFinish) {
		return big.NewInt(0)
	}
	remaining := big.NewInt(int64(global.PeriodFinish) - now)
	return remaining.Mul(global.RewardRate, remaining)
}

// RewardPerToken returns the cumulative reward entitlement per staked unit.
func (e *Engine) RewardPerToken() (*big.Int, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	global, err := e.global()
	if err != nil {
		return nil, err
	}
	return rewardPerTokenAt(global, e.now()), nil
}

// UserStake returns the caller's stake including accrued-but-unsettled
// reward.
func (e *Engine) UserStake(addr types.Address) (*big.Int, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	global, err := e.global()
	if err != nil {
		return nil, err
	}
	user, err := e.state.StakingUserState(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Add(user.Stake, earnedAt(global, user, e.now())), nil
}

// TotalStake returns the total stake including accrued-but-unsettled reward
// distribution.
func (e *Engine) TotalStake() (*big.Int, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	global, err := e.global()
	if err != nil {
		return nil, err
	}
	delta := new(big.Int).Sub(rewardPerTokenAt(global, e.now()), global.RewardPerTokenStored)
	unsettled := new(big.Int).Mul(global.TotalStake, delta)
	unsettled.Quo(unsettled, precision)
	return unsettled.Add(unsettled, global.TotalStake), nil
}

// Params returns the persisted global staking state for inspection.
func (e *Engine) Params() (state.StakingGlobal, error) {
	if err := e.requireState(); err != nil {
		return state.StakingGlobal{}, err
	}
	return e.global()
}

// TotalDurationReward returns rewardRate x rewardDuration, the emission of a
// full period at the current rate.
func (e *Engine) TotalDurationReward() (*big.Int, error) {
	global, err := e.Params()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Mul(global.RewardRate, new(big.Int).SetUint64(global.RewardDuration)), nil
}

// AddReward pulls amount into the engine and folds any undistributed reward
// from the current period into a fresh period at a recomputed rate.
func (e *Engine) AddReward(caller types.Address, amount *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	global, err := e.global()
	if err != nil {
		return err
	}
	now := e.now()
	settleGlobal(&global, now)
	if err := e.ledger.Move(token.SymbolPrimary, caller, ModuleAddr, amount); err != nil {
		return err
	}
	pool := new(big.Int).Add(amount, undistributed(global, now))
	global.RewardRate = pool.Quo(pool, new(big.Int).SetUint64(global.RewardDuration))
	global.PeriodFinish = uint64(now) + global.RewardDuration
	global.LastUpdateTime = uint64(now)
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return err
	}
	e.emit(events.StakingReward{Type: events.TypeStakingRewardAdded, Amount: amount, RewardRate: global.RewardRate})
	return nil
}

// DecreaseReward removes amount from the undistributed remainder of the
// current period and returns it to the caller. The period end is unchanged;
// the rate is recomputed over the remaining window.
func (e *Engine) DecreaseReward(caller types.Address, amount *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	global, err := e.global()
	if err != nil {
		return err
	}
	now := e.now()
	settleGlobal(&global, now)
	remaining := undistributed(global, now)
	if amount.Cmp(remaining) > 0 {
		return fmt.Errorf("%w: only %s undistributed", ErrInvalidAmount, remaining)
	}
	if err := e.ledger.Move(token.SymbolPrimary, ModuleAddr, caller, amount); err != nil {
		return err
	}
	window := int64(global.PeriodFinish) - now
	pool := new(big.Int).Sub(remaining, amount)
	global.RewardRate = pool.Quo(pool, big.NewInt(window))
	global.LastUpdateTime = uint64(now)
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return err
	}
	e.emit(events.StakingReward{Type: events.TypeStakingRewardDecreased, Amount: amount, RewardRate: global.RewardRate})
	return nil
}

// ResetReward settles accrual and zeroes the reward rate. Undistributed
// tokens stay in the engine until recovered.
func (e *Engine) ResetReward(caller types.Address) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	global, err := e.global()
	if err != nil {
		return err
	}
	now := e.now()
	settleGlobal(&global, now)
	global.RewardRate = big.NewInt(0)
	if uint64(now) < global.PeriodFinish {
		global.PeriodFinish = uint64(now)
	}
	global.LastUpdateTime = uint64(now)
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return err
	}
	e.emit(events.StakingReward{Type: events.TypeStakingRewardReset, RewardRate: global.RewardRate})
	return nil
}

// UpdateRewardDuration changes the duration future AddReward calls spread
// rewards over.
func (e *Engine) UpdateRewardDuration(caller types.Address, seconds uint64) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	if seconds == 0 {
		return fmt.Errorf("%w: reward duration must not equal 0", ErrInvalidConfiguration)
	}
	global, err := e.global()
	if err != nil {
		return err
	}
	global.RewardDuration = seconds
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return err
	}
	e.emit(events.StakingParamUpdated{Type: events.TypeStakingRewardDurationUpdated, Params: map[string]string{
		"rewardDuration": strconv.FormatUint(seconds, 10),
	}})
	return nil
}

// UpdatePendingPeriod changes the global release schedule. Existing pending
// withdrawals are rescheduled too: claimable amounts are always computed
// against the current repeat and period.
func (e *Engine) UpdatePendingPeriod(caller types.Address, repeat, period uint64) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	if repeat == 0 || period == 0 {
		return fmt.Errorf("%w: repeat and period must not equal 0", ErrInvalidConfiguration)
	}
	global, err := e.global()
	if err != nil {
		return err
	}
	global.PendingRepeat = repeat
	global.PendingPeriod = period
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return err
	}
	e.emit(events.StakingParamUpdated{Type: events.TypeStakingPendingPeriodUpdated, Params: map[string]string{
		"repeat": strconv.FormatUint(repeat, 10),
		"period": strconv.FormatUint(period, 10),
	}})
	return nil
}

// SetFee updates the fee charged on pending claims.
func (e *Engine) SetFee(caller types.Address, numerator, denominator uint64) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	if denominator == 0 {
		return fmt.Errorf("%w: denominator must not equal 0", ErrInvalidConfiguration)
	}
	global, err := e.global()
	if err != nil {
		return err
	}
	global.FeeNumerator = numerator
	global.FeeDenominator = denominator
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return err
	}
	e.emit(events.StakingParamUpdated{Type: events.TypeStakingFeeUpdated, Params: map[string]string{
		"numerator":   strconv.FormatUint(numerator, 10),
		"denominator": strconv.FormatUint(denominator, 10),
	}})
	return nil
}

// Pause blocks new stake. Withdrawals and claims stay available so staked
// users are never trapped.
func (e *Engine) Pause(caller types.Address) error {
	return e.setPaused(caller, true)
}

// Unpause resumes staking.
func (e *Engine) Unpause(caller types.Address) error {
	return e.setPaused(caller, false)
}

func (e *Engine) setPaused(caller types.Address, paused bool) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	global, err := e.global()
	if err != nil {
		return err
	}
	global.Paused = paused
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return err
	}
	e.emit(events.StakingPauseToggled{Paused: paused})
	return nil
}

// record tallies the outcome of one staking operation.
func record(op string, err error) error {
	if err != nil {
		metrics.Engine().RecordFailure("staking", op)
		return err
	}
	metrics.Engine().RecordOperation("staking", op)
	return nil
}

// Stake settles rewards, then pulls amount from the caller into the engine.
func (e *Engine) Stake(caller types.Address, amount *big.Int) error {
	return record("stake", e.stake(caller, amount))
}

func (e *Engine) stake(caller types.Address, amount *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	global, err := e.global()
	if err != nil {
		return err
	}
	user, err := e.state.StakingUserState(caller)
	if err != nil {
		return err
	}
	now := e.now()
	settleUser(&global, &user, now)
	if global.Paused {
		return ErrPaused
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.ledger.Move(token.SymbolPrimary, caller, ModuleAddr, amount); err != nil {
		return err
	}
	user.Stake = new(big.Int).Add(user.Stake, amount)
	global.TotalStake = new(big.Int).Add(global.TotalStake, amount)
	if err := e.state.SetStakingUserState(caller, user); err != nil {
		return err
	}
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return err
	}
	e.emit(events.StakingStaked{Account: caller, Amount: amount, NewStake: user.Stake})
	return nil
}

// Withdraw settles rewards and escrows amount into a new pending entry. The
// tokens stay in the engine until claimed step by step.
func (e *Engine) Withdraw(caller types.Address, amount *big.Int) (uint64, error) {
	id, err := e.withdraw(caller, amount)
	return id, record("withdraw", err)
}

func (e *Engine) withdraw(caller types.Address, amount *big.Int) (uint64, error) {
	if err := e.requireState(); err != nil {
		return 0, err
	}
	global, err := e.global()
	if err != nil {
		return 0, err
	}
	user, err := e.state.StakingUserState(caller)
	if err != nil {
		return 0, err
	}
	now := e.now()
	settleUser(&global, &user, now)
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if amount.Cmp(user.Stake) > 0 {
		return 0, fmt.Errorf("%w: have %s, requested %s", ErrInsufficientStake, user.Stake, amount)
	}
	return e.createPending(caller, global, user, amount, now)
}

// WithdrawAll escrows the caller's entire settled stake, rewards included.
func (e *Engine) WithdrawAll(caller types.Address) (uint64, error) {
	id, err := e.withdrawAll(caller)
	return id, record("withdrawAll", err)
}

func (e *Engine) withdrawAll(caller types.Address) (uint64, error) {
	if err := e.requireState(); err != nil {
		return 0, err
	}
	global, err := e.global()
	if err != nil {
		return 0, err
	}
	user, err := e.state.StakingUserState(caller)
	if err != nil {
		return 0, err
	}
	now := e.now()
	settleUser(&global, &user, now)
	if user.Stake.Sign() == 0 {
		return 0, fmt.Errorf("%w: nothing staked", ErrInvalidAmount)
	}
	return e.createPending(caller, global, user, new(big.Int).Set(user.Stake), now)
}

func (e *Engine) createPending(caller types.Address, global state.StakingGlobal, user state.StakingUser, amount *big.Int, now int64) (uint64, error) {
	ids, err := e.state.PendingIDs(caller)
	if err != nil {
		return 0, err
	}
	user.Stake = new(big.Int).Sub(user.Stake, amount)
	global.TotalStake = new(big.Int).Sub(global.TotalStake, amount)
	id := user.NextPendingID
	user.NextPendingID++
	pending := state.PendingWithdrawal{
		FullAmount:    amount,
		ClaimedAmount: big.NewInt(0),
		CreatedAt:     uint64(now),
	}
	if err := e.state.SetPendingWithdrawalRecord(caller, id, pending); err != nil {
		return 0, err
	}
	if err := e.state.SetPendingIDs(caller, append(ids, id)); err != nil {
		return 0, err
	}
	if err := e.state.SetStakingUserState(caller, user); err != nil {
		return 0, err
	}
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return 0, err
	}
	e.emit(events.StakingPending{
		Type:       events.TypeStakingPendingCreated,
		Account:    caller,
		ID:         id,
		FullAmount: amount,
		Claimed:    pending.ClaimedAmount,
	})
	return id, nil
}

// pendingSteps returns how many release steps have fully elapsed, capped at
// the configured repeat count. The release never interpolates inside a step.
func pendingSteps(global state.StakingGlobal, pending state.PendingWithdrawal, now int64) uint64 {
	if now <= int64(pending.CreatedAt) || global.PendingPeriod == 0 {
		return 0
	}
	steps := (uint64(now) - pending.CreatedAt) / global.PendingPeriod
	if steps > global.PendingRepeat {
		steps = global.PendingRepeat
	}
	return steps
}

func pendingClaimable(global state.StakingGlobal, pending state.PendingWithdrawal, now int64) *big.Int {
	steps := pendingSteps(global, pending, now)
	released := new(big.Int).Mul(pending.FullAmount, new(big.Int).SetUint64(steps))
	released.Quo(released, new(big.Int).SetUint64(global.PendingRepeat))
	claimable := released.Sub(released, pending.ClaimedAmount)
	if claimable.Sign() < 0 {
		return big.NewInt(0)
	}
	return claimable
}

// PendingClaimablePercent returns the released fraction of the pending entry
// as a percentage scaled by PercentScale (100 * PercentScale == 100%).
func (e *Engine) PendingClaimablePercent(addr types.Address, id uint64) (*big.Int, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	global, err := e.global()
	if err != nil {
		return nil, err
	}
	pending, ok, err := e.state.PendingWithdrawalRecord(addr, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	steps := pendingSteps(global, pending, e.now())
	percent := new(big.Int).Mul(big.NewInt(100), PercentScale)
	percent.Mul(percent, new(big.Int).SetUint64(steps))
	return percent.Quo(percent, new(big.Int).SetUint64(global.PendingRepeat)), nil
}

// Claim pays out the released portion of the pending entry net of the claim
// fee, removing the entry once it is fully claimed.
func (e *Engine) Claim(caller types.Address, id uint64) error {
	return record("claim", e.claim(caller, id))
}

func (e *Engine) claim(caller types.Address, id uint64) error {
	if err := e.requireState(); err != nil {
		return err
	}
	global, err := e.global()
	if err != nil {
		return err
	}
	user, err := e.state.StakingUserState(caller)
	if err != nil {
		return err
	}
	now := e.now()
	settleUser(&global, &user, now)
	pending, ok, err := e.state.PendingWithdrawalRecord(caller, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	claimable := pendingClaimable(global, pending, now)
	if claimable.Sign() == 0 {
		return fmt.Errorf("%w: nothing released yet", ErrInvalidAmount)
	}
	fee := big.NewInt(0)
	if global.FeeDenominator != 0 && global.FeeNumerator != 0 {
		fee = new(big.Int).Mul(claimable, new(big.Int).SetUint64(global.FeeNumerator))
		fee.Quo(fee, new(big.Int).SetUint64(global.FeeDenominator))
	}
	net := new(big.Int).Sub(claimable, fee)
	if err := e.ledger.Move(token.SymbolPrimary, ModuleAddr, caller, net); err != nil {
		return err
	}
	pending.ClaimedAmount = new(big.Int).Add(pending.ClaimedAmount, claimable)
	finished := pending.ClaimedAmount.Cmp(pending.FullAmount) >= 0
	if finished {
		if err := e.state.DeletePendingWithdrawalRecord(caller, id); err != nil {
			return err
		}
		ids, err := e.state.PendingIDs(caller)
		if err != nil {
			return err
		}
		if err := e.state.SetPendingIDs(caller, removeID(ids, id)); err != nil {
			return err
		}
	} else {
		if err := e.state.SetPendingWithdrawalRecord(caller, id, pending); err != nil {
			return err
		}
	}
	if err := e.state.SetStakingUserState(caller, user); err != nil {
		return err
	}
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return err
	}
	eventType := events.TypeStakingPendingUpdated
	if finished {
		eventType = events.TypeStakingClaimed
	}
	e.emit(events.StakingPending{
		Type:       eventType,
		Account:    caller,
		ID:         id,
		FullAmount: pending.FullAmount,
		Claimed:    pending.ClaimedAmount,
		Paid:       net,
		Fee:        fee,
	})
	return nil
}

// CancelPending folds the unclaimed remainder of the pending entry back into
// the caller's active stake so they can re-enter without waiting out the
// release schedule.
func (e *Engine) CancelPending(caller types.Address, id uint64) error {
	return record("cancelPending", e.cancelPending(caller, id))
}

func (e *Engine) cancelPending(caller types.Address, id uint64) error {
	if err := e.requireState(); err != nil {
		return err
	}
	global, err := e.global()
	if err != nil {
		return err
	}
	user, err := e.state.StakingUserState(caller)
	if err != nil {
		return err
	}
	now := e.now()
	settleUser(&global, &user, now)
	pending, ok, err := e.state.PendingWithdrawalRecord(caller, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	remainder := new(big.Int).Sub(pending.FullAmount, pending.ClaimedAmount)
	user.Stake = new(big.Int).Add(user.Stake, remainder)
	global.TotalStake = new(big.Int).Add(global.TotalStake, remainder)
	if err := e.state.DeletePendingWithdrawalRecord(caller, id); err != nil {
		return err
	}
	ids, err := e.state.PendingIDs(caller)
	if err != nil {
		return err
	}
	if err := e.state.SetPendingIDs(caller, removeID(ids, id)); err != nil {
		return err
	}
	if err := e.state.SetStakingUserState(caller, user); err != nil {
		return err
	}
	if err := e.state.SetStakingGlobalState(global); err != nil {
		return err
	}
	e.emit(events.StakingPending{
		Type:       events.TypeStakingPendingCanceled,
		Account:    caller,
		ID:         id,
		FullAmount: pending.FullAmount,
		Claimed:    pending.ClaimedAmount,
	})
	return nil
}

// Recover sweeps amount of the engine's holdings of any symbol to the
// caller. Admin only.
func (e *Engine) Recover(caller types.Address, symbol string, amount *big.Int) error {
	if err := e.requireState(); err != nil {
		return err
	}
	if err := e.ledger.RequireRole(token.RoleAdmin, caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	held, err := e.ledger.BalanceOf(symbol, ModuleAddr)
	if err != nil {
		return err
	}
	if held.Cmp(amount) < 0 {
		return fmt.Errorf("%w: engine holds %s", ErrInvalidAmount, held)
	}
	return e.ledger.Move(symbol, ModuleAddr, caller, amount)
}

// UserPendingIDs returns the caller's active pending ids in insertion order.
func (e *Engine) UserPendingIDs(addr types.Address) ([]uint64, error) {
	if err := e.requireState(); err != nil {
		return nil, err
	}
	return e.state.PendingIDs(addr)
}

// UserPending returns the pending entry owned by (addr, id).
func (e *Engine) UserPending(addr types.Address, id uint64) (state.PendingWithdrawal, error) {
	if err := e.requireState(); err != nil {
		return state.PendingWithdrawal{}, err
	}
	pending, ok, err := e.state.PendingWithdrawalRecord(addr, id)
	if err != nil {
		return state.PendingWithdrawal{}, err
	}
	if !ok {
		return state.PendingWithdrawal{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return pending, nil
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
