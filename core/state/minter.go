package state

import (
	"math/big"
)

// MintChannel persists the rate-limiter state of one minting channel.
type MintChannel struct {
	RatePerSecond *big.Int
	HardCap       *big.Int
	LastMintedAt  uint64
}

// MintChannelState returns the stored limiter state for the named channel.
// It reports false when the channel has never been initialised.
func (m *Manager) MintChannelState(channel string) (MintChannel, bool, error) {
	ch := MintChannel{}
	ok, err := m.readRecord(mintChannelKey(channel), &ch)
	if err != nil {
		return MintChannel{}, false, err
	}
	if !ok {
		return MintChannel{RatePerSecond: big.NewInt(0), HardCap: big.NewInt(0)}, false, nil
	}
	ch.RatePerSecond = nonNil(ch.RatePerSecond)
	ch.HardCap = nonNil(ch.HardCap)
	return ch, true, nil
}

// SetMintChannelState persists the limiter state for the named channel.
func (m *Manager) SetMintChannelState(channel string, ch MintChannel) error {
	ch.RatePerSecond = nonNil(ch.RatePerSecond)
	ch.HardCap = nonNil(ch.HardCap)
	return m.writeRecord(mintChannelKey(channel), ch)
}
