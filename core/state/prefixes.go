package state

import (
	"encoding/binary"
	"strings"

	"tokenforge/core/types"
)

var (
	balancePrefix        = []byte("token/balance/")
	supplyPrefix         = []byte("token/supply/")
	feeKey               = []byte("token/fee")
	pairPrefix           = []byte("token/pair/")
	rolePrefix           = []byte("token/role/")
	mintChannelPrefix    = []byte("mint/channel/")
	stakingGlobalKey     = []byte("staking/global")
	stakingUserPrefix    = []byte("staking/user/")
	stakingPendingPrefix = []byte("staking/pending/")
	stakingIDsPrefix     = []byte("staking/pendingids/")
	vestingUserPrefix    = []byte("vesting/user/")
	vestingUnlockPrefix  = []byte("vesting/unlock/")
	vestingIDsPrefix     = []byte("vesting/unlockids/")
	vestingTotalKey      = []byte("vesting/total")
	migrationUserPrefix  = []byte("migration/user/")
	migrationTotalsKey   = []byte("migration/totals")
	genesisKey           = []byte("meta/genesis")
)

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func appendKey(prefix []byte, parts ...[]byte) []byte {
	key := append([]byte(nil), prefix...)
	for _, part := range parts {
		key = append(key, part...)
	}
	return key
}

func balanceKey(symbol string, addr types.Address) []byte {
	return appendKey(balancePrefix, []byte(normalizeSymbol(symbol)), []byte("/"), addr[:])
}

func supplyKey(symbol string) []byte {
	return appendKey(supplyPrefix, []byte(normalizeSymbol(symbol)))
}

func pairKey(addr types.Address) []byte {
	return appendKey(pairPrefix, addr[:])
}

func roleKey(role string, addr types.Address) []byte {
	return appendKey(rolePrefix, []byte(role), []byte("/"), addr[:])
}

func mintChannelKey(channel string) []byte {
	return appendKey(mintChannelPrefix, []byte(strings.ToLower(strings.TrimSpace(channel))))
}

func stakingUserKey(addr types.Address) []byte {
	return appendKey(stakingUserPrefix, addr[:])
}

func stakingPendingKey(addr types.Address, id uint64) []byte {
	return appendKey(stakingPendingPrefix, addr[:], []byte("/"), encodeID(id))
}

func stakingIDsKey(addr types.Address) []byte {
	return appendKey(stakingIDsPrefix, addr[:])
}

func vestingUserKey(addr types.Address) []byte {
	return appendKey(vestingUserPrefix, addr[:])
}

func vestingUnlockKey(addr types.Address, id uint64) []byte {
	return appendKey(vestingUnlockPrefix, addr[:], []byte("/"), encodeID(id))
}

func vestingIDsKey(addr types.Address) []byte {
	return appendKey(vestingIDsPrefix, addr[:])
}

func migrationUserKey(addr types.Address) []byte {
	return appendKey(migrationUserPrefix, addr[:])
}

func encodeID(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}
