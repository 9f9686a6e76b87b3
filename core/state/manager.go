package state

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"tokenforge/storage"
)

var errNilManager = errors.New("state: manager unavailable")

// Manager mediates every engine's access to the key-value store. Records are
// RLP encoded under byte prefixes so independent modules never collide.
type Manager struct {
	db storage.Database
}

// NewManager wraps the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func (m *Manager) writeRecord(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return errNilManager
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

// readRecord decodes the stored record into out. It reports false without
// error when the key has never been written.
func (m *Manager) readRecord(key []byte, out interface{}) (bool, error) {
	if m == nil || m.db == nil {
		return false, errNilManager
	}
	data, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) deleteRecord(key []byte) error {
	if m == nil || m.db == nil {
		return errNilManager
	}
	return m.db.Delete(key)
}

// readBigInt loads a bare big integer record, defaulting to zero.
func (m *Manager) readBigInt(key []byte) (*big.Int, error) {
	value := new(big.Int)
	ok, err := m.readRecord(key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

func (m *Manager) writeBigInt(key []byte, value *big.Int) error {
	if value == nil {
		value = big.NewInt(0)
	}
	if value.Sign() < 0 {
		return errors.New("state: negative amounts cannot be stored")
	}
	return m.writeRecord(key, value)
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
