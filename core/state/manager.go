package state

import (
	"errors"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"custodia/core/types"
	"custodia/storage"
)

// Manager mediates all reads and writes between the native modules and the
// underlying key-value store. Records are RLP encoded under keccak-hashed
// composite keys. The host applies operations atomically and in a single total
// order, so the manager performs no locking of its own.
type Manager struct {
	db storage.Database
}

// NewManager constructs a state manager over the supplied database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var errNilDatabase = errors.New("state: database not configured")

// KVGet decodes the record stored under the hashed key into out. The boolean
// reports whether the key was present.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if m == nil || m.db == nil {
		return false, errNilDatabase
	}
	raw, err := m.db.Get(ethcrypto.Keccak256(key))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVPut RLP-encodes value and stores it under the hashed key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return errNilDatabase
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(ethcrypto.Keccak256(key), encoded)
}

var accountPrefix = []byte("account/")

func accountKey(addr [20]byte) []byte {
	buf := make([]byte, len(accountPrefix)+len(addr))
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], addr[:])
	return buf
}

type storedAccount struct {
	Balance *big.Int
}

// GetAccount loads the ledger account for an address. Unknown addresses
// resolve to a zero-balance account.
func (m *Manager) GetAccount(addr [20]byte) (*types.Account, error) {
	var stored storedAccount
	ok, err := m.KVGet(accountKey(addr), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.NewAccount(), nil
	}
	acc := types.NewAccount()
	if stored.Balance != nil {
		acc.Balance = new(big.Int).Set(stored.Balance)
	}
	return acc, nil
}

// PutAccount persists the ledger account for an address.
func (m *Manager) PutAccount(addr [20]byte, account *types.Account) error {
	balance := big.NewInt(0)
	if account != nil && account.Balance != nil {
		if account.Balance.Sign() < 0 {
			return errors.New("state: negative account balance")
		}
		balance = new(big.Int).Set(account.Balance)
	}
	return m.KVPut(accountKey(addr), &storedAccount{Balance: balance})
}
