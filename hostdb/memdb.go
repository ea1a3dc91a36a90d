// Package hostdb provides a flat, in-memory implementation of vm.Host.
//
// Unlike the teacher's MemoryStateDB, this store carries no journal of its
// own: vm.EVM already journals every balance/nonce/code/storage write for
// the lifetime of a transaction and only calls through to Host.Set* once,
// at Commit time, so the backing store here only needs to hold the latest
// committed value per account.
package hostdb

import (
	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/crypto"
	"github.com/coreevm/fevm/types"
)

type account struct {
	balance uint256.Int
	nonce   uint64
	code    []byte
	codeHash types.Hash
	storage map[types.Hash]types.Hash
}

func newAccount() *account {
	return &account{
		codeHash: types.EmptyCodeHash,
		storage:  make(map[types.Hash]types.Hash),
	}
}

// MemDB is a map-backed Host. Zero value is not usable; use NewMemDB.
type MemDB struct {
	accounts map[types.Address]*account
}

// NewMemDB returns an empty store.
func NewMemDB() *MemDB {
	return &MemDB{accounts: make(map[types.Address]*account)}
}

func (m *MemDB) get(addr types.Address) *account {
	return m.accounts[addr]
}

func (m *MemDB) getOrCreate(addr types.Address) *account {
	if a := m.accounts[addr]; a != nil {
		return a
	}
	a := newAccount()
	m.accounts[addr] = a
	return a
}

func (m *MemDB) GetBalance(addr types.Address) *uint256.Int {
	if a := m.get(addr); a != nil {
		bal := a.balance
		return &bal
	}
	return new(uint256.Int)
}

func (m *MemDB) SetBalance(addr types.Address, bal *uint256.Int) {
	m.getOrCreate(addr).balance = *bal
}

func (m *MemDB) GetNonce(addr types.Address) uint64 {
	if a := m.get(addr); a != nil {
		return a.nonce
	}
	return 0
}

func (m *MemDB) SetNonce(addr types.Address, nonce uint64) {
	m.getOrCreate(addr).nonce = nonce
}

func (m *MemDB) GetCode(addr types.Address) []byte {
	if a := m.get(addr); a != nil {
		return a.code
	}
	return nil
}

func (m *MemDB) SetCode(addr types.Address, code []byte) {
	a := m.getOrCreate(addr)
	a.code = code
	if len(code) == 0 {
		a.codeHash = types.EmptyCodeHash
		return
	}
	a.codeHash = types.BytesToHash(crypto.Keccak256(code))
}

func (m *MemDB) GetCodeHash(addr types.Address) types.Hash {
	if a := m.get(addr); a != nil {
		return a.codeHash
	}
	return types.Hash{}
}

func (m *MemDB) GetState(addr types.Address, slot types.Hash) types.Hash {
	if a := m.get(addr); a != nil {
		return a.storage[slot]
	}
	return types.Hash{}
}

func (m *MemDB) SetState(addr types.Address, slot types.Hash, val types.Hash) {
	a := m.getOrCreate(addr)
	if val.IsZero() {
		delete(a.storage, slot)
		return
	}
	a.storage[slot] = val
}

func (m *MemDB) Exist(addr types.Address) bool {
	return m.accounts[addr] != nil
}

func (m *MemDB) DeleteAccount(addr types.Address) {
	delete(m.accounts, addr)
}

// CreateAccount ensures addr has an account object, for callers seeding
// genesis/pre-state balances before a message touches the address.
func (m *MemDB) CreateAccount(addr types.Address) {
	m.getOrCreate(addr)
}
