package hostdb

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/types"
)

func testAddr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

func testHash(b byte) types.Hash {
	var h types.Hash
	h[31] = b
	return h
}

func TestMemDB_Balance(t *testing.T) {
	db := NewMemDB()
	addr := testAddr(1)

	if bal := db.GetBalance(addr); !bal.IsZero() {
		t.Fatalf("expected zero balance for non-existent account, got %s", bal)
	}

	db.SetBalance(addr, uint256.NewInt(100))
	if bal := db.GetBalance(addr); bal.Cmp(uint256.NewInt(100)) != 0 {
		t.Fatalf("expected balance 100, got %s", bal)
	}
}

func TestMemDB_BalanceReturnsCopy(t *testing.T) {
	db := NewMemDB()
	addr := testAddr(1)
	db.SetBalance(addr, uint256.NewInt(100))

	bal := db.GetBalance(addr)
	bal.SetUint64(999)
	if db.GetBalance(addr).Cmp(uint256.NewInt(100)) != 0 {
		t.Fatalf("mutating a returned balance must not affect the store")
	}
}

func TestMemDB_Nonce(t *testing.T) {
	db := NewMemDB()
	addr := testAddr(2)

	if n := db.GetNonce(addr); n != 0 {
		t.Fatalf("expected nonce 0, got %d", n)
	}
	db.SetNonce(addr, 7)
	if n := db.GetNonce(addr); n != 7 {
		t.Fatalf("expected nonce 7, got %d", n)
	}
}

func TestMemDB_Code(t *testing.T) {
	db := NewMemDB()
	addr := testAddr(3)

	if code := db.GetCode(addr); code != nil {
		t.Fatalf("expected nil code for non-existent account, got %x", code)
	}
	if hash := db.GetCodeHash(addr); hash != (types.Hash{}) {
		t.Fatalf("expected zero code hash for non-existent account, got %s", hash)
	}

	code := []byte{0x60, 0x00, 0x60, 0x00, 0xf3}
	db.SetCode(addr, code)
	if got := db.GetCode(addr); string(got) != string(code) {
		t.Fatalf("code mismatch: got %x", got)
	}
	if hash := db.GetCodeHash(addr); hash == types.EmptyCodeHash || hash.IsZero() {
		t.Fatalf("expected non-empty code hash after SetCode, got %s", hash)
	}
}

func TestMemDB_EmptyCodeHashAfterSetCodeNil(t *testing.T) {
	db := NewMemDB()
	addr := testAddr(4)
	db.SetCode(addr, []byte{0x01})
	db.SetCode(addr, nil)
	if hash := db.GetCodeHash(addr); hash != types.EmptyCodeHash {
		t.Fatalf("expected empty code hash after clearing code, got %s", hash)
	}
}

func TestMemDB_Storage(t *testing.T) {
	db := NewMemDB()
	addr := testAddr(5)
	slot := testHash(1)

	if val := db.GetState(addr, slot); !val.IsZero() {
		t.Fatalf("expected zero slot, got %s", val)
	}

	val := testHash(42)
	db.SetState(addr, slot, val)
	if got := db.GetState(addr, slot); got != val {
		t.Fatalf("slot mismatch: got %s, want %s", got, val)
	}

	db.SetState(addr, slot, types.Hash{})
	if got := db.GetState(addr, slot); !got.IsZero() {
		t.Fatalf("expected zero slot after clearing, got %s", got)
	}
}

func TestMemDB_ExistAndDelete(t *testing.T) {
	db := NewMemDB()
	addr := testAddr(6)

	if db.Exist(addr) {
		t.Fatalf("expected account to not exist yet")
	}
	db.SetNonce(addr, 1)
	if !db.Exist(addr) {
		t.Fatalf("expected account to exist after SetNonce")
	}
	db.DeleteAccount(addr)
	if db.Exist(addr) {
		t.Fatalf("expected account to be gone after DeleteAccount")
	}
	if n := db.GetNonce(addr); n != 0 {
		t.Fatalf("expected nonce 0 after delete, got %d", n)
	}
}

func TestMemDB_CreateAccount(t *testing.T) {
	db := NewMemDB()
	addr := testAddr(7)
	db.CreateAccount(addr)
	if !db.Exist(addr) {
		t.Fatalf("expected account to exist after CreateAccount")
	}
	if hash := db.GetCodeHash(addr); hash != types.EmptyCodeHash {
		t.Fatalf("expected empty code hash on fresh account, got %s", hash)
	}
}
