package txexec

import (
	"math/big"
	"testing"

	"github.com/coreevm/fevm/crypto"
	"github.com/coreevm/fevm/hostdb"
	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
	"github.com/coreevm/fevm/vm"
)

func signAuthorization(t *testing.T, chainID *big.Int, delegate types.Address, nonce uint64) (*types.Authorization, types.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	auth := &types.Authorization{ChainID: chainID, Address: delegate, Nonce: nonce}
	hash := authorizationHash(auth)
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	auth.R = new(big.Int).SetBytes(sig[:32])
	auth.S = new(big.Int).SetBytes(sig[32:64])
	auth.V = new(big.Int).SetUint64(uint64(sig[64]))
	return auth, crypto.PubkeyToAddress(key.PublicKey)
}

func TestProcessAuthorizations_InstallsDelegation(t *testing.T) {
	db := hostdb.NewMemDB()
	chainID := big.NewInt(1)
	delegate := types.Address{0xde}

	auth, authority := signAuthorization(t, chainID, delegate, 0)

	cfg := params.DefaultConfig(params.Prague)
	e := vm.NewEVM(db, cfg, testBlock(), vm.TxContext{})

	ProcessAuthorizations(e, []types.Authorization{*auth}, chainID)
	e.Commit()

	code := db.GetCode(authority)
	if !IsDelegated(code) {
		t.Fatalf("expected authority's code to carry the delegation designator, got %x", code)
	}
	target, ok := ResolveDelegation(code)
	if !ok || target != delegate {
		t.Fatalf("expected delegation target %s, got %s (ok=%v)", delegate.Hex(), target.Hex(), ok)
	}
	if got := db.GetNonce(authority); got != 1 {
		t.Fatalf("expected authority nonce incremented to 1, got %d", got)
	}
}

func TestProcessAuthorizations_SkipsMismatchedNonce(t *testing.T) {
	db := hostdb.NewMemDB()
	chainID := big.NewInt(1)
	delegate := types.Address{0xde}

	auth, authority := signAuthorization(t, chainID, delegate, 5) // authority's real nonce is 0

	cfg := params.DefaultConfig(params.Prague)
	e := vm.NewEVM(db, cfg, testBlock(), vm.TxContext{})

	ProcessAuthorizations(e, []types.Authorization{*auth}, chainID)
	e.Commit()

	if code := db.GetCode(authority); len(code) != 0 {
		t.Fatalf("expected no delegation installed for a stale-nonce authorization, got %x", code)
	}
}

func TestProcessAuthorizations_SkipsWrongChainID(t *testing.T) {
	db := hostdb.NewMemDB()
	delegate := types.Address{0xde}

	auth, authority := signAuthorization(t, big.NewInt(999), delegate, 0)

	cfg := params.DefaultConfig(params.Prague)
	e := vm.NewEVM(db, cfg, testBlock(), vm.TxContext{})

	ProcessAuthorizations(e, []types.Authorization{*auth}, big.NewInt(1))
	e.Commit()

	if code := db.GetCode(authority); len(code) != 0 {
		t.Fatalf("expected no delegation installed for a chain-ID mismatch, got %x", code)
	}
}

func TestIsDelegated(t *testing.T) {
	if IsDelegated([]byte{0x60, 0x00}) {
		t.Fatalf("plain bytecode must not read as delegated")
	}
	code := makeDelegationCode(types.Address{1})
	if !IsDelegated(code) {
		t.Fatalf("expected delegation-prefixed code to read as delegated")
	}
}
