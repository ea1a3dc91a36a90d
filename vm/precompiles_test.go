package vm

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/coreevm/fevm/hostdb"
	"github.com/coreevm/fevm/params"
)

func TestCallDispatchesToIdentityPrecompile(t *testing.T) {
	db := hostdb.NewMemDB()
	caller := evmTestAddr(1)
	identity := precompileAddr(4)

	e := NewEVM(db, params.DefaultConfig(params.Latest), evmTestBlock(), TxContext{Origin: caller})
	input := []byte("hello precompile")
	out, _, err := e.Call(CallParams{
		Caller:      caller,
		Address:     identity,
		CodeAddress: identity,
		Input:       input,
		Gas:         100_000,
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Errorf("identity precompile output = %q, want %q", out, input)
	}
}

func TestCallDispatchesToSHA256Precompile(t *testing.T) {
	db := hostdb.NewMemDB()
	caller := evmTestAddr(1)
	sha256Addr := precompileAddr(2)

	e := NewEVM(db, params.DefaultConfig(params.Latest), evmTestBlock(), TxContext{Origin: caller})
	input := []byte("hash me")
	out, _, err := e.Call(CallParams{
		Caller:      caller,
		Address:     sha256Addr,
		CodeAddress: sha256Addr,
		Input:       input,
		Gas:         100_000,
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	want := sha256.Sum256(input)
	if !bytes.Equal(out, want[:]) {
		t.Errorf("sha256 precompile output = %x, want %x", out, want)
	}
}

func TestCallPrecompileInsufficientGasReverts(t *testing.T) {
	db := hostdb.NewMemDB()
	caller := evmTestAddr(1)
	sha256Addr := precompileAddr(2)

	e := NewEVM(db, params.DefaultConfig(params.Latest), evmTestBlock(), TxContext{Origin: caller})
	out, leftOverGas, err := e.Call(CallParams{
		Caller:      caller,
		Address:     sha256Addr,
		CodeAddress: sha256Addr,
		Input:       []byte("hash me"),
		Gas:         1, // far below SHA256's real cost
	})
	if err != ErrExecutionReverted {
		t.Fatalf("Call err = %v, want ErrExecutionReverted", err)
	}
	if out != nil {
		t.Errorf("out-of-gas precompile call returned output %x, want nil", out)
	}
	if leftOverGas != 0 {
		t.Errorf("leftOverGas = %d, want 0", leftOverGas)
	}
}

func TestPrecompileSetVariesByHardfork(t *testing.T) {
	pre := SelectPrecompiles(params.Frontier)
	if pre.Lookup(precompileAddr(9)) != nil {
		t.Error("blake2F (0x09, EIP-152) should not be active at Frontier")
	}

	post := SelectPrecompiles(params.Latest)
	if post.Lookup(precompileAddr(9)) == nil {
		t.Error("blake2F (0x09, EIP-152) should be active at the latest hardfork")
	}
}

func TestResolveCodeFollowsEIP7702Delegation(t *testing.T) {
	db := hostdb.NewMemDB()
	caller := evmTestAddr(1)
	eoa := evmTestAddr(0x30)
	delegate := evmTestAddr(0x31)

	designator := append([]byte{0xEF, 0x01, 0x00}, delegate.Bytes()...)
	db.SetCode(eoa, designator)
	db.SetCode(delegate, []byte{byte(STOP)})

	e := NewEVM(db, params.DefaultConfig(params.Prague), evmTestBlock(), TxContext{Origin: caller})
	code, codeAddr := e.resolveCode(eoa)
	if codeAddr != delegate {
		t.Errorf("resolveCode codeAddr = %s, want delegate %s", codeAddr.Hex(), delegate.Hex())
	}
	if len(code) != 1 || code[0] != byte(STOP) {
		t.Errorf("resolveCode code = %x, want delegate's single STOP byte", code)
	}
}

func TestResolveCodeIgnoresDelegationPrePrague(t *testing.T) {
	db := hostdb.NewMemDB()
	caller := evmTestAddr(1)
	eoa := evmTestAddr(0x30)
	delegate := evmTestAddr(0x31)

	designator := append([]byte{0xEF, 0x01, 0x00}, delegate.Bytes()...)
	db.SetCode(eoa, designator)

	e := NewEVM(db, params.DefaultConfig(params.Berlin), evmTestBlock(), TxContext{Origin: caller})
	code, codeAddr := e.resolveCode(eoa)
	if codeAddr != eoa {
		t.Errorf("resolveCode codeAddr = %s, want %s (no delegation before Prague)", codeAddr.Hex(), eoa.Hex())
	}
	if !bytes.Equal(code, designator) {
		t.Error("resolveCode should return the designator bytes verbatim pre-Prague")
	}
}
