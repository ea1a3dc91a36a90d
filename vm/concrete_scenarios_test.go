package vm

import (
	"testing"

	"github.com/coreevm/fevm/hostdb"
	"github.com/coreevm/fevm/params"
)

// Scenario 4: STATICCALL disallows SSTORE. A callee running `PUSH1 1 PUSH1
// 0 SSTORE` under a static call traps with WriteInStaticContext; the caller
// observes success=0 (here: a non-nil error), gas_left=0, and no returndata
// — a trap consumes all gas forwarded to the callee, unlike a REVERT.
func TestEVMStaticCallDisallowsSstore(t *testing.T) {
	db := hostdb.NewMemDB()
	caller := evmTestAddr(1)
	callee := evmTestAddr(0x20)
	db.SetCode(callee, []byte{0x60, 0x01, 0x60, 0x00, 0x55})

	e := NewEVM(db, params.DefaultConfig(params.Latest), evmTestBlock(), TxContext{Origin: caller})
	out, leftOverGas, err := e.Call(CallParams{
		Caller:      caller,
		Address:     callee,
		CodeAddress: callee,
		Gas:         100_000,
		IsStatic:    true,
	})
	if err != ErrWriteProtection {
		t.Fatalf("Call err = %v, want ErrWriteProtection", err)
	}
	if leftOverGas != 0 {
		t.Errorf("leftOverGas = %d, want 0", leftOverGas)
	}
	if len(out) != 0 {
		t.Errorf("out = %x, want empty", out)
	}
}
