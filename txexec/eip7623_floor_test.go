package txexec

import (
	"testing"

	"github.com/coreevm/fevm/params"
)

func TestApplyFloor_NoopBeforePrague(t *testing.T) {
	data := make([]byte, 1000)
	gas := TxGas
	if got := ApplyFloor(gas, data, nil, false, params.Cancun); got != gas {
		t.Fatalf("expected floor to be a no-op pre-Prague, got %d, want %d", got, gas)
	}
}

func TestApplyFloor_RaisesLowGasUsed(t *testing.T) {
	nonZero := make([]byte, 100)
	for i := range nonZero {
		nonZero[i] = 1
	}
	floor := FloorGas(nonZero, nil, false, params.Prague)
	if got := ApplyFloor(1, nonZero, nil, false, params.Prague); got != floor {
		t.Fatalf("expected floor %d to win over tiny gas used, got %d", floor, got)
	}
}

func TestApplyFloor_LeavesHighGasUsedAlone(t *testing.T) {
	data := []byte{0x01}
	floor := FloorGas(data, nil, false, params.Prague)
	high := floor + 50_000
	if got := ApplyFloor(high, data, nil, false, params.Prague); got != high {
		t.Fatalf("expected gas used %d to win over floor %d, got %d", high, floor, got)
	}
}

func TestFloorGas_CheaperPerByteThanIntrinsic(t *testing.T) {
	data := make([]byte, 200)
	for i := range data {
		if i%2 == 0 {
			data[i] = 1
		}
	}
	floor := FloorGas(data, nil, false, params.Prague)
	intrinsic := IntrinsicGas(data, nil, false, params.Prague)
	if floor >= intrinsic {
		t.Fatalf("expected floor rate (%d) to price calldata below intrinsic rate (%d) for the same input", floor, intrinsic)
	}
}
