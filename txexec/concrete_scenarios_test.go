package txexec

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/hostdb"
	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
	"github.com/coreevm/fevm/vm"
)

// Scenario 1: PUSH0 PUSH0 MSTORE PUSH1 0x20 PUSH0 RETURN, Shanghai+.
// 21000 intrinsic + 2 + 2 + 6 (3 base + 3 first-word expansion) + 3 + 2 + 0 = 21015.
func TestRun_ConcretePush0MstoreReturn(t *testing.T) {
	db := hostdb.NewMemDB()
	from := types.Address{1}
	to := types.Address{2}
	fund(db, from, 1_000_000_000)
	db.SetCode(to, []byte{0x5f, 0x5f, 0x52, 0x60, 0x20, 0x5f, 0xf3})

	cfg := params.DefaultConfig(params.Shanghai)
	msg := &Message{
		From:     from,
		To:       &to,
		Nonce:    0,
		Value:    new(big.Int),
		GasLimit: 100_000,
		GasPrice: big.NewInt(1),
	}

	result, err := Run(db, cfg, testBlock(), msg)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if result.Failed() {
		t.Fatalf("unexpected execution error: %v", result.Err)
	}
	if result.UsedGas != 21015 {
		t.Errorf("UsedGas = %d, want 21015", result.UsedGas)
	}
	want := make([]byte, 32)
	if len(result.ReturnData) != 32 {
		t.Fatalf("ReturnData length = %d, want 32", len(result.ReturnData))
	}
	for i, b := range result.ReturnData {
		if b != want[i] {
			t.Fatalf("ReturnData = %x, want 32 zero bytes", result.ReturnData)
		}
	}
}

// Scenario 2: cold then warm SLOAD, Berlin+.
// 21000 intrinsic + 3+3 (PUSH1 x2) + 2100 (cold) + 100 (warm) = 23206.
func TestRun_ConcreteColdThenWarmSload(t *testing.T) {
	db := hostdb.NewMemDB()
	from := types.Address{1}
	to := types.Address{2}
	fund(db, from, 1_000_000_000)
	db.SetCode(to, []byte{0x60, 0x00, 0x54, 0x60, 0x00, 0x54, 0x00})

	cfg := params.DefaultConfig(params.Berlin)
	msg := &Message{
		From:     from,
		To:       &to,
		Nonce:    0,
		Value:    new(big.Int),
		GasLimit: 30_000,
		GasPrice: big.NewInt(1),
	}

	result, err := Run(db, cfg, testBlock(), msg)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if result.Failed() {
		t.Fatalf("unexpected execution error: %v", result.Err)
	}
	if result.UsedGas != 23206 {
		t.Errorf("UsedGas = %d, want 23206", result.UsedGas)
	}
}

// Scenario 3: SSTORE set-then-reset within one transaction, London+.
// SSTORE 0->1 charges 22100 (2100 cold + 20000 set); SSTORE 1->0 charges 100
// (warm, dirty slot). The per-SSTORE charges above are exactly as spec.md
// states. The refund the dirty-slot rule (EIP-2200/3529) actually credits
// for this sequence is 19900 (GasSstoreSet - WarmStorageReadCost, since the
// slot's original and final values both equal zero) — not the 24600 spec.md
// arrives at by a different arithmetic path. See DESIGN.md for the decision
// to follow the canonical EIP-3529 formula this module implements rather
// than spec.md's figure. Either way the refund is capped at
// tx_gas_used/5, and that cap is what this test exercises end to end.
func TestRun_ConcreteSstoreSetThenResetRefund(t *testing.T) {
	db := hostdb.NewMemDB()
	from := types.Address{1}
	to := types.Address{2}
	fund(db, from, 1_000_000_000)
	// PUSH1 1 PUSH1 0 SSTORE PUSH1 0 PUSH1 0 SSTORE STOP
	db.SetCode(to, []byte{0x60, 0x01, 0x60, 0x00, 0x55, 0x60, 0x00, 0x60, 0x00, 0x55, 0x00})

	cfg := params.DefaultConfig(params.London)
	msg := &Message{
		From:     from,
		To:       &to,
		Nonce:    0,
		Value:    new(big.Int),
		GasLimit: 100_000,
		GasPrice: big.NewInt(1),
	}

	result, err := Run(db, cfg, testBlock(), msg)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if result.Failed() {
		t.Fatalf("unexpected execution error: %v", result.Err)
	}

	preRefundUsed := uint64(21000 + 4*3 + 22100 + 100) // intrinsic + 4 PUSH1s + both SSTOREs
	const refundBeforeCap = 19900
	cap := preRefundUsed / 5
	wantRefund := uint64(refundBeforeCap)
	if wantRefund > cap {
		wantRefund = cap
	}
	wantUsed := preRefundUsed - wantRefund
	if result.UsedGas != wantUsed {
		t.Errorf("UsedGas = %d, want %d (pre-refund %d, capped refund %d)", result.UsedGas, wantUsed, preRefundUsed, wantRefund)
	}
	if result.UsedGas == preRefundUsed-refundBeforeCap {
		t.Fatal("refund should have been capped at tx_gas_used/5, not applied in full")
	}
}

// Scenario 5: CREATE collision. Sender nonce 0, CREATE target already has
// nonce 1. Expected: CreateCollision, sender nonce still incremented
// (Spurious Dragon+), all gas allotted to the create consumed.
func TestRun_ConcreteCreateCollision(t *testing.T) {
	db := hostdb.NewMemDB()
	from := types.Address{1}
	fund(db, from, 1_000_000_000)

	collideAddr := vm.CreateAddress(from, 0)
	db.SetNonce(collideAddr, 1)

	cfg := params.DefaultConfig(params.Prague)
	msg := &Message{
		From:     from,
		To:       nil,
		Nonce:    0,
		Value:    new(big.Int),
		GasLimit: 100_000,
		GasPrice: big.NewInt(1),
		Data:     []byte{byte(0x00)}, // minimal non-empty initcode, irrelevant: collision trips before it runs
	}

	result, err := Run(db, cfg, testBlock(), msg)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if !errors.Is(result.Err, vm.ErrContractAddressCollision) {
		t.Fatalf("Err = %v, want ErrContractAddressCollision", result.Err)
	}
	if got := db.GetNonce(from); got != 1 {
		t.Errorf("sender nonce = %d, want 1 (incremented despite collision)", got)
	}
	if result.UsedGas != msg.GasLimit {
		t.Errorf("UsedGas = %d, want %d (all gas consumed on collision)", result.UsedGas, msg.GasLimit)
	}
}

// Scenario 6: EIP-6780 SELFDESTRUCT, Cancun+. A pre-existing contract (not
// created this transaction) self-destructs to B: balance moves, A is not
// deleted, A's code and storage persist.
func TestRun_ConcreteSelfdestructPreexistingNotDeleted(t *testing.T) {
	db := hostdb.NewMemDB()
	from := types.Address{1}
	a := types.Address{0xa1}
	b := types.Address{0xb2}
	fund(db, from, 1_000_000_000)

	code := append([]byte{0x73}, b.Bytes()...) // PUSH20 <b>
	code = append(code, 0xff)                  // SELFDESTRUCT
	db.SetCode(a, code)
	db.SetNonce(a, 1)
	db.SetBalance(a, uint256.NewInt(5000))
	storageSlot := types.Hash{31: 7}
	storageVal := types.Hash{31: 9}
	db.SetState(a, storageSlot, storageVal)

	cfg := params.DefaultConfig(params.Cancun)
	msg := &Message{
		From:     from,
		To:       &a,
		Nonce:    0,
		Value:    new(big.Int),
		GasLimit: 100_000,
		GasPrice: big.NewInt(1),
	}

	result, err := Run(db, cfg, testBlock(), msg)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if result.Failed() {
		t.Fatalf("unexpected execution error: %v", result.Err)
	}

	if got := db.GetBalance(a).Uint64(); got != 0 {
		t.Errorf("A's balance = %d, want 0", got)
	}
	if got := db.GetBalance(b).Uint64(); got != 5000 {
		t.Errorf("B's balance = %d, want 5000", got)
	}
	if !db.Exist(a) {
		t.Fatal("A should not be deleted (EIP-6780: not created this transaction)")
	}
	if len(db.GetCode(a)) != len(code) {
		t.Errorf("A's code length = %d, want %d (code should persist)", len(db.GetCode(a)), len(code))
	}
	if got := db.GetState(a, storageSlot); got != storageVal {
		t.Errorf("A's storage slot = %x, want %x (storage should persist)", got, storageVal)
	}
}
