package vm

import (
	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

// Frame is one active call's execution context: its own stack, memory,
// program counter, and gas meter. A Frame is constructed by the EVM
// orchestrator on CALL/CREATE, drives the dispatch loop to completion, and
// is then discarded — nothing about it outlives the call that owns it.
type Frame struct {
	evm *EVM

	analysis *CodeAnalysis
	code     []byte

	pc            uint64
	gasRemaining  int64
	stack         *Stack
	memory        *Memory
	returnData    []byte // output of the most recently completed child call/create
	output        []byte // set by RETURN/REVERT

	caller  types.Address
	address types.Address
	value   uint256.Int

	calldata []byte
	isStatic bool
	depth    int

	stopped  bool
	reverted bool
	jumped   bool

	hardfork params.Hardfork
}

// NewFrame constructs a Frame ready to execute code. gas is the gas budget
// made available to this call; it does not include the 63/64 withholding
// the caller already applied.
func NewFrame(evm *EVM, caller, address types.Address, code []byte, calldata []byte, value *uint256.Int, gas uint64, depth int, isStatic bool) *Frame {
	f := &Frame{
		evm:          evm,
		analysis:     Analyze(code),
		code:         code,
		gasRemaining: int64(gas),
		stack:        NewStack(),
		memory:       NewMemory(),
		caller:       caller,
		address:      address,
		calldata:     calldata,
		isStatic:     isStatic,
		depth:        depth,
		hardfork:     evm.Config.Hardfork,
	}
	if value != nil {
		f.value = *value
	}
	return f
}

// GetOp returns the opcode at position n, or STOP if n is past the end of
// code (the dispatch loop treats running off the end as an implicit STOP).
func (f *Frame) GetOp(n uint64) OpCode {
	if n < uint64(len(f.code)) {
		return OpCode(f.code[n])
	}
	return STOP
}

// UseGas attempts to deduct gas from the frame's remaining budget. It
// reports false (without mutating gasRemaining) when the charge would drive
// the budget negative, the out-of-gas condition.
func (f *Frame) UseGas(gas uint64) bool {
	if f.gasRemaining < 0 || uint64(f.gasRemaining) < gas {
		return false
	}
	f.gasRemaining -= int64(gas)
	return true
}

// RefundGas returns unused gas to the frame, used when a child call/create
// returns leftover gas to its parent.
func (f *Frame) RefundGas(gas uint64) {
	f.gasRemaining += int64(gas)
}

// Gas returns the frame's current remaining gas.
func (f *Frame) Gas() uint64 {
	if f.gasRemaining < 0 {
		return 0
	}
	return uint64(f.gasRemaining)
}
