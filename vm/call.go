package vm

import (
	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

// CallParams fully describes one message call. The four CALL-family
// opcodes differ only in how they fill this struct: CALL transfers value
// into Address; CALLCODE and DELEGATECALL execute CodeAddress's code
// against the *current* frame's storage address; DELEGATECALL additionally
// inherits Caller and Value from its own parent frame rather than setting
// new ones; STATICCALL forces IsStatic and forbids value.
type CallParams struct {
	Caller        types.Address // msg.sender as the callee observes it
	Address       types.Address // storage/self address as the callee observes it (CALLER's ADDRESS)
	CodeAddress   types.Address // address whose code actually executes
	Input         []byte
	Gas           uint64
	Value         *uint256.Int // CALLVALUE as the callee observes it
	TransferValue bool          // whether balance actually moves Caller -> Address
	IsStatic      bool
}

// Call dispatches one message call: the spec's inner_call. It snapshots
// state, resolves CodeAddress's code (following one level of EIP-7702
// delegation), routes to a precompile or constructs a Frame, runs it, and
// commits on success or restores the snapshot on revert/failure.
func (e *EVM) Call(p CallParams) (ret []byte, leftOverGas uint64, err error) {
	if e.depth > e.Config.MaxCallDepth {
		return nil, p.Gas, ErrCallDepthExceeded
	}
	if p.TransferValue && p.Value != nil && p.Value.Sign() != 0 && e.GetBalance(p.Caller).Lt(p.Value) {
		return nil, p.Gas, ErrInsufficientBalance
	}

	snap := e.snapshotState()
	e.Touch(p.Address)

	if p.TransferValue && p.Value != nil && p.Value.Sign() != 0 {
		e.transfer(p.Caller, p.Address, p.Value)
	}

	code, codeAddr := e.resolveCode(p.CodeAddress)

	if pc := e.precompiles.Lookup(codeAddr); pc != nil {
		out, used, ok := pc.Run(p.Input, p.Gas)
		if !ok {
			e.revertToSnapshot(snap)
			return nil, 0, ErrExecutionReverted
		}
		return out, p.Gas - used, nil
	}

	if len(code) == 0 {
		return nil, p.Gas, nil
	}

	e.depth++
	defer func() { e.depth-- }()

	frame := NewFrame(e, p.Caller, p.Address, code, p.Input, p.Value, p.Gas, e.depth, p.IsStatic)

	out, runErr := e.run(frame)
	leftOverGas = frame.Gas()

	if runErr != nil {
		e.revertToSnapshot(snap)
		if runErr == ErrExecutionReverted {
			return out, leftOverGas, ErrExecutionReverted
		}
		return nil, 0, runErr
	}
	return out, leftOverGas, nil
}

// resolveCode returns the code to execute for addr, following an EIP-7702
// delegation designator (0xEF01 ‖ address) one level, Prague+. codeAddr is
// the address whose code actually runs (the delegate's, for a 7702
// account), used for precompile lookup: a delegation to a precompile
// address is not itself meaningful, but resolveCode does not special-case
// it beyond returning that address.
func (e *EVM) resolveCode(addr types.Address) (code []byte, codeAddr types.Address) {
	code = e.GetCode(addr)
	if !e.Config.Hardfork.AtLeast(params.Prague) {
		return code, addr
	}
	if len(code) == 23 && code[0] == 0xEF && code[1] == 0x01 {
		delegate := types.BytesToAddress(code[3:23])
		return e.GetCode(delegate), delegate
	}
	return code, addr
}

func (e *EVM) transfer(from, to types.Address, value *uint256.Int) {
	fromBal := e.GetBalance(from)
	var newFrom uint256.Int
	newFrom.Sub(fromBal, value)
	e.SetBalanceWithSnapshot(from, &newFrom)

	toBal := e.GetBalance(to)
	var newTo uint256.Int
	newTo.Add(toBal, value)
	e.SetBalanceWithSnapshot(to, &newTo)
}
