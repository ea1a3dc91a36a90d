package vm

import "github.com/holiman/uint256"

func opPop(f *Frame) error {
	_, err := f.stack.Pop()
	return err
}

func opJump(f *Frame) error {
	dest, err := f.stack.Pop()
	if err != nil {
		return err
	}
	if !dest.IsUint64() || !f.analysis.IsValidJumpdest(dest.Uint64()) {
		return ErrInvalidJump
	}
	f.pc = dest.Uint64()
	f.jumped = true
	return nil
}

func opJumpi(f *Frame) error {
	dest, cond := f.stack.Pop2()
	if cond.IsZero() {
		return nil
	}
	if !dest.IsUint64() || !f.analysis.IsValidJumpdest(dest.Uint64()) {
		return ErrInvalidJump
	}
	f.pc = dest.Uint64()
	f.jumped = true
	return nil
}

func opJumpdest(f *Frame) error { return nil }

func opPc(f *Frame) error {
	v := uint256.NewInt(f.pc)
	return f.stack.Push(v)
}

func opGas(f *Frame) error {
	v := uint256.NewInt(f.Gas())
	return f.stack.Push(v)
}

func opPush0(f *Frame) error {
	return f.stack.Push(new(uint256.Int))
}

// makePush returns the handler for PUSH1..PUSH32: push the n immediate
// bytes following the opcode, zero-padded on the right if code ends early.
func makePush(n int) func(f *Frame) error {
	return func(f *Frame) error {
		start := f.pc + 1
		var buf [32]byte
		end := start + uint64(n)
		codeLen := uint64(len(f.code))
		if end > codeLen {
			end = codeLen
		}
		if start < codeLen {
			copy(buf[32-n:], f.code[start:end])
		}
		var v uint256.Int
		v.SetBytes(buf[:])
		if err := f.stack.Push(&v); err != nil {
			return err
		}
		f.pc += uint64(n)
		return nil
	}
}

// makeDup returns the handler for DUP1..DUP16.
func makeDup(n int) func(f *Frame) error {
	return func(f *Frame) error {
		return f.stack.Dup(n)
	}
}

// makeSwap returns the handler for SWAP1..SWAP16.
func makeSwap(n int) func(f *Frame) error {
	return func(f *Frame) error {
		f.stack.Swap(n)
		return nil
	}
}
