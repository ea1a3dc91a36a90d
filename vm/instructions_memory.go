package vm

import (
	"golang.org/x/crypto/sha3"

	"github.com/holiman/uint256"
)

// memWords returns the word count memory must grow to in order to cover
// [offset, offset+size), or an error if the range overflows uint64.
func memWords(offset, size *uint256.Int) (uint64, bool) {
	if size.IsZero() {
		return 0, true
	}
	var end uint256.Int
	end.Add(offset, size)
	if !end.IsUint64() || end.Uint64() > (1<<40) {
		return 0, false
	}
	return toWordSize(end.Uint64()), true
}

// chargeMemoryExpansion grows f.memory to cover [offset, offset+size),
// charging only the incremental cost over the current size.
func chargeMemoryExpansion(f *Frame, offset, size *uint256.Int) error {
	if size.IsZero() {
		return nil
	}
	words, ok := memWords(offset, size)
	if !ok {
		return ErrOutOfGas
	}
	newSize := words * 32
	cost := MemoryExpansionGas(uint64(f.memory.Len()), newSize)
	if !f.UseGas(cost) {
		return ErrOutOfGas
	}
	f.memory.Resize(newSize)
	return nil
}

func opSha3(f *Frame) error {
	offset, size := f.stack.Pop2()
	if err := chargeMemoryExpansion(f, &offset, &size); err != nil {
		return err
	}
	if !f.UseGas(Sha3Gas(size.Uint64())) {
		return ErrOutOfGas
	}
	data := f.memory.GetPtr(int64(offset.Uint64()), int64(size.Uint64()))
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out uint256.Int
	out.SetBytes(h.Sum(nil))
	return f.stack.Push(&out)
}

func opMload(f *Frame) error {
	offset, err := f.stack.Pop()
	if err != nil {
		return err
	}
	size := uint256.NewInt(32)
	if err := chargeMemoryExpansion(f, &offset, size); err != nil {
		return err
	}
	var v uint256.Int
	v.SetBytes(f.memory.GetPtr(int64(offset.Uint64()), 32))
	return f.stack.Push(&v)
}

func opMstore(f *Frame) error {
	offset, val := f.stack.Pop2()
	size := uint256.NewInt(32)
	if err := chargeMemoryExpansion(f, &offset, size); err != nil {
		return err
	}
	f.memory.Set32(offset.Uint64(), &val)
	return nil
}

func opMstore8(f *Frame) error {
	offset, val := f.stack.Pop2()
	size := uint256.NewInt(1)
	if err := chargeMemoryExpansion(f, &offset, size); err != nil {
		return err
	}
	f.memory.Set(offset.Uint64(), 1, []byte{byte(val.Uint64())})
	return nil
}

func opMsize(f *Frame) error {
	v := uint256.NewInt(uint64(f.memory.Len()))
	return f.stack.Push(v)
}

func opMcopy(f *Frame) error {
	dst, src, size := f.stack.Pop3()
	maxOffset := &dst
	if src.Gt(&dst) {
		maxOffset = &src
	}
	if err := chargeMemoryExpansion(f, maxOffset, &size); err != nil {
		return err
	}
	if !f.UseGas(CopyGas(size.Uint64())) {
		return ErrOutOfGas
	}
	if size.IsZero() {
		return nil
	}
	data := f.memory.GetPtr(int64(src.Uint64()), int64(size.Uint64()))
	f.memory.Set(dst.Uint64(), size.Uint64(), data)
	return nil
}
