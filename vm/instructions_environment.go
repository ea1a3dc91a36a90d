package vm

import (
	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

// getData returns size bytes from data starting at start, zero-padded if
// the requested range runs past the end.
func getData(data []byte, start, size uint64) []byte {
	out := make([]byte, size)
	if start >= uint64(len(data)) {
		return out
	}
	end := start + size
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(out, data[start:end])
	return out
}

func opAddress(f *Frame) error {
	var v uint256.Int
	v.SetBytes(f.address.Bytes())
	return f.stack.Push(&v)
}

func opOrigin(f *Frame) error {
	var v uint256.Int
	v.SetBytes(f.evm.Tx.Origin.Bytes())
	return f.stack.Push(&v)
}

func opCaller(f *Frame) error {
	var v uint256.Int
	v.SetBytes(f.caller.Bytes())
	return f.stack.Push(&v)
}

func opCallValue(f *Frame) error {
	v := f.value
	return f.stack.Push(&v)
}

func opCalldataLoad(f *Frame) error {
	offset, err := f.stack.Pop()
	if err != nil {
		return err
	}
	var v uint256.Int
	if offset.IsUint64() {
		v.SetBytes(getData(f.calldata, offset.Uint64(), 32))
	}
	return f.stack.Push(&v)
}

func opCalldataSize(f *Frame) error {
	v := uint256.NewInt(uint64(len(f.calldata)))
	return f.stack.Push(v)
}

func opCalldataCopy(f *Frame) error {
	destOffset, offset, size := f.stack.Pop3()
	if err := chargeMemoryExpansion(f, &destOffset, &size); err != nil {
		return err
	}
	if !f.UseGas(CopyGas(size.Uint64())) {
		return ErrOutOfGas
	}
	if size.IsZero() {
		return nil
	}
	var from uint64
	if offset.IsUint64() {
		from = offset.Uint64()
	} else {
		from = uint64(len(f.calldata))
	}
	data := getData(f.calldata, from, size.Uint64())
	f.memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil
}

func opCodeSize(f *Frame) error {
	v := uint256.NewInt(uint64(len(f.code)))
	return f.stack.Push(v)
}

func opCodeCopy(f *Frame) error {
	destOffset, offset, size := f.stack.Pop3()
	if err := chargeMemoryExpansion(f, &destOffset, &size); err != nil {
		return err
	}
	if !f.UseGas(CopyGas(size.Uint64())) {
		return ErrOutOfGas
	}
	if size.IsZero() {
		return nil
	}
	var from uint64
	if offset.IsUint64() {
		from = offset.Uint64()
	} else {
		from = uint64(len(f.code))
	}
	data := getData(f.code, from, size.Uint64())
	f.memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil
}

func opGasprice(f *Frame) error {
	v := *f.evm.Tx.GasPrice
	return f.stack.Push(&v)
}

func extCodeAccessCost(f *Frame, addr types.Address) uint64 {
	if !f.hardfork.AtLeast(params.Berlin) {
		return 0
	}
	return f.evm.accessList.TouchAddress(addr, f.hardfork)
}

func opExtCodeSize(f *Frame) error {
	a, err := f.stack.Pop()
	if err != nil {
		return err
	}
	addr := types.BytesToAddress(a.Bytes())
	if !f.UseGas(extCodeAccessCost(f, addr)) {
		return ErrOutOfGas
	}
	v := uint256.NewInt(uint64(len(f.evm.GetCode(addr))))
	return f.stack.Push(v)
}

func opExtCodeCopy(f *Frame) error {
	a, destOffset, offset, size := f.stack.Pop4()
	addr := types.BytesToAddress(a.Bytes())
	if !f.UseGas(extCodeAccessCost(f, addr)) {
		return ErrOutOfGas
	}
	if err := chargeMemoryExpansion(f, &destOffset, &size); err != nil {
		return err
	}
	if !f.UseGas(CopyGas(size.Uint64())) {
		return ErrOutOfGas
	}
	if size.IsZero() {
		return nil
	}
	code := f.evm.GetCode(addr)
	var from uint64
	if offset.IsUint64() {
		from = offset.Uint64()
	} else {
		from = uint64(len(code))
	}
	data := getData(code, from, size.Uint64())
	f.memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil
}

func opExtCodeHash(f *Frame) error {
	a, err := f.stack.Pop()
	if err != nil {
		return err
	}
	addr := types.BytesToAddress(a.Bytes())
	if !f.UseGas(extCodeAccessCost(f, addr)) {
		return ErrOutOfGas
	}
	var v uint256.Int
	if f.evm.Host.Exist(addr) {
		v.SetBytes(f.evm.Host.GetCodeHash(addr).Bytes())
	}
	return f.stack.Push(&v)
}

func opBalance(f *Frame) error {
	a, err := f.stack.Pop()
	if err != nil {
		return err
	}
	addr := types.BytesToAddress(a.Bytes())
	if !f.UseGas(extCodeAccessCost(f, addr)) {
		return ErrOutOfGas
	}
	v := *f.evm.GetBalance(addr)
	return f.stack.Push(&v)
}

func opSelfBalance(f *Frame) error {
	v := *f.evm.GetBalance(f.address)
	return f.stack.Push(&v)
}

func opChainID(f *Frame) error {
	v := f.evm.Config.ChainID
	return f.stack.Push(&v)
}

func opReturnDataSize(f *Frame) error {
	v := uint256.NewInt(uint64(len(f.returnData)))
	return f.stack.Push(v)
}

func opReturnDataCopy(f *Frame) error {
	destOffset, offset, size := f.stack.Pop3()
	if !offset.IsUint64() || !size.IsUint64() {
		return ErrOutOfBounds
	}
	end := offset.Uint64() + size.Uint64()
	if end < offset.Uint64() || end > uint64(len(f.returnData)) {
		return ErrOutOfBounds
	}
	if err := chargeMemoryExpansion(f, &destOffset, &size); err != nil {
		return err
	}
	if !f.UseGas(CopyGas(size.Uint64())) {
		return ErrOutOfGas
	}
	if size.IsZero() {
		return nil
	}
	f.memory.Set(destOffset.Uint64(), size.Uint64(), f.returnData[offset.Uint64():end])
	return nil
}
