package vm

import (
	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

func hashFromWord(v *uint256.Int) types.Hash {
	b := v.Bytes32()
	return types.BytesToHash(b[:])
}

func opSload(f *Frame) error {
	loc, err := f.stack.Pop()
	if err != nil {
		return err
	}
	slot := hashFromWord(&loc)

	if f.hardfork.AtLeast(params.Berlin) {
		if !f.UseGas(f.evm.accessList.TouchSlot(f.address, slot, f.hardfork)) {
			return ErrOutOfGas
		}
	}

	val := f.evm.storage.GetState(f.address, slot)
	var v uint256.Int
	v.SetBytes(val.Bytes())
	return f.stack.Push(&v)
}

func opSstore(f *Frame) error {
	if f.isStatic {
		return ErrWriteProtection
	}
	loc, valWord := f.stack.Pop2()
	slot := hashFromWord(&loc)
	newVal := hashFromWord(&valWord)

	var cold uint64
	if f.hardfork.AtLeast(params.Berlin) {
		if !f.evm.accessList.IsWarmSlot(f.address, slot) {
			cold = ColdSloadCost
		}
		f.evm.accessList.TouchSlot(f.address, slot, f.hardfork)
	}

	original := f.evm.storage.GetCommittedState(f.address, slot)
	current := f.evm.storage.GetState(f.address, slot)

	gas, refund := SstoreGas(original, current, newVal, cold, f.hardfork)
	if !f.UseGas(gas) {
		return ErrOutOfGas
	}
	f.evm.AddRefund(refund)
	f.evm.storage.SetState(f.address, slot, newVal)
	return nil
}

func opTload(f *Frame) error {
	loc, err := f.stack.Pop()
	if err != nil {
		return err
	}
	slot := hashFromWord(&loc)
	val := f.evm.storage.GetTransientState(f.address, slot)
	var v uint256.Int
	v.SetBytes(val.Bytes())
	return f.stack.Push(&v)
}

func opTstore(f *Frame) error {
	if f.isStatic {
		return ErrWriteProtection
	}
	loc, valWord := f.stack.Pop2()
	slot := hashFromWord(&loc)
	f.evm.storage.SetTransientState(f.address, slot, hashFromWord(&valWord))
	return nil
}
