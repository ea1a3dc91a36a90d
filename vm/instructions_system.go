package vm

import (
	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

func opStop(f *Frame) error {
	f.stopped = true
	f.output = nil
	return nil
}

func opReturn(f *Frame) error {
	offset, size := f.stack.Pop2()
	if err := chargeMemoryExpansion(f, &offset, &size); err != nil {
		return err
	}
	f.output = f.memory.Get(int64(offset.Uint64()), int64(size.Uint64()))
	f.stopped = true
	return nil
}

func opRevert(f *Frame) error {
	offset, size := f.stack.Pop2()
	if err := chargeMemoryExpansion(f, &offset, &size); err != nil {
		return err
	}
	f.output = f.memory.Get(int64(offset.Uint64()), int64(size.Uint64()))
	f.reverted = true
	return nil
}

func opInvalid(f *Frame) error {
	return ErrInvalidOpcode
}

func opSelfdestruct(f *Frame) error {
	if f.isStatic {
		return ErrWriteProtection
	}
	a, err := f.stack.Pop()
	if err != nil {
		return err
	}
	beneficiary := types.BytesToAddress(a.Bytes())

	if f.hardfork.AtLeast(params.Berlin) {
		if !f.evm.accessList.IsWarmAddress(beneficiary) {
			if !f.UseGas(ColdAccountAccessCost) {
				return ErrOutOfGas
			}
		}
		f.evm.accessList.PrewarmAddress(beneficiary)
	}

	balance := f.evm.GetBalance(f.address)
	if balance.Sign() != 0 && !f.evm.Host.Exist(beneficiary) {
		if !f.UseGas(CreateBySelfdestructGas) {
			return ErrOutOfGas
		}
	}

	if balance.Sign() != 0 {
		var zero uint256.Int
		f.evm.SetBalanceWithSnapshot(f.address, &zero)
		newBal := f.evm.GetBalance(beneficiary)
		var sum uint256.Int
		sum.Add(newBal, balance)
		f.evm.SetBalanceWithSnapshot(beneficiary, &sum)
	}

	// Cancun+ (EIP-6780): only an account created earlier in this same
	// transaction is actually scheduled for deletion; otherwise SELFDESTRUCT
	// just moves the balance, which already happened above.
	if !f.hardfork.AtLeast(params.Cancun) || f.evm.WasCreatedThisTx(f.address) {
		f.evm.ScheduleSelfDestruct(f.address, beneficiary)
	}
	if !f.hardfork.AtLeast(params.London) {
		f.evm.AddRefund(int64(selfdestructRefundPreLondon))
	}

	f.stopped = true
	f.output = nil
	return nil
}

func opCreate(f *Frame) error {
	if f.isStatic {
		return ErrWriteProtection
	}
	value, offset, size := f.stack.Pop3()
	if err := chargeMemoryExpansion(f, &offset, &size); err != nil {
		return err
	}
	if f.hardfork.AtLeast(params.Shanghai) {
		if !f.UseGas(InitCodeWordGas * toWordSize(size.Uint64())) {
			return ErrOutOfGas
		}
	}
	code := f.memory.Get(int64(offset.Uint64()), int64(size.Uint64()))

	gas := CallGas(f.Gas(), f.Gas())
	if !f.UseGas(gas) {
		return ErrOutOfGas
	}

	out, addr, leftOver, err := f.evm.Create(CreateParams{
		Caller: f.address,
		Code:   code,
		Gas:    gas,
		Value:  &value,
	})
	return finishCreate(f, out, addr, leftOver, err)
}

func opCreate2(f *Frame) error {
	if f.isStatic {
		return ErrWriteProtection
	}
	value, offset, size, salt := f.stack.Pop4()
	if err := chargeMemoryExpansion(f, &offset, &size); err != nil {
		return err
	}
	words := toWordSize(size.Uint64())
	hashCost := words * GasKeccak256Word
	if f.hardfork.AtLeast(params.Shanghai) {
		hashCost += InitCodeWordGas * words
	}
	if !f.UseGas(hashCost) {
		return ErrOutOfGas
	}
	code := f.memory.Get(int64(offset.Uint64()), int64(size.Uint64()))

	gas := CallGas(f.Gas(), f.Gas())
	if !f.UseGas(gas) {
		return ErrOutOfGas
	}

	out, addr, leftOver, err := f.evm.Create(CreateParams{
		Caller: f.address,
		Code:   code,
		Gas:    gas,
		Value:  &value,
		Salt:   &salt,
	})
	return finishCreate(f, out, addr, leftOver, err)
}

func finishCreate(f *Frame, out []byte, addr types.Address, leftOver uint64, err error) error {
	f.RefundGas(leftOver)
	var result uint256.Int
	if err == nil {
		result.SetBytes(addr.Bytes())
		f.returnData = nil
	} else if err == ErrExecutionReverted {
		f.returnData = out
	} else {
		f.returnData = nil
	}
	return f.stack.Push(&result)
}

func opCall(f *Frame) error {
	gasArg, addrWord, value, argsOffset, argsSize, retOffset, retSize := f.stack.Pop7()
	addr := types.BytesToAddress(addrWord.Bytes())

	if value.Sign() != 0 && f.isStatic {
		return ErrWriteProtection
	}

	cost, err := callGasCost(f, addr, &value, true)
	if err != nil {
		return err
	}
	if err := chargeCallMemory(f, &argsOffset, &argsSize, &retOffset, &retSize); err != nil {
		return err
	}
	if !f.UseGas(cost) {
		return ErrOutOfGas
	}

	gas := CallGas(f.Gas(), gasArg.Uint64())
	if !f.UseGas(gas) {
		return ErrOutOfGas
	}
	calleeGas := gas
	if value.Sign() != 0 {
		calleeGas += CallStipend
	}

	input := f.memory.Get(int64(argsOffset.Uint64()), int64(argsSize.Uint64()))
	out, leftOver, callErr := f.evm.Call(CallParams{
		Caller:        f.address,
		Address:       addr,
		CodeAddress:   addr,
		Input:         input,
		Gas:           calleeGas,
		Value:         &value,
		TransferValue: true,
		IsStatic:      f.isStatic,
	})
	// The 2300 stipend was never deducted from f; cap what comes back so
	// an unused stipend can't mint free gas for the caller.
	if leftOver > gas {
		leftOver = gas
	}
	return finishCall(f, out, leftOver, callErr, &retOffset, &retSize)
}

func opCallCode(f *Frame) error {
	gasArg, addrWord, value, argsOffset, argsSize, retOffset, retSize := f.stack.Pop7()
	addr := types.BytesToAddress(addrWord.Bytes())

	cost, err := callGasCost(f, addr, &value, false)
	if err != nil {
		return err
	}
	if err := chargeCallMemory(f, &argsOffset, &argsSize, &retOffset, &retSize); err != nil {
		return err
	}
	if !f.UseGas(cost) {
		return ErrOutOfGas
	}

	gas := CallGas(f.Gas(), gasArg.Uint64())
	if !f.UseGas(gas) {
		return ErrOutOfGas
	}
	calleeGas := gas
	if value.Sign() != 0 {
		calleeGas += CallStipend
	}

	input := f.memory.Get(int64(argsOffset.Uint64()), int64(argsSize.Uint64()))
	out, leftOver, callErr := f.evm.Call(CallParams{
		Caller:        f.address,
		Address:       f.address,
		CodeAddress:   addr,
		Input:         input,
		Gas:           calleeGas,
		Value:         &value,
		TransferValue: value.Sign() != 0,
		IsStatic:      f.isStatic,
	})
	if leftOver > gas {
		leftOver = gas
	}
	return finishCall(f, out, leftOver, callErr, &retOffset, &retSize)
}

func opDelegateCall(f *Frame) error {
	gasArg, addrWord, argsOffset, argsSize, retOffset, retSize := f.stack.Pop6()
	addr := types.BytesToAddress(addrWord.Bytes())

	cost, err := callGasCost(f, addr, nil, false)
	if err != nil {
		return err
	}
	if err := chargeCallMemory(f, &argsOffset, &argsSize, &retOffset, &retSize); err != nil {
		return err
	}
	if !f.UseGas(cost) {
		return ErrOutOfGas
	}

	gas := CallGas(f.Gas(), gasArg.Uint64())
	if !f.UseGas(gas) {
		return ErrOutOfGas
	}

	input := f.memory.Get(int64(argsOffset.Uint64()), int64(argsSize.Uint64()))
	value := f.value
	out, leftOver, callErr := f.evm.Call(CallParams{
		Caller:        f.caller,
		Address:       f.address,
		CodeAddress:   addr,
		Input:         input,
		Gas:           gas,
		Value:         &value,
		TransferValue: false,
		IsStatic:      f.isStatic,
	})
	return finishCall(f, out, leftOver, callErr, &retOffset, &retSize)
}

func opStaticCall(f *Frame) error {
	gasArg, addrWord, argsOffset, argsSize, retOffset, retSize := f.stack.Pop6()
	addr := types.BytesToAddress(addrWord.Bytes())

	cost, err := callGasCost(f, addr, nil, false)
	if err != nil {
		return err
	}
	if err := chargeCallMemory(f, &argsOffset, &argsSize, &retOffset, &retSize); err != nil {
		return err
	}
	if !f.UseGas(cost) {
		return ErrOutOfGas
	}

	gas := CallGas(f.Gas(), gasArg.Uint64())
	if !f.UseGas(gas) {
		return ErrOutOfGas
	}

	input := f.memory.Get(int64(argsOffset.Uint64()), int64(argsSize.Uint64()))
	var zero uint256.Int
	out, leftOver, callErr := f.evm.Call(CallParams{
		Caller:        f.address,
		Address:       addr,
		CodeAddress:   addr,
		Input:         input,
		Gas:           gas,
		Value:         &zero,
		TransferValue: false,
		IsStatic:      true,
	})
	return finishCall(f, out, leftOver, callErr, &retOffset, &retSize)
}

// callGasCost computes the access-list and value-transfer surcharge for a
// CALL-family opcode, ahead of the 63/64 forwarding split. withNewAccount
// is true only for CALL, which alone can pay CallNewAccountGas.
func callGasCost(f *Frame, addr types.Address, value *uint256.Int, withNewAccount bool) (uint64, error) {
	var gas uint64
	if f.hardfork.AtLeast(params.Berlin) {
		gas = f.evm.accessList.TouchAddress(addr, f.hardfork)
	} else {
		gas = 0
	}
	if value != nil && value.Sign() != 0 {
		gas = safeAdd(gas, CallValueTransferGas)
		if withNewAccount && !f.evm.Host.Exist(addr) {
			gas = safeAdd(gas, CallNewAccountGas)
		}
	}
	return gas, nil
}

func chargeCallMemory(f *Frame, argsOffset, argsSize, retOffset, retSize *uint256.Int) error {
	if err := chargeMemoryExpansion(f, argsOffset, argsSize); err != nil {
		return err
	}
	return chargeMemoryExpansion(f, retOffset, retSize)
}

func finishCall(f *Frame, out []byte, leftOver uint64, callErr error, retOffset, retSize *uint256.Int) error {
	f.RefundGas(leftOver)
	f.returnData = out

	var success uint256.Int
	if callErr == nil {
		success.SetOne()
	}
	if !retSize.IsZero() && len(out) > 0 {
		n := retSize.Uint64()
		if uint64(len(out)) < n {
			n = uint64(len(out))
		}
		f.memory.Set(retOffset.Uint64(), n, out[:n])
	}
	return f.stack.Push(&success)
}
