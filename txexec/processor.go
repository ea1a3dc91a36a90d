package txexec

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
	"github.com/coreevm/fevm/vm"
)

var (
	ErrNonceTooLow         = errors.New("nonce too low")
	ErrNonceTooHigh        = errors.New("nonce too high")
	ErrSenderNotEOA        = errors.New("sender not an EOA")
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")
	ErrIntrinsicGasTooLow  = errors.New("intrinsic gas too low")
	ErrFeeCapTooLow        = errors.New("max fee per gas less than block base fee")
	ErrTipAboveFeeCap      = errors.New("max priority fee per gas higher than max fee per gas")
)

// Run executes one message against host at the given configuration and
// block context: the whole of spec 4.8's twelve-step flow, from intrinsic
// gas through self-destruct processing. It owns the EVM instance for the
// message's lifetime and commits its effects to host before returning,
// except when execution never reaches dispatch (steps 1-4 reject before
// any state is touched).
func Run(host vm.Host, cfg params.Config, block vm.BlockContext, msg *Message) (*ExecutionResult, error) {
	hf := cfg.Hardfork
	isCreate := msg.To == nil

	// --- step 1-2: intrinsic gas, floored Prague+ ---
	intrinsic := IntrinsicGas(msg.Data, msg.AccessList, isCreate, hf)
	intrinsic = ApplyFloor(intrinsic, msg.Data, msg.AccessList, isCreate, hf)
	if intrinsic > msg.GasLimit {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGasTooLow, msg.GasLimit, intrinsic)
	}

	// --- step 3: sender checks ---
	stateNonce := host.GetNonce(msg.From)
	if msg.Nonce < stateNonce {
		return nil, fmt.Errorf("%w: tx %d, state %d", ErrNonceTooLow, msg.Nonce, stateNonce)
	}
	if msg.Nonce > stateNonce {
		return nil, fmt.Errorf("%w: tx %d, state %d", ErrNonceTooHigh, msg.Nonce, stateNonce)
	}

	if codeHash := host.GetCodeHash(msg.From); codeHash != types.EmptyCodeHash && !codeHash.IsZero() {
		if !IsDelegated(host.GetCode(msg.From)) {
			return nil, fmt.Errorf("%w: %s", ErrSenderNotEOA, msg.From.Hex())
		}
	}

	// A message's gas limit can never exceed what the block could possibly
	// grant it; tracking the pool across multiple messages in a block is
	// the caller's job (block assembly is out of scope here).
	var pool GasPool
	pool.AddGas(block.GasLimit)
	if err := pool.SubGas(msg.GasLimit); err != nil {
		return nil, err
	}

	if msg.IsEIP1559 && block.BaseFee != nil {
		baseFee := block.BaseFee.ToBig()
		if msg.GasFeeCap != nil && msg.GasTipCap != nil && msg.GasFeeCap.Cmp(msg.GasTipCap) < 0 {
			return nil, fmt.Errorf("%w: tip %s, cap %s", ErrTipAboveFeeCap, msg.GasTipCap, msg.GasFeeCap)
		}
		if msg.GasFeeCap != nil && msg.GasFeeCap.Cmp(baseFee) < 0 {
			return nil, fmt.Errorf("%w: fee %s, baseFee %s", ErrFeeCapTooLow, msg.GasFeeCap, baseFee)
		}
	}

	var baseFeeBig *big.Int
	if block.BaseFee != nil {
		baseFeeBig = block.BaseFee.ToBig()
	}
	gasPrice := EffectiveGasPrice(msg, baseFeeBig)

	maxFeePerGas := msg.GasPrice
	if msg.IsEIP1559 && msg.GasFeeCap != nil {
		maxFeePerGas = msg.GasFeeCap
	}
	if maxFeePerGas == nil {
		maxFeePerGas = new(big.Int)
	}
	worstCaseGasCost := new(big.Int).Mul(maxFeePerGas, new(big.Int).SetUint64(msg.GasLimit))
	totalCost := new(big.Int).Add(worstCaseGasCost, msg.Value)
	totalCost.Add(totalCost, BlobFee(msg, blobBaseFeeBig(block)))

	balance := host.GetBalance(msg.From).ToBig()
	if balance.Cmp(totalCost) < 0 {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrInsufficientBalance, balance, totalCost)
	}

	// --- step 4: deduct gas cost upfront, at the effective price ---
	gasCost := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(msg.GasLimit))
	txCtx := vm.TxContext{
		Origin:     msg.From,
		GasPrice:   mustUint256(gasPrice),
		BlobHashes: msg.BlobHashes,
	}

	// --- step 5: init_transaction_state (NewEVM flushes every cache) ---
	e := vm.NewEVM(host, cfg, block, txCtx)

	senderBalance := e.GetBalance(msg.From)
	newSenderBalance := new(uint256.Int).Sub(senderBalance, mustUint256(gasCost))
	e.SetBalanceWithSnapshot(msg.From, newSenderBalance)
	if !isCreate {
		e.SetNonce(msg.From, msg.Nonce+1)
	}

	// --- step 6: pre-warm ---
	e.PrewarmAddress(msg.From)
	if msg.To != nil {
		e.PrewarmAddress(*msg.To)
	}
	if hf.AtLeast(params.Shanghai) {
		e.PrewarmAddress(block.Coinbase)
	}
	for addr := range vm.SelectPrecompiles(hf) {
		e.PrewarmAddress(addr)
	}
	for _, tuple := range msg.AccessList {
		e.PrewarmAddress(tuple.Address)
		for _, key := range tuple.StorageKeys {
			e.PrewarmSlot(tuple.Address, key)
		}
	}

	// --- step 7: EIP-7702 authorizations ---
	if msg.IsSetCode && len(msg.AuthList) > 0 && hf.AtLeast(params.Prague) {
		ProcessAuthorizations(e, msg.AuthList, cfg.ChainID.ToBig())
	}

	// --- step 8: dispatch ---
	var (
		execErr      error
		returnData   []byte
		gasRemaining uint64
		contractAddr types.Address
	)
	if isCreate {
		returnData, contractAddr, gasRemaining, execErr = e.Create(vm.CreateParams{
			Caller: msg.From,
			Code:   msg.Data,
			Gas:    msg.GasLimit - intrinsic,
			Value:  mustUint256(msg.Value),
		})
	} else {
		returnData, gasRemaining, execErr = e.Call(vm.CallParams{
			Caller:        msg.From,
			Address:       *msg.To,
			CodeAddress:   *msg.To,
			Input:         msg.Data,
			Gas:           msg.GasLimit - intrinsic,
			Value:         mustUint256(msg.Value),
			TransferValue: true,
		})
	}

	gasUsed := intrinsic + (msg.GasLimit - intrinsic - gasRemaining)

	// --- step 9: refund cap ---
	refundDivisor := int64(5)
	if !hf.AtLeast(params.London) {
		refundDivisor = 2
	}
	refund := e.RefundCounter()
	maxRefund := int64(gasUsed) / refundDivisor
	if refund > maxRefund {
		refund = maxRefund
	}
	gasUsed -= uint64(refund)

	// Step 2's closing clause: the floor also binds on the effective gas used.
	gasUsed = ApplyFloor(gasUsed, msg.Data, msg.AccessList, isCreate, hf)

	remaining := msg.GasLimit - gasUsed
	if remaining > 0 {
		refundWei := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(remaining))
		e.SetBalanceWithSnapshot(msg.From, new(uint256.Int).Add(e.GetBalance(msg.From), mustUint256(refundWei)))
	}

	// --- step 10: base fee burned, priority fee to coinbase ---
	tip := new(big.Int).Set(gasPrice)
	if baseFeeBig != nil {
		tip.Sub(gasPrice, baseFeeBig)
	}
	if tip.Sign() > 0 {
		tipWei := new(big.Int).Mul(tip, new(big.Int).SetUint64(gasUsed))
		coinbaseBal := e.GetBalance(block.Coinbase)
		e.SetBalanceWithSnapshot(block.Coinbase, new(uint256.Int).Add(coinbaseBal, mustUint256(tipWei)))
	}

	touched := e.TouchedAddresses()
	selfDestructs := e.SelfDestructSet()
	createdThisTx := make(map[types.Address]bool, len(selfDestructs))
	for addr := range selfDestructs {
		createdThisTx[addr] = e.WasCreatedThisTx(addr)
	}

	// Flush every balance/nonce/code/storage write to host before deciding
	// deletions: step 11/12 read back through host, not the EVM's caches.
	e.Commit()

	// --- step 11: EIP-161 empty-account cleanup ---
	if hf.AtLeast(params.SpuriousDragon) {
		for _, addr := range touched {
			if host.GetNonce(addr) == 0 && host.GetBalance(addr).IsZero() && len(host.GetCode(addr)) == 0 {
				host.DeleteAccount(addr)
			}
		}
	}

	// --- step 12: self-destruct deletion (balance transfer already
	// happened via the SELFDESTRUCT opcode, flushed by Commit above) ---
	for addr := range selfDestructs {
		if hf.AtLeast(params.Cancun) && !createdThisTx[addr] {
			continue // EIP-6780: Cancun+ only deletes same-tx-created accounts
		}
		host.DeleteAccount(addr)
	}

	return &ExecutionResult{
		UsedGas:         gasUsed,
		Err:             execErr,
		ReturnData:      returnData,
		ContractAddress: contractAddr,
	}, nil
}

func blobBaseFeeBig(block vm.BlockContext) *big.Int {
	if block.BlobBaseFee == nil {
		return nil
	}
	return block.BlobBaseFee.ToBig()
}

func mustUint256(v *big.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		panic("txexec: value overflows 256 bits")
	}
	return u
}
