package vm

import "github.com/coreevm/fevm/params"

// operation is one jump-table entry: the handler plus the stack bounds the
// dispatch loop checks before invoking it, and the gas charged up front
// (dynamic costs on top of this are charged inside execute itself).
type operation struct {
	execute     func(f *Frame) error
	constantGas uint64
	minStack    int
	maxStack    int
}

// JumpTable is the 256-entry opcode dispatch table for one hardfork. A nil
// entry means the opcode does not exist at that hardfork.
type JumpTable [256]*operation

// stackBounds returns (minStack, maxStack) for an opcode that pops `pop`
// items and pushes `push` items.
func stackBounds(pop, push int) (int, int) {
	return pop, stackLimit - push + pop
}

func op(exec func(f *Frame) error, gas uint64, pop, push int) *operation {
	min, max := stackBounds(pop, push)
	return &operation{execute: exec, constantGas: gas, minStack: min, maxStack: max}
}

// newFrontierJumpTable returns the opcode set as of the original protocol.
func newFrontierJumpTable() *JumpTable {
	t := &JumpTable{}

	t[STOP] = op(opStop, 0, 0, 0)
	t[ADD] = op(opAdd, 3, 2, 1)
	t[MUL] = op(opMul, 5, 2, 1)
	t[SUB] = op(opSub, 3, 2, 1)
	t[DIV] = op(opDiv, 5, 2, 1)
	t[SDIV] = op(opSdiv, 5, 2, 1)
	t[MOD] = op(opMod, 5, 2, 1)
	t[SMOD] = op(opSmod, 5, 2, 1)
	t[ADDMOD] = op(opAddmod, 8, 3, 1)
	t[MULMOD] = op(opMulmod, 8, 3, 1)
	t[EXP] = op(opExp, GasSlowStep, 2, 1)
	t[SIGNEXTEND] = op(opSignExtend, 5, 2, 1)

	t[LT] = op(opLt, 3, 2, 1)
	t[GT] = op(opGt, 3, 2, 1)
	t[SLT] = op(opSlt, 3, 2, 1)
	t[SGT] = op(opSgt, 3, 2, 1)
	t[EQ] = op(opEq, 3, 2, 1)
	t[ISZERO] = op(opIszero, 3, 1, 1)
	t[AND] = op(opAnd, 3, 2, 1)
	t[OR] = op(opOr, 3, 2, 1)
	t[XOR] = op(opXor, 3, 2, 1)
	t[NOT] = op(opNot, 3, 1, 1)
	t[BYTE] = op(opByte, 3, 2, 1)

	t[KECCAK256] = op(opSha3, GasKeccak256, 2, 1)

	t[ADDRESS] = op(opAddress, 2, 0, 1)
	t[BALANCE] = op(opBalance, 20, 1, 1)
	t[ORIGIN] = op(opOrigin, 2, 0, 1)
	t[CALLER] = op(opCaller, 2, 0, 1)
	t[CALLVALUE] = op(opCallValue, 2, 0, 1)
	t[CALLDATALOAD] = op(opCalldataLoad, 3, 1, 1)
	t[CALLDATASIZE] = op(opCalldataSize, 2, 0, 1)
	t[CALLDATACOPY] = op(opCalldataCopy, 3, 3, 0)
	t[CODESIZE] = op(opCodeSize, 2, 0, 1)
	t[CODECOPY] = op(opCodeCopy, 3, 3, 0)
	t[GASPRICE] = op(opGasprice, 2, 0, 1)
	t[EXTCODESIZE] = op(opExtCodeSize, 20, 1, 1)
	t[EXTCODECOPY] = op(opExtCodeCopy, 20, 4, 0)

	t[BLOCKHASH] = op(opBlockhash, 20, 1, 1)
	t[COINBASE] = op(opCoinbase, 2, 0, 1)
	t[TIMESTAMP] = op(opTimestamp, 2, 0, 1)
	t[NUMBER] = op(opNumber, 2, 0, 1)
	t[PREVRANDAO] = op(opDifficulty, 2, 0, 1)
	t[GASLIMIT] = op(opGasLimit, 2, 0, 1)

	t[POP] = op(opPop, 2, 1, 0)
	t[MLOAD] = op(opMload, 3, 1, 1)
	t[MSTORE] = op(opMstore, 3, 2, 0)
	t[MSTORE8] = op(opMstore8, 3, 2, 0)
	t[SLOAD] = op(opSload, 50, 1, 1)
	t[SSTORE] = op(opSstore, 0, 2, 0)
	t[JUMP] = op(opJump, 8, 1, 0)
	t[JUMPI] = op(opJumpi, 10, 2, 0)
	t[PC] = op(opPc, 2, 0, 1)
	t[MSIZE] = op(opMsize, 2, 0, 1)
	t[GAS] = op(opGas, 2, 0, 1)
	t[JUMPDEST] = op(opJumpdest, 1, 0, 0)

	for i := 1; i <= 32; i++ {
		t[int(PUSH1)+i-1] = op(makePush(i), 3, 0, 1)
	}
	for i := 1; i <= 16; i++ {
		t[int(DUP1)+i-1] = op(makeDup(i), 3, i, i+1)
	}
	for i := 1; i <= 16; i++ {
		t[int(SWAP1)+i-1] = op(makeSwap(i), 3, i+1, i+1)
	}
	for i := 0; i <= 4; i++ {
		t[int(LOG0)+i] = op(makeLog(i), GasLog, 2+i, 0)
	}

	t[CREATE] = op(opCreate, 32000, 3, 1)
	t[CALL] = op(opCall, 40, 7, 1)
	t[CALLCODE] = op(opCallCode, 40, 7, 1)
	t[RETURN] = op(opReturn, 0, 2, 0)
	t[INVALID] = op(opInvalid, 0, 0, 0)
	t[SELFDESTRUCT] = op(opSelfdestruct, SelfdestructGas, 1, 0)

	return t
}

func newHomesteadJumpTable() *JumpTable {
	t := newFrontierJumpTable()
	t[DELEGATECALL] = op(opDelegateCall, 40, 6, 1)
	return t
}

func newTangerineWhistleJumpTable() *JumpTable {
	// EIP-150 repriced SLOAD/EXTCODE*/BALANCE/CALL-family and introduced
	// the 63/64 forwarding rule; CallGas already applies that rule
	// unconditionally, and the repricing only changes constantGas values.
	t := newHomesteadJumpTable()
	t[EXTCODESIZE] = op(opExtCodeSize, 700, 1, 1)
	t[EXTCODECOPY] = op(opExtCodeCopy, 700, 4, 0)
	t[BALANCE] = op(opBalance, 400, 1, 1)
	t[SLOAD] = op(opSload, 200, 1, 1)
	t[CALL] = op(opCall, 700, 7, 1)
	t[CALLCODE] = op(opCallCode, 700, 7, 1)
	t[DELEGATECALL] = op(opDelegateCall, 700, 6, 1)
	t[SELFDESTRUCT] = op(opSelfdestruct, 5000, 1, 0)
	return t
}

func newSpuriousDragonJumpTable() *JumpTable {
	// EIP-160 repriced EXP's dynamic byte cost (handled in opExp via a
	// hardfork check) and EIP-170 caps deployed code size (handled in
	// EVM.Create via Config.MaxCodeSize); neither changes this table.
	return newTangerineWhistleJumpTable()
}

func newByzantiumJumpTable() *JumpTable {
	t := newSpuriousDragonJumpTable()
	t[REVERT] = op(opRevert, 0, 2, 0)
	t[STATICCALL] = op(opStaticCall, 700, 6, 1)
	t[RETURNDATASIZE] = op(opReturnDataSize, 2, 0, 1)
	t[RETURNDATACOPY] = op(opReturnDataCopy, 3, 3, 0)
	return t
}

func newConstantinopleJumpTable() *JumpTable {
	t := newByzantiumJumpTable()
	t[SHL] = op(opShl, 3, 2, 1)
	t[SHR] = op(opShr, 3, 2, 1)
	t[SAR] = op(opSar, 3, 2, 1)
	t[EXTCODEHASH] = op(opExtCodeHash, 400, 1, 1)
	t[CREATE2] = op(opCreate2, 32000, 4, 1)
	return t
}

func newPetersburgJumpTable() *JumpTable {
	// Petersburg reverted EIP-1283 (net-metered SSTORE); this table's
	// opSstore already implements the EIP-2200 formula Istanbul later
	// reintroduced, so Petersburg and Constantinople share one table.
	return newConstantinopleJumpTable()
}

func newIstanbulJumpTable() *JumpTable {
	t := newPetersburgJumpTable()
	t[CHAINID] = op(opChainID, 2, 0, 1)
	t[SELFBALANCE] = op(opSelfBalance, 5, 0, 1)
	t[BALANCE] = op(opBalance, 700, 1, 1)
	t[EXTCODEHASH] = op(opExtCodeHash, 700, 1, 1)
	t[SLOAD] = op(opSload, 800, 1, 1)
	return t
}

func newBerlinJumpTable() *JumpTable {
	// EIP-2929: access-list gas now dominates the cost of the
	// account/storage-touching opcodes. Their handlers charge the full
	// warm-or-cold cost dynamically via the access list, so constantGas
	// drops to zero here rather than double-charging the warm rate.
	t := newIstanbulJumpTable()
	t[BALANCE] = op(opBalance, 0, 1, 1)
	t[EXTCODESIZE] = op(opExtCodeSize, 0, 1, 1)
	t[EXTCODECOPY] = op(opExtCodeCopy, 0, 4, 0)
	t[EXTCODEHASH] = op(opExtCodeHash, 0, 1, 1)
	t[SLOAD] = op(opSload, 0, 1, 1)
	t[SSTORE] = op(opSstore, 0, 2, 0)
	t[CALL] = op(opCall, 0, 7, 1)
	t[CALLCODE] = op(opCallCode, 0, 7, 1)
	t[DELEGATECALL] = op(opDelegateCall, 0, 6, 1)
	t[STATICCALL] = op(opStaticCall, 0, 6, 1)
	return t
}

func newLondonJumpTable() *JumpTable {
	t := newBerlinJumpTable()
	t[BASEFEE] = op(opBaseFee, 2, 0, 1)
	return t
}

func newParisJumpTable() *JumpTable {
	// The Merge: the DIFFICULTY opcode value now returns PREVRANDAO;
	// opDifficulty already just reads Block.Difficulty, which the block
	// context builder repoints to the RANDAO mix post-merge.
	return newLondonJumpTable()
}

func newShanghaiJumpTable() *JumpTable {
	t := newParisJumpTable()
	t[PUSH0] = op(opPush0, 2, 0, 1)
	return t
}

func newCancunJumpTable() *JumpTable {
	t := newShanghaiJumpTable()
	t[TLOAD] = op(opTload, WarmStorageReadCost, 1, 1)
	t[TSTORE] = op(opTstore, WarmStorageReadCost, 2, 0)
	t[MCOPY] = op(opMcopy, 3, 3, 0)
	t[BLOBHASH] = op(opBlobHash, 3, 1, 1)
	t[BLOBBASEFEE] = op(opBlobBaseFee, 2, 0, 1)
	return t
}

func newPragueJumpTable() *JumpTable {
	// EIP-7702 delegation is resolved in EVM.resolveCode, transparent to
	// the jump table; Prague adds no new opcodes.
	return newCancunJumpTable()
}

// SelectJumpTable returns the opcode table for the given hardfork.
func SelectJumpTable(hf params.Hardfork) *JumpTable {
	switch {
	case hf.AtLeast(params.Prague):
		return newPragueJumpTable()
	case hf.AtLeast(params.Cancun):
		return newCancunJumpTable()
	case hf.AtLeast(params.Shanghai):
		return newShanghaiJumpTable()
	case hf.AtLeast(params.Paris):
		return newParisJumpTable()
	case hf.AtLeast(params.London):
		return newLondonJumpTable()
	case hf.AtLeast(params.Berlin):
		return newBerlinJumpTable()
	case hf.AtLeast(params.Istanbul):
		return newIstanbulJumpTable()
	case hf.AtLeast(params.Petersburg):
		return newPetersburgJumpTable()
	case hf.AtLeast(params.Constantinople):
		return newConstantinopleJumpTable()
	case hf.AtLeast(params.Byzantium):
		return newByzantiumJumpTable()
	case hf.AtLeast(params.SpuriousDragon):
		return newSpuriousDragonJumpTable()
	case hf.AtLeast(params.TangerineWhistle):
		return newTangerineWhistleJumpTable()
	case hf.AtLeast(params.Homestead):
		return newHomesteadJumpTable()
	default:
		return newFrontierJumpTable()
	}
}
