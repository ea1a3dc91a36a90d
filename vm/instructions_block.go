package vm

import "github.com/holiman/uint256"

func opBlockhash(f *Frame) error {
	num, err := f.stack.Pop()
	if err != nil {
		return err
	}
	var v uint256.Int
	if num.IsUint64() && f.evm.Block.GetHash != nil {
		n := num.Uint64()
		if n+256 > f.evm.Block.BlockNumber && n < f.evm.Block.BlockNumber {
			v.SetBytes(f.evm.Block.GetHash(n).Bytes())
		}
	}
	return f.stack.Push(&v)
}

func opCoinbase(f *Frame) error {
	var v uint256.Int
	v.SetBytes(f.evm.Block.Coinbase.Bytes())
	return f.stack.Push(&v)
}

func opTimestamp(f *Frame) error {
	v := uint256.NewInt(f.evm.Block.Timestamp)
	return f.stack.Push(v)
}

func opNumber(f *Frame) error {
	v := uint256.NewInt(f.evm.Block.BlockNumber)
	return f.stack.Push(v)
}

func opDifficulty(f *Frame) error {
	v := *f.evm.Block.Difficulty
	return f.stack.Push(&v)
}

func opGasLimit(f *Frame) error {
	v := uint256.NewInt(f.evm.Block.GasLimit)
	return f.stack.Push(v)
}

func opBaseFee(f *Frame) error {
	v := *f.evm.Block.BaseFee
	return f.stack.Push(&v)
}

func opBlobBaseFee(f *Frame) error {
	v := *f.evm.Block.BlobBaseFee
	return f.stack.Push(&v)
}

func opBlobHash(f *Frame) error {
	idx, err := f.stack.Pop()
	if err != nil {
		return err
	}
	var v uint256.Int
	if idx.IsUint64() {
		i := idx.Uint64()
		if i < uint64(len(f.evm.Tx.BlobHashes)) {
			v.SetBytes(f.evm.Tx.BlobHashes[i].Bytes())
		}
	}
	return f.stack.Push(&v)
}
