package txexec

import (
	"math/big"
)

// GasPerBlob is the blob gas charged per versioned hash (EIP-4844).
const GasPerBlob = 131072

// EffectiveGasPrice computes the actual price paid per unit of gas, per
// EIP-1559: legacy messages pay GasPrice outright; EIP-1559 messages pay
// min(GasFeeCap, BaseFee + GasTipCap).
func EffectiveGasPrice(msg *Message, baseFee *big.Int) *big.Int {
	if !msg.IsEIP1559 || baseFee == nil {
		if msg.GasPrice == nil {
			return new(big.Int)
		}
		return new(big.Int).Set(msg.GasPrice)
	}
	tip := msg.GasTipCap
	if tip == nil {
		tip = new(big.Int)
	}
	price := new(big.Int).Add(baseFee, tip)
	if msg.GasFeeCap != nil && price.Cmp(msg.GasFeeCap) > 0 {
		price.Set(msg.GasFeeCap)
	}
	return price
}

// BlobFee computes the blob_fee term of spec step 3's balance check: the
// number of blobs carried times the per-blob gas cost times the block's
// current blob base fee. Zero for a message with no blob hashes.
func BlobFee(msg *Message, blobBaseFee *big.Int) *big.Int {
	if len(msg.BlobHashes) == 0 || blobBaseFee == nil {
		return new(big.Int)
	}
	blobGas := new(big.Int).SetUint64(uint64(len(msg.BlobHashes)) * GasPerBlob)
	return new(big.Int).Mul(blobGas, blobBaseFee)
}
