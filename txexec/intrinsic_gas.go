package txexec

import (
	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

// Intrinsic gas constants (spec 4.8 step 1).
const (
	TxGas             uint64 = 21000
	TxCreateGas       uint64 = 32000
	TxDataZeroGas     uint64 = 4
	TxDataNonZeroGas  uint64 = 16 // post-Istanbul
	TxDataNonZeroGasFrontier uint64 = 68 // pre-Istanbul

	AccessListAddressGas   uint64 = 1024
	AccessListStorageGas   uint64 = 1900
	InitCodeWordGas        uint64 = 2 // EIP-3860, Shanghai+
)

// IntrinsicGas computes the pre-execution gas charge: the flat base cost
// plus calldata, creation, access-list, and (Shanghai+) init-code-size
// terms. isCreate selects the creation surcharge and init-code accounting;
// Istanbul gates the cheaper non-zero-byte rate (EIP-2028); Shanghai gates
// the per-word init-code charge (EIP-3860).
func IntrinsicGas(data []byte, accessList types.AccessList, isCreate bool, hf params.Hardfork) uint64 {
	gas := TxGas
	if isCreate {
		gas += TxCreateGas
	}

	nonZeroGas := TxDataNonZeroGas
	if !hf.AtLeast(params.Istanbul) {
		nonZeroGas = TxDataNonZeroGasFrontier
	}
	zero, nonZero := countDataBytes(data)
	gas += zero*TxDataZeroGas + nonZero*nonZeroGas

	for _, tuple := range accessList {
		gas += AccessListAddressGas
		gas += uint64(len(tuple.StorageKeys)) * AccessListStorageGas
	}

	if isCreate && hf.AtLeast(params.Shanghai) {
		gas += wordCount(uint64(len(data))) * InitCodeWordGas
	}

	return gas
}

func countDataBytes(data []byte) (zero, nonZero uint64) {
	for _, b := range data {
		if b == 0 {
			zero++
		} else {
			nonZero++
		}
	}
	return zero, nonZero
}

func wordCount(size uint64) uint64 {
	return (size + 31) / 32
}
