package txexec

import (
	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

// EIP-7623 floor-per-byte rates (Prague+): cheaper than the standard
// intrinsic-gas rates, but applied as a floor rather than a discount — a
// calldata-heavy message still pays at least this much regardless of how
// little gas its execution actually used (spec 4.8 step 2).
const (
	FloorDataZeroGas    uint64 = 3
	FloorDataNonZeroGas uint64 = 10
)

// FloorGas computes the EIP-7623 floor: the same creation/access-list/
// init-code terms as IntrinsicGas, but with calldata priced at the floor
// rate instead of the standard rate.
func FloorGas(data []byte, accessList types.AccessList, isCreate bool, hf params.Hardfork) uint64 {
	gas := TxGas
	if isCreate {
		gas += TxCreateGas
	}

	zero, nonZero := countDataBytes(data)
	gas += zero*FloorDataZeroGas + nonZero*FloorDataNonZeroGas

	for _, tuple := range accessList {
		gas += AccessListAddressGas
		gas += uint64(len(tuple.StorageKeys)) * AccessListStorageGas
	}

	if isCreate && hf.AtLeast(params.Shanghai) {
		gas += wordCount(uint64(len(data))) * InitCodeWordGas
	}

	return gas
}

// ApplyFloor raises a gas value to the EIP-7623 floor, active Prague+.
// Used both on the pre-execution intrinsic gas (step 2) and on the post-
// execution effective gas used (step 2's closing clause).
func ApplyFloor(gas uint64, data []byte, accessList types.AccessList, isCreate bool, hf params.Hardfork) uint64 {
	if !hf.AtLeast(params.Prague) {
		return gas
	}
	floor := FloorGas(data, accessList, isCreate, hf)
	if floor > gas {
		return floor
	}
	return gas
}
