package vm

import "errors"

// Execution errors returned by EVM.run and the EVM call/create dispatch.
// A non-nil error other than ErrExecutionReverted consumes all remaining
// gas; ErrExecutionReverted preserves it (minus what was already spent) and
// carries return data back to the caller.
var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrOutOfBounds              = errors.New("offset out of bounds")
	ErrInvalidJump              = errors.New("invalid jump destination")
	ErrInvalidOpcode            = errors.New("invalid opcode")
	ErrWriteProtection          = errors.New("write protection: state-modifying op in static context")
	ErrContractCodeTooLarge     = errors.New("contract code size exceeds maximum")
	ErrInitCodeTooLarge         = errors.New("init code size exceeds maximum")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrCallDepthExceeded        = errors.New("max call depth exceeded")
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")
	ErrExecutionReverted        = errors.New("execution reverted")
	ErrInvalidCodeEntry         = errors.New("code begins with EOF prefix")
	ErrIterationQuotaExceeded   = errors.New("interpreter iteration quota exceeded")
	ErrNonceOverflow            = errors.New("nonce overflow")
)
