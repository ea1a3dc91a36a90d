package txexec

import (
	"math/big"

	"github.com/coreevm/fevm/types"
)

// Message is a transaction already decoded into the fields the executor
// needs: sender recovery, RLP framing, and wire-format details are the
// caller's problem. To is nil for contract creation.
type Message struct {
	From       types.Address
	To         *types.Address
	Nonce      uint64
	Value      *big.Int
	GasLimit   uint64
	GasPrice   *big.Int
	GasFeeCap  *big.Int // EIP-1559 max fee per gas; nil for legacy/type-1 messages
	GasTipCap  *big.Int // EIP-1559 max priority fee per gas; nil for legacy/type-1 messages
	Data       []byte
	AccessList types.AccessList
	BlobHashes []types.Hash
	AuthList   []types.Authorization // EIP-7702 authorization list (SetCode messages)
	IsEIP1559  bool
	IsSetCode  bool // true for EIP-7702 SetCode messages, gating AuthList processing
}
