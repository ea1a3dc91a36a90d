package vm

import (
	"golang.org/x/crypto/sha3"

	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

// CreateParams describes a CREATE or CREATE2.
type CreateParams struct {
	Caller   types.Address
	Code     []byte // init code
	Gas      uint64
	Value    *uint256.Int
	Salt     *uint256.Int // non-nil for CREATE2
	IsStatic bool
}

// Create dispatches CREATE/CREATE2: the spec's inner_create. It derives
// the child address, checks for a collision, transfers value, runs the
// init code, and on success validates and deploys the returned code.
func (e *EVM) Create(p CreateParams) (ret []byte, addr types.Address, leftOverGas uint64, err error) {
	if p.IsStatic {
		return nil, types.Address{}, p.Gas, ErrWriteProtection
	}
	if e.depth > e.Config.MaxCallDepth {
		return nil, types.Address{}, p.Gas, ErrCallDepthExceeded
	}
	if p.Value != nil && p.Value.Sign() != 0 && e.GetBalance(p.Caller).Lt(p.Value) {
		return nil, types.Address{}, p.Gas, ErrInsufficientBalance
	}

	maxInitSize := e.Config.MaxInitCodeSize
	if e.Config.Hardfork.AtLeast(params.Shanghai) && len(p.Code) > maxInitSize {
		return nil, types.Address{}, 0, ErrInitCodeTooLarge
	}

	nonce := e.GetNonce(p.Caller)
	e.SetNonce(p.Caller, nonce+1)

	if p.Salt != nil {
		addr = Create2Address(p.Caller, p.Salt, p.Code)
	} else {
		addr = CreateAddress(p.Caller, nonce)
	}

	snap := e.snapshotState()
	e.Touch(addr)

	if e.accountCollision(addr) {
		e.revertToSnapshot(snap)
		return nil, addr, 0, ErrContractAddressCollision
	}

	e.MarkCreated(addr)
	e.SetNonce(addr, 1)
	e.SetCode(addr, nil)

	if p.Value != nil && p.Value.Sign() != 0 {
		e.transfer(p.Caller, addr, p.Value)
	}

	e.depth++
	defer func() { e.depth-- }()

	frame := NewFrame(e, p.Caller, addr, p.Code, nil, p.Value, p.Gas, e.depth, false)
	out, runErr := e.run(frame)
	leftOverGas = frame.Gas()

	if runErr != nil {
		e.revertToSnapshot(snap)
		if runErr == ErrExecutionReverted {
			return out, addr, leftOverGas, ErrExecutionReverted
		}
		return nil, addr, 0, runErr
	}

	if hasEOFPrefix(out) && e.Config.Hardfork.AtLeast(params.London) {
		e.revertToSnapshot(snap)
		return nil, addr, 0, ErrInvalidCodeEntry
	}
	if len(out) > e.Config.MaxCodeSize {
		e.revertToSnapshot(snap)
		return nil, addr, 0, ErrContractCodeTooLarge
	}

	depositCost := CreateDataGas * uint64(len(out))
	if leftOverGas < depositCost {
		e.revertToSnapshot(snap)
		return nil, addr, 0, ErrOutOfGas
	}
	leftOverGas -= depositCost

	e.SetCode(addr, out)
	return out, addr, leftOverGas, nil
}

// accountCollision reports whether addr already holds code or has a
// nonzero nonce, which per spec 4.6 makes CREATE/CREATE2 fail.
func (e *EVM) accountCollision(addr types.Address) bool {
	if e.GetNonce(addr) != 0 {
		return true
	}
	if len(e.GetCode(addr)) != 0 {
		return true
	}
	return false
}

// CreateAddress derives the CREATE child address: the low 20 bytes of
// keccak256(rlp([sender, nonce])).
func CreateAddress(sender types.Address, nonce uint64) types.Address {
	data := rlpEncodeCreateList(sender, nonce)
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return types.BytesToAddress(h.Sum(nil)[12:])
}

// Create2Address derives the CREATE2 child address: the low 20 bytes of
// keccak256(0xFF ‖ sender ‖ salt ‖ keccak256(initcode)).
func Create2Address(sender types.Address, salt *uint256.Int, initCode []byte) types.Address {
	codeHash := sha3.NewLegacyKeccak256()
	codeHash.Write(initCode)
	codeHashSum := codeHash.Sum(nil)

	saltBytes := salt.Bytes32()

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{0xFF})
	h.Write(sender.Bytes())
	h.Write(saltBytes[:])
	h.Write(codeHashSum)
	return types.BytesToAddress(h.Sum(nil)[12:])
}

// rlpEncodeCreateList encodes [sender, nonce] the way CreateAddress needs,
// without pulling in a general-purpose RLP encoder: both fields have fixed
// or simply-derived lengths, so a hand-rolled encoding of this one
// two-element list is simpler than a dependency used nowhere else.
func rlpEncodeCreateList(sender types.Address, nonce uint64) []byte {
	nonceBytes := rlpEncodeUint64(nonce)

	var payload []byte
	payload = append(payload, rlpEncodeBytes(sender.Bytes())...)
	payload = append(payload, nonceBytes...)

	return rlpEncodeListHeader(len(payload), payload)
}

func rlpEncodeUint64(n uint64) []byte {
	if n == 0 {
		return []byte{0x80}
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte(n)}, b...)
		n >>= 8
	}
	return rlpEncodeBytes(b)
}

func rlpEncodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	if len(b) <= 55 {
		return append([]byte{byte(0x80 + len(b))}, b...)
	}
	lenBytes := rlpEncodeUint64(uint64(len(b)))[1:] // strip the bytes-header this added
	return append(append([]byte{byte(0xB7 + len(lenBytes))}, lenBytes...), b...)
}

func rlpEncodeListHeader(payloadLen int, payload []byte) []byte {
	if payloadLen <= 55 {
		return append([]byte{byte(0xC0 + payloadLen)}, payload...)
	}
	lenBytes := rlpEncodeUint64(uint64(payloadLen))[1:]
	return append(append([]byte{byte(0xF7 + len(lenBytes))}, lenBytes...), payload...)
}
