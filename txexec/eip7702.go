package txexec

import (
	"bytes"
	"math/big"

	"github.com/coreevm/fevm/crypto"
	"github.com/coreevm/fevm/types"
	"github.com/coreevm/fevm/vm"
)

const (
	// delegationPrefixLen is the length of the EIP-7702 delegation
	// designator prefix (0xef0100).
	delegationPrefixLen = 3

	// delegationCodeLen is prefix + 20-byte address.
	delegationCodeLen = delegationPrefixLen + types.AddressLength

	// authMagic is the EIP-7702 authorization signing domain tag: the
	// authorization hash is keccak256(MAGIC || rlp([chain_id, address, nonce])).
	authMagic = 0x05
)

var delegationPrefixBytes = []byte{0xef, 0x01, 0x00}

// ProcessAuthorizations applies spec 4.8 step 7 to every entry of a
// Prague+ SetCode message's authorization list: verify the signature,
// increment the authority's nonce, install the delegation designator as
// its code, and pre-warm the authority. Per EIP-7702, an individual
// authorization that fails verification is simply skipped, not fatal to
// the message.
func ProcessAuthorizations(e *vm.EVM, authList []types.Authorization, chainID *big.Int) {
	for i := range authList {
		auth := &authList[i]
		authority, ok := verifyAuthorization(e, auth, chainID)
		if !ok {
			continue
		}
		e.SetCode(authority, makeDelegationCode(auth.Address))
		e.SetNonce(authority, auth.Nonce+1)
		e.PrewarmAddress(authority)
	}
}

func verifyAuthorization(e *vm.EVM, auth *types.Authorization, chainID *big.Int) (types.Address, bool) {
	if auth.ChainID != nil && auth.ChainID.Sign() != 0 {
		if chainID == nil || auth.ChainID.Cmp(chainID) != 0 {
			return types.Address{}, false
		}
	}

	v := byte(0)
	if auth.V != nil {
		if !auth.V.IsUint64() || auth.V.Uint64() > 1 {
			return types.Address{}, false
		}
		v = byte(auth.V.Uint64())
	}
	if !crypto.ValidateSignatureValues(v, auth.R, auth.S, true) {
		return types.Address{}, false
	}

	authHash := authorizationHash(auth)
	sig := make([]byte, 65)
	if auth.R != nil {
		rBytes := auth.R.Bytes()
		copy(sig[32-len(rBytes):32], rBytes)
	}
	if auth.S != nil {
		sBytes := auth.S.Bytes()
		copy(sig[64-len(sBytes):64], sBytes)
	}
	sig[64] = v

	pubBytes, err := crypto.Ecrecover(authHash, sig)
	if err != nil {
		return types.Address{}, false
	}
	authority := types.BytesToAddress(crypto.Keccak256(pubBytes[1:])[12:])

	if auth.Nonce != e.GetNonce(authority) {
		return types.Address{}, false
	}
	return authority, true
}

// authorizationHash computes keccak256(0x05 || rlp([chain_id, address, nonce])).
func authorizationHash(auth *types.Authorization) []byte {
	chainIDBytes := encodeBigIntRLP(auth.ChainID)
	addressBytes := encodeBytesRLP(auth.Address[:])
	nonceBytes := encodeUint64RLP(auth.Nonce)

	payload := make([]byte, 0, len(chainIDBytes)+len(addressBytes)+len(nonceBytes))
	payload = append(payload, chainIDBytes...)
	payload = append(payload, addressBytes...)
	payload = append(payload, nonceBytes...)

	msg := make([]byte, 0, 1+len(payload)+9)
	msg = append(msg, authMagic)
	msg = append(msg, encodeListHeaderRLP(payload)...)
	return crypto.Keccak256(msg)
}

func makeDelegationCode(addr types.Address) []byte {
	code := make([]byte, delegationCodeLen)
	copy(code, delegationPrefixBytes)
	copy(code[delegationPrefixLen:], addr[:])
	return code
}

// IsDelegated reports whether code carries the EIP-7702 delegation prefix.
func IsDelegated(code []byte) bool {
	return len(code) == delegationCodeLen && bytes.HasPrefix(code, delegationPrefixBytes)
}

// ResolveDelegation extracts the delegation target from delegated code.
func ResolveDelegation(code []byte) (types.Address, bool) {
	if !IsDelegated(code) {
		return types.Address{}, false
	}
	var addr types.Address
	copy(addr[:], code[delegationPrefixLen:])
	return addr, true
}

// --- minimal RLP encoders, just enough for the fixed-shape authorization tuple ---

func encodeBigIntRLP(i *big.Int) []byte {
	if i == nil || i.Sign() == 0 {
		return []byte{0x80}
	}
	return encodeBytesRLP(i.Bytes())
}

func encodeUint64RLP(n uint64) []byte {
	if n == 0 {
		return []byte{0x80}
	}
	if n < 128 {
		return []byte{byte(n)}
	}
	b := big.NewInt(0).SetUint64(n).Bytes()
	return encodeBytesRLP(b)
}

func encodeBytesRLP(b []byte) []byte {
	if len(b) == 1 && b[0] < 128 {
		return b
	}
	if len(b) <= 55 {
		return append([]byte{0x80 + byte(len(b))}, b...)
	}
	lenBytes := encodeLengthRLP(uint64(len(b)))
	header := append([]byte{0xb7 + byte(len(lenBytes))}, lenBytes...)
	return append(header, b...)
}

func encodeListHeaderRLP(payload []byte) []byte {
	if len(payload) <= 55 {
		return append([]byte{0xc0 + byte(len(payload))}, payload...)
	}
	lenBytes := encodeLengthRLP(uint64(len(payload)))
	header := append([]byte{0xf7 + byte(len(lenBytes))}, lenBytes...)
	return append(header, payload...)
}

func encodeLengthRLP(n uint64) []byte {
	if n < 256 {
		return []byte{byte(n)}
	}
	b := big.NewInt(0).SetUint64(n).Bytes()
	return b
}
