package vm

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"golang.org/x/crypto/ripemd160"

	"github.com/coreevm/fevm/crypto"
	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

// PrecompiledContract is the shape vm.Call dispatches to: Run charges its
// own cost against gasLimit and reports what it used, matching a regular
// call's (output, gasUsed, success) return. A false success is a revert, not
// a Go error: it consumes the gas and returns no output, and EVM.Call
// reports it as ErrExecutionReverted with no gas left over.
type PrecompiledContract interface {
	Run(input []byte, gasLimit uint64) (output []byte, gasUsed uint64, success bool)
}

// gasPrecompile is the natural shape for a precompile's author: report the
// cost up front, then do the work. Every concrete precompile in this
// package implements it; gasPrecompileAdapter bridges it to
// PrecompiledContract for dispatch.
type gasPrecompile interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) (output []byte, ok bool)
}

type gasPrecompileAdapter struct {
	inner gasPrecompile
}

func (a gasPrecompileAdapter) Run(input []byte, gasLimit uint64) ([]byte, uint64, bool) {
	cost := a.inner.RequiredGas(input)
	if cost > gasLimit {
		return nil, gasLimit, false
	}
	out, ok := a.inner.Run(input)
	if !ok {
		return nil, cost, false
	}
	return out, cost, true
}

// PrecompileSet maps precompile addresses active at one hardfork.
type PrecompileSet map[types.Address]gasPrecompile

// Lookup returns the precompile at addr dispatch-ready, or nil if addr is
// not a precompile in this set.
func (s PrecompileSet) Lookup(addr types.Address) PrecompiledContract {
	p, ok := s[addr]
	if !ok {
		return nil
	}
	return gasPrecompileAdapter{inner: p}
}

func precompileAddr(b byte) types.Address {
	return types.BytesToAddress([]byte{b})
}

// SelectPrecompiles returns the precompile set active at the given hardfork.
func SelectPrecompiles(hf params.Hardfork) PrecompileSet {
	s := PrecompileSet{
		precompileAddr(1): &ecrecoverPrecompile{},
		precompileAddr(2): &sha256Precompile{},
		precompileAddr(3): &ripemd160Precompile{},
		precompileAddr(4): &identityPrecompile{},
		precompileAddr(5): &modexpPrecompile{eip2565: hf.AtLeast(params.Berlin)},
	}
	if hf.AtLeast(params.Byzantium) {
		s[precompileAddr(6)] = &bn254AddPrecompile{}
		s[precompileAddr(7)] = &bn254MulPrecompile{}
		s[precompileAddr(8)] = &bn254PairingPrecompile{}
	}
	if hf.AtLeast(params.Istanbul) {
		s[precompileAddr(9)] = &blake2FPrecompile{}
	}
	if hf.AtLeast(params.Cancun) {
		s[precompileAddr(0x0a)] = &kzgPointEvaluationPrecompile{}
	}
	if hf.AtLeast(params.Prague) {
		s[precompileAddr(0x0b)] = &blsG1AddPrecompile{}
		s[precompileAddr(0x0c)] = &blsG1MSMPrecompile{}
		s[precompileAddr(0x0d)] = &blsG2AddPrecompile{}
		s[precompileAddr(0x0e)] = &blsG2MSMPrecompile{}
		s[precompileAddr(0x0f)] = &blsPairingPrecompile{}
		s[precompileAddr(0x10)] = &blsMapFpToG1Precompile{}
		s[precompileAddr(0x11)] = &blsMapFp2ToG2Precompile{}
	}
	return s
}

// --- ecrecover (address 0x01) ---

type ecrecoverPrecompile struct{}

func (c *ecrecoverPrecompile) RequiredGas([]byte) uint64 { return 3000 }

func (c *ecrecoverPrecompile) Run(input []byte) ([]byte, bool) {
	input = padRight(input, 128)

	hash := input[0:32]
	v := new(big.Int).SetBytes(input[32:64])
	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])

	if v.BitLen() > 8 {
		return nil, true
	}
	vByte := byte(v.Uint64())
	if vByte != 27 && vByte != 28 {
		return nil, true
	}
	if !crypto.ValidateSignatureValues(vByte-27, r, s, true) {
		return nil, true
	}

	sig := make([]byte, 65)
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(sig[32-len(rBytes):32], rBytes)
	copy(sig[64-len(sBytes):64], sBytes)
	sig[64] = vByte - 27

	pub, err := crypto.Ecrecover(hash, sig)
	if err != nil {
		return nil, true
	}

	addr := crypto.Keccak256(pub[1:])
	out := make([]byte, 32)
	copy(out[12:], addr[12:])
	return out, true
}

// --- sha256 (address 0x02) ---

type sha256Precompile struct{}

func (c *sha256Precompile) RequiredGas(input []byte) uint64 {
	return 60 + 12*wordCount(len(input))
}

func (c *sha256Precompile) Run(input []byte) ([]byte, bool) {
	h := sha256.Sum256(input)
	return h[:], true
}

// --- ripemd160 (address 0x03) ---

type ripemd160Precompile struct{}

func (c *ripemd160Precompile) RequiredGas(input []byte) uint64 {
	return 600 + 120*wordCount(len(input))
}

func (c *ripemd160Precompile) Run(input []byte) ([]byte, bool) {
	h := ripemd160.New()
	h.Write(input)
	digest := h.Sum(nil)
	out := make([]byte, 32)
	copy(out[12:], digest)
	return out, true
}

// --- identity (address 0x04) ---

type identityPrecompile struct{}

func (c *identityPrecompile) RequiredGas(input []byte) uint64 {
	return 15 + 3*wordCount(len(input))
}

func (c *identityPrecompile) Run(input []byte) ([]byte, bool) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, true
}

// --- modexp (address 0x05), EIP-198 / EIP-2565 ---

type modexpPrecompile struct {
	eip2565 bool // Berlin+: cheaper multiplication complexity (EIP-2565)
}

func (c *modexpPrecompile) RequiredGas(input []byte) uint64 {
	input = padRight(input, 96)
	baseLen := new(big.Int).SetBytes(input[0:32]).Uint64()
	expLen := new(big.Int).SetBytes(input[32:64]).Uint64()
	modLen := new(big.Int).SetBytes(input[64:96]).Uint64()

	adjExpLen := adjustedExpLen(expLen, baseLen, input[96:])

	maxLen := baseLen
	if modLen > maxLen {
		maxLen = modLen
	}

	var multComplexity uint64
	if c.eip2565 {
		words := (maxLen + 7) / 8
		multComplexity = words * words
		gas := multComplexity * maxUint64(adjExpLen, 1) / 3
		if gas < 200 {
			gas = 200
		}
		return gas
	}
	words := (maxLen + 7) / 8
	multComplexity = words * words
	if maxLen > 64 {
		// Pre-Berlin's quadratic-above-64-bytes complexity curve (EIP-198).
		multComplexity = words * words
		if maxLen > 1024 {
			multComplexity = (maxLen*maxLen)/16 + 480*maxLen - 199680
		} else if maxLen > 64 {
			multComplexity = (maxLen*maxLen)/4 + 96*maxLen - 3072
		}
	}
	gas := multComplexity * maxUint64(adjExpLen, 1) / 20
	if gas < 200 {
		gas = 200
	}
	return gas
}

func (c *modexpPrecompile) Run(input []byte) ([]byte, bool) {
	input = padRight(input, 96)

	baseLen := new(big.Int).SetBytes(input[0:32])
	expLen := new(big.Int).SetBytes(input[32:64])
	modLen := new(big.Int).SetBytes(input[64:96])

	if baseLen.BitLen() > 32 || expLen.BitLen() > 32 || modLen.BitLen() > 32 {
		return nil, false
	}
	bLen, eLen, mLen := baseLen.Uint64(), expLen.Uint64(), modLen.Uint64()

	data := input[96:]
	base := getDataSlice(data, 0, bLen)
	exp := getDataSlice(data, bLen, eLen)
	mod := getDataSlice(data, bLen+eLen, mLen)

	modVal := new(big.Int).SetBytes(mod)
	if modVal.Sign() == 0 {
		return make([]byte, mLen), true
	}

	result := new(big.Int).Exp(new(big.Int).SetBytes(base), new(big.Int).SetBytes(exp), modVal)

	out := result.Bytes()
	if uint64(len(out)) < mLen {
		padded := make([]byte, mLen)
		copy(padded[mLen-uint64(len(out)):], out)
		return padded, true
	}
	return out[:mLen], true
}

// --- shared helpers ---

func wordCount(size int) uint64 {
	if size == 0 {
		return 0
	}
	return uint64((size + 31) / 32)
}

func padRight(data []byte, minLen int) []byte {
	if len(data) >= minLen {
		return data
	}
	padded := make([]byte, minLen)
	copy(padded, data)
	return padded
}

func getDataSlice(data []byte, offset, length uint64) []byte {
	if length == 0 {
		return nil
	}
	result := make([]byte, length)
	if offset >= uint64(len(data)) {
		return result
	}
	end := offset + length
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(result, data[offset:end])
	return result
}

func adjustedExpLen(expLen, baseLen uint64, data []byte) uint64 {
	if expLen <= 32 {
		exp := new(big.Int).SetBytes(getDataSlice(data, baseLen, expLen))
		if exp.Sign() == 0 {
			return 0
		}
		return uint64(exp.BitLen() - 1)
	}
	firstExp := new(big.Int).SetBytes(getDataSlice(data, baseLen, 32))
	adj := uint64(0)
	if firstExp.Sign() > 0 {
		adj = uint64(firstExp.BitLen() - 1)
	}
	return adj + 8*(expLen-32)
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// --- blake2F (address 0x09), EIP-152 ---

type blake2FPrecompile struct{}

func (c *blake2FPrecompile) RequiredGas(input []byte) uint64 {
	if len(input) < 4 {
		return 0
	}
	return uint64(binary.BigEndian.Uint32(input[:4]))
}

func (c *blake2FPrecompile) Run(input []byte) ([]byte, bool) {
	if len(input) != 213 {
		return nil, false
	}
	rounds := binary.BigEndian.Uint32(input[:4])

	finalByte := input[212]
	if finalByte != 0 && finalByte != 1 {
		return nil, false
	}
	final := finalByte == 1

	var h [8]uint64
	for i := 0; i < 8; i++ {
		h[i] = binary.LittleEndian.Uint64(input[4+i*8 : 4+(i+1)*8])
	}
	var m [16]uint64
	for i := 0; i < 16; i++ {
		m[i] = binary.LittleEndian.Uint64(input[68+i*8 : 68+(i+1)*8])
	}
	t0 := binary.LittleEndian.Uint64(input[196:204])
	t1 := binary.LittleEndian.Uint64(input[204:212])

	blake2bF(&h, m, [2]uint64{t0, t1}, final, rounds)

	result := make([]byte, 64)
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint64(result[i*8:(i+1)*8], h[i])
	}
	return result, true
}
