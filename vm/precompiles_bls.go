package vm

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
)

// BLS12-381 precompiles, addresses 0x0b-0x11 (EIP-2537, Prague). Field
// elements are wire-encoded as 64-byte big-endian slots (top 16 bytes zero,
// bottom 48 bytes the value) regardless of the underlying 48-byte field
// size; scalars are plain 32-byte big-endian integers.

const (
	bls12FieldSlot = 64
	bls12G1Bytes   = 2 * bls12FieldSlot
	bls12G2Bytes   = 4 * bls12FieldSlot
	bls12ScalarLen = 32

	bls12G1AddGas         = 500
	bls12G1MulGas         = 12000
	bls12G2AddGas         = 800
	bls12G2MulGas         = 45000
	bls12PairingBaseGas   = 65000
	bls12PairingPerPair   = 43000
	bls12MapFpToG1Gas     = 5500
	bls12MapFp2ToG2Gas    = 75000
	bls12MSMMultiplierDiv = 1000
)

// bls12MSMDiscount is the EIP-2537 MSM discount table, indexed by pair count
// minus one; counts at or beyond the table length use the final entry.
var bls12MSMDiscount = []uint64{
	1200, 888, 764, 641, 594, 547, 500, 453, 438, 423, 408, 394, 379, 364, 349,
	334, 330, 326, 322, 318, 314, 310, 306, 302, 298, 294, 289, 285, 281, 277,
	273, 269, 268, 266, 265, 263, 262, 260, 259, 257, 256, 254, 253, 251, 250,
	248, 247, 245, 244, 242, 241, 239, 238, 236, 235, 233, 232, 230, 229, 227,
	226, 224, 223, 221, 220, 219, 219, 218, 217, 216, 216, 215, 214, 213, 213,
	212, 211, 211, 210, 209, 208, 208, 207, 206, 205, 205, 204, 203, 202, 202,
	201, 200, 199, 199, 198, 197, 196, 196, 195, 194, 193, 193, 192, 191, 191,
	190, 189, 188, 188, 187, 186, 185, 185, 184, 183, 182, 182, 181, 180, 179,
	179, 178, 177, 176, 176, 175, 174,
}

func bls12MSMDiscountFor(k int) uint64 {
	if k <= 0 {
		return bls12MSMDiscount[0]
	}
	if k > len(bls12MSMDiscount) {
		return bls12MSMDiscount[len(bls12MSMDiscount)-1]
	}
	return bls12MSMDiscount[k-1]
}

func bls12MSMGas(perPointGas uint64, k int) uint64 {
	if k == 0 {
		return 0
	}
	discount := bls12MSMDiscountFor(k)
	return uint64(k) * perPointGas * discount / bls12MSMMultiplierDiv
}

func bls12DecodeFp(slot []byte) (fp.Element, bool) {
	var e fp.Element
	for _, b := range slot[:16] {
		if b != 0 {
			return e, false
		}
	}
	if _, err := e.SetBytesCanonical(slot[16:64]); err != nil {
		return e, false
	}
	return e, true
}

func bls12EncodeFp(e *fp.Element) []byte {
	out := make([]byte, bls12FieldSlot)
	b := e.Bytes()
	copy(out[16:], b[:])
	return out
}

func bls12DecodeG1(data []byte) (*bls12381.G1Affine, bool) {
	x, ok := bls12DecodeFp(data[0:64])
	if !ok {
		return nil, false
	}
	y, ok := bls12DecodeFp(data[64:128])
	if !ok {
		return nil, false
	}
	p := &bls12381.G1Affine{X: x, Y: y}
	if p.X.IsZero() && p.Y.IsZero() {
		return p, true
	}
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return nil, false
	}
	return p, true
}

func bls12EncodeG1(p *bls12381.G1Affine) []byte {
	out := make([]byte, bls12G1Bytes)
	copy(out[0:64], bls12EncodeFp(&p.X))
	copy(out[64:128], bls12EncodeFp(&p.Y))
	return out
}

func bls12DecodeG2(data []byte) (*bls12381.G2Affine, bool) {
	xa0, ok := bls12DecodeFp(data[0:64])
	if !ok {
		return nil, false
	}
	xa1, ok := bls12DecodeFp(data[64:128])
	if !ok {
		return nil, false
	}
	ya0, ok := bls12DecodeFp(data[128:192])
	if !ok {
		return nil, false
	}
	ya1, ok := bls12DecodeFp(data[192:256])
	if !ok {
		return nil, false
	}
	p := &bls12381.G2Affine{
		X: bls12381.E2{A0: xa0, A1: xa1},
		Y: bls12381.E2{A0: ya0, A1: ya1},
	}
	if p.X.IsZero() && p.Y.IsZero() {
		return p, true
	}
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return nil, false
	}
	return p, true
}

func bls12EncodeG2(p *bls12381.G2Affine) []byte {
	out := make([]byte, bls12G2Bytes)
	copy(out[0:64], bls12EncodeFp(&p.X.A0))
	copy(out[64:128], bls12EncodeFp(&p.X.A1))
	copy(out[128:192], bls12EncodeFp(&p.Y.A0))
	copy(out[192:256], bls12EncodeFp(&p.Y.A1))
	return out
}

// --- BLS12_G1ADD (0x0b) ---

type blsG1AddPrecompile struct{}

func (c *blsG1AddPrecompile) RequiredGas([]byte) uint64 { return bls12G1AddGas }

func (c *blsG1AddPrecompile) Run(input []byte) ([]byte, bool) {
	if len(input) != 2*bls12G1Bytes {
		return nil, false
	}
	p0, ok := bls12DecodeG1(input[0:bls12G1Bytes])
	if !ok {
		return nil, false
	}
	p1, ok := bls12DecodeG1(input[bls12G1Bytes : 2*bls12G1Bytes])
	if !ok {
		return nil, false
	}
	var sum bls12381.G1Affine
	sum.Add(p0, p1)
	return bls12EncodeG1(&sum), true
}

// --- BLS12_G1MSM (0x0c); a single-pair input is a scalar multiplication ---

type blsG1MSMPrecompile struct{}

func (c *blsG1MSMPrecompile) pairCount(input []byte) int {
	const pair = bls12G1Bytes + bls12ScalarLen
	if len(input) == 0 || len(input)%pair != 0 {
		return 0
	}
	return len(input) / pair
}

func (c *blsG1MSMPrecompile) RequiredGas(input []byte) uint64 {
	return bls12MSMGas(bls12G1MulGas, c.pairCount(input))
}

func (c *blsG1MSMPrecompile) Run(input []byte) ([]byte, bool) {
	const pair = bls12G1Bytes + bls12ScalarLen
	k := c.pairCount(input)
	if k == 0 {
		return nil, false
	}
	var acc bls12381.G1Affine
	accSet := false
	for i := 0; i < k; i++ {
		chunk := input[i*pair : (i+1)*pair]
		p, ok := bls12DecodeG1(chunk[0:bls12G1Bytes])
		if !ok {
			return nil, false
		}
		scalar := new(big.Int).SetBytes(chunk[bls12G1Bytes : bls12G1Bytes+bls12ScalarLen])
		var term bls12381.G1Affine
		term.ScalarMultiplication(p, scalar)
		if !accSet {
			acc = term
			accSet = true
		} else {
			acc.Add(&acc, &term)
		}
	}
	return bls12EncodeG1(&acc), true
}

// --- BLS12_G2ADD (0x0d) ---

type blsG2AddPrecompile struct{}

func (c *blsG2AddPrecompile) RequiredGas([]byte) uint64 { return bls12G2AddGas }

func (c *blsG2AddPrecompile) Run(input []byte) ([]byte, bool) {
	if len(input) != 2*bls12G2Bytes {
		return nil, false
	}
	p0, ok := bls12DecodeG2(input[0:bls12G2Bytes])
	if !ok {
		return nil, false
	}
	p1, ok := bls12DecodeG2(input[bls12G2Bytes : 2*bls12G2Bytes])
	if !ok {
		return nil, false
	}
	var sum bls12381.G2Affine
	sum.Add(p0, p1)
	return bls12EncodeG2(&sum), true
}

// --- BLS12_G2MSM (0x0e) ---

type blsG2MSMPrecompile struct{}

func (c *blsG2MSMPrecompile) pairCount(input []byte) int {
	const pair = bls12G2Bytes + bls12ScalarLen
	if len(input) == 0 || len(input)%pair != 0 {
		return 0
	}
	return len(input) / pair
}

func (c *blsG2MSMPrecompile) RequiredGas(input []byte) uint64 {
	return bls12MSMGas(bls12G2MulGas, c.pairCount(input))
}

func (c *blsG2MSMPrecompile) Run(input []byte) ([]byte, bool) {
	const pair = bls12G2Bytes + bls12ScalarLen
	k := c.pairCount(input)
	if k == 0 {
		return nil, false
	}
	var acc bls12381.G2Affine
	accSet := false
	for i := 0; i < k; i++ {
		chunk := input[i*pair : (i+1)*pair]
		p, ok := bls12DecodeG2(chunk[0:bls12G2Bytes])
		if !ok {
			return nil, false
		}
		scalar := new(big.Int).SetBytes(chunk[bls12G2Bytes : bls12G2Bytes+bls12ScalarLen])
		var term bls12381.G2Affine
		term.ScalarMultiplication(p, scalar)
		if !accSet {
			acc = term
			accSet = true
		} else {
			acc.Add(&acc, &term)
		}
	}
	return bls12EncodeG2(&acc), true
}

// --- BLS12_PAIRING_CHECK (0x0f) ---

type blsPairingPrecompile struct{}

func (c *blsPairingPrecompile) pairCount(input []byte) int {
	const pair = bls12G1Bytes + bls12G2Bytes
	if len(input) == 0 || len(input)%pair != 0 {
		return 0
	}
	return len(input) / pair
}

func (c *blsPairingPrecompile) RequiredGas(input []byte) uint64 {
	k := uint64(c.pairCount(input))
	return bls12PairingBaseGas + k*bls12PairingPerPair
}

func (c *blsPairingPrecompile) Run(input []byte) ([]byte, bool) {
	const pair = bls12G1Bytes + bls12G2Bytes
	k := c.pairCount(input)
	if k == 0 {
		return nil, false
	}
	g1s := make([]bls12381.G1Affine, 0, k)
	g2s := make([]bls12381.G2Affine, 0, k)
	for i := 0; i < k; i++ {
		chunk := input[i*pair : (i+1)*pair]
		p1, ok := bls12DecodeG1(chunk[0:bls12G1Bytes])
		if !ok {
			return nil, false
		}
		p2, ok := bls12DecodeG2(chunk[bls12G1Bytes:pair])
		if !ok {
			return nil, false
		}
		g1s = append(g1s, *p1)
		g2s = append(g2s, *p2)
	}
	ok, err := bls12381.PairingCheck(g1s, g2s)
	if err != nil {
		return nil, false
	}
	out := make([]byte, 32)
	if ok {
		out[31] = 1
	}
	return out, true
}

// --- BLS12_MAP_FP_TO_G1 (0x10) ---

type blsMapFpToG1Precompile struct{}

func (c *blsMapFpToG1Precompile) RequiredGas([]byte) uint64 { return bls12MapFpToG1Gas }

func (c *blsMapFpToG1Precompile) Run(input []byte) ([]byte, bool) {
	if len(input) != bls12FieldSlot {
		return nil, false
	}
	u, ok := bls12DecodeFp(input)
	if !ok {
		return nil, false
	}
	p := bls12381.MapToG1(u)
	return bls12EncodeG1(&p), true
}

// --- BLS12_MAP_FP2_TO_G2 (0x11) ---

type blsMapFp2ToG2Precompile struct{}

func (c *blsMapFp2ToG2Precompile) RequiredGas([]byte) uint64 { return bls12MapFp2ToG2Gas }

func (c *blsMapFp2ToG2Precompile) Run(input []byte) ([]byte, bool) {
	if len(input) != 2*bls12FieldSlot {
		return nil, false
	}
	a0, ok := bls12DecodeFp(input[0:64])
	if !ok {
		return nil, false
	}
	a1, ok := bls12DecodeFp(input[64:128])
	if !ok {
		return nil, false
	}
	p := bls12381.MapToG2(bls12381.E2{A0: a0, A1: a1})
	return bls12EncodeG2(&p), true
}
