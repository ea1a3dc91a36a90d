package vm

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

// alt_bn128 (BN254) precompiles, addresses 0x06-0x08. Wire format is the
// EVM's own big-endian fixed-width field-element encoding, not gnark's
// native (zcash-flavored) compressed/uncompressed encodings, so points are
// built field element by field element rather than via gnark's Unmarshal.

const (
	bn254FieldBytes = 32
	bn254G1Bytes    = 2 * bn254FieldBytes
	bn254G2Bytes    = 4 * bn254FieldBytes
)

func bn254DecodeG1(data []byte) (*bn254.G1Affine, bool) {
	var x, y fp.Element
	if _, err := x.SetBytesCanonical(data[0:bn254FieldBytes]); err != nil {
		return nil, false
	}
	if _, err := y.SetBytesCanonical(data[bn254FieldBytes : 2*bn254FieldBytes]); err != nil {
		return nil, false
	}
	p := &bn254.G1Affine{X: x, Y: y}
	if p.X.IsZero() && p.Y.IsZero() {
		return p, true
	}
	if !p.IsOnCurve() {
		return nil, false
	}
	return p, true
}

func bn254DecodeG2(data []byte) (*bn254.G2Affine, bool) {
	var xa1, xa0, ya1, ya0 fp.Element
	// EIP-197 encodes each Fp2 element as (c1 || c0): the imaginary part first.
	if _, err := xa1.SetBytesCanonical(data[0:32]); err != nil {
		return nil, false
	}
	if _, err := xa0.SetBytesCanonical(data[32:64]); err != nil {
		return nil, false
	}
	if _, err := ya1.SetBytesCanonical(data[64:96]); err != nil {
		return nil, false
	}
	if _, err := ya0.SetBytesCanonical(data[96:128]); err != nil {
		return nil, false
	}
	p := &bn254.G2Affine{
		X: bn254.E2{A0: xa0, A1: xa1},
		Y: bn254.E2{A0: ya0, A1: ya1},
	}
	if p.X.IsZero() && p.Y.IsZero() {
		return p, true
	}
	if !p.IsOnCurve() {
		return nil, false
	}
	if !p.IsInSubGroup() {
		return nil, false
	}
	return p, true
}

func bn254EncodeG1(p *bn254.G1Affine) []byte {
	out := make([]byte, bn254G1Bytes)
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	copy(out[0:32], xb[:])
	copy(out[32:64], yb[:])
	return out
}

// --- ECADD (address 0x06) ---

type bn254AddPrecompile struct{}

func (c *bn254AddPrecompile) RequiredGas([]byte) uint64 { return 150 }

func (c *bn254AddPrecompile) Run(input []byte) ([]byte, bool) {
	input = padRight(input, bn254G1Bytes*2)
	p0, ok := bn254DecodeG1(input[0:bn254G1Bytes])
	if !ok {
		return nil, false
	}
	p1, ok := bn254DecodeG1(input[bn254G1Bytes : 2*bn254G1Bytes])
	if !ok {
		return nil, false
	}
	var sum bn254.G1Affine
	sum.Add(p0, p1)
	return bn254EncodeG1(&sum), true
}

// --- ECMUL (address 0x07) ---

type bn254MulPrecompile struct{}

func (c *bn254MulPrecompile) RequiredGas([]byte) uint64 { return 6000 }

func (c *bn254MulPrecompile) Run(input []byte) ([]byte, bool) {
	input = padRight(input, bn254G1Bytes+32)
	p0, ok := bn254DecodeG1(input[0:bn254G1Bytes])
	if !ok {
		return nil, false
	}
	scalar := new(big.Int).SetBytes(input[bn254G1Bytes : bn254G1Bytes+32])
	var result bn254.G1Affine
	result.ScalarMultiplication(p0, scalar)
	return bn254EncodeG1(&result), true
}

// --- ECPAIRING (address 0x08) ---

type bn254PairingPrecompile struct{}

func (c *bn254PairingPrecompile) RequiredGas(input []byte) uint64 {
	k := uint64(len(input) / 192)
	return 45000 + k*34000
}

func (c *bn254PairingPrecompile) Run(input []byte) ([]byte, bool) {
	if len(input)%192 != 0 {
		return nil, false
	}
	n := len(input) / 192
	g1s := make([]bn254.G1Affine, 0, n)
	g2s := make([]bn254.G2Affine, 0, n)
	for i := 0; i < n; i++ {
		chunk := input[i*192 : (i+1)*192]
		p1, ok := bn254DecodeG1(chunk[0:64])
		if !ok {
			return nil, false
		}
		p2, ok := bn254DecodeG2(chunk[64:192])
		if !ok {
			return nil, false
		}
		g1s = append(g1s, *p1)
		g2s = append(g2s, *p2)
	}

	out := make([]byte, 32)
	if n == 0 {
		out[31] = 1
		return out, true
	}
	ok, err := bn254.PairingCheck(g1s, g2s)
	if err != nil {
		return nil, false
	}
	if ok {
		out[31] = 1
	}
	return out, true
}
