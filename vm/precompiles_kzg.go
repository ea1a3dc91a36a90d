package vm

import (
	"crypto/sha256"
	"sync"

	goethkzg "github.com/crate-crypto/go-eth-kzg"
)

// kzgPointEvaluationPrecompile is the EIP-4844 point-evaluation precompile,
// address 0x0a. Input is versioned_hash(32) || z(32) || y(32) ||
// commitment(48) || proof(48); a successful call returns the two constants
// the caller needs to re-derive FIELD_ELEMENTS_PER_BLOB and BLS_MODULUS.

const (
	pointEvaluationGas    = 50000
	pointEvaluationInLen  = 192
	blobCommitmentVersion = 0x01
	fieldElementsPerBlob  = 4096
)

var (
	kzgCtx     *goethkzg.Context
	kzgCtxOnce sync.Once
	kzgCtxErr  error
)

func sharedKZGContext() (*goethkzg.Context, error) {
	kzgCtxOnce.Do(func() {
		kzgCtx, kzgCtxErr = goethkzg.NewContext4096Secure()
	})
	return kzgCtx, kzgCtxErr
}

// blsModulus is the BLS12-381 scalar field modulus, returned to callers as
// the second 32-byte output word (big-endian).
var blsModulus = [32]byte{
	0x73, 0xed, 0xa7, 0x53, 0x29, 0x9d, 0x7d, 0x48,
	0x33, 0x39, 0xd8, 0x08, 0x09, 0xa1, 0xd8, 0x05,
	0x53, 0xbd, 0xa4, 0x02, 0xff, 0xfe, 0x5b, 0xfe,
	0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x01,
}

type kzgPointEvaluationPrecompile struct{}

func (c *kzgPointEvaluationPrecompile) RequiredGas([]byte) uint64 { return pointEvaluationGas }

func (c *kzgPointEvaluationPrecompile) Run(input []byte) ([]byte, bool) {
	if len(input) != pointEvaluationInLen {
		return nil, false
	}
	versionedHash := input[0:32]
	if versionedHash[0] != blobCommitmentVersion {
		return nil, false
	}

	var z, y goethkzg.Scalar
	copy(z[:], input[32:64])
	copy(y[:], input[64:96])

	var commitment goethkzg.KZGCommitment
	copy(commitment[:], input[96:144])
	var proof goethkzg.KZGProof
	copy(proof[:], input[144:192])

	check := sha256.Sum256(commitment[:])
	check[0] = blobCommitmentVersion
	if string(check[:]) != string(versionedHash) {
		return nil, false
	}

	ctx, err := sharedKZGContext()
	if err != nil {
		return nil, false
	}
	if err := ctx.VerifyKZGProof(commitment, z, y, proof); err != nil {
		return nil, false
	}

	out := make([]byte, 64)
	var feCount [32]byte
	feCount[31] = fieldElementsPerBlob & 0xff
	feCount[30] = fieldElementsPerBlob >> 8
	copy(out[0:32], feCount[:])
	copy(out[32:64], blsModulus[:])
	return out, true
}
