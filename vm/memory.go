package vm

import "github.com/holiman/uint256"

// Memory implements the EVM's byte-addressable, lazily zero-extended,
// word-aligned memory region. Length is always a multiple of 32.
type Memory struct {
	store       []byte
	lastGasCost uint64
}

// NewMemory returns a new, empty Memory instance.
func NewMemory() *Memory {
	return &Memory{}
}

// Set copies value into memory at the given offset. The caller must have
// already resized memory to cover [offset, offset+size).
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	if offset+size > uint64(len(m.store)) {
		panic("memory: out of bounds write")
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes a 32-byte word at the given offset (big-endian, zero-padded).
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		panic("memory: out of bounds write")
	}
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// Resize grows memory to the given size in bytes. Callers pass a size
// already rounded up to the next 32-byte word; Resize is a no-op if memory
// is already at least that large (memory never shrinks).
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) < size {
		m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
	}
}

// Get returns a copy of the memory contents at [offset, offset+size).
func (m *Memory) Get(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// GetPtr returns a direct slice reference to memory at [offset, offset+size).
// Callers must not retain it past the current opcode handler.
func (m *Memory) GetPtr(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Len returns the current length of memory in bytes (a multiple of 32).
func (m *Memory) Len() int {
	return len(m.store)
}

// Data returns the full backing slice.
func (m *Memory) Data() []byte {
	return m.store
}

// reset empties memory for reuse without reallocating its backing array.
func (m *Memory) reset() {
	m.store = m.store[:0]
	m.lastGasCost = 0
}
