package vm

import (
	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

// StorageReader is the slice of the Host interface the StorageManager reads
// through to on a cache miss.
type StorageReader interface {
	GetState(addr types.Address, slot types.Hash) types.Hash
}

// StorageWriter is the slice of the Host interface Commit writes dirty
// slots back through to.
type StorageWriter interface {
	SetState(addr types.Address, slot types.Hash, val types.Hash)
}

// storageEntry journals one slot write so a snapshot can be reverted.
type storageEntry struct {
	transient bool
	addr      types.Address
	slot      types.Hash
	hadPrev   bool
	prev      types.Hash
}

// StorageManager owns the per-transaction storage and transient-storage
// caches. It tracks, per (address, slot), the value at the start of the
// transaction (original), the value after the most recent write (current),
// and EIP-1153 transient storage, which lives only for the transaction and
// is invisible to SSTORE/SLOAD.
type StorageManager struct {
	host StorageReader

	current  map[types.Address]map[types.Hash]types.Hash
	original map[types.Address]map[types.Hash]types.Hash
	transient map[types.Address]map[types.Hash]types.Hash

	journal []storageEntry
}

// NewStorageManager returns a StorageManager that reads through to host on
// a cache miss.
func NewStorageManager(host StorageReader) *StorageManager {
	return &StorageManager{
		host:      host,
		current:   make(map[types.Address]map[types.Hash]types.Hash),
		original:  make(map[types.Address]map[types.Hash]types.Hash),
		transient: make(map[types.Address]map[types.Hash]types.Hash),
	}
}

// GetCommittedState returns the transaction-start value of a slot, reading
// through to the host and caching the result on first touch.
func (s *StorageManager) GetCommittedState(addr types.Address, slot types.Hash) types.Hash {
	if m := s.original[addr]; m != nil {
		if v, ok := m[slot]; ok {
			return v
		}
	}
	v := s.host.GetState(addr, slot)
	s.cacheOriginal(addr, slot, v)
	return v
}

func (s *StorageManager) cacheOriginal(addr types.Address, slot types.Hash, v types.Hash) {
	m := s.original[addr]
	if m == nil {
		m = make(map[types.Hash]types.Hash)
		s.original[addr] = m
	}
	m[slot] = v
}

// GetState returns the current (possibly dirty, uncommitted) value of a
// slot within this transaction.
func (s *StorageManager) GetState(addr types.Address, slot types.Hash) types.Hash {
	if m := s.current[addr]; m != nil {
		if v, ok := m[slot]; ok {
			return v
		}
	}
	return s.GetCommittedState(addr, slot)
}

// SetState writes a slot's current value, journaling the prior value (if
// any) for RevertToSnapshot.
func (s *StorageManager) SetState(addr types.Address, slot types.Hash, val types.Hash) {
	// Ensure original is populated before the first write, per spec 4.4.
	s.GetCommittedState(addr, slot)

	m := s.current[addr]
	if m == nil {
		m = make(map[types.Hash]types.Hash)
		s.current[addr] = m
	}
	prev, had := m[slot]
	s.journal = append(s.journal, storageEntry{addr: addr, slot: slot, hadPrev: had, prev: prev})
	m[slot] = val
}

// GetTransientState returns a transient (EIP-1153) slot's value, defaulting
// to zero. Transient storage is never read through to the host.
func (s *StorageManager) GetTransientState(addr types.Address, slot types.Hash) types.Hash {
	if m := s.transient[addr]; m != nil {
		return m[slot]
	}
	return types.Hash{}
}

// SetTransientState writes a transient slot, journaling the prior value.
func (s *StorageManager) SetTransientState(addr types.Address, slot types.Hash, val types.Hash) {
	m := s.transient[addr]
	if m == nil {
		m = make(map[types.Hash]types.Hash)
		s.transient[addr] = m
	}
	prev, had := m[slot]
	s.journal = append(s.journal, storageEntry{transient: true, addr: addr, slot: slot, hadPrev: had, prev: prev})
	m[slot] = val
}

// Snapshot returns a handle identifying the current journal length.
func (s *StorageManager) Snapshot() int {
	return len(s.journal)
}

// RevertToSnapshot undoes every write recorded since snap, in reverse
// order, restoring prior values (or removing the key if it was absent).
func (s *StorageManager) RevertToSnapshot(snap int) {
	for i := len(s.journal) - 1; i >= snap; i-- {
		e := s.journal[i]
		target := s.current
		if e.transient {
			target = s.transient
		}
		m := target[e.addr]
		if m == nil {
			continue
		}
		if e.hadPrev {
			m[e.slot] = e.prev
		} else {
			delete(m, e.slot)
		}
	}
	s.journal = s.journal[:snap]
}

// ResetTransaction flushes current/original storage and the write journal.
// Transient storage is flushed separately by
// ClearTransient, since EIP-1153 specifies it is cleared at transaction end
// rather than on revert.
func (s *StorageManager) ResetTransaction() {
	s.current = make(map[types.Address]map[types.Hash]types.Hash)
	s.original = make(map[types.Address]map[types.Hash]types.Hash)
	s.journal = s.journal[:0]
}

// Commit writes every slot touched this transaction back through to host,
// regardless of whether its value actually changed from original; callers
// that care about minimizing writes can compare against GetCommittedState
// themselves before calling this.
func (s *StorageManager) Commit(host StorageWriter) {
	for addr, slots := range s.current {
		for slot, val := range slots {
			host.SetState(addr, slot, val)
		}
	}
}

// ClearTransient empties all transient storage. InitTransactionState calls
// it, so a transaction never observes transient state left over from an
// earlier one on the same EVM; nothing calls it at the end of a transaction.
func (s *StorageManager) ClearTransient() {
	s.transient = make(map[types.Address]map[types.Hash]types.Hash)
}

// SstoreGas computes the gas cost and refund delta for an SSTORE write,
// following EIP-2200 (Istanbul)/EIP-3529 (London) semantics. cold is the
// EIP-2929 cold-slot surcharge (0 pre-Berlin, 2100 on a slot's first touch
// in the transaction Berlin+).
func SstoreGas(original, current, newVal types.Hash, cold uint64, hf params.Hardfork) (gas uint64, refund int64) {
	gas = cold

	if current == newVal {
		gas += WarmStorageReadCost
		return gas, 0
	}

	clearsRefund := int64(SstoreClearsScheduleRefundPreLondon)
	if hf.AtLeast(params.London) {
		clearsRefund = int64(SstoreClearsScheduleRefund)
	}

	if original == current {
		if original.IsZero() {
			gas += GasSstoreSet
			return gas, 0
		}
		gas += GasSstoreReset
		if newVal.IsZero() {
			refund = clearsRefund
		}
		return gas, refund
	}

	// Dirty slot: already written earlier in this transaction.
	gas += WarmStorageReadCost

	if !original.IsZero() {
		if current.IsZero() && !newVal.IsZero() {
			refund -= clearsRefund
		} else if !current.IsZero() && newVal.IsZero() {
			refund += clearsRefund
		}
	}
	if original == newVal {
		if original.IsZero() {
			refund += int64(GasSstoreSet) - int64(WarmStorageReadCost)
		} else {
			refund += int64(GasSstoreReset) - int64(WarmStorageReadCost)
		}
	}
	return gas, refund
}
