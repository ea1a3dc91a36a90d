package vm

import (
	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

// accessEntry journals one first-touch so Restore can undo it in order.
type accessEntry struct {
	isSlot bool
	addr   types.Address
	slot   types.Hash
}

// AccessListManager tracks which addresses and storage slots have been
// touched during the current transaction (EIP-2929). Touching a slot does
// not imply touching its address; each is warmed independently.
type AccessListManager struct {
	warmAddresses map[types.Address]bool
	warmSlots     map[types.Address]map[types.Hash]bool
	journal       []accessEntry
}

// NewAccessListManager returns an empty, all-cold access list.
func NewAccessListManager() *AccessListManager {
	return &AccessListManager{
		warmAddresses: make(map[types.Address]bool),
		warmSlots:     make(map[types.Address]map[types.Hash]bool),
	}
}

// IsWarmAddress reports whether addr has already been touched.
func (a *AccessListManager) IsWarmAddress(addr types.Address) bool {
	return a.warmAddresses[addr]
}

// IsWarmSlot reports whether (addr, slot) has already been touched.
func (a *AccessListManager) IsWarmSlot(addr types.Address, slot types.Hash) bool {
	m := a.warmSlots[addr]
	return m != nil && m[slot]
}

func (a *AccessListManager) warmAddress(addr types.Address) {
	if a.warmAddresses[addr] {
		return
	}
	a.warmAddresses[addr] = true
	a.journal = append(a.journal, accessEntry{addr: addr})
}

func (a *AccessListManager) warmSlot(addr types.Address, slot types.Hash) {
	m := a.warmSlots[addr]
	if m == nil {
		m = make(map[types.Hash]bool)
		a.warmSlots[addr] = m
	}
	if m[slot] {
		return
	}
	m[slot] = true
	a.journal = append(a.journal, accessEntry{isSlot: true, addr: addr, slot: slot})
}

// PrewarmAddress marks addr warm without charging gas, for the executor's
// pre-warming step (sender, target, coinbase, precompiles, EIP-2930 list).
func (a *AccessListManager) PrewarmAddress(addr types.Address) {
	a.warmAddress(addr)
}

// PrewarmSlot marks (addr, slot) warm without charging gas.
func (a *AccessListManager) PrewarmSlot(addr types.Address, slot types.Hash) {
	a.warmSlot(addr, slot)
}

// TouchAddress warms addr and returns the gas cost of this access: cold
// (2600) on first touch, warm (100) thereafter. Pre-Berlin, access-list
// accounting does not apply and callers must not use this cost — per-opcode
// fixed gas covers those forks instead.
func (a *AccessListManager) TouchAddress(addr types.Address, hf params.Hardfork) uint64 {
	if !hf.AtLeast(params.Berlin) {
		return 0
	}
	if a.warmAddresses[addr] {
		return WarmStorageReadCost
	}
	a.warmAddress(addr)
	return ColdAccountAccessCost
}

// TouchSlot warms (addr, slot) and returns the gas cost of this access:
// cold (2100) on first touch, warm (100) thereafter.
func (a *AccessListManager) TouchSlot(addr types.Address, slot types.Hash, hf params.Hardfork) uint64 {
	if !hf.AtLeast(params.Berlin) {
		return 0
	}
	if a.IsWarmSlot(addr, slot) {
		return WarmStorageReadCost
	}
	a.warmSlot(addr, slot)
	return ColdSloadCost
}

// Snapshot returns a handle identifying the current journal length.
func (a *AccessListManager) Snapshot() int {
	return len(a.journal)
}

// RevertToSnapshot undoes every touch recorded since snap, removing the
// entries from the warm sets so the access list reverts as if those
// touches never happened.
func (a *AccessListManager) RevertToSnapshot(snap int) {
	for i := len(a.journal) - 1; i >= snap; i-- {
		e := a.journal[i]
		if e.isSlot {
			if m := a.warmSlots[e.addr]; m != nil {
				delete(m, e.slot)
			}
		} else {
			delete(a.warmAddresses, e.addr)
		}
	}
	a.journal = a.journal[:snap]
}

// Reset clears all warm state and the journal.
func (a *AccessListManager) Reset() {
	a.warmAddresses = make(map[types.Address]bool)
	a.warmSlots = make(map[types.Address]map[types.Hash]bool)
	a.journal = a.journal[:0]
}
