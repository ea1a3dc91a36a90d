package vm

import (
	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/types"
)

// Host is the account-and-storage backend an EVM instance executes against.
// Implementations (see package hostdb for an in-memory reference) need not
// be safe for concurrent use; a single EVM instance processes one
// transaction at a time and the executor never shares a Host across
// concurrently running EVMs.
type Host interface {
	GetBalance(addr types.Address) *uint256.Int
	SetBalance(addr types.Address, bal *uint256.Int)
	GetNonce(addr types.Address) uint64
	SetNonce(addr types.Address, nonce uint64)
	GetCode(addr types.Address) []byte
	SetCode(addr types.Address, code []byte)
	GetCodeHash(addr types.Address) types.Hash
	GetState(addr types.Address, slot types.Hash) types.Hash
	SetState(addr types.Address, slot types.Hash, val types.Hash)
	Exist(addr types.Address) bool

	// DeleteAccount removes addr and its storage entirely: the executor's
	// end-of-transaction EIP-161 empty-account sweep and self-destruct
	// processing (spec 4.8 steps 11-12) both resolve to this, since neither
	// is expressible as a set_balance/set_nonce/set_code/set_storage call
	// on its own once storage must be wiped too.
	DeleteAccount(addr types.Address)
}

// BlockContext carries the block-level values the interpreter's block-
// context opcodes read (COINBASE, TIMESTAMP, NUMBER, and so on). GetHash
// resolves BLOCKHASH for the 256 most recent ancestors.
type BlockContext struct {
	Coinbase    types.Address
	GasLimit    uint64
	BlockNumber uint64
	Timestamp   uint64
	Difficulty  *uint256.Int // reinterpreted as PREVRANDAO output from Paris on
	BaseFee     *uint256.Int // London+
	BlobBaseFee *uint256.Int // Cancun+
	GetHash     func(blockNumber uint64) types.Hash
}

// TxContext carries the transaction-level values ORIGIN, GASPRICE, and
// BLOBHASH read.
type TxContext struct {
	Origin     types.Address
	GasPrice   *uint256.Int
	BlobHashes []types.Hash
}

// accountEntry journals one balance/nonce/code write or set-membership
// change so a call snapshot can be reverted.
type accountEntry struct {
	kind    accountEntryKind
	addr    types.Address
	balance uint256.Int
	nonce   uint64
	code    []byte
	target  types.Address // SELFDESTRUCT beneficiary
}

type accountEntryKind int

const (
	entryBalance accountEntryKind = iota
	entryNonce
	entryCode
	entryCreated
	entryTouched
	entrySelfDestruct
	entryLog
)

// CallResult is the outcome of EVM.Call or EVM.Create.
type CallResult struct {
	Success         bool
	GasLeft         uint64
	Output          []byte
	CreatedAddress  types.Address
	Err             error
}

// EVM is the per-transaction orchestrator: it owns the world-state caches,
// access list, storage manager, log buffer, created/touched/self-destruct
// sets, refund counter, and the call stack of Frames. One EVM instance
// processes exactly one transaction from init_transaction_state through
// finalization; it must not be reused concurrently.
type EVM struct {
	Host   Host
	Config params.Config
	Block  BlockContext
	Tx     TxContext
	Tracer Tracer

	table       *JumpTable
	precompiles PrecompileSet

	accessList *AccessListManager
	storage    *StorageManager

	balanceCache map[types.Address]uint256.Int
	nonceCache   map[types.Address]uint64
	codeCache    map[types.Address][]byte

	created       map[types.Address]bool
	touched       map[types.Address]bool
	selfDestructs map[types.Address]types.Address // addr -> beneficiary

	logs []types.Log

	refundCounter int64

	journal []accountEntry

	depth int
}

// NewEVM constructs an EVM against host using cfg. It calls
// InitTransactionState itself, so the returned EVM is ready for its first
// call/create.
func NewEVM(host Host, cfg params.Config, block BlockContext, tx TxContext) *EVM {
	e := &EVM{
		Host:   host,
		Config: cfg,
		Block:  block,
		Tx:     tx,
	}
	e.table = SelectJumpTable(cfg.Hardfork)
	e.precompiles = SelectPrecompiles(cfg.Hardfork)
	e.InitTransactionState()
	return e
}

// InitTransactionState flushes every per-transaction cache: world-state
// caches, access list, storage (current/original and transient), logs, the
// created/touched/self-destruct sets, and the refund counter. NewEVM calls
// it. This is the only place transient storage is cleared; nothing clears
// it when a transaction ends.
func (e *EVM) InitTransactionState() {
	e.accessList = NewAccessListManager()
	e.storage = NewStorageManager(e.Host)
	e.storage.ClearTransient()
	e.balanceCache = make(map[types.Address]uint256.Int)
	e.nonceCache = make(map[types.Address]uint64)
	e.codeCache = make(map[types.Address][]byte)
	e.created = make(map[types.Address]bool)
	e.touched = make(map[types.Address]bool)
	e.selfDestructs = make(map[types.Address]types.Address)
	e.logs = nil
	e.refundCounter = 0
	e.journal = nil
	e.depth = 0
}

// snapshot is the combined handle for a call/create's undo point.
type snapshot struct {
	journalLen    int
	storageSnap   int
	accessSnap    int
	logsLen       int
	refundCounter int64
}

func (e *EVM) snapshotState() snapshot {
	return snapshot{
		journalLen:    len(e.journal),
		storageSnap:   e.storage.Snapshot(),
		accessSnap:    e.accessList.Snapshot(),
		logsLen:       len(e.logs),
		refundCounter: e.refundCounter,
	}
}

func (e *EVM) revertToSnapshot(s snapshot) {
	for i := len(e.journal) - 1; i >= s.journalLen; i-- {
		e.undoEntry(e.journal[i])
	}
	e.journal = e.journal[:s.journalLen]
	e.storage.RevertToSnapshot(s.storageSnap)
	e.accessList.RevertToSnapshot(s.accessSnap)
	e.logs = e.logs[:s.logsLen]
	e.refundCounter = s.refundCounter
}

func (e *EVM) undoEntry(ent accountEntry) {
	switch ent.kind {
	case entryBalance:
		e.balanceCache[ent.addr] = ent.balance
	case entryNonce:
		e.nonceCache[ent.addr] = ent.nonce
	case entryCode:
		e.codeCache[ent.addr] = ent.code
	case entryCreated:
		delete(e.created, ent.addr)
	case entryTouched:
		delete(e.touched, ent.addr)
	case entrySelfDestruct:
		delete(e.selfDestructs, ent.addr)
	}
}

// GetBalance returns addr's current balance, reading through to the host
// and caching the result on first access.
func (e *EVM) GetBalance(addr types.Address) *uint256.Int {
	if v, ok := e.balanceCache[addr]; ok {
		return &v
	}
	v := e.Host.GetBalance(addr)
	var cached uint256.Int
	if v != nil {
		cached = *v
	}
	e.balanceCache[addr] = cached
	return &cached
}

// SetBalanceWithSnapshot writes addr's balance, journaling the prior value.
func (e *EVM) SetBalanceWithSnapshot(addr types.Address, bal *uint256.Int) {
	prev := *e.GetBalance(addr)
	e.journal = append(e.journal, accountEntry{kind: entryBalance, addr: addr, balance: prev})
	e.balanceCache[addr] = *bal
}

// GetNonce returns addr's current nonce.
func (e *EVM) GetNonce(addr types.Address) uint64 {
	if v, ok := e.nonceCache[addr]; ok {
		return v
	}
	v := e.Host.GetNonce(addr)
	e.nonceCache[addr] = v
	return v
}

// SetNonce writes addr's nonce, journaling the prior value.
func (e *EVM) SetNonce(addr types.Address, nonce uint64) {
	prev := e.GetNonce(addr)
	e.journal = append(e.journal, accountEntry{kind: entryNonce, addr: addr, nonce: prev})
	e.nonceCache[addr] = nonce
}

// GetCode returns addr's code.
func (e *EVM) GetCode(addr types.Address) []byte {
	if v, ok := e.codeCache[addr]; ok {
		return v
	}
	v := e.Host.GetCode(addr)
	e.codeCache[addr] = v
	return v
}

// SetCode installs addr's code (deployment, or EIP-7702 delegation), also
// used for self-destruct's end-of-transaction deletion via a nil slice.
func (e *EVM) SetCode(addr types.Address, code []byte) {
	prev := e.codeCache[addr]
	if prev == nil {
		prev = e.Host.GetCode(addr)
	}
	e.journal = append(e.journal, accountEntry{kind: entryCode, addr: addr, code: prev})
	e.codeCache[addr] = code
}

// MarkCreated records addr as created within this transaction, relevant to
// EIP-6780's restricted SELFDESTRUCT.
func (e *EVM) MarkCreated(addr types.Address) {
	if e.created[addr] {
		return
	}
	e.created[addr] = true
	e.journal = append(e.journal, accountEntry{kind: entryCreated, addr: addr})
}

// WasCreatedThisTx reports whether addr was created earlier in the current
// transaction.
func (e *EVM) WasCreatedThisTx(addr types.Address) bool {
	return e.created[addr]
}

// Touch records addr as touched, for EIP-161 empty-account cleanup.
func (e *EVM) Touch(addr types.Address) {
	if e.touched[addr] {
		return
	}
	e.touched[addr] = true
	e.journal = append(e.journal, accountEntry{kind: entryTouched, addr: addr})
}

// ScheduleSelfDestruct records addr for end-of-transaction deletion with
// beneficiary. Re-scheduling with a new beneficiary (Cancun's "multiple
// SELFDESTRUCT in one tx" case) overwrites the prior beneficiary.
func (e *EVM) ScheduleSelfDestruct(addr, beneficiary types.Address) {
	e.journal = append(e.journal, accountEntry{kind: entrySelfDestruct, addr: addr, target: e.selfDestructs[addr]})
	e.selfDestructs[addr] = beneficiary
}

// AppendLog appends a log record, in opcode order.
func (e *EVM) AppendLog(l types.Log) {
	e.logs = append(e.logs, l)
}

// Logs returns the logs emitted so far this transaction.
func (e *EVM) Logs() []types.Log { return e.logs }

// AddRefund adds delta (positive or negative) to the refund counter.
func (e *EVM) AddRefund(delta int64) { e.refundCounter += delta }

// RefundCounter returns the accumulated, uncapped refund.
func (e *EVM) RefundCounter() int64 { return e.refundCounter }

// TouchedAddresses returns every address touched this transaction, for
// EIP-161 cleanup.
func (e *EVM) TouchedAddresses() []types.Address {
	out := make([]types.Address, 0, len(e.touched))
	for a := range e.touched {
		out = append(out, a)
	}
	return out
}

// SelfDestructSet returns the scheduled self-destructs as addr->beneficiary.
func (e *EVM) SelfDestructSet() map[types.Address]types.Address {
	return e.selfDestructs
}

// PrewarmAddress marks addr warm for EIP-2929 access-list gas accounting,
// without journaling (pre-warming happens before any snapshot exists to
// revert to). Used by the executor's pre-warm step (spec 4.8 step 6).
func (e *EVM) PrewarmAddress(addr types.Address) {
	e.accessList.PrewarmAddress(addr)
}

// PrewarmSlot marks (addr, slot) warm, same caveats as PrewarmAddress.
func (e *EVM) PrewarmSlot(addr types.Address, slot types.Hash) {
	e.accessList.PrewarmSlot(addr, slot)
}

// Commit flushes every balance, nonce, code, and storage write cached this
// transaction back through to the host. It does not perform EIP-161 empty-
// account cleanup or self-destruct deletion; the executor does those,
// against the now-committed host, after inspecting TouchedAddresses and
// SelfDestructSet (spec 4.8 steps 11-12).
func (e *EVM) Commit() {
	for addr, code := range e.codeCache {
		e.Host.SetCode(addr, code)
	}
	for addr, nonce := range e.nonceCache {
		e.Host.SetNonce(addr, nonce)
	}
	for addr, bal := range e.balanceCache {
		b := bal
		e.Host.SetBalance(addr, &b)
	}
	e.storage.Commit(e.Host)
}
