package params

import "github.com/holiman/uint256"

// Config holds construction-time options for an EVM instance. Defaults
// mirror mainnet protocol values; callers building a conformance harness or
// a test fixture override the fields they need.
type Config struct {
	// Hardfork selects the jump table and precompile set. DefaultConfig takes
	// it as an argument and has no default of its own; the zero value is
	// Frontier.
	Hardfork Hardfork

	// ChainID is the value CHAINID (Istanbul+) pushes. Default mainnet (1).
	ChainID uint256.Int

	// StackLimit records the operand stack bound. Default 1024. The
	// interpreter does not read it: the vm stack limit is a fixed 1024.
	StackLimit int

	// MaxCodeSize bounds deployed contract code (EIP-170). Default 24576.
	MaxCodeSize int

	// MaxInitCodeSize bounds CREATE/CREATE2 init code (EIP-3860, Shanghai+).
	// Default 49152.
	MaxInitCodeSize int

	// BlockGasLimit is the containing block's gas limit. Default 30_000_000.
	// txexec.Run does not read it; it checks a transaction's gas limit
	// against BlockContext.GasLimit.
	BlockGasLimit uint64

	// MemoryInitialCapacity is a preallocation size for Frame memory.
	// Default 4096. NewFrame does not read it: a Frame's memory starts empty
	// and grows on demand.
	MemoryInitialCapacity int

	// MemoryLimit is a cap on Frame memory growth. Default 16 MiB. The
	// interpreter does not read it: memory growth is bounded by gas, and an
	// access ending past 2^40 bytes fails with ErrOutOfGas.
	MemoryLimit uint64

	// MaxCallDepth bounds nested CALL/CREATE depth. Default 1024.
	MaxCallDepth int

	// LoopQuota caps interpreter iterations as a debug safety net against
	// infinite loops. Only enforced when Debug is true; zero selects the
	// interpreter's built-in cap of 10,000,000. Production execution skips
	// the check entirely (see SPEC_FULL.md §9, item 2).
	LoopQuota uint64

	// Debug enables the iteration cap. Tracer hooks run whenever EVM.Tracer
	// is set, whatever Debug says.
	Debug bool
}

// DefaultConfig returns the mainnet-equivalent configuration at the given
// hardfork.
func DefaultConfig(h Hardfork) Config {
	return Config{
		Hardfork:              h,
		ChainID:               *uint256.NewInt(1),
		StackLimit:            1024,
		MaxCodeSize:           24576,
		MaxInitCodeSize:       49152,
		BlockGasLimit:         30_000_000,
		MemoryInitialCapacity: 4096,
		MemoryLimit:           16 << 20,
		MaxCallDepth:          1024,
		LoopQuota:             1_000_000,
	}
}
