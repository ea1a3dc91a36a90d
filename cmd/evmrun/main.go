// Command evmrun executes a single scenario against the interpreter and
// transaction executor and prints the outcome.
//
// Usage:
//
//	evmrun scenario.json
//
// A scenario either supplies a "to" address, in which case it runs as a
// full transaction message through txexec.Run (intrinsic gas, fee
// deduction, refunds, the works), or omits it for contract creation via
// the same path. Set "raw": true to instead hand "code" directly to
// vm.EVM.Call against a synthetic callee, bypassing message-level
// accounting entirely — useful for poking at a handful of opcodes without
// constructing a full transaction.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/holiman/uint256"

	"github.com/coreevm/fevm/hostdb"
	"github.com/coreevm/fevm/log"
	"github.com/coreevm/fevm/params"
	"github.com/coreevm/fevm/txexec"
	"github.com/coreevm/fevm/types"
	"github.com/coreevm/fevm/vm"
)

var logger = log.Default().Module("evmrun")

// scenario is the on-disk JSON shape. Hex fields accept an optional "0x" prefix.
type scenario struct {
	Hardfork  string `json:"hardfork"`
	Raw       bool   `json:"raw"`
	Code      string `json:"code"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	GasLimit  uint64 `json:"gas_limit"`
	GasPrice  string `json:"gas_price"`
	Data      string `json:"data"`
	Nonce     uint64 `json:"nonce"`
	Balance   string `json:"balance"` // sender's pre-funded balance
	Block     blockScenario `json:"block"`
}

type blockScenario struct {
	Coinbase    string `json:"coinbase"`
	Number      uint64 `json:"number"`
	Timestamp   uint64 `json:"timestamp"`
	GasLimit    uint64 `json:"gas_limit"`
	BaseFee     string `json:"base_fee"`
	BlobBaseFee string `json:"blob_base_fee"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: evmrun scenario.json")
		return 2
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("reading scenario", "error", err)
		return 1
	}

	var sc scenario
	if err := json.Unmarshal(raw, &sc); err != nil {
		logger.Error("parsing scenario", "error", err)
		return 1
	}

	hf := params.Latest
	if sc.Hardfork != "" {
		parsed, ok := params.ParseHardfork(sc.Hardfork)
		if !ok {
			logger.Error("unknown hardfork", "hardfork", sc.Hardfork)
			return 1
		}
		hf = parsed
	}
	cfg := params.DefaultConfig(hf)
	logger.Info("running scenario", "hardfork", hf.String(), "raw", sc.Raw)

	db := hostdb.NewMemDB()
	block := vm.BlockContext{
		Coinbase:    hexAddr(sc.Block.Coinbase),
		GasLimit:    sc.Block.GasLimit,
		BlockNumber: sc.Block.Number,
		Timestamp:   sc.Block.Timestamp,
		Difficulty:  new(uint256.Int),
		BaseFee:     hexUint256(sc.Block.BaseFee),
		BlobBaseFee: hexUint256(sc.Block.BlobBaseFee),
		GetHash:     func(uint64) types.Hash { return types.Hash{} },
	}

	from := hexAddr(sc.From)
	code := hexBytes(sc.Code)

	if sc.Raw {
		return runRaw(db, cfg, block, from, code, sc)
	}
	return runMessage(db, cfg, block, from, code, sc)
}

// runRaw deploys code at a synthetic callee address and calls it directly,
// skipping intrinsic gas, nonce, and fee accounting.
func runRaw(db *hostdb.MemDB, cfg params.Config, block vm.BlockContext, from types.Address, code []byte, sc scenario) int {
	callee := types.HexToAddress("0x00000000000000000000000000000000000001")
	db.SetCode(callee, code)
	db.SetBalance(from, hexUint256OrZero(sc.Balance))

	e := vm.NewEVM(db, cfg, block, vm.TxContext{Origin: from, GasPrice: hexUint256OrZero(sc.GasPrice)})
	ret, leftOverGas, err := e.Call(vm.CallParams{
		Caller:        from,
		Address:       callee,
		CodeAddress:   callee,
		Input:         hexBytes(sc.Data),
		Gas:           sc.GasLimit,
		Value:         hexUint256OrZero(sc.Value),
		TransferValue: true,
	})
	e.Commit()

	fmt.Printf("return:    0x%x\n", ret)
	fmt.Printf("gas used:  %d\n", sc.GasLimit-leftOverGas)
	if err != nil {
		fmt.Printf("error:     %v\n", err)
		return 1
	}
	return 0
}

// runMessage runs the scenario as a full transaction through txexec.Run.
func runMessage(db *hostdb.MemDB, cfg params.Config, block vm.BlockContext, from types.Address, code []byte, sc scenario) int {
	db.SetBalance(from, hexUint256OrZero(sc.Balance))
	db.SetNonce(from, sc.Nonce)

	msg := &txexec.Message{
		From:      from,
		Nonce:     sc.Nonce,
		Value:     hexBigOrZero(sc.Value),
		GasLimit:  sc.GasLimit,
		GasPrice:  hexBigOrZero(sc.GasPrice),
		Data:      hexBytes(sc.Data),
		IsEIP1559: false,
	}
	if sc.To != "" {
		to := hexAddr(sc.To)
		msg.To = &to
		db.SetCode(to, code)
	} else {
		msg.Data = code
	}

	result, err := txexec.Run(db, cfg, block, msg)
	if err != nil {
		logger.Error("message rejected", "error", err)
		return 1
	}

	fmt.Printf("gas used:  %d\n", result.UsedGas)
	fmt.Printf("return:    0x%x\n", result.ReturnData)
	if result.ContractAddress != (types.Address{}) {
		fmt.Printf("contract:  %s\n", result.ContractAddress.Hex())
	}
	if result.Failed() {
		fmt.Printf("error:     %v\n", result.Err)
		return 1
	}
	return 0
}

func hexAddr(s string) types.Address {
	if s == "" {
		return types.Address{}
	}
	return types.HexToAddress(s)
}

func hexBytes(s string) []byte {
	if s == "" {
		return nil
	}
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return nil
	}
	return b
}

func hexBigOrZero(s string) *big.Int {
	if s == "" {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(trimHexPrefix(s), 16)
	if !ok {
		return new(big.Int)
	}
	return v
}

func hexUint256(s string) *uint256.Int {
	if s == "" {
		return nil
	}
	return hexUint256OrZero(s)
}

func hexUint256OrZero(s string) *uint256.Int {
	u, overflow := uint256.FromBig(hexBigOrZero(s))
	if overflow {
		return new(uint256.Int)
	}
	return u
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
