package vm

import "github.com/coreevm/fevm/types"

// makeLog returns the handler for LOG0..LOG4.
func makeLog(n int) func(f *Frame) error {
	return func(f *Frame) error {
		if f.isStatic {
			return ErrWriteProtection
		}
		offset, size := f.stack.Pop2()
		topics := make([]types.Hash, n)
		for i := 0; i < n; i++ {
			w, err := f.stack.Pop()
			if err != nil {
				return err
			}
			topics[i] = hashFromWord(&w)
		}
		if err := chargeMemoryExpansion(f, &offset, &size); err != nil {
			return err
		}
		if !f.UseGas(LogGas(uint64(n), size.Uint64())) {
			return ErrOutOfGas
		}
		var data []byte
		if !size.IsZero() {
			data = append([]byte(nil), f.memory.GetPtr(int64(offset.Uint64()), int64(size.Uint64()))...)
		}
		f.evm.AppendLog(types.Log{
			Address: f.address,
			Topics:  topics,
			Data:    data,
		})
		return nil
	}
}
