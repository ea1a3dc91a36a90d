package vm

// maxIterations is the debug-build safety net against infinite loops
// (spec 4.5), used when Config.LoopQuota is zero; a nonzero LoopQuota
// replaces it. Only enforced when Config.Debug is set; production execution
// relies on the gas meter alone, since a genuinely gas-bounded loop always
// terminates and the cap would otherwise just add overhead to every call.
const maxIterations = 10_000_000

// run drives frame's dispatch loop to completion: STOP, RETURN, REVERT, or
// a trapping error. It is the EVM's only entry point into Frame execution,
// so the tracer hook and iteration cap live here rather than in Frame
// itself.
func (e *EVM) run(f *Frame) ([]byte, error) {
	startGas := f.Gas()
	if e.Tracer != nil {
		e.Tracer.CaptureStart(f.caller, f.address, false, f.calldata, startGas, &f.value)
	}

	quota := e.Config.LoopQuota
	if quota == 0 {
		quota = maxIterations
	}
	var steps uint64
	var runErr error

loop:
	for {
		if f.stopped || f.reverted {
			break
		}
		if e.Config.Debug {
			steps++
			if steps > quota {
				runErr = ErrIterationQuotaExceeded
				break
			}
		}

		op := f.GetOp(f.pc)
		opDef := e.table[op]
		if opDef == nil {
			runErr = ErrInvalidOpcode
			break
		}

		if err := f.stack.Require(opDef.minStack); err != nil {
			runErr = err
			break
		}
		if f.stack.Len() > opDef.maxStack {
			runErr = ErrStackOverflow
			break
		}

		if !f.UseGas(opDef.constantGas) {
			runErr = ErrOutOfGas
			break
		}

		gasBefore := f.Gas()
		f.jumped = false
		err := opDef.execute(f)

		if e.Tracer != nil {
			e.Tracer.CaptureState(f.pc, op, gasBefore, gasBefore-f.Gas(), f.stack, f.memory, f.depth, err)
		}

		if err != nil {
			runErr = err
			break loop
		}

		if !f.jumped {
			f.pc++
		}
	}

	var out []byte
	if f.reverted {
		out = f.output
		runErr = ErrExecutionReverted
	} else if f.stopped {
		out = f.output
		runErr = nil
	}

	if e.Tracer != nil {
		e.Tracer.CaptureEnd(out, startGas-f.Gas(), runErr)
	}

	return out, runErr
}
