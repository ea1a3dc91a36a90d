package vm

import "github.com/coreevm/fevm/params"

func opAdd(f *Frame) error {
	x, y := f.stack.Pop2()
	y.Add(&x, &y)
	return f.stack.Push(&y)
}

func opSub(f *Frame) error {
	x, y := f.stack.Pop2()
	y.Sub(&x, &y)
	return f.stack.Push(&y)
}

func opMul(f *Frame) error {
	x, y := f.stack.Pop2()
	y.Mul(&x, &y)
	return f.stack.Push(&y)
}

func opDiv(f *Frame) error {
	x, y := f.stack.Pop2()
	y.Div(&x, &y)
	return f.stack.Push(&y)
}

func opSdiv(f *Frame) error {
	x, y := f.stack.Pop2()
	y.SDiv(&x, &y)
	return f.stack.Push(&y)
}

func opMod(f *Frame) error {
	x, y := f.stack.Pop2()
	y.Mod(&x, &y)
	return f.stack.Push(&y)
}

func opSmod(f *Frame) error {
	x, y := f.stack.Pop2()
	y.SMod(&x, &y)
	return f.stack.Push(&y)
}

func opAddmod(f *Frame) error {
	x, y, z := f.stack.Pop3()
	z.AddMod(&x, &y, &z)
	return f.stack.Push(&z)
}

func opMulmod(f *Frame) error {
	x, y, z := f.stack.Pop3()
	z.MulMod(&x, &y, &z)
	return f.stack.Push(&z)
}

func opExp(f *Frame) error {
	base, exponent := f.stack.Pop2()

	byteLen := uint64((exponent.BitLen() + 7) / 8)
	dynamic := ExpGas(byteLen, f.hardfork.AtLeast(params.SpuriousDragon))
	if !f.UseGas(dynamic) {
		return ErrOutOfGas
	}

	base.Exp(&base, &exponent)
	return f.stack.Push(&base)
}

func opSignExtend(f *Frame) error {
	back, num := f.stack.Pop2()
	num.ExtendSign(&num, &back)
	return f.stack.Push(&num)
}

func opLt(f *Frame) error {
	x, y := f.stack.Pop2()
	if x.Lt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return f.stack.Push(&y)
}

func opGt(f *Frame) error {
	x, y := f.stack.Pop2()
	if x.Gt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return f.stack.Push(&y)
}

func opSlt(f *Frame) error {
	x, y := f.stack.Pop2()
	if x.Slt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return f.stack.Push(&y)
}

func opSgt(f *Frame) error {
	x, y := f.stack.Pop2()
	if x.Sgt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return f.stack.Push(&y)
}

func opEq(f *Frame) error {
	x, y := f.stack.Pop2()
	if x.Eq(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return f.stack.Push(&y)
}

func opIszero(f *Frame) error {
	x, err := f.stack.Pop()
	if err != nil {
		return err
	}
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return f.stack.Push(&x)
}

func opAnd(f *Frame) error {
	x, y := f.stack.Pop2()
	y.And(&x, &y)
	return f.stack.Push(&y)
}

func opOr(f *Frame) error {
	x, y := f.stack.Pop2()
	y.Or(&x, &y)
	return f.stack.Push(&y)
}

func opXor(f *Frame) error {
	x, y := f.stack.Pop2()
	y.Xor(&x, &y)
	return f.stack.Push(&y)
}

func opNot(f *Frame) error {
	x, err := f.stack.Pop()
	if err != nil {
		return err
	}
	x.Not(&x)
	return f.stack.Push(&x)
}

func opByte(f *Frame) error {
	pos, val := f.stack.Pop2()
	val.Byte(&pos)
	return f.stack.Push(&val)
}

func opShl(f *Frame) error {
	shift, val := f.stack.Pop2()
	if shift.LtUint64(256) {
		val.Lsh(&val, uint(shift.Uint64()))
	} else {
		val.Clear()
	}
	return f.stack.Push(&val)
}

func opShr(f *Frame) error {
	shift, val := f.stack.Pop2()
	if shift.LtUint64(256) {
		val.Rsh(&val, uint(shift.Uint64()))
	} else {
		val.Clear()
	}
	return f.stack.Push(&val)
}

func opSar(f *Frame) error {
	shift, val := f.stack.Pop2()
	if shift.GtUint64(256) {
		if val.Sign() >= 0 {
			val.Clear()
		} else {
			val.SetAllOne()
		}
	} else {
		val.SRsh(&val, uint(shift.Uint64()))
	}
	return f.stack.Push(&val)
}
