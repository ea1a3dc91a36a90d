package vm

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestStackPushPop(t *testing.T) {
	st := NewStack()
	if err := st.Push(uint256.NewInt(42)); err != nil {
		t.Fatalf("Push(42): %v", err)
	}
	if err := st.Push(uint256.NewInt(99)); err != nil {
		t.Fatalf("Push(99): %v", err)
	}

	if st.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", st.Len())
	}

	val, err := st.Pop()
	if err != nil {
		t.Fatalf("Pop(): %v", err)
	}
	if val.Uint64() != 99 {
		t.Errorf("Pop() = %d, want 99", val.Uint64())
	}

	val, err = st.Pop()
	if err != nil {
		t.Fatalf("Pop(): %v", err)
	}
	if val.Uint64() != 42 {
		t.Errorf("Pop() = %d, want 42", val.Uint64())
	}

	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0", st.Len())
	}
}

func TestStackPopUnderflow(t *testing.T) {
	st := NewStack()
	if _, err := st.Pop(); err != ErrStackUnderflow {
		t.Errorf("Pop() on empty stack = %v, want ErrStackUnderflow", err)
	}
}

func TestStackPeekAndBack(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(10))
	st.Push(uint256.NewInt(20))
	st.Push(uint256.NewInt(30))

	if st.Peek().Uint64() != 30 {
		t.Errorf("Peek() = %d, want 30", st.Peek().Uint64())
	}
	if st.Back(0).Uint64() != 30 {
		t.Errorf("Back(0) = %d, want 30", st.Back(0).Uint64())
	}
	if st.Back(2).Uint64() != 10 {
		t.Errorf("Back(2) = %d, want 10", st.Back(2).Uint64())
	}
}

func TestStackDupIsIndependentCopy(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(10))
	st.Push(uint256.NewInt(20))
	st.Push(uint256.NewInt(30))

	if err := st.Dup(2); err != nil { // duplicate the 2nd from top (20)
		t.Fatalf("Dup(2): %v", err)
	}
	if st.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", st.Len())
	}
	if st.Peek().Uint64() != 20 {
		t.Errorf("after Dup(2), top = %d, want 20", st.Peek().Uint64())
	}

	st.Peek().SetUint64(999)
	if st.Back(2).Uint64() != 20 {
		t.Errorf("Dup should create an independent copy, original slot mutated")
	}
}

func TestStackSwap(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(1))
	st.Push(uint256.NewInt(2))
	st.Push(uint256.NewInt(3))

	st.Swap(2) // swap top (3) with 2nd below (1)
	if st.Peek().Uint64() != 1 {
		t.Errorf("after Swap(2), top = %d, want 1", st.Peek().Uint64())
	}
	if st.Back(2).Uint64() != 3 {
		t.Errorf("after Swap(2), bottom = %d, want 3", st.Back(2).Uint64())
	}
}

func TestStackOverflow(t *testing.T) {
	st := NewStack()
	for i := 0; i < stackLimit; i++ {
		if err := st.Push(uint256.NewInt(uint64(i))); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if err := st.Push(uint256.NewInt(9999)); err != ErrStackOverflow {
		t.Errorf("Push past limit = %v, want ErrStackOverflow", err)
	}
}

func TestStackRequire(t *testing.T) {
	st := NewStack()
	st.Push(uint256.NewInt(1))
	if err := st.Require(2); err != ErrStackUnderflow {
		t.Errorf("Require(2) on 1-deep stack = %v, want ErrStackUnderflow", err)
	}
	if err := st.Require(1); err != nil {
		t.Errorf("Require(1) on 1-deep stack = %v, want nil", err)
	}
}

func TestStackPopN(t *testing.T) {
	st := NewStack()
	for i := uint64(1); i <= 7; i++ {
		st.Push(uint256.NewInt(i))
	}
	a, b, c, d, e, g, h := st.Pop7()
	if a.Uint64() != 7 || b.Uint64() != 6 || c.Uint64() != 5 || d.Uint64() != 4 ||
		e.Uint64() != 3 || g.Uint64() != 2 || h.Uint64() != 1 {
		t.Errorf("Pop7() = %d,%d,%d,%d,%d,%d,%d, want 7,6,5,4,3,2,1",
			a.Uint64(), b.Uint64(), c.Uint64(), d.Uint64(), e.Uint64(), g.Uint64(), h.Uint64())
	}
	if st.Len() != 0 {
		t.Errorf("Len() after Pop7 = %d, want 0", st.Len())
	}
}
