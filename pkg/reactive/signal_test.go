package reactive

import (
	"errors"
	"testing"
)

func TestSignalCreateAndRead(t *testing.T) {
	value, _ := CreateSignal(5)
	if value() != 5 {
		t.Errorf("expected 5, got %d", value())
	}

	withComparator, _ := CreateSignal(5, Equals(func(a, b int) bool { return a == b }))
	if withComparator() != 5 {
		t.Errorf("expected 5, got %d", withComparator())
	}
}

func TestSignalSet(t *testing.T) {
	value, setValue := CreateSignal(5)
	setValue(10)
	if value() != 10 {
		t.Errorf("expected 10, got %d", value())
	}
}

func TestSignalComparatorRejectsWrite(t *testing.T) {
	s := NewSignal(5, Equals(func(a, b int) bool { return a > b }))

	if got := s.Set(3); got != 5 {
		t.Errorf("rejected write should return current value 5, got %d", got)
	}
	if s.Get() != 5 {
		t.Errorf("expected value to stay 5, got %d", s.Get())
	}

	if got := s.Set(10); got != 10 {
		t.Errorf("expected Set to return 10, got %d", got)
	}
	if s.Get() != 10 {
		t.Errorf("expected 10, got %d", s.Get())
	}
}

func TestSignalSetReturnsArgument(t *testing.T) {
	s := NewSignal[*int](nil)

	if got := s.Set(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	twelve := 12
	if got := s.Set(&twelve); got != &twelve {
		t.Errorf("expected pointer to 12, got %v", got)
	}
	if got := s.Reset(); got != nil {
		t.Errorf("expected Reset to commit nil, got %v", got)
	}
	if s.Peek() != nil {
		t.Error("expected nil after Reset")
	}
}

func TestSignalUpdate(t *testing.T) {
	s := NewSignal(1)
	if got := s.Update(func(n int) int { return n + 1 }); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if s.Peek() != 2 {
		t.Errorf("expected 2, got %d", s.Peek())
	}
}

func TestSignalEqualWriteDoesNotNotify(t *testing.T) {
	s := NewSignal("a")
	runs := 0
	dispose := CreateRoot(func(dispose func()) func() {
		Effect(func() {
			_ = s.Get()
			runs++
		})
		return dispose
	})
	defer dispose()

	s.Set("a")
	if runs != 1 {
		t.Errorf("equal write should not re-run effect, runs=%d", runs)
	}
	s.Set("b")
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestSignalAlwaysNotify(t *testing.T) {
	s := NewSignal(1, AlwaysNotify())
	runs := 0
	dispose := CreateRoot(func(dispose func()) func() {
		Effect(func() {
			_ = s.Get()
			runs++
		})
		return dispose
	})
	defer dispose()

	s.Set(1)
	s.Set(1)
	if runs != 3 {
		t.Errorf("expected every write to notify, runs=%d", runs)
	}
}

func TestSignalNameAndID(t *testing.T) {
	a := NewSignal(0, Name("count"))
	b := NewSignal(0)

	if a.Name() != "count" {
		t.Errorf("expected name count, got %q", a.Name())
	}
	if a.ID() == b.ID() {
		t.Error("signals should have distinct IDs")
	}
}

func TestEqualsTypeMismatchPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("expected ErrTypeMismatch panic, got %v", r)
		}
	}()
	NewSignal(1, Equals(func(a, b string) bool { return a == b }))
}

func TestDefaultEquals(t *testing.T) {
	if !DefaultEquals(1, 1) || DefaultEquals(1, 2) {
		t.Error("int comparison wrong")
	}
	if !DefaultEquals("x", "x") || DefaultEquals("x", "y") {
		t.Error("string comparison wrong")
	}

	type point struct{ X, Y int }
	if !DefaultEquals(point{1, 2}, point{1, 2}) {
		t.Error("equal structs should compare equal")
	}

	s := []int{1, 2, 3}
	if !DefaultEquals(s, s) {
		t.Error("same slice should be equal")
	}
	if DefaultEquals(s, []int{1, 2, 3}) {
		t.Error("distinct slices with equal content should differ")
	}
	if DefaultEquals(s, s[:2]) {
		t.Error("reslice with different length should differ")
	}

	m := map[string]int{"a": 1}
	if !DefaultEquals(m, m) {
		t.Error("same map should be equal")
	}
	if DefaultEquals(m, map[string]int{"a": 1}) {
		t.Error("distinct maps should differ")
	}

	f := func() {}
	if DefaultEquals(f, f) {
		t.Error("functions should never be equal")
	}

	var e1, e2 error
	if !DefaultEquals(e1, e2) {
		t.Error("nil interfaces should be equal")
	}
	if DefaultEquals[error](nil, errors.New("x")) {
		t.Error("nil and non-nil should differ")
	}

	var a1, a2 any = []int{1}, 1
	if DefaultEquals(a1, a2) {
		t.Error("different dynamic types should differ")
	}
}
