package reactive

import "testing"

func TestBatchSingleFlush(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	c := NewSignal(0)
	runs := 0

	dispose := CreateRoot(func(dispose func()) func() {
		Effect(func() {
			_ = a.Get()
			_ = b.Get()
			_ = c.Get()
			runs++
		})
		return dispose
	})
	defer dispose()

	Batch(func() {
		a.Set(1)
		b.Set(2)
		c.Set(3)
	})
	if runs != 2 {
		t.Errorf("expected 1 re-run for the batch, got %d total runs", runs)
	}
}

func TestBatchDeduplication(t *testing.T) {
	count := NewSignal(0)
	var seen []int
	dispose := CreateRoot(func(dispose func()) func() {
		Effect(func() { seen = append(seen, count.Get()) })
		return dispose
	})
	defer dispose()

	Batch(func() {
		for i := 1; i <= 5; i++ {
			count.Set(i)
		}
	})
	if len(seen) != 2 || seen[1] != 5 {
		t.Errorf("expected one run with the final value, got %v", seen)
	}
}

func TestBatchNested(t *testing.T) {
	count := NewSignal(0)
	runs := 0
	dispose := CreateRoot(func(dispose func()) func() {
		Effect(func() {
			_ = count.Get()
			runs++
		})
		return dispose
	})
	defer dispose()

	Batch(func() {
		count.Set(1)
		Batch(func() {
			count.Set(2)
			Batch(func() {
				count.Set(3)
			})
			if runs != 1 {
				t.Errorf("inner batch should not flush, runs=%d", runs)
			}
		})
		if runs != 1 {
			t.Errorf("nested batch should not flush before the outer ends, runs=%d", runs)
		}
	})
	if runs != 2 {
		t.Errorf("expected a single flush, runs=%d", runs)
	}
}

func TestBatchResult(t *testing.T) {
	s := NewSignal(1)
	got := BatchResult(func() int {
		s.Set(2)
		return s.Get() * 10
	})
	if got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
}

func TestBatchNamed(t *testing.T) {
	prev := CurrentConfig()
	Configure(Config{Logger: prev.Logger, Debug: true})
	defer Configure(prev)

	s := NewSignal(0)
	BatchNamed("update", func() {
		s.Set(1)
	})
	if s.Peek() != 1 {
		t.Errorf("expected 1, got %d", s.Peek())
	}
}

func TestUntrackReturnsValue(t *testing.T) {
	s := NewSignal("x")
	if Untrack(s.Get) != "x" {
		t.Error("expected x")
	}
}
