package reactive

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDeferredSimple(t *testing.T) {
	s := NewSignal("init")
	var r func() string
	var dispose func()

	CreateRoot(func(d func()) struct{} {
		dispose = d
		r = CreateDeferred(s.Get, 20*time.Millisecond)
		if r() != "init" {
			t.Errorf("expected init, got %q", r())
		}
		s.Set("Hi")
		if r() != "init" {
			t.Errorf("deferred value should lag, got %q", r())
		}
		return struct{}{}
	})
	defer dispose()

	time.Sleep(100 * time.Millisecond)
	if r() != "Hi" {
		t.Errorf("expected Hi after the timeout, got %q", r())
	}
}

func TestDeferredCoalescesRapidChanges(t *testing.T) {
	s := NewSignal(0)
	var notified atomic.Int32
	var last atomic.Int64

	dispose := CreateRoot(func(dispose func()) func() {
		r := CreateDeferred(s.Get, 50*time.Millisecond)
		Effect(func() {
			last.Store(int64(r()))
			notified.Add(1)
		})
		return dispose
	})
	defer dispose()

	for i := 1; i <= 5; i++ {
		s.Set(i)
	}
	time.Sleep(200 * time.Millisecond)

	if got := last.Load(); got != 5 {
		t.Errorf("expected the latest value 5, got %d", got)
	}
	if got := notified.Load(); got != 2 {
		t.Errorf("expected one coalesced notification, got %d effect runs", got)
	}
}

func TestDeferredStopsOnDispose(t *testing.T) {
	s := NewSignal(0)
	var r func() int
	dispose := CreateRoot(func(dispose func()) func() {
		r = CreateDeferred(s.Get, 20*time.Millisecond)
		return dispose
	})

	s.Set(1)
	dispose()
	time.Sleep(60 * time.Millisecond)
	if r() != 0 {
		t.Errorf("disposed deferred accessor should not update, got %d", r())
	}
}
