package reactive

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingMonitor struct {
	flushes  []FlushStats
	started  []int
	kinds    map[string]int
	uncaught []error
}

func (m *recordingMonitor) FlushStarted(pending int) { m.started = append(m.started, pending) }

func (m *recordingMonitor) NodeRan(kind string, _ time.Duration) {
	if m.kinds == nil {
		m.kinds = make(map[string]int)
	}
	m.kinds[kind]++
}

func (m *recordingMonitor) FlushFinished(stats FlushStats) { m.flushes = append(m.flushes, stats) }

func (m *recordingMonitor) Uncaught(err error) { m.uncaught = append(m.uncaught, err) }

func withMonitor(t *testing.T, m Monitor) {
	t.Helper()
	prev := CurrentConfig()
	Configure(Config{Logger: prev.Logger, Monitor: m})
	t.Cleanup(func() { Configure(prev) })
}

func TestMonitorObservesFlushes(t *testing.T) {
	mon := &recordingMonitor{}
	withMonitor(t, mon)

	s := NewSignal(0)
	dispose := CreateRoot(func(dispose func()) func() {
		m := NewMemo(func() int { return s.Get() + 1 })
		Effect(func() { _ = m.Get() })
		return dispose
	})
	defer dispose()

	s.Set(1)
	if len(mon.flushes) != 1 {
		t.Fatalf("expected 1 flush, got %d", len(mon.flushes))
	}
	if mon.flushes[0].Runs != 2 || mon.flushes[0].Failed {
		t.Errorf("unexpected flush stats %+v", mon.flushes[0])
	}
	if mon.started[0] != 1 {
		t.Errorf("expected 1 pending node at flush start, got %d", mon.started[0])
	}
	if mon.kinds["memo"] != 2 || mon.kinds["effect"] != 2 {
		t.Errorf("unexpected node runs %v", mon.kinds)
	}
}

func TestMonitorObservesUncaught(t *testing.T) {
	mon := &recordingMonitor{}
	withMonitor(t, mon)

	sentinel := errors.New("boom")
	s := NewSignal(0)
	dispose := CreateRoot(func(dispose func()) func() {
		Effect(func() {
			_ = s.Get()
			Effect(func() {})
			if s.Get() > 0 {
				panic(sentinel)
			}
		})
		Effect(func() { _ = s.Get() })
		return dispose
	})
	defer dispose()

	catch(func() { s.Set(1) })
	if len(mon.uncaught) != 1 || !errors.Is(mon.uncaught[0], sentinel) {
		t.Errorf("expected the uncaught error to be reported, got %v", mon.uncaught)
	}
	last := mon.flushes[len(mon.flushes)-1]
	if !last.Failed || last.Discarded != 1 {
		t.Errorf("expected a failed flush with 1 discarded node, got %+v", last)
	}
}

func TestConcurrentWriters(t *testing.T) {
	counter := NewSignal(0)
	runs := 0
	dispose := CreateRoot(func(dispose func()) func() {
		Effect(func() {
			_ = counter.Get()
			runs++
		})
		return dispose
	})
	defer dispose()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				counter.Update(func(n int) int { return n + 1 })
			}
		}()
	}
	wg.Wait()

	if counter.Get() != 800 {
		t.Errorf("expected 800, got %d", counter.Get())
	}
	if runs != 801 {
		t.Errorf("expected one effect run per write, got %d", runs)
	}
}

func TestMonitorReportsNestedUncaughtOnce(t *testing.T) {
	mon := &recordingMonitor{}
	withMonitor(t, mon)

	s := NewSignal(0)
	v := catch(func() {
		Root(func(func()) {
			m := NewMemo(func() int {
				if s.Get() > 0 {
					panic("fail")
				}
				return 0
			})
			Effect(func() { _ = m.Get() })
			s.Set(1)
		})
	})
	if v != "fail" {
		t.Errorf("expected the original panic value, got %#v", v)
	}
	if len(mon.uncaught) != 1 {
		t.Errorf("expected one uncaught report, got %d", len(mon.uncaught))
	}
}
