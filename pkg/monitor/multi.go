package monitor

import (
	"time"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// Multi fans every event out to monitors in order. nil entries are skipped.
func Multi(monitors ...reactive.Monitor) reactive.Monitor {
	var m multi
	for _, mon := range monitors {
		if mon != nil {
			m = append(m, mon)
		}
	}
	return m
}

type multi []reactive.Monitor

func (m multi) FlushStarted(pending int) {
	for _, mon := range m {
		mon.FlushStarted(pending)
	}
}

func (m multi) NodeRan(kind string, d time.Duration) {
	for _, mon := range m {
		mon.NodeRan(kind, d)
	}
}

func (m multi) FlushFinished(stats reactive.FlushStats) {
	for _, mon := range m {
		mon.FlushFinished(stats)
	}
}

func (m multi) Uncaught(err error) {
	for _, mon := range m {
		mon.Uncaught(err)
	}
}
