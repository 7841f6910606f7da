package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Report is the outcome of running a scenario.
type Report struct {
	Scenario string         `json:"scenario" yaml:"scenario"`
	Steps    []StepResult   `json:"steps" yaml:"steps"`
	Initial  Snapshot       `json:"initial" yaml:"initial"`
	Graph    reactive.Graph `json:"graph" yaml:"graph"`
	Duration time.Duration  `json:"duration" yaml:"duration"`
}

// Snapshot is the observable state of a network at one point.
type Snapshot struct {
	Values   map[string]int   `json:"values" yaml:"values"`
	Runs     map[string]int   `json:"runs" yaml:"runs"`
	Selected map[string][]int `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// StepResult records the state after one step.
type StepResult struct {
	Index    int      `json:"index" yaml:"index"`
	Action   string   `json:"action" yaml:"action"`
	State    Snapshot `json:"state" yaml:"state"`
	Failures []string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Failed reports whether any expectation failed.
func (r *Report) Failed() bool {
	for _, st := range r.Steps {
		if len(st.Failures) > 0 {
			return true
		}
	}
	return false
}

// Runner executes scenarios.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a runner logging to logger, or slog.Default when nil.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger.With("component", "scenario")}
}

// Run builds the scenario's network, executes every step and checks its
// expectations. The report is returned even when expectations fail, along
// with an S010 error. A panic escaping the runtime aborts the run with a
// runtime error located at the failing step.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Report, error) {
	start := time.Now()
	net, err := Build(s)
	if err != nil {
		return nil, err
	}
	defer net.Close()

	report := &Report{
		Scenario: s.Name,
		Initial:  snapshot(net),
	}
	r.logger.Debug("scenario built", "scenario", s.Name, "nodes", len(s.Nodes))

	for i := range s.Steps {
		st := &s.Steps[i]
		if err := r.step(ctx, net, st); err != nil {
			if e, ok := err.(*errors.Error); ok {
				locate(e, s, st.pos)
			}
			return nil, err
		}

		res := StepResult{Index: i, Action: st.Action(), State: snapshot(net)}
		res.Failures = check(st.Expect, res.State)
		for _, f := range res.Failures {
			r.logger.Warn("expectation failed", "scenario", s.Name, "step", i, "failure", f)
		}
		report.Steps = append(report.Steps, res)
		r.logger.Debug("step finished", "scenario", s.Name, "step", i, "action", res.Action)
	}

	report.Graph = net.Graph()
	report.Duration = time.Since(start)

	if report.Failed() {
		var lines []string
		for _, st := range report.Steps {
			for _, f := range st.Failures {
				lines = append(lines, fmt.Sprintf("step %d: %s", st.Index, f))
			}
		}
		return report, errors.New("S010").WithDetail(strings.Join(lines, "\n"))
	}
	return report, nil
}

func (r *Runner) step(ctx context.Context, net *Network, st *Step) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.FromPanic(v)
		}
	}()

	switch {
	case len(st.Set) > 0:
		for _, as := range st.Set {
			net.Set(as.Target, as.Value)
		}
	case len(st.Batch) > 0:
		net.Batch(st.Batch)
	case st.Sleep > 0:
		timer := time.NewTimer(time.Duration(st.Sleep))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	case st.Dispose != "":
		net.Dispose(st.Dispose)
	}
	return ctx.Err()
}

func snapshot(net *Network) Snapshot {
	return Snapshot{
		Values:   net.Values(),
		Runs:     net.Runs(),
		Selected: net.Selected(),
	}
}

// check compares expectations against state and describes every mismatch,
// sorted by node name.
func check(exp *Expect, state Snapshot) []string {
	if exp == nil {
		return nil
	}
	var failures []string
	for _, name := range slices.Sorted(maps.Keys(exp.Values)) {
		if got, want := state.Values[name], exp.Values[name]; got != want {
			failures = append(failures, fmt.Sprintf("value of %s = %d, want %d", name, got, want))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(exp.Runs)) {
		if got, want := state.Runs[name], exp.Runs[name]; got != want {
			failures = append(failures, fmt.Sprintf("runs of %s = %d, want %d", name, got, want))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(exp.Selected)) {
		want := slices.Sorted(slices.Values(exp.Selected[name]))
		if got := state.Selected[name]; !slices.Equal(got, want) {
			failures = append(failures, fmt.Sprintf("selection of %s = %v, want %v", name, got, want))
		}
	}
	return failures
}
