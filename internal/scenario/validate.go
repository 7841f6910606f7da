package scenario

import (
	"github.com/vango-dev/reactive/internal/errors"
)

// arity is the accepted input count range of an operation; max < 0 means
// unbounded.
type arity struct{ min, max int }

var opArity = map[string]arity{
	"sum":     {1, -1},
	"product": {1, -1},
	"min":     {1, -1},
	"max":     {1, -1},
	"copy":    {1, 1},
	"neg":     {1, 1},
}

// valueKinds can be read by other nodes.
var valueKinds = map[string]bool{
	KindSignal:   true,
	KindMemo:     true,
	KindDeferred: true,
}

// computationKinds can be disposed and report run counts.
var computationKinds = map[string]bool{
	KindMemo:         true,
	KindComputed:     true,
	KindEffect:       true,
	KindRenderEffect: true,
}

// Validate checks node declarations and steps. It returns the first
// problem found as a coded error located in the scenario file.
func Validate(s *Scenario) error {
	kinds := make(map[string]string, len(s.Nodes))
	rows := make(map[string]bool)

	for i := range s.Nodes {
		n := &s.Nodes[i]
		if err := validateNode(s, n, kinds); err != nil {
			return err
		}
		kinds[n.Name] = n.Kind
		if n.Kind == KindSelector {
			for _, key := range n.Keys {
				rows[rowName(n.Name, key)] = true
			}
		}
	}

	for i := range s.Steps {
		if err := validateStep(s, &s.Steps[i], kinds, rows); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(s *Scenario, n *NodeSpec, kinds map[string]string) error {
	if n.Name == "" {
		return locate(errors.New("S012").WithDetailf("%s node has no name", n.Kind), s, n.pos)
	}
	if _, dup := kinds[n.Name]; dup {
		return locate(errors.New("S003").WithDetailf("%q is declared twice", n.Name), s, n.pos)
	}

	for _, in := range n.Inputs {
		kind, ok := kinds[in]
		if !ok {
			return locate(errors.New("S004").
				WithDetailf("%q reads %q, which is not declared above it", n.Name, in), s, n.pos)
		}
		if !valueKinds[kind] {
			return locate(errors.New("S011").
				WithDetailf("%q reads %q, but %s nodes have no value", n.Name, in, kind), s, n.pos)
		}
	}

	switch n.Kind {
	case KindSignal:
		if len(n.Inputs) > 0 {
			return locate(errors.New("S011").
				WithDetailf("signal %q cannot have inputs", n.Name), s, n.pos)
		}
	case KindMemo, KindComputed, KindEffect, KindRenderEffect:
		if n.Op == "" {
			n.Op = "sum"
		}
		a, ok := opArity[n.Op]
		if !ok {
			return locate(errors.New("S005").
				WithDetailf("%q uses operation %q", n.Name, n.Op), s, n.pos)
		}
		if len(n.Inputs) < a.min || (a.max >= 0 && len(n.Inputs) > a.max) {
			return locate(errors.New("S011").
				WithDetailf("%s %q takes %s, got %d", n.Op, n.Name, a, len(n.Inputs)), s, n.pos)
		}
	case KindSelector:
		if len(n.Inputs) != 1 {
			return locate(errors.New("S011").
				WithDetailf("selector %q needs exactly one source input, got %d", n.Name, len(n.Inputs)), s, n.pos)
		}
		if len(n.Keys) == 0 {
			return locate(errors.New("S011").
				WithDetailf("selector %q has no keys", n.Name), s, n.pos)
		}
	case KindDeferred:
		if len(n.Inputs) != 1 {
			return locate(errors.New("S011").
				WithDetailf("deferred %q needs exactly one source input, got %d", n.Name, len(n.Inputs)), s, n.pos)
		}
		if n.Timeout <= 0 {
			return locate(errors.New("S008").
				WithDetailf("deferred %q has timeout %s", n.Name, n.Timeout), s, n.pos)
		}
	default:
		return locate(errors.New("S006").
			WithDetailf("%q has kind %q", n.Name, n.Kind), s, n.pos)
	}
	return nil
}

func validateStep(s *Scenario, st *Step, kinds map[string]string, rows map[string]bool) error {
	actions := 0
	for _, set := range []bool{len(st.Set) > 0, len(st.Batch) > 0, st.Sleep != 0, st.Dispose != ""} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return locate(errors.New("S007").
			WithDetailf("step has %d actions; it needs exactly one of set, batch, sleep or dispose", actions), s, st.pos)
	}
	if st.Sleep < 0 {
		return locate(errors.New("S007").WithDetailf("negative sleep %s", st.Sleep), s, st.pos)
	}

	for _, as := range append(append(Assignments{}, st.Set...), st.Batch...) {
		kind, ok := kinds[as.Target]
		if !ok {
			return locate(errors.New("S004").
				WithDetailf("step writes %q, which is not declared", as.Target), s, as.pos)
		}
		if kind != KindSignal {
			return locate(errors.New("S009").
				WithDetailf("%q is a %s", as.Target, kind), s, as.pos)
		}
	}

	if st.Dispose != "" {
		kind, ok := kinds[st.Dispose]
		if !ok {
			return locate(errors.New("S004").
				WithDetailf("step disposes %q, which is not declared", st.Dispose), s, st.pos)
		}
		if !computationKinds[kind] {
			return locate(errors.New("S007").
				WithDetailf("%q is a %s and cannot be disposed", st.Dispose, kind), s, st.pos)
		}
	}

	if st.Expect == nil {
		return nil
	}
	for name := range st.Expect.Values {
		if _, ok := kinds[name]; !ok {
			return locate(errors.New("S004").
				WithDetailf("expectation reads %q, which is not declared", name), s, st.pos)
		}
	}
	for name := range st.Expect.Runs {
		if rows[name] {
			continue
		}
		if _, ok := kinds[name]; !ok {
			return locate(errors.New("S004").
				WithDetailf("expectation counts runs of %q, which is not declared", name), s, st.pos)
		}
		if !computationKinds[kinds[name]] {
			return locate(errors.New("S007").
				WithDetailf("%q is a %s and has no run count", name, kinds[name]), s, st.pos)
		}
	}
	for name := range st.Expect.Selected {
		if kinds[name] != KindSelector {
			return locate(errors.New("S004").
				WithDetailf("expectation reads selection of %q, which is not a selector", name), s, st.pos)
		}
	}
	return nil
}

func (a arity) String() string {
	switch {
	case a.max < 0:
		return "at least one input"
	case a.min == a.max && a.min == 1:
		return "exactly one input"
	}
	return "a different number of inputs"
}
