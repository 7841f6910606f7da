package scenario

import (
	"fmt"
	"slices"
	"time"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

type opFunc func(vals []int) int

var ops = map[string]opFunc{
	"sum": func(vals []int) int {
		total := 0
		for _, v := range vals {
			total += v
		}
		return total
	},
	"product": func(vals []int) int {
		total := 1
		for _, v := range vals {
			total *= v
		}
		return total
	},
	"min": func(vals []int) int {
		m := vals[0]
		for _, v := range vals[1:] {
			m = min(m, v)
		}
		return m
	},
	"max": func(vals []int) int {
		m := vals[0]
		for _, v := range vals[1:] {
			m = max(m, v)
		}
		return m
	},
	"copy": func(vals []int) int { return vals[0] },
	"neg":  func(vals []int) int { return -vals[0] },
}

// Network is a live reactive graph built from a scenario.
type Network struct {
	scenario *Scenario
	owner    *reactive.Owner
	dispose  func()
	nodes    map[string]*node
}

type node struct {
	spec *NodeSpec

	// read returns the node's value and tracks it when called inside a
	// computation. Nil for nodes without a value.
	read func() int

	// last is the value most recently computed by computeds and effects.
	last int

	signal *reactive.Signal[int]
	comp   *reactive.Computation
	rows   []row
}

type row struct {
	key  int
	memo *reactive.Memo[bool]
}

// Build creates the nodes of a validated scenario under a new root. Initial runs happen
// synchronously, so a panic in any of them is returned as a runtime error.
func Build(s *Scenario) (n *Network, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.FromPanic(r)
		}
	}()

	n = &Network{
		scenario: s,
		nodes:    make(map[string]*node, len(s.Nodes)),
	}
	n.dispose = reactive.CreateRoot(func(dispose func()) func() {
		n.owner = reactive.GetOwner()
		for i := range s.Nodes {
			n.add(&s.Nodes[i])
		}
		return dispose
	})
	return n, nil
}

func (n *Network) add(spec *NodeSpec) {
	nd := &node{spec: spec}
	n.nodes[spec.Name] = nd

	inputs := make([]*node, len(spec.Inputs))
	for i, name := range spec.Inputs {
		inputs[i] = n.nodes[name]
	}
	compute := func() int {
		vals := make([]int, len(inputs))
		for i, in := range inputs {
			vals[i] = in.read()
		}
		return ops[spec.Op](vals)
	}
	name := reactive.Name(spec.Name)

	switch spec.Kind {
	case KindSignal:
		nd.signal = reactive.NewSignal(spec.Value, name)
		nd.read = nd.signal.Get

	case KindMemo:
		m := reactive.NewMemo(compute, name)
		nd.comp = m.Computation()
		nd.read = m.Get

	case KindComputed:
		nd.comp = reactive.CreateComputed(func(int) int {
			nd.last = compute()
			return nd.last
		}, 0, name)

	case KindRenderEffect:
		nd.comp = reactive.CreateRenderEffect(func(int) int {
			nd.last = compute()
			return nd.last
		}, 0, name)

	case KindEffect:
		nd.comp = reactive.CreateEffect(func(int) int {
			nd.last = compute()
			return nd.last
		}, 0, name)

	case KindSelector:
		source := inputs[0]
		isSelected := reactive.CreateSelector(source.read, name)
		nd.read = source.read
		for _, key := range spec.Keys {
			nd.rows = append(nd.rows, row{
				key: key,
				memo: reactive.NewMemo(func() bool { return isSelected(key) },
					reactive.Name(rowName(spec.Name, key))),
			})
		}

	case KindDeferred:
		nd.read = reactive.CreateDeferred(inputs[0].read, time.Duration(spec.Timeout), name)
	}
}

func rowName(selector string, key int) string {
	return fmt.Sprintf("%s[%d]", selector, key)
}

// Set writes value to the named signal and flushes.
func (n *Network) Set(name string, value int) {
	n.nodes[name].signal.Set(value)
}

// Batch applies all assignments inside one batch.
func (n *Network) Batch(assignments Assignments) {
	reactive.Batch(func() {
		for _, as := range assignments {
			n.Set(as.Target, as.Value)
		}
	})
}

// Dispose disposes the named computation.
func (n *Network) Dispose(name string) {
	if c := n.nodes[name].comp; c != nil {
		c.Dispose()
	}
}

// Close disposes the whole network.
func (n *Network) Close() {
	n.dispose()
}

// Owner returns the network's root owner.
func (n *Network) Owner() *reactive.Owner {
	return n.owner
}

// Graph snapshots the live network.
func (n *Network) Graph() reactive.Graph {
	return reactive.SerializeGraph(n.owner)
}

// Values returns the current value of every node that has one.
func (n *Network) Values() map[string]int {
	values := make(map[string]int, len(n.nodes))
	reactive.Untracked(func() {
		for name, nd := range n.nodes {
			switch {
			case nd.read != nil:
				values[name] = nd.read()
			case nd.comp != nil:
				values[name] = nd.last
			}
		}
	})
	return values
}

// Runs returns the run count of every computation, including selector rows.
func (n *Network) Runs() map[string]int {
	runs := make(map[string]int)
	for name, nd := range n.nodes {
		if nd.comp != nil {
			runs[name] = nd.comp.Runs()
		}
		for _, r := range nd.rows {
			runs[rowName(name, r.key)] = r.memo.Computation().Runs()
		}
	}
	return runs
}

// Selected returns the selected keys of every selector in ascending order.
func (n *Network) Selected() map[string][]int {
	selected := make(map[string][]int)
	for name, nd := range n.nodes {
		if nd.spec.Kind != KindSelector {
			continue
		}
		keys := []int{}
		for _, r := range nd.rows {
			if r.memo.Peek() {
				keys = append(keys, r.key)
			}
		}
		slices.Sort(keys)
		selected[name] = keys
	}
	return selected
}
