package reactive

import (
	"github.com/google/uuid"
)

// Graph is a point-in-time snapshot of the reactive graph below one owner,
// for external tooling. Nodes appear in depth-first owner order followed by
// the signals and selector keys they read.
type Graph struct {
	Snapshot string      `json:"snapshot" yaml:"snapshot"`
	Root     uint64      `json:"root" yaml:"root"`
	Nodes    []GraphNode `json:"nodes" yaml:"nodes"`
}

// GraphNode describes one owner, computation, signal or selector key.
type GraphNode struct {
	ID        uint64   `json:"id" yaml:"id"`
	Kind      string   `json:"kind" yaml:"kind"`
	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`
	State     string   `json:"state" yaml:"state"`
	Height    int      `json:"height" yaml:"height"`
	Owner     uint64   `json:"owner,omitempty" yaml:"owner,omitempty"`
	Sources   []uint64 `json:"sources,omitempty" yaml:"sources,omitempty"`
	Observers []uint64 `json:"observers,omitempty" yaml:"observers,omitempty"`
	Runs      int      `json:"runs,omitempty" yaml:"runs,omitempty"`
	Pure      bool     `json:"pure,omitempty" yaml:"pure,omitempty"`
	Value     any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// Node kinds reported for graph nodes that are not computations.
const (
	GraphKindRoot        = "root"
	GraphKindSignal      = "signal"
	GraphKindSelectorKey = "selector-key"
)

// SerializeGraph snapshots everything owned by o. A nil owner snapshots the
// current owner.
func SerializeGraph(o *Owner) Graph {
	rt.enter()
	defer rt.exit()

	if o == nil {
		o = rt.owner
	}
	g := Graph{Snapshot: uuid.NewString()}
	if o == nil {
		return g
	}
	g.Root = o.id

	w := graphWriter{seen: make(map[*signalCore]bool)}
	w.owner(o)
	g.Nodes = append(w.nodes, w.signals...)
	return g
}

type graphWriter struct {
	nodes   []GraphNode
	signals []GraphNode
	seen    map[*signalCore]bool
}

func (w *graphWriter) owner(o *Owner) {
	n := GraphNode{
		ID:    o.id,
		Kind:  GraphKindRoot,
		Name:  o.name,
		State: "active",
	}
	if o.disposed {
		n.State = stateDisposed.String()
	}
	if o.parent != nil {
		n.Owner = o.parent.id
	}

	if c := o.node; c != nil {
		n.Kind = kinds[c.kind].name
		n.State = c.state.String()
		n.Height = c.height
		n.Runs = c.runCount
		n.Pure = kinds[c.kind].pure
		for _, src := range c.sources {
			n.Sources = append(n.Sources, src.id)
			if src.node == nil || src.node.core != src {
				w.signal(src)
			}
		}
		if c.core != nil {
			n.Observers = observerIDs(c.core)
			n.Value = c.core.peek()
		}
		for _, core := range c.keyed {
			w.signal(core)
		}
	}
	w.nodes = append(w.nodes, n)

	for _, child := range o.children {
		w.owner(child)
	}
}

// signal records a plain signal or a selector key once.
func (w *graphWriter) signal(s *signalCore) {
	if w.seen[s] {
		return
	}
	w.seen[s] = true
	kind := GraphKindSignal
	var owner uint64
	if s.node != nil {
		kind = GraphKindSelectorKey
		owner = s.node.id
	}
	w.signals = append(w.signals, GraphNode{
		ID:        s.id,
		Kind:      kind,
		Name:      s.name,
		State:     stateClean.String(),
		Height:    s.height,
		Owner:     owner,
		Observers: observerIDs(s),
		Value:     s.peek(),
	})
}

func observerIDs(s *signalCore) []uint64 {
	if len(s.observers) == 0 {
		return nil
	}
	ids := make([]uint64, len(s.observers))
	for i, o := range s.observers {
		ids[i] = o.id
	}
	return ids
}
