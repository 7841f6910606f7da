package reactive

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

func TestSerializeGraph(t *testing.T) {
	count := NewSignal(2, Name("count"))
	var g Graph
	var doubled *Memo[int]
	var effect *Computation

	dispose := CreateRoot(func(dispose func()) func() {
		doubled = NewMemo(func() int { return count.Get() * 2 }, Name("doubled"))
		effect = Effect(func() { _ = doubled.Get() }, Name("log"))
		g = SerializeGraph(nil)
		return dispose
	})
	defer dispose()

	if _, err := uuid.Parse(g.Snapshot); err != nil {
		t.Errorf("snapshot id should be a UUID: %v", err)
	}

	byID := make(map[uint64]GraphNode)
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	if len(g.Nodes) != 4 {
		t.Fatalf("expected root, memo, effect and signal nodes, got %d", len(g.Nodes))
	}

	root := byID[g.Root]
	if root.Kind != GraphKindRoot {
		t.Errorf("expected root kind, got %q", root.Kind)
	}

	m := byID[doubled.ID()]
	if m.Kind != "memo" || m.Name != "doubled" || m.Value != 4 || !m.Pure {
		t.Errorf("unexpected memo node %+v", m)
	}
	if len(m.Sources) != 1 || m.Sources[0] != count.ID() {
		t.Errorf("memo should read count, got %v", m.Sources)
	}
	if len(m.Observers) != 1 || m.Observers[0] != effect.ID() {
		t.Errorf("memo should be observed by the effect, got %v", m.Observers)
	}
	if m.Owner != g.Root {
		t.Errorf("memo should be owned by the root")
	}

	sig := byID[count.ID()]
	if sig.Kind != GraphKindSignal || sig.Name != "count" || sig.Value != 2 {
		t.Errorf("unexpected signal node %+v", sig)
	}

	e := byID[effect.ID()]
	if e.Kind != "effect" || e.Height != 2 || e.Runs != 1 || e.State != "clean" {
		t.Errorf("unexpected effect node %+v", e)
	}

	if _, err := json.Marshal(g); err != nil {
		t.Errorf("graph should encode as JSON: %v", err)
	}
	if _, err := yaml.Marshal(g); err != nil {
		t.Errorf("graph should encode as YAML: %v", err)
	}
}

func TestSerializeGraphSelectorKeys(t *testing.T) {
	s := NewSignal(1)
	var g Graph
	dispose := CreateRoot(func(dispose func()) func() {
		isSelected := CreateSelector(s.Get)
		Effect(func() { _ = isSelected(1) })
		g = SerializeGraph(GetOwner())
		return dispose
	})
	defer dispose()

	keys := 0
	for _, n := range g.Nodes {
		if n.Kind == GraphKindSelectorKey {
			keys++
			if n.Value != true {
				t.Errorf("key 1 should be selected, got %v", n.Value)
			}
		}
	}
	if keys != 1 {
		t.Errorf("expected 1 selector key node, got %d", keys)
	}
}

func TestSerializeGraphOutsideOwner(t *testing.T) {
	g := SerializeGraph(nil)
	if g.Root != 0 || len(g.Nodes) != 0 {
		t.Errorf("expected an empty graph, got %+v", g)
	}
}
