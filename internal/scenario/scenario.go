package scenario

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Node kinds.
const (
	KindSignal       = "signal"
	KindMemo         = "memo"
	KindComputed     = "computed"
	KindEffect       = "effect"
	KindRenderEffect = "render-effect"
	KindSelector     = "selector"
	KindDeferred     = "deferred"
)

// Scenario is a declarative reactive graph plus a script of writes and
// expectations against it.
type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Nodes       []NodeSpec `yaml:"nodes"`
	Steps       []Step     `yaml:"steps"`

	// path is the file the scenario was loaded from, if any.
	path string
}

// Path returns the file the scenario was loaded from.
func (s *Scenario) Path() string {
	return s.path
}

// NodeSpec declares one node. Inputs name nodes declared earlier in the
// file, which keeps every scenario acyclic.
type NodeSpec struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"`
	Value   int      `yaml:"value,omitempty"`
	Op      string   `yaml:"op,omitempty"`
	Inputs  []string `yaml:"inputs,omitempty"`
	Keys    []int    `yaml:"keys,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`

	pos position
}

// UnmarshalYAML records the node's position for error reporting.
func (n *NodeSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain NodeSpec
	if err := value.Decode((*plain)(n)); err != nil {
		return err
	}
	n.pos = positionOf(value)
	return nil
}

// Step is one scripted action followed by optional expectations.
// Exactly one of Set, Batch, Sleep or Dispose must be given.
type Step struct {
	// Set writes signals one after another, flushing after each write.
	Set Assignments `yaml:"set,omitempty"`

	// Batch writes signals inside a single batch.
	Batch Assignments `yaml:"batch,omitempty"`

	// Sleep waits, letting deferred nodes catch up.
	Sleep Duration `yaml:"sleep,omitempty"`

	// Dispose disposes the named computation.
	Dispose string `yaml:"dispose,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`

	pos position
}

// UnmarshalYAML records the step's position for error reporting.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	type plain Step
	if err := value.Decode((*plain)(s)); err != nil {
		return err
	}
	s.pos = positionOf(value)
	return nil
}

// Action names the step's action.
func (s *Step) Action() string {
	switch {
	case len(s.Set) > 0:
		return "set"
	case len(s.Batch) > 0:
		return "batch"
	case s.Sleep > 0:
		return "sleep"
	case s.Dispose != "":
		return "dispose"
	}
	return ""
}

// Expect lists the observable state checked after a step.
type Expect struct {
	// Values maps node names to their current value. Effects and
	// computeds report the last value they computed.
	Values map[string]int `yaml:"values,omitempty"`

	// Runs maps computation names to their total run count.
	Runs map[string]int `yaml:"runs,omitempty"`

	// Selected maps selector names to the keys currently selected.
	Selected map[string][]int `yaml:"selected,omitempty"`
}

// Assignment writes Value to the signal named Target.
type Assignment struct {
	Target string
	Value  int

	pos position
}

// Assignments is a YAML mapping of signal names to values that keeps
// document order.
type Assignments []Assignment

// UnmarshalYAML decodes a mapping in document order.
func (a *Assignments) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of signal names to values", value.Line)
	}
	out := make(Assignments, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		var n int
		if err := v.Decode(&n); err != nil {
			return err
		}
		out = append(out, Assignment{Target: k.Value, Value: n, pos: positionOf(k)})
	}
	*a = out
	return nil
}

// MarshalYAML encodes the assignments as a mapping.
func (a Assignments) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, as := range a {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: as.Target},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(as.Value)},
		)
	}
	return n, nil
}

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

// UnmarshalYAML parses strings such as "50ms".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

type position struct {
	line, column int
}

func positionOf(n *yaml.Node) position {
	return position{line: n.Line, column: n.Column}
}
