// Package scenario runs declarative reactive graphs described in YAML.
//
// A scenario declares integer signals and the nodes derived from them, then
// scripts writes against the graph and checks what every node observed:
//
//	name: counter
//	nodes:
//	  - {name: count, kind: signal, value: 1}
//	  - {name: doubled, kind: memo, op: sum, inputs: [count, count]}
//	  - {name: log, kind: effect, op: copy, inputs: [doubled]}
//	steps:
//	  - set: {count: 2}
//	    expect:
//	      values: {doubled: 4, log: 4}
//	      runs: {log: 2}
//
// Node kinds are signal, memo, computed, effect, render-effect, selector and
// deferred. Memos, computeds and effects combine their inputs with one of
// sum, product, min, max, copy or neg. A selector takes one source and a
// list of keys and creates one row memo per key; a deferred node mirrors its
// source after a timeout.
//
// Steps perform exactly one of set (sequential writes), batch (writes in
// one batch), sleep or dispose. Problems in the file are reported as coded
// errors pointing at the offending line.
package scenario
