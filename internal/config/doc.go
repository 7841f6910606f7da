// Package config loads reactive.yaml, the configuration file read by the
// reactive command.
//
// # Configuration File Structure
//
//	runtime:
//	  max_runs_per_flush: 100000
//	  debug: false
//	log:
//	  level: info      # debug, info, warn, error
//	  format: text     # text or json
//	metrics:
//	  enabled: true
//	  namespace: reactive
//	  subsystem: scenario
//	tracing:
//	  enabled: false
//	  tracer_name: github.com/vango-dev/reactive
//
// Missing fields take their defaults. Validation errors carry C-prefixed
// codes and the line of the offending value.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	reactive.Configure(cfg.ReactiveConfig(cfg.Logger(os.Stderr), nil))
package config
