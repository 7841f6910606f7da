package reactive

import (
	"log/slog"
)

// Config holds runtime-wide settings.
//
// Set this at application startup, before any graph is built:
//
//	func main() {
//	    reactive.Configure(reactive.Config{
//	        Logger:  slog.New(slog.NewJSONHandler(os.Stderr, nil)),
//	        Monitor: monitor.Prometheus(),
//	    })
//	    // ...
//	}
type Config struct {
	// Logger receives runtime warnings and debug output.
	// Default: slog.Default() with component=reactive.
	Logger *slog.Logger

	// Monitor observes flushes and node runs. nil disables monitoring.
	Monitor Monitor

	// MaxRunsPerFlush aborts a flush with ErrRunawayFlush once it has
	// executed this many computations.
	// Default: DefaultMaxRunsPerFlush.
	MaxRunsPerFlush int

	// Debug logs every node run and named batch at debug level.
	Debug bool
}

// Configure applies cfg to the runtime. Zero fields take their defaults.
func Configure(cfg Config) {
	rt.enter()
	defer rt.exit()

	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "reactive")
	}
	if cfg.MaxRunsPerFlush <= 0 {
		cfg.MaxRunsPerFlush = DefaultMaxRunsPerFlush
	}
	rt.logger = cfg.Logger
	rt.monitor = cfg.Monitor
	rt.maxRuns = cfg.MaxRunsPerFlush
	rt.debug = cfg.Debug
}

// CurrentConfig returns the settings in effect.
func CurrentConfig() Config {
	rt.enter()
	defer rt.exit()
	return Config{
		Logger:          rt.logger,
		Monitor:         rt.monitor,
		MaxRunsPerFlush: rt.maxRuns,
		Debug:           rt.debug,
	}
}
