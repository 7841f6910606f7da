// Package monitor provides reactive.Monitor implementations for production
// observability of the reactive scheduler.
//
// # Prometheus Metrics
//
// Prometheus records flush counts and durations, computation runs per kind,
// and errors that reached no handler:
//
//	reactive.Configure(reactive.Config{
//	    Monitor: monitor.Prometheus(),
//	})
//
// Then expose metrics on a separate port:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
//
// # OpenTelemetry
//
// OpenTelemetry records one span per flush with run counts as attributes:
//
//	monitor.OpenTelemetry(
//	    monitor.WithTracerName("my-app"),
//	)
//
// Use Multi to combine both.
package monitor
