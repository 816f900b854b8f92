// Package metrics provides build observability for docorch.
//
// Components receive a Recorder through their options and fall back to
// NoopRecorder when none is configured, so call sites never nil-check:
//
//	inv := generator.NewInvoker(exec, metrics.NoopRecorder{})
//
// When a metrics textfile is configured the CLI swaps in a PrometheusRecorder
// over a private registry and writes it with WriteTextfile after the build, in
// the format understood by the node_exporter textfile collector.
package metrics
