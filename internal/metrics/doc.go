// Package metrics records run and stage metrics for packaging runs.
//
// Components receive a Recorder; NoopRecorder is the default so callers
// never check for nil. PrometheusRecorder registers its collectors on a
// private registry and can dump them to a node_exporter textfile after
// the run, since a single CLI invocation has no scrape endpoint.
package metrics
