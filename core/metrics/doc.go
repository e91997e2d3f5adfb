// Package metrics defines the sink interfaces used to observe simulation
// runs. Sinks like PromSink and InfluxSink live in infra/metrics and are
// created from configuration via NewMetricsSink, which returns a MultiSink
// automatically when several sinks are configured.
package metrics
