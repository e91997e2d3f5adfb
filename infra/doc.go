// Package infra contains technical adapters for the simulator, such as
// the metrics sinks and the MQTT run publisher. These packages depend only
// on the interfaces defined in the core packages.
package infra
