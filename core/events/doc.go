// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - RunEvent: a strategy run finished, successfully or not
//   - SweepEvent: a sizing or Monte Carlo sweep finished
package events
