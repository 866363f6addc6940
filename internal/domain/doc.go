// Package domain contains the core value types for trafficd.
//
// It has no dependencies on infrastructure concerns (timers, consoles,
// logging) and holds only the vocabulary shared by every other package.
//
// # Types
//
//   - [Phase]: the signal phase currently displayed at the intersection
//   - [Signals]: the indications every signal head shows during a phase
//   - [Direction]: the street a pedestrian request belongs to
//   - [Timings]: configured phase durations
package domain
