// Package control implements the intersection controller.
//
// Two goroutines share a [SharedState]: the [Controller] drives the phase
// sequence with a phase timer, and the [Listener] turns console keys into
// pedestrian and emergency requests. The pure transition function [Next]
// holds the phase table.
package control
