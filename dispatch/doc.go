// Package dispatch implements the trellis method-resolution runtime.
//
// This package contains:
//   - Tagged value representation with implicit primitive classes
//   - TagObject (value semantics) and RefObject (reference semantics)
//   - Class registry with ordered-parent linearization
//   - Generic function registry and method tables
//   - Single dispatch, multiple dispatch, and class delegation engines
package dispatch
