// Package grid provides the in-memory maze model that playback operates on.
//
// A [Model] is a rows×cols matrix of free and wall cells with a start and a
// goal coordinate:
//
//   - [Reset]: build an empty grid, clamping the dimensions
//   - [FromCells]: build a grid from a service response
//   - [Model.Load]: replace a grid wholesale, keeping it on failure
//   - [Model.CellKind]: indexed lookup with start/goal precedence
//
// Ordered coordinate lists returned by a solver are represented as [Steps].
//
// # Invariants
//
// Start and goal are always in bounds, distinct and never walls. A Model is
// never resized in place; a new generation produces a new Model.
package grid
