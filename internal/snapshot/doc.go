// Package snapshot turns rendered grid frames into images: single PNG
// frames, animated GIFs of a replayed solve and SVG documents.
//
// All three consume []render.CellView, so what is exported is exactly what
// the renderer would show for the same model and overlay.
package snapshot
