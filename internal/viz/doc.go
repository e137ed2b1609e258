// Package viz is the interactive terminal front end, built on Bubble Tea.
//
//   - [Model]: the program; it drives a session and redraws at 60fps
//   - [GridView] and [Minimap]: the board, full size or one Braille dot per cell
//   - [Canvas]: Braille-based pixel canvas behind the minimap
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	G     - Generate a maze
//	S     - Solve and animate with the selected algorithm
//	C     - Compare all algorithms
//	A     - Cycle algorithm
//	X     - Stop the animation
//	R     - Reset to an empty grid
//	T     - Cycle color themes
//	Y     - Copy stats to the clipboard
//	P     - Save the current frame as PNG
//	G     - (shift) Save the last solve as an animated GIF
//	?     - Show help overlay
//
// Actions run as commands off the UI goroutine. Playback paints the shared
// renderer from timer goroutines and every tick redraws from it, so the
// program never needs to be told about individual marks.
package viz
