// Package viz renders fzx worlds in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one scene, driven by real frame times
//   - [Canvas]: Braille-based pixel canvas with per-cell ink
//   - [Camera]: orbiting perspective camera built on mgl64 matrices
//   - [Recorder]: GIF capture of canvas frames
//
// Each tick measures the wall-clock time since the previous one and hands
// it to System.Update. Bodies are drawn at the returned interpolation
// factor: each bounding box is placed by the body's model transformation
// over the camera view.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the scene
//	[ ]   - Halve/double playback speed
//	X Y Z - Rotate the camera
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
