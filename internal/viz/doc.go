// Package viz draws simulations in the terminal.
//
// The interactive views use the Bubble Tea framework:
//
//   - [Model]: live view of one scenario, stepping its universe every frame
//   - [Menu]: preset list that opens a live view
//   - [Canvas]: braille sub-pixel canvas
//   - [Camera]: orthographic projection of absolute positions onto a canvas
//
// Static charts of a finished run are drawn with asciigraph through [Plot], fed by
// [Series] and [Separation].
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	R      - Rebuild the scenario from its config
//	+/-    - Change steps per frame
//	Tab    - Focus the next free body
//	F      - Follow the focused body
//	C      - Fit the camera to all bodies
//	Z/X    - Zoom
//	Arrows - Turn the camera
//	W/S    - Throttle of a focused rocket
//	T      - Cycle color themes
//	?      - Show help overlay
package viz
