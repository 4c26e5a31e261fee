// Package viz provides a live terminal view of a reaction system.
//
// The view is a Bubble Tea program that advances the system a few
// integration steps per frame and plots every concentration with
// asciigraph:
//
//   - [Model]: the live view, built with [NewModel]
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial concentrations
//	+/-   - More/fewer steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
