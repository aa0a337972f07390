// Package viz is the interactive terminal presentation of a journey.
//
// [Model] is a Bubble Tea model wrapping a journey.Session. Each tick
// advances the session's virtual clock by the wall time since the last tick
// and redraws the current Frame:
//
//   - step dots (done, current, pending) and the "Step i: Title" header
//   - the active panel, drawn by [RenderView]
//   - a journey progress bar and a status line with the completion label
//
// The network path is drawn on a braille [Canvas]; the Huffman panel plots
// cumulative bit counts with asciigraph.
//
// # Key Bindings
//
//	n / →   - Next step
//	p / ←   - Previous step
//	r       - Restart from the first step
//	1-9     - Jump to a step
//	Space   - Pause/Resume the active panel
//	a       - Toggle autoplay
//	t       - Cycle color themes
//	?       - Show all key bindings
//	q       - Quit
package viz
