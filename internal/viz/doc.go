// Package viz is the interactive terminal viewer for a computed galaxy
// model, built on Bubble Tea.
//
// # Key Bindings
//
//	Tab   - Cycle views (profile, density, potential)
//	T     - Cycle color themes
//	?     - Toggle help
//	Q     - Quit
package viz
