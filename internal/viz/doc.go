// Package viz provides the terminal front end for the P-V explorer.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: the plot, the state marker and the live readout panel
//   - [Canvas]: Braille-based pixel canvas with per-cell ink layers
//   - [Plot]: mapping between terminal cells and the P-V plane
//
// # Mouse and Keys
//
//	Left drag    - Move the state, accumulating trapezoidal work
//	Right click  - Snap along the nearest process curve
//	R            - Reset accumulated work
//	C            - Move the state to the middle of the plane
//	T            - Cycle color themes
//	?            - Show help overlay
package viz
