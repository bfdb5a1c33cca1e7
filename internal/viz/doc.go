// Package viz provides terminal visualization for cultivation runs.
//
// The live view is a Bubble Tea TUI: a braille plan view of the stand
// that fills in as the canopy closes, growth figures, a scrolling
// dry-weight chart, and interactive coefficient tuning.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Replant (start the schedule over)
//	Tab   - Select coefficient
//	↑/↓   - Tune selected coefficient (±5%)
//	+/-   - Playback speed
//	?     - Help overlay
//
// GrowthChart and CompareChart render post-run charts for the CLI.
package viz
