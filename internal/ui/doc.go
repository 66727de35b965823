// Package ui is the Bubble Tea front end of the viewer.
//
// One AppModel owns the ingest pipeline and is the only goroutine that
// touches the pane registry, the loaded list and the live buffers. Each
// Update is one frame: the message is handled, pending closes are applied,
// then the feed is drained.
//
// Building blocks:
//   - KeybindRegistry / KeyHandler: SPC leader sequences, filtered by AppMode
//   - FocusManager: rotates focus between the pane grid and the loaded list
//   - Layout: splits the terminal into the sidebar and one rect per tile
//   - OverlayStack: pane settings and the log window, topmost takes input
package ui
