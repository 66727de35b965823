package ui

import (
	"time"

	"blcsview/internal/ingest"
	"blcsview/internal/pane"
	"blcsview/internal/sensor"
)

// FilesDroppedMsg hands dropped files to the UI goroutine. The drop-directory
// watcher sends it with tea.Program.Send.
type FilesDroppedMsg struct {
	Files []ingest.DroppedFile
}

// ToggleLiveMsg opens or closes the real-time pane for Kind (SPC l ...).
type ToggleLiveMsg struct {
	Kind sensor.Kind
}

// SetLayoutMsg changes how tiles are arranged (SPC w ...).
type SetLayoutMsg struct {
	Layout pane.LayoutKind
}

// ClosePaneMsg requests a tile close. The removal happens after the frame.
type ClosePaneMsg struct {
	ID pane.TileID
}

// ResetMsg empties the registry, the loaded list and the live buffers.
type ResetMsg struct{}

// DeleteAllMsg empties the loaded list.
type DeleteAllMsg struct{}

// ShowSelectedMsg opens a pane for every selected loaded frame.
type ShowSelectedMsg struct{}

// ToggleSidebarMsg shows or hides the loaded list.
type ToggleSidebarMsg struct{}

// ToggleReactiveMsg switches between continuous and event-driven repaint.
type ToggleReactiveMsg struct{}

// CloudLoadMsg starts a background fetch from cloud storage.
type CloudLoadMsg struct{}

// ShowLogsMsg opens the log window.
type ShowLogsMsg struct{}

// ShowSettingsMsg opens the settings overlay for the focused pane.
type ShowSettingsMsg struct{}

// DismissModalMsg closes the top overlay.
type DismissModalMsg struct{}

// tickMsg drives repaint in reactive mode.
type tickMsg time.Time

// feedReadyMsg is sent when a producer pushed into the feed.
type feedReadyMsg struct{}
