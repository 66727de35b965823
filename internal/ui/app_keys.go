package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"blcsview/internal/pane"
	"blcsview/internal/sensor"
)

// cycleFocusMsg moves focus between the pane grid and the loaded list.
type cycleFocusMsg struct{ delta int }

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// liveSeq is the key path under SPC l for kind: "d", "a", or quantity then
// index for dissolved oxygen channels ("c 1").
func liveSeq(k sensor.Kind) string {
	switch k.Family {
	case sensor.DTEC:
		return "d"
	case sensor.ATUC:
		return "a"
	}
	ch := strings.ToLower(k.Channel.String())
	return ch[:1] + " " + ch[1:]
}

// DefaultKeybinds builds the key map of the viewer.
func DefaultKeybinds() *KeybindRegistry {
	reg := NewKeybindRegistry()
	reg.Bind("ctrl+c", tea.Quit, "Quit")
	reg.Bind("q", tea.Quit, "Quit")
	reg.Bind("SPC q", tea.Quit, "Quit")
	reg.Bind("tab", send(cycleFocusMsg{delta: 1}), "Next region")
	reg.Bind("shift+tab", send(cycleFocusMsg{delta: -1}), "Previous region")

	reg.Group("SPC l", "Live")
	reg.Group("SPC l c", "Concentration")
	reg.Group("SPC l t", "Temperature")
	reg.Group("SPC l v", "Voltage")
	for _, k := range sensor.All() {
		reg.Bind("SPC l "+liveSeq(k), send(ToggleLiveMsg{Kind: k}), k.Description())
	}

	reg.Group("SPC w", "Layout")
	reg.Bind("SPC w v", send(SetLayoutMsg{Layout: pane.LayoutVertical}), "Vertical")
	reg.Bind("SPC w h", send(SetLayoutMsg{Layout: pane.LayoutHorizontal}), "Horizontal")
	reg.Bind("SPC w g", send(SetLayoutMsg{Layout: pane.LayoutGrid}), "Grid")
	reg.Bind("SPC w t", send(SetLayoutMsg{Layout: pane.LayoutTabs}), "Tabs")

	reg.Bind("SPC x", confirmReset, "Reset")
	reg.Bind("SPC b", send(ToggleSidebarMsg{}), "Loaded list")
	reg.Bind("SPC r", send(ToggleReactiveMsg{}), "Reactive")
	reg.Bind("SPC c", send(CloudLoadMsg{}), "Load from cloud")
	reg.Bind("SPC e", send(ShowLogsMsg{}), "Log")
	reg.BindForMode("SPC o", send(ShowSettingsMsg{}), "Pane settings", ModePanes)
	reg.BindForMode("SPC p", send(ExportPaneMsg{}), "Export pane", ModePanes)
	reg.BindForMode("SPC s", send(ShowSelectedMsg{}), "Show selected", ModeLoaded)
	return reg
}
