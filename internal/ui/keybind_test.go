package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestKeybindRegistry_BindLookup(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("q", tea.Quit, "Quit")
	reg.Bind("SPC q", tea.Quit, "Quit")
	reg.BindForMode("d", tea.Quit, "Delete", ModeLoaded)

	if reg.Lookup("q", ModePanes) == nil {
		t.Error("expected q to be bound")
	}
	if reg.Lookup("space q", ModePanes) == nil {
		t.Error("expected space to normalize to SPC")
	}
	if reg.Lookup("unknown", ModePanes) != nil {
		t.Error("expected unknown to be unbound")
	}
	if reg.Lookup("d", ModePanes) != nil {
		t.Error("d is bound for the loaded list only")
	}
	if reg.Lookup("d", ModeLoaded) == nil {
		t.Error("expected d in loaded mode")
	}
}

func TestKeyHandler_LeaderSequence(t *testing.T) {
	reg := NewKeybindRegistry()
	var executed bool
	reg.Bind("SPC l c 1", func() tea.Msg {
		executed = true
		return nil
	}, "DDOC C1")
	h := NewKeyHandler(reg)

	for _, k := range []string{" ", "l", "c"} {
		consumed, cmd := h.Handle(keyMsg(k), ModePanes)
		if !consumed || cmd != nil {
			t.Fatalf("%q: consumed=%v cmd=%v", k, consumed, cmd != nil)
		}
	}
	if got := h.Sequence(); got != "SPC l c" {
		t.Errorf("sequence = %q", got)
	}
	consumed, cmd := h.Handle(keyMsg("1"), ModePanes)
	if !consumed || cmd == nil {
		t.Fatalf("1: consumed=%v cmd=%v", consumed, cmd != nil)
	}
	if h.LeaderWaiting {
		t.Error("leader should not be waiting after completing sequence")
	}
	cmd()
	if !executed {
		t.Error("expected command to execute")
	}
}

func TestKeyHandler_UnknownLeaderKeyResets(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("SPC x", tea.Quit, "Reset")
	h := NewKeyHandler(reg)

	h.Handle(keyMsg(" "), ModePanes)
	consumed, cmd := h.Handle(keyMsg("z"), ModePanes)
	if !consumed || cmd != nil {
		t.Errorf("z: consumed=%v cmd=%v", consumed, cmd != nil)
	}
	if h.LeaderWaiting {
		t.Error("dead-end sequence should leave leader mode")
	}
}

func TestKeyHandler_EscCancelsLeader(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("SPC x", tea.Quit, "Reset")
	h := NewKeyHandler(reg)

	h.Handle(keyMsg(" "), ModePanes)
	if !h.LeaderWaiting {
		t.Fatal("expected leader waiting")
	}
	consumed, cmd := h.Handle(keyMsg("esc"), ModePanes)
	if !consumed || cmd != nil {
		t.Errorf("esc: consumed=%v cmd=%v", consumed, cmd != nil)
	}
	if h.LeaderWaiting {
		t.Error("esc should cancel leader mode")
	}
	if consumed, _ := h.Handle(keyMsg("esc"), ModePanes); consumed {
		t.Error("esc outside leader mode should fall through")
	}
}

func TestKeyHandler_UnboundFallsThrough(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("q", tea.Quit, "Quit")
	h := NewKeyHandler(reg)

	if consumed, _ := h.Handle(keyMsg("j"), ModePanes); consumed {
		t.Error("unbound j should not be consumed")
	}
}

func TestLeaderHints_GroupsAndModes(t *testing.T) {
	reg := DefaultKeybinds()

	top := reg.LeaderHints("", ModePanes)
	if top["l"] != "Live" || top["w"] != "Layout" {
		t.Errorf("group labels: l=%q w=%q", top["l"], top["w"])
	}
	if _, ok := top["s"]; ok {
		t.Error("show selected is a loaded-list binding")
	}
	if _, ok := reg.LeaderHints("", ModeLoaded)["s"]; !ok {
		t.Error("expected show selected in loaded mode")
	}

	live := reg.LeaderHints("SPC l", ModePanes)
	if live["d"] != "Temperature controller" {
		t.Errorf("SPC l d = %q", live["d"])
	}
	if live["c"] != "Concentration" {
		t.Errorf("SPC l c = %q", live["c"])
	}
	if got := len(reg.LeaderHints("SPC l v", ModePanes)); got != 2 {
		t.Errorf("voltage channels = %d, want 2", got)
	}
}

func TestRenderKeybindHelp(t *testing.T) {
	h := NewKeyHandler(DefaultKeybinds())
	if RenderKeybindHelp(h, ModePanes) == "" {
		t.Error("expected top-level hints")
	}
	h.Handle(keyMsg(" "), ModePanes)
	h.Handle(keyMsg("w"), ModePanes)
	out := RenderKeybindHelp(h, ModePanes)
	for _, want := range []string{"SPC w", "Grid", "Tabs", "esc"} {
		if !strings.Contains(out, want) {
			t.Errorf("help %q missing %q", out, want)
		}
	}
}

// keyMsg creates a tea.KeyMsg for testing. Bubble Tea uses KeyType and Runes.
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "space", " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}
