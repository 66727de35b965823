package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModal asks before a destructive action. y or enter confirms, esc
// or n cancels.
type ConfirmModal struct {
	Title     string
	Label     string
	OnConfirm tea.Msg
}

var _ View = (*ConfirmModal)(nil)

func NewConfirmModal(title, label string, onConfirm tea.Msg) *ConfirmModal {
	return &ConfirmModal{Title: title, Label: label, OnConfirm: onConfirm}
}

func (m *ConfirmModal) Init() tea.Cmd { return nil }

func (m *ConfirmModal) Update(msg tea.Msg) (View, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "n":
		return m, dismiss
	case "enter", "y":
		return m, tea.Batch(dismiss, send(m.OnConfirm))
	}
	return m, nil
}

func (m *ConfirmModal) View() string {
	box := Styles.Overlay.BorderForeground(lipgloss.Color(ColorDanger))
	return box.Render(
		Styles.Error.Bold(true).Render(m.Title) + "\n\n" +
			Styles.Normal.Render(m.Label) + "\n\n" +
			Styles.Muted.Render("y/enter: confirm  esc: cancel"))
}

// confirmReset wraps ResetMsg in a confirmation.
func confirmReset() tea.Msg {
	return showConfirmMsg{modal: NewConfirmModal("Reset?", "Close every pane and forget all loaded frames.", ResetMsg{})}
}

// showConfirmMsg pushes a confirmation overlay.
type showConfirmMsg struct {
	modal *ConfirmModal
}
