package ui

import tea "github.com/charmbracelet/bubbletea"

// View is anything the app stacks over the tiles. Views receive frameMsg
// after every frame so they can follow the registry.
type View interface {
	Init() tea.Cmd
	Update(tea.Msg) (View, tea.Cmd)
	View() string
}

// Overlay is a popup drawn over the panes. Dismiss closes it from the
// keyboard; the view may also close itself with DismissModalMsg.
type Overlay struct {
	View    View
	Dismiss string
}

func (o Overlay) IsDismissKey(key string) bool {
	return o.Dismiss != "" && key == o.Dismiss
}

// OverlayStack keeps overlays in z order. Only the top one receives input.
type OverlayStack struct {
	Stack []Overlay
}

func (s *OverlayStack) Push(o Overlay) {
	s.Stack = append(s.Stack, o)
}

func (s *OverlayStack) Pop() (Overlay, bool) {
	top, ok := s.Peek()
	if ok {
		s.Stack = s.Stack[:len(s.Stack)-1]
	}
	return top, ok
}

func (s *OverlayStack) Peek() (Overlay, bool) {
	if len(s.Stack) == 0 {
		return Overlay{}, false
	}
	return s.Stack[len(s.Stack)-1], true
}

func (s *OverlayStack) Len() int { return len(s.Stack) }

// Clear drops every overlay.
func (s *OverlayStack) Clear() { s.Stack = nil }

// UpdateTop forwards msg to the top overlay. handled is false when the stack
// is empty.
func (s *OverlayStack) UpdateTop(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	if len(s.Stack) == 0 {
		return nil, false
	}
	top := &s.Stack[len(s.Stack)-1]
	top.View, cmd = top.View.Update(msg)
	return cmd, true
}

// Broadcast forwards msg to every overlay, bottom first. Used for sizing.
func (s *OverlayStack) Broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i := range s.Stack {
		var cmd tea.Cmd
		s.Stack[i].View, cmd = s.Stack[i].View.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}
