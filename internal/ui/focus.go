package ui

// FocusManager rotates focus across named regions. Regions can be hidden
// (the sidebar, when collapsed) and are then skipped.
type FocusManager struct {
	Current  string
	Order    []string
	Hidden   map[string]bool
	OnChange func(from, to string)
}

// NewFocusManager focuses the first region of order.
func NewFocusManager(order ...string) *FocusManager {
	f := &FocusManager{Order: order, Hidden: make(map[string]bool)}
	if len(order) > 0 {
		f.Current = order[0]
	}
	return f
}

// Next moves to the next visible region and returns it.
func (f *FocusManager) Next() string { return f.step(1) }

// Prev moves to the previous visible region and returns it.
func (f *FocusManager) Prev() string { return f.step(-1) }

func (f *FocusManager) step(delta int) string {
	n := len(f.Order)
	if n == 0 {
		return ""
	}
	idx := f.indexOf(f.Current)
	if idx < 0 && delta < 0 {
		idx = 0
	}
	for i := 1; i <= n; i++ {
		cand := f.Order[((idx+delta*i)%n+n)%n]
		if !f.Hidden[cand] {
			f.set(cand)
			break
		}
	}
	return f.Current
}

// SetFocus focuses id. It reports false for unknown or hidden regions.
func (f *FocusManager) SetFocus(id string) bool {
	if f.indexOf(id) < 0 || f.Hidden[id] {
		return false
	}
	f.set(id)
	return true
}

// SetHidden hides or shows a region. Hiding the focused region moves focus on.
func (f *FocusManager) SetHidden(id string, hidden bool) {
	if f.Hidden == nil {
		f.Hidden = make(map[string]bool)
	}
	f.Hidden[id] = hidden
	if hidden && f.Current == id {
		f.Next()
	}
}

func (f *FocusManager) indexOf(id string) int {
	for i, o := range f.Order {
		if o == id {
			return i
		}
	}
	return -1
}

func (f *FocusManager) set(id string) {
	from := f.Current
	f.Current = id
	if f.OnChange != nil && from != id {
		f.OnChange(from, id)
	}
}
