package pane

import (
	"fmt"
	"slices"
)

// TileID is an opaque tile handle. Ids are never reused within a Registry,
// including across Reset.
type TileID uint64

func (id TileID) String() string { return fmt.Sprintf("t-%d", uint64(id)) }

// LayoutKind is how the root container arranges its children.
type LayoutKind uint8

const (
	LayoutVertical LayoutKind = iota
	LayoutHorizontal
	LayoutGrid
	LayoutTabs
)

func (k LayoutKind) String() string {
	switch k {
	case LayoutHorizontal:
		return "horizontal"
	case LayoutGrid:
		return "grid"
	case LayoutTabs:
		return "tabs"
	default:
		return "vertical"
	}
}

// ParseLayout is the inverse of LayoutKind.String.
func ParseLayout(s string) (LayoutKind, error) {
	for _, k := range []LayoutKind{LayoutVertical, LayoutHorizontal, LayoutGrid, LayoutTabs} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown layout %q", s)
}

// Container is an ordered group of tiles.
type Container struct {
	Layout   LayoutKind
	Children []TileID
}

// Tile is a slot in the tree: exactly one of Pane or Container is set.
type Tile struct {
	ID        TileID
	Pane      *Pane
	Container *Container
}

// Registry owns every pane. It is not safe for concurrent use; the UI tick
// goroutine is its only caller.
type Registry struct {
	tiles   map[TileID]*Tile
	root    TileID
	nextID  TileID
	pending []TileID
	focused TileID
}

// NewRegistry returns a registry holding only an empty vertical root.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset discards every tile and starts over with an empty root.
func (r *Registry) Reset() {
	r.tiles = make(map[TileID]*Tile)
	r.pending = nil
	r.focused = 0
	r.root = r.alloc()
	r.tiles[r.root] = &Tile{ID: r.root, Container: &Container{Layout: LayoutVertical}}
}

func (r *Registry) alloc() TileID {
	r.nextID++
	return r.nextID
}

func (r *Registry) rootContainer() *Container {
	return r.tiles[r.root].Container
}

// Insert adds a pane under the root and returns its id. Equal panes may be
// inserted more than once.
func (r *Registry) Insert(p Pane) TileID {
	id := r.alloc()
	pp := p
	r.tiles[id] = &Tile{ID: id, Pane: &pp}
	root := r.rootContainer()
	root.Children = append(root.Children, id)
	if r.focused == 0 {
		r.focused = id
	}
	return id
}

// Find returns the first pane tile, in render order, matching pred.
func (r *Registry) Find(pred func(*Pane) bool) (TileID, bool) {
	for _, id := range r.rootContainer().Children {
		t := r.tiles[id]
		if t.Pane != nil && pred(t.Pane) {
			return id, true
		}
	}
	return 0, false
}

// FindLike finds a pane with the same kind and liveness as p.
func (r *Registry) FindLike(p Pane) (TileID, bool) {
	return r.Find(func(q *Pane) bool { return q.Like(p) })
}

// Toggle removes the first pane like template, or inserts template when none
// exists. opened reports which happened; id is the affected tile.
func (r *Registry) Toggle(template Pane) (id TileID, opened bool) {
	if id, ok := r.FindLike(template); ok {
		r.Remove(id)
		return id, false
	}
	return r.Insert(template), true
}

// Remove deletes a tile. Unknown ids and the root are ignored.
func (r *Registry) Remove(id TileID) {
	t, ok := r.tiles[id]
	if !ok || id == r.root {
		return
	}
	if t.Container != nil {
		for _, child := range t.Container.Children {
			r.Remove(child)
		}
	}
	delete(r.tiles, id)
	for _, tile := range r.tiles {
		if tile.Container == nil {
			continue
		}
		if i := slices.Index(tile.Container.Children, id); i >= 0 {
			tile.Container.Children = slices.Delete(tile.Container.Children, i, i+1)
		}
	}
	if r.focused == id {
		r.focused = 0
		if ids := r.Active(); len(ids) > 0 {
			r.focused = ids[0]
		}
	}
}

// RequestClose queues a tile for removal by the next ApplyPendingClose.
func (r *Registry) RequestClose(id TileID) {
	if !slices.Contains(r.pending, id) {
		r.pending = append(r.pending, id)
	}
}

// ApplyPendingClose removes every queued tile and returns how many existed.
// Call it once per tick, after the tiles have been drawn.
func (r *Registry) ApplyPendingClose() int {
	n := 0
	for _, id := range r.pending {
		if _, ok := r.tiles[id]; ok {
			r.Remove(id)
			n++
		}
	}
	r.pending = r.pending[:0]
	return n
}

// Pending returns the queued close requests.
func (r *Registry) Pending() []TileID {
	return slices.Clone(r.pending)
}

// Get returns the pane held by id. The pointer stays valid until the tile is
// removed.
func (r *Registry) Get(id TileID) (*Pane, bool) {
	t, ok := r.tiles[id]
	if !ok || t.Pane == nil {
		return nil, false
	}
	return t.Pane, true
}

// Len returns the number of pane tiles.
func (r *Registry) Len() int {
	return len(r.Active())
}

// Active lists pane tiles in render order.
func (r *Registry) Active() []TileID {
	out := make([]TileID, 0, len(r.tiles))
	var walk func(TileID)
	walk = func(id TileID) {
		t := r.tiles[id]
		switch {
		case t.Pane != nil:
			out = append(out, id)
		case t.Container != nil:
			for _, c := range t.Container.Children {
				walk(c)
			}
		}
	}
	walk(r.root)
	return out
}

// SetLayout changes how the root arranges its children.
func (r *Registry) SetLayout(k LayoutKind) {
	r.rootContainer().Layout = k
}

func (r *Registry) Layout() LayoutKind {
	return r.rootContainer().Layout
}

// Focused returns the focused pane tile, if any.
func (r *Registry) Focused() (TileID, bool) {
	if _, ok := r.Get(r.focused); ok {
		return r.focused, true
	}
	return 0, false
}

// SetFocus focuses id; it reports false for unknown tiles.
func (r *Registry) SetFocus(id TileID) bool {
	if _, ok := r.Get(id); !ok {
		return false
	}
	r.focused = id
	return true
}

// FocusNext moves focus to the next pane in render order, wrapping.
func (r *Registry) FocusNext() (TileID, bool) { return r.step(1) }

// FocusPrev moves focus to the previous pane in render order, wrapping.
func (r *Registry) FocusPrev() (TileID, bool) { return r.step(-1) }

func (r *Registry) step(delta int) (TileID, bool) {
	ids := r.Active()
	if len(ids) == 0 {
		r.focused = 0
		return 0, false
	}
	i := slices.Index(ids, r.focused)
	if i < 0 {
		i = 0
	} else {
		i = (i + delta + len(ids)) % len(ids)
	}
	r.focused = ids[i]
	return r.focused, true
}
