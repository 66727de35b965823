package ui

// AppMode is the region that receives plain keys.
type AppMode int

const (
	ModePanes AppMode = iota
	ModeLoaded
)

// Focus region ids, in tab order.
const (
	RegionPanes  = "panes"
	RegionLoaded = "loaded"
)

func (m AppMode) String() string {
	switch m {
	case ModePanes:
		return "Panes"
	case ModeLoaded:
		return "Loaded"
	default:
		return "Unknown"
	}
}

// modeForRegion maps a focus region to the mode it enables.
func modeForRegion(region string) AppMode {
	if region == RegionLoaded {
		return ModeLoaded
	}
	return ModePanes
}
