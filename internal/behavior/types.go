package behavior

//go:generate go tool stringer -type=Kind -output=kind_string.go

// Kind discriminates the behavior descriptor union.
type Kind int

const (
	_ Kind = iota // skip zero value, use it as a default (invalid) value for Kind

	KindBasic
	KindHoldTap
	KindMacro
	KindModMorph
	KindStickyKey
)

// StickyMode selects the hold-field label for sticky-family behaviors.
type StickyMode string

const (
	ModeSticky    StickyMode = "sticky"
	ModeToggle    StickyMode = "toggle"
	ModeTapToggle StickyMode = "tap-toggle"
)

// Descriptor describes one behavior, keyed in the registry by its reference
// label (with the leading "&"). Only the fields for its Kind are meaningful.
type Descriptor struct {
	Kind  Kind
	Label string

	// KindHoldTap: behavior references the hold and tap parameter cells are
	// forwarded to, plus an optional display override for the tap legend.
	HoldRef     string
	TapRef      string
	DisplayName string

	// KindMacro: number of bound parameters and the ordered step bindings.
	BoundParams int
	Steps       []string

	// KindModMorph: full default and morphed binding strings, plus the raw
	// modifier mask cells.
	DefaultRef string
	MorphedRef string
	Mods       []string

	// KindStickyKey: behavior reference the parameter cell is forwarded to
	// and the display mode.
	InnerRef string
	Mode     StickyMode

	// KindBasic: the raw keycode text.
	Keycode string
}
