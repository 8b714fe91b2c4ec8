package stgy

// DefaultVersion is the record layout version written by this package.
const DefaultVersion = 2

// TextObjectID is the object type that carries a text label. Only objects of
// this type have a text record in the binary layout.
const TextObjectID uint16 = 100

// Valid background IDs.
const (
	MinBackgroundID = 1
	MaxBackgroundID = 7
)

// Object size bounds in percent, as used by the editor.
const (
	MinObjectSize     = 50
	MaxObjectSize     = 200
	DefaultObjectSize = 100
)

// BoardData is a decoded strategy board. Objects are ordered by z-order.
type BoardData struct {
	Version      uint32        `json:"version" yaml:"version"`
	Width        uint32        `json:"width" yaml:"width"`
	Height       uint16        `json:"height" yaml:"height"`
	Name         string        `json:"name" yaml:"name"`
	BackgroundID uint16        `json:"backgroundId" yaml:"backgroundId"`
	Objects      []BoardObject `json:"objects" yaml:"objects"`

	// SizePaddingByte is the alignment byte that follows an odd-length size
	// array. It is carried so that decode then encode reproduces the input.
	// Boards with an even object count have no padding byte: the value is
	// not written and parses back as 0.
	SizePaddingByte uint8 `json:"_sizePaddingByte,omitempty" yaml:"_sizePaddingByte,omitempty"`
}

// BoardObject is a single icon on the board.
type BoardObject struct {
	ObjectID uint16      `json:"objectId" yaml:"objectId"`
	Text     *string     `json:"text,omitempty" yaml:"text,omitempty"`
	Flags    ObjectFlags `json:"flags" yaml:"flags"`
	Position Position    `json:"position" yaml:"position"`
	Rotation int16       `json:"rotation" yaml:"rotation"`
	Size     uint8       `json:"size" yaml:"size"`
	Color    Color       `json:"color" yaml:"color"`

	// Param1-3 are type specific, e.g. cone angle or donut thickness.
	// A param is stored for every object once any object sets it, so an
	// unset param next to a set one parses back as 0.
	Param1 *uint16 `json:"param1,omitempty" yaml:"param1,omitempty"`
	Param2 *uint16 `json:"param2,omitempty" yaml:"param2,omitempty"`
	Param3 *uint16 `json:"param3,omitempty" yaml:"param3,omitempty"`
}

// IsText reports whether the object carries a text record.
func (o *BoardObject) IsText() bool {
	return o.ObjectID == TextObjectID
}

// ObjectFlags are the per-object toggles stored as a bitfield.
type ObjectFlags struct {
	Visible        bool `json:"visible" yaml:"visible"`
	FlipHorizontal bool `json:"flipHorizontal" yaml:"flipHorizontal"`
	FlipVertical   bool `json:"flipVertical" yaml:"flipVertical"`
	Locked         bool `json:"locked" yaml:"locked"`
}

const (
	flagVisible uint16 = 1 << iota
	flagFlipHorizontal
	flagFlipVertical
	flagLocked
)

// Bits packs the flags into their wire representation.
func (f ObjectFlags) Bits() uint16 {
	var bits uint16
	if f.Visible {
		bits |= flagVisible
	}
	if f.FlipHorizontal {
		bits |= flagFlipHorizontal
	}
	if f.FlipVertical {
		bits |= flagFlipVertical
	}
	if f.Locked {
		bits |= flagLocked
	}
	return bits
}

// FlagsFromBits unpacks a wire bitfield. Unknown bits are dropped.
func FlagsFromBits(bits uint16) ObjectFlags {
	return ObjectFlags{
		Visible:        bits&flagVisible != 0,
		FlipHorizontal: bits&flagFlipHorizontal != 0,
		FlipVertical:   bits&flagFlipVertical != 0,
		Locked:         bits&flagLocked != 0,
	}
}

// Position is in pixels. The record stores it at 10x scale, so one decimal
// place survives a round trip.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Color is an RGB triple plus opacity in percent.
type Color struct {
	R       uint8 `json:"r" yaml:"r"`
	G       uint8 `json:"g" yaml:"g"`
	B       uint8 `json:"b" yaml:"b"`
	Opacity uint8 `json:"opacity" yaml:"opacity"`
}

// Uint16 returns a pointer to v, for populating optional params.
func Uint16(v uint16) *uint16 {
	return &v
}

// String returns a pointer to s, for populating object text.
func String(s string) *string {
	return &s
}
