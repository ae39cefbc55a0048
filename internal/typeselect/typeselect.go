// Package typeselect implements the per-signal return-type choice: the
// narrowest native representation that faithfully holds every value a
// signal can decode to. The choice is deterministic and, once made for
// a signal, part of that signal's public contract — changing it later
// is a breaking change for generated consumers.
package typeselect

// Kind is one of the native representations a signal's accessor can
// return.
type Kind int

const (
	Bool Kind = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	default:
		return "unknown"
	}
}

// GoType is the Go spelling of the chosen type; identical to String for
// every Kind, kept distinct because a future non-Go emitter would want
// a different mapping from the same Kind.
func (k Kind) GoType() string { return k.String() }

// Signed reports whether Kind is one of the signed integer kinds.
func (k Kind) Signed() bool {
	switch k {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// BitSize is the width of the holder type: 1 for Bool (by convention),
// 32 for Float32, else the integer width.
func (k Kind) BitSize() int {
	switch k {
	case Bool:
		return 1
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	default:
		return 64
	}
}

// Select chooses a signal's return type from its width, signedness,
// and whether it carries a non-identity (scale, offset). Rules applied
// in order:
//
//  1. width == 1, unscaled, unsigned -> Bool.
//  2. scaled -> Float32 (a scaled 1-bit signal is a Float32, not a
//     Bool: rule 1 only fires when scale is the identity).
//  3. otherwise the smallest native integer of the signal's signedness
//     whose width is >= the signal's width, from {8, 16, 32, 64}.
func Select(width int, signed bool, scaled bool) Kind {
	if width == 1 && !signed && !scaled {
		return Bool
	}
	if scaled {
		return Float32
	}
	holder := 8
	for holder < width {
		holder *= 2
	}
	if holder > 64 {
		holder = 64
	}
	if signed {
		switch holder {
		case 8:
			return Int8
		case 16:
			return Int16
		case 32:
			return Int32
		default:
			return Int64
		}
	}
	switch holder {
	case 8:
		return Uint8
	case 16:
		return Uint16
	case 32:
		return Uint32
	default:
		return Uint64
	}
}
