// Package plan implements the decode and encode planners: given a
// signal's bit layout, signedness, width, scale/offset and chosen
// type, it builds the operation sequence that turns a payload into a
// value and back. The aligned fast paths generalize straightforward
// byte-wise load/store to cover both byte orders, falling back to a
// bit walk for every unaligned placement.
package plan

import (
	"errors"
	"math"

	"dbc-bitgen/internal/bitlayout"
	"dbc-bitgen/internal/desc"
	"dbc-bitgen/internal/typeselect"
)

// ErrUnsupportedEncode is returned by Encode on a signal whose plan was
// built without an encode path (unaligned big-endian).
var ErrUnsupportedEncode = errors.New("plan: encode unsupported for this signal (unaligned big-endian)")

// SignalPlan is one signal's compiled decode/encode operation sequence
// plus the metadata an emitter needs to print it as source.
type SignalPlan struct {
	Name       string
	Kind       typeselect.Kind
	Width      int
	Signed     bool
	ByteOrder  desc.ByteOrder
	Scaled     bool
	Scale      float64
	Offset     float64
	Positions  []bitlayout.Position // value-LSB first
	Aligned    bool
	ByteStart  int // valid iff Aligned
	CanEncode  bool
	ValueTable []desc.ValueDescription
}

// PlanSignal builds a SignalPlan for one signal of a message with the
// given payload length. Returns a *bitlayout.OutOfRangeError when the
// signal's bit footprint escapes the payload; callers should skip the
// signal and keep planning its siblings.
func PlanSignal(sig desc.SignalDescription, frameLen int) (*SignalPlan, error) {
	big := sig.ByteOrder == desc.BigEndian
	width := int(sig.Width)
	start := int(sig.StartBit)

	positions, err := bitlayout.Layout(start, width, big, frameLen)
	if err != nil {
		return nil, err
	}

	scaled := sig.Scaled()
	signed := sig.Signedness == desc.Signed
	kind := typeselect.Select(width, signed, scaled)
	aligned := bitlayout.Aligned(start, width, big)

	return &SignalPlan{
		Name:       sig.Name,
		Kind:       kind,
		Width:      width,
		Signed:     signed,
		ByteOrder:  sig.ByteOrder,
		Scaled:     scaled,
		Scale:      sig.Scale,
		Offset:     sig.Offset,
		Positions:  positions,
		Aligned:    aligned,
		ByteStart:  bitlayout.ByteStart(start),
		CanEncode:  !(big && !aligned), // unaligned big-endian never encodes
		ValueTable: sig.ValueTable,
	}, nil
}

// rawBits assembles the signal's raw unsigned bit pattern from payload,
// using the aligned byte-wise fast path when possible and the
// value-LSB-first bit walk otherwise.
func (p *SignalPlan) rawBits(payload []byte) uint64 {
	if p.Aligned {
		nbytes := p.Width / 8
		var acc uint64
		if p.ByteOrder == desc.BigEndian {
			for i := 0; i < nbytes; i++ {
				acc = acc<<8 | uint64(payload[p.ByteStart+i])
			}
		} else {
			for i := nbytes - 1; i >= 0; i-- {
				acc = acc<<8 | uint64(payload[p.ByteStart+i])
			}
		}
		return acc
	}

	var acc uint64
	for i, pos := range p.Positions {
		bit := (payload[pos.Byte] >> uint(pos.Bit)) & 1
		acc |= uint64(bit) << uint(i)
	}
	return acc
}

// Decode runs the full decode plan (assemble, mask, sign-extend, scale,
// coerce) and returns the value boxed as the Go type matching p.Kind.
// Individual decode accessors are infallible once a payload of the
// correct length is handed in: bounds are the caller's responsibility,
// enforced once at the message level (bulk decode).
func (p *SignalPlan) Decode(payload []byte) any {
	acc := p.rawBits(payload)
	acc &= maskFor(p.Width)

	if p.Signed {
		acc = signExtend(acc, p.Width)
	}

	if p.Scaled {
		var rawVal float64
		if p.Signed {
			rawVal = float64(int64(acc))
		} else {
			rawVal = float64(acc)
		}
		return float32(rawVal*p.Scale + p.Offset)
	}

	if p.Kind == typeselect.Bool {
		return acc != 0
	}

	if p.Signed {
		raw := int64(acc)
		switch p.Kind {
		case typeselect.Int8:
			return int8(raw)
		case typeselect.Int16:
			return int16(raw)
		case typeselect.Int32:
			return int32(raw)
		default:
			return raw
		}
	}

	switch p.Kind {
	case typeselect.Uint8:
		return uint8(acc)
	case typeselect.Uint16:
		return uint16(acc)
	case typeselect.Uint32:
		return uint32(acc)
	default:
		return acc
	}
}

// toRaw reverses Decode's numeric conversion for Encode: inverse
// scale-and-offset for scaled signals, 0/1 for booleans, and for
// integers the value clamped into the signal's width-bit raw range
// (two's complement for signed signals).
func (p *SignalPlan) toRaw(value any) uint64 {
	if p.Scaled {
		phys := toFloat64(value)
		rawFloat := (phys - p.Offset) / p.Scale
		rounded := int64(math.Round(rawFloat)) // half-away-from-zero
		if p.Signed {
			rounded = clampSigned(rounded, p.Width)
			return toTwosComplement(rounded, p.Width)
		}
		if rounded < 0 {
			rounded = 0
		}
		return clampUnsigned(uint64(rounded), p.Width)
	}

	if p.Kind == typeselect.Bool {
		if b, _ := value.(bool); b {
			return 1
		}
		return 0
	}

	if p.Signed {
		raw := clampSigned(toInt64(value), p.Width)
		return toTwosComplement(raw, p.Width)
	}
	return clampUnsigned(toUint64(value), p.Width)
}

// Encode writes value's raw bit pattern into the signal's bits of
// payload, clearing them first. Returns ErrUnsupportedEncode for
// signals planned without an encode path.
func (p *SignalPlan) Encode(payload []byte, value any) error {
	if !p.CanEncode {
		return ErrUnsupportedEncode
	}
	raw := p.toRaw(value) & maskFor(p.Width)

	if p.Aligned {
		nbytes := p.Width / 8
		if p.ByteOrder == desc.BigEndian {
			for i := 0; i < nbytes; i++ {
				shift := uint((nbytes - 1 - i) * 8)
				payload[p.ByteStart+i] = byte(raw >> shift)
			}
		} else {
			for i := 0; i < nbytes; i++ {
				shift := uint(i * 8)
				payload[p.ByteStart+i] = byte(raw >> shift)
			}
		}
		return nil
	}

	for _, pos := range p.Positions {
		payload[pos.Byte] &^= 1 << uint(pos.Bit)
	}
	for i, pos := range p.Positions {
		if (raw>>uint(i))&1 == 1 {
			payload[pos.Byte] |= 1 << uint(pos.Bit)
		}
	}
	return nil
}

func toFloat64(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	default:
		return 0
	}
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case int:
		return int64(x)
	default:
		return 0
	}
}

func toUint64(v any) uint64 {
	switch x := v.(type) {
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case uint:
		return uint64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}
