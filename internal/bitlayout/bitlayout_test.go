package bitlayout

import (
	"reflect"
	"testing"
)

func TestLayoutLittleEndianAligned(t *testing.T) {
	// unsigned 32-bit at bit 32, 8-byte frame: bytes 4..7 ascending.
	got, err := Layout(32, 32, false, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Position{{4, 0}, {4, 1}, {4, 2}, {4, 3}, {4, 4}, {4, 5}, {4, 6}, {4, 7},
		{5, 0}, {5, 1}, {5, 2}, {5, 3}, {5, 4}, {5, 5}, {5, 6}, {5, 7},
		{6, 0}, {6, 1}, {6, 2}, {6, 3}, {6, 4}, {6, 5}, {6, 6}, {6, 7},
		{7, 0}, {7, 1}, {7, 2}, {7, 3}, {7, 4}, {7, 5}, {7, 6}, {7, 7}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !Aligned(32, 32, false) {
		t.Fatal("expected aligned")
	}
	if ByteStart(32) != 4 {
		t.Fatalf("byte start = %d, want 4", ByteStart(32))
	}
}

func TestLayoutBigEndianAlignedScenario2(t *testing.T) {
	// Big-endian unsigned32 at start-bit 39.
	got, err := Layout(39, 32, true, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// MSB-first walk is byte4 bit7..bit0, byte5 bit7..bit0, byte6, byte7;
	// stored value-LSB-first, so position[0] is byte7 bit0.
	if got[len(got)-1] != (Position{4, 7}) {
		t.Fatalf("MSB position = %v, want {4,7}", got[len(got)-1])
	}
	if got[0] != (Position{7, 0}) {
		t.Fatalf("LSB position = %v, want {7,0}", got[0])
	}
	if !Aligned(39, 32, true) {
		t.Fatal("expected aligned")
	}
}

func TestLayoutOneBitIdenticalUnderEitherConvention(t *testing.T) {
	le, err := Layout(10, 1, false, 8)
	if err != nil {
		t.Fatal(err)
	}
	be, err := Layout(10, 1, true, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(le, be) {
		t.Fatalf("1-bit signal differs between conventions: LE=%v BE=%v", le, be)
	}
}

func TestLayout64BitWholeFrame(t *testing.T) {
	le, err := Layout(0, 64, false, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(le) != 64 {
		t.Fatalf("len = %d, want 64", len(le))
	}
	if le[0] != (Position{0, 0}) || le[63] != (Position{7, 7}) {
		t.Fatalf("unexpected endpoints: %v .. %v", le[0], le[63])
	}

	be, err := Layout(7, 64, true, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(be) != 64 {
		t.Fatalf("len = %d, want 64", len(be))
	}
}

func TestLayoutOutOfRange(t *testing.T) {
	cases := []struct {
		name               string
		start, width, size int
		big                bool
	}{
		{"LE past end", 60, 8, 8, false},
		{"BE past end", 4, 16, 1, true},
		{"zero width", 0, 0, 8, false},
		{"width too large", 0, 65, 8, false},
		{"negative-looking start via high bit count", 63, 3, 1, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Layout(c.start, c.width, c.big, c.size); err == nil {
				t.Fatal("expected error, got nil")
			} else if _, ok := err.(*OutOfRangeError); !ok {
				t.Fatalf("expected *OutOfRangeError, got %T", err)
			}
		})
	}
}

func TestLayoutUnalignedLittleEndianScenario3(t *testing.T) {
	// 15-bit field at start 43 in an 8-byte frame must stay in range.
	pos, err := Layout(43, 15, false, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(pos) != 15 {
		t.Fatalf("len = %d, want 15", len(pos))
	}
	for _, p := range pos {
		if p.Byte < 0 || p.Byte >= 8 || p.Bit < 0 || p.Bit > 7 {
			t.Fatalf("position out of bounds: %v", p)
		}
	}
}

func TestAlignedRequiresByteBoundary(t *testing.T) {
	if Aligned(3, 8, false) {
		t.Fatal("start_bit=3 width=8 little-endian should not be aligned")
	}
	if Aligned(10, 8, true) {
		t.Fatal("start_bit=10 width=8 big-endian should not be aligned (not MSB-at-bit7)")
	}
	if !Aligned(0, 8, false) {
		t.Fatal("start_bit=0 width=8 little-endian should be aligned")
	}
	if !Aligned(7, 8, true) {
		t.Fatal("start_bit=7 width=8 big-endian should be aligned")
	}
}
