package mmio

import (
	"testing"
)

func TestField(t *testing.T) {
	tests := []struct {
		name string
		f    Field
		in   uint32
		x    uint32
		want uint32
		get  uint32
	}{
		{"low bits", Field{0, 3}, 0xffffffff, 2, 0xfffffffa, 2},
		{"middle", Field{4, 3}, 0x00000000, 5, 0x00000050, 5},
		{"truncated", Field{8, 3}, 0x00000000, 0xf, 0x00000700, 7},
		{"keeps others", Field{12, 3}, 0x00000fff, 1, 0x00001fff, 1},
	}

	for _, test := range tests {
		got := test.f.Put(test.in, test.x)
		if got != test.want {
			t.Errorf("%s: Put got: %08X, want: %08X", test.name, got, test.want)
		}
		if g := test.f.Get(got); g != test.get {
			t.Errorf("%s: Get got: %d, want: %d", test.name, g, test.get)
		}
	}
}

func TestFieldMask(t *testing.T) {
	f := Field{8, 3}
	if f.Mask() != 0x700 {
		t.Errorf("Mask got: %08X, want: 00000700", f.Mask())
	}
	if f.Max() != 7 {
		t.Errorf("Max got: %d, want: 7", f.Max())
	}
}

func TestMemWriteLog(t *testing.T) {
	m := NewMem()
	m.Write32(0x10, 1)
	m.WriteOrdered32(0x14, 2)
	SetBits(m, 0x10, 0x4)
	want := []Write{{0x10, 1, false}, {0x14, 2, true}, {0x10, 5, false}}
	ws := m.Writes()
	if len(ws) != len(want) {
		t.Fatalf("Writes len got: %d, want: %d", len(ws), len(want))
	}
	for i := range want {
		if ws[i] != want[i] {
			t.Errorf("write %d got: %+v, want: %+v", i, ws[i], want[i])
		}
	}
	if got := len(m.WritesTo(0x10)); got != 2 {
		t.Errorf("WritesTo(0x10) got: %d, want: 2", got)
	}
	m.ClearWrites()
	if len(m.Writes()) != 0 {
		t.Errorf("ClearWrites left %d writes", len(m.Writes()))
	}
	if m.Read32(0x10) != 5 {
		t.Errorf("Read32 got: %d, want: 5", m.Read32(0x10))
	}
}

func TestMemHooks(t *testing.T) {
	m := NewMem()
	var seen []uint32
	m.OnWrite(0x20, func(v uint32) {
		seen = append(seen, v)
		m.Poke(0x24, v+1)
	})
	m.OnRead(0x28, func(v uint32) uint32 { return v | 0x80 })
	m.Write32(0x20, 7)
	if len(seen) != 1 || seen[0] != 7 {
		t.Errorf("write hook got: %v, want: [7]", seen)
	}
	if m.Read32(0x24) != 8 {
		t.Errorf("poked register got: %d, want: 8", m.Read32(0x24))
	}
	if len(m.Writes()) != 1 {
		t.Errorf("Poke should not be logged, got %d writes", len(m.Writes()))
	}
	if m.Read32(0x28) != 0x80 || m.Peek(0x28) != 0 {
		t.Errorf("read hook got: %02X/%02X, want: 80/00", m.Read32(0x28), m.Peek(0x28))
	}
}

func TestUpdateAndClearBits(t *testing.T) {
	m := NewMem()
	m.Poke(0x30, 0xff)
	ClearBits(m, 0x30, 0x0f)
	if m.Read32(0x30) != 0xf0 {
		t.Errorf("ClearBits got: %02X, want: F0", m.Read32(0x30))
	}
	UpdateBits(m, 0x30, 0x01, true)
	UpdateBits(m, 0x30, 0x80, false)
	if m.Read32(0x30) != 0x71 {
		t.Errorf("UpdateBits got: %02X, want: 71", m.Read32(0x30))
	}
	WriteField(m, 0x30, Field{8, 4}, 0xa)
	if ReadField(m, 0x30, Field{8, 4}) != 0xa {
		t.Errorf("ReadField got: %X, want: A", ReadField(m, 0x30, Field{8, 4}))
	}
}
