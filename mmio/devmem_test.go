package mmio

import (
	mmap "github.com/edsrzf/mmap-go"
	"testing"
)

func anonDevmem(t *testing.T, phys uintptr, size int) (*Devmem, mmap.MMap) {
	mm, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		t.Fatalf("anonymous map: %v", err)
	}
	return &Devmem{windows: []window{{phys, uintptr(size), mm, 0}}}, mm
}

func TestDevmemAccess(t *testing.T) {
	d, mm := anonDevmem(t, 0x18290000, 0x100)
	defer mm.Unmap()

	d.Write32(0x18290010, 0x12345678)
	if got := d.Read32(0x18290010); got != 0x12345678 {
		t.Errorf("Write32/Read32 got: %08X, want: 12345678", got)
	}
	if mm[0x10] != 0x78 || mm[0x13] != 0x12 {
		t.Errorf("mapped bytes got: %02X..%02X, want: 78..12", mm[0x10], mm[0x13])
	}
	d.WriteOrdered32(0x182900fc, 0xdeadbeef)
	if got := d.Read32(0x182900fc); got != 0xdeadbeef {
		t.Errorf("WriteOrdered32 got: %08X, want: DEADBEEF", got)
	}
}

func TestDevmemOutsideWindow(t *testing.T) {
	d, mm := anonDevmem(t, 0x18290000, 0x100)
	defer mm.Unmap()

	tests := []uintptr{
		0x18290100, // one past the window
		0x1828fffc, // below it
		0x18290002, // unaligned
	}
	for _, addr := range tests {
		d.Write32(addr, 0xffffffff)
		if got := d.Read32(addr); got != 0 {
			t.Errorf("Read32(%08X) got: %08X, want: 0", addr, got)
		}
	}
	for i, b := range mm {
		if b != 0 {
			t.Fatalf("byte %d written through an unmapped address: %02X", i, b)
		}
	}
}
