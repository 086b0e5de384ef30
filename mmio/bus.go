// Package mmio provides ordered access to memory-mapped registers, either
// through /dev/mem or through an in-memory register file.
package mmio

// Bus reads and writes 32-bit registers addressed by physical address.
//
// WriteOrdered32 must not be reordered relative to any access issued before
// or after it. Implementations supply whatever fence the architecture needs.
type Bus interface {
	Read32(addr uintptr) uint32
	Write32(addr uintptr, val uint32)
	WriteOrdered32(addr uintptr, val uint32)
}

// Field describes a bitfield of Width bits starting at bit Shift.
type Field struct {
	Shift uint
	Width uint
}

func (f Field) Max() uint32 {
	return (1 << f.Width) - 1
}

func (f Field) Mask() uint32 {
	return f.Max() << f.Shift
}

// Get extracts the field from a register value.
func (f Field) Get(v uint32) uint32 {
	return (v & f.Mask()) >> f.Shift
}

// Put returns v with the field replaced by x. Bits of x above the field width
// are dropped.
func (f Field) Put(v, x uint32) uint32 {
	return (v &^ f.Mask()) | ((x << f.Shift) & f.Mask())
}

func SetBits(b Bus, addr uintptr, bits uint32) {
	b.Write32(addr, b.Read32(addr)|bits)
}

func ClearBits(b Bus, addr uintptr, bits uint32) {
	b.Write32(addr, b.Read32(addr)&^bits)
}

// UpdateBits sets or clears bits depending on on.
func UpdateBits(b Bus, addr uintptr, bits uint32, on bool) {
	if on {
		SetBits(b, addr, bits)
	} else {
		ClearBits(b, addr, bits)
	}
}

func ReadField(b Bus, addr uintptr, f Field) uint32 {
	return f.Get(b.Read32(addr))
}

func WriteField(b Bus, addr uintptr, f Field, x uint32) {
	b.Write32(addr, f.Put(b.Read32(addr), x))
}
