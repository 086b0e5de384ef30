package mmio

// Write records one register write made through a Mem.
type Write struct {
	Addr    uintptr
	Val     uint32
	Ordered bool
}

// Mem is an in-memory register file. Registers read as zero until written.
// Read and write hooks let callers model hardware that reacts to accesses.
type Mem struct {
	regs       map[uintptr]uint32
	writes     []Write
	readHooks  map[uintptr]func(uint32) uint32
	writeHooks map[uintptr][]func(uint32)
}

func NewMem() *Mem {
	return &Mem{
		regs:       make(map[uintptr]uint32),
		readHooks:  make(map[uintptr]func(uint32) uint32),
		writeHooks: make(map[uintptr][]func(uint32)),
	}
}

func (m *Mem) Read32(addr uintptr) uint32 {
	v := m.regs[addr]
	if h, ok := m.readHooks[addr]; ok {
		v = h(v)
	}
	return v
}

func (m *Mem) Write32(addr uintptr, val uint32) {
	m.write(addr, val, false)
}

func (m *Mem) WriteOrdered32(addr uintptr, val uint32) {
	m.write(addr, val, true)
}

func (m *Mem) write(addr uintptr, val uint32, ordered bool) {
	m.regs[addr] = val
	m.writes = append(m.writes, Write{addr, val, ordered})
	for _, h := range m.writeHooks[addr] {
		h(val)
	}
}

// Poke sets a register the way hardware would: no hooks run and nothing is
// logged.
func (m *Mem) Poke(addr uintptr, val uint32) {
	m.regs[addr] = val
}

// Peek returns the stored value, bypassing read hooks.
func (m *Mem) Peek(addr uintptr) uint32 {
	return m.regs[addr]
}

// Writes returns every write since creation or the last ClearWrites.
func (m *Mem) Writes() []Write {
	return m.writes
}

// WritesTo returns the values written to addr, oldest first.
func (m *Mem) WritesTo(addr uintptr) []Write {
	var ws []Write
	for _, w := range m.writes {
		if w.Addr == addr {
			ws = append(ws, w)
		}
	}
	return ws
}

func (m *Mem) ClearWrites() {
	m.writes = nil
}

// OnRead installs fn to transform the stored value on every read of addr.
// A later call replaces the earlier hook.
func (m *Mem) OnRead(addr uintptr, fn func(stored uint32) uint32) {
	m.readHooks[addr] = fn
}

// OnWrite adds fn to the hooks called after each write to addr.
func (m *Mem) OnWrite(addr uintptr, fn func(val uint32)) {
	m.writeHooks[addr] = append(m.writeHooks[addr], fn)
}
