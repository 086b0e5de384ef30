package mmio

import (
	"fmt"
	mmap "github.com/edsrzf/mmap-go"
	"github.com/platinasystems/log"
	"golang.org/x/sys/unix"
	"os"
	"sync/atomic"
	"unsafe"
)

const MEM_FILE = "/dev/mem"

type window struct {
	phys uintptr
	size uintptr
	buf  mmap.MMap
	offs uintptr
}

// Devmem is a Bus over physical memory mapped from /dev/mem. Only addresses
// inside a window added with Map are accessible.
type Devmem struct {
	f       *os.File
	windows []window
}

func OpenDevmem() (*Devmem, error) {
	f, err := os.OpenFile(MEM_FILE, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("couldn't open %s: %v", MEM_FILE, err)
	}
	return &Devmem{f: f}, nil
}

// Map makes size bytes of registers starting at physAddr accessible. Since
// the mapping has to start at a page boundary, physAddr is rounded down to the
// nearest page and the offset is remembered.
func (d *Devmem) Map(physAddr uintptr, size int) error {
	pagemask := ^uintptr(unix.Getpagesize() - 1)
	mapAddr := physAddr & pagemask
	offs := physAddr - mapAddr
	log.Printf("debug", "MapRegion(%s, %d, RDWR, 0, %08X), physAddr %08X", MEM_FILE, size+int(offs), mapAddr, physAddr)
	mm, err := mmap.MapRegion(d.f, size+int(offs), mmap.RDWR, 0, int64(mapAddr))
	if err != nil {
		return fmt.Errorf("couldn't map region (%08X, %v): %v", physAddr, size, err)
	}
	d.windows = append(d.windows, window{physAddr, uintptr(size), mm, offs})
	return nil
}

func (d *Devmem) Close() error {
	var err error
	for _, w := range d.windows {
		if te := w.buf.Unmap(); te != nil && err == nil {
			err = te
		}
	}
	d.windows = nil
	if te := d.f.Close(); te != nil && err == nil {
		err = te
	}
	return err
}

func (d *Devmem) reg(addr uintptr) *uint32 {
	if addr&3 != 0 {
		log.Printf("err", "mmio: unaligned register access at %08X", addr)
		return nil
	}
	for i := range d.windows {
		w := &d.windows[i]
		if addr >= w.phys && addr+4 <= w.phys+w.size {
			return (*uint32)(unsafe.Pointer(&w.buf[w.offs+addr-w.phys]))
		}
	}
	log.Printf("err", "mmio: %08X is not mapped", addr)
	return nil
}

func (d *Devmem) Read32(addr uintptr) uint32 {
	p := d.reg(addr)
	if p == nil {
		return 0
	}
	return atomic.LoadUint32(p)
}

func (d *Devmem) Write32(addr uintptr, val uint32) {
	if p := d.reg(addr); p != nil {
		atomic.StoreUint32(p, val)
	}
}

// WriteOrdered32 is an atomic store, which the Go memory model orders against
// every access before and after it.
func (d *Devmem) WriteOrdered32(addr uintptr, val uint32) {
	if p := d.reg(addr); p != nil {
		atomic.StoreUint32(p, val)
	}
}
