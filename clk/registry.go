package clk

import (
	"errors"
	"github.com/platinasystems/log"
)

// MaxInstances is one instance per silicon tile.
const MaxInstances = 2

var (
	ErrFull              = errors.New("clock registry is full")
	ErrAlreadyRegistered = errors.New("clock instance already registered")
	ErrNotRegistered     = errors.New("clock instance not registered")
	ErrInvalidSource     = errors.New("invalid clock source")
)

// Instance is one clock-generation tile.
type Instance struct {
	base     uintptr
	pllBase  uintptr
	coreBase uintptr
	ddrHz    uint64
	srcHz    [NumSources]uint64
	pre      Hook
	post     Hook
}

func (in *Instance) Base() uintptr     { return in.base }
func (in *Instance) PLLBase() uintptr  { return in.pllBase }
func (in *Instance) CoreBase() uintptr { return in.coreBase }

// DDRFrequency is the last frequency programmed with SetDDRFrequency, 0 if
// none was.
func (in *Instance) DDRFrequency() uint64 { return in.ddrHz }

// SourceFrequency is the cached frequency of src, 0 if unknown.
func (in *Instance) SourceFrequency(src ClockSource) uint64 {
	if !src.Valid() {
		return 0
	}
	return in.srcHz[src]
}

// Registry holds the clock instances known at boot. Instances are never
// removed.
type Registry struct {
	instances [MaxInstances]Instance
	n         int
}

// Register adds an instance. pre and post may be nil. Registering past
// capacity or registering a base twice leaves the registry unchanged; the
// error is logged and callers are free to ignore it.
func (r *Registry) Register(base, pllBase, coreBase uintptr, pre, post Hook) error {
	if _, ok := r.Lookup(base); ok {
		log.Printf("warn", "clk: instance %08X already registered", base)
		return ErrAlreadyRegistered
	}
	if r.n >= MaxInstances {
		log.Printf("warn", "clk: can't register %08X, %d instances already registered", base, r.n)
		return ErrFull
	}
	r.instances[r.n] = Instance{
		base:     base,
		pllBase:  pllBase,
		coreBase: coreBase,
		pre:      pre,
		post:     post,
	}
	r.n++
	log.Printf("info", "clk: registered instance %08X pll %08X core %08X", base, pllBase, coreBase)
	return nil
}

func (r *Registry) Lookup(base uintptr) (*Instance, bool) {
	for i := 0; i < r.n; i++ {
		if r.instances[i].base == base {
			return &r.instances[i], true
		}
	}
	return nil, false
}

func (r *Registry) Len() int {
	return r.n
}

// Instances returns the registered instances in registration order.
func (r *Registry) Instances() []*Instance {
	ins := make([]*Instance, r.n)
	for i := range ins {
		ins[i] = &r.instances[i]
	}
	return ins
}

// NotifySourceFrequency records that src on base now runs at hz. It's the
// only way source frequencies become known.
func (r *Registry) NotifySourceFrequency(base uintptr, src ClockSource, hz uint64) {
	if !src.Valid() {
		log.Printf("warn", "clk: notify %08X: %v", base, ErrInvalidSource)
		return
	}
	in, ok := r.Lookup(base)
	if !ok {
		log.Printf("warn", "clk: notify %v on %08X: %v", src, base, ErrNotRegistered)
		return
	}
	in.srcHz[src] = hz
	log.Printf("debug", "clk: %08X %v is %d Hz", base, src, hz)
}

func (r *Registry) lookupOrWarn(base uintptr, what string) (*Instance, bool) {
	in, ok := r.Lookup(base)
	if !ok {
		log.Printf("warn", "clk: %s %08X: %v", what, base, ErrNotRegistered)
	}
	return in, ok
}
