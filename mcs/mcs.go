// Package mcs brings the clock-generation hardware of one or two tiles into
// phase lock on a shared SYSREF edge and switches them onto their CLKPLL.
package mcs

import (
	"errors"
	"fmt"
	"github.com/Jon-Bright/clkctl/clk"
	"github.com/Jon-Bright/clkctl/mmio"
	"github.com/Jon-Bright/clkctl/timer"
	"github.com/platinasystems/log"
	"strings"
	"time"
)

const (
	DefaultTimeout      = 50 * time.Millisecond
	DefaultPollInterval = 10 * time.Microsecond
)

var (
	ErrPrecondition  = errors.New("tile isn't running from devclk")
	ErrNoConfig      = errors.New("no mcs configuration for settings")
	ErrNotRegistered = errors.New("tile isn't a registered clock instance")
)

// PLLSelect tells the PLL driver which CLKPLL it's bringing up.
type PLLSelect uint8

const (
	SelClkPll PLLSelect = iota
	SelClkPllSecondary
)

// PLLDriver powers up and programs a CLKPLL. Both calls may be slow and
// either may fail.
type PLLDriver interface {
	PowerInit(pllBase, coreBase uintptr, vcoHz, refHz uint64, sel PLLSelect) error
	Program(pllBase uintptr, sel PLLSelect) error
}

// Platform drives the SYSREF pulse. SysrefDisable is told whether the
// primary tile synchronized.
type Platform interface {
	IsSimulation() bool
	SysrefEnable() bool
	SysrefDisable(primaryOK bool) bool
}

// Data-path slice block.
const (
	SLICE_CLK_DIV  = uintptr(0x000)
	SLICE_CONV_DIV = uintptr(0x004)
	SLICE_DIG_DIV  = uintptr(0x008)
	SLICE_PTR_INIT = uintptr(0x00c)
)

var (
	sliceDiv       = mmio.Field{Shift: 0, Width: 4}
	sliceRdPtrInit = mmio.Field{Shift: 0, Width: 8}
	sliceWrPtrInit = mmio.Field{Shift: 8, Width: 8}
)

type SliceKind uint8

const (
	Rx SliceKind = iota
	Tx
	Orx
	TxLb
)

func (k SliceKind) String() string {
	switch k {
	case Rx:
		return "rx"
	case Tx:
		return "tx"
	case Orx:
		return "orx"
	case TxLb:
		return "txlb"
	}
	return fmt.Sprintf("slice(%d)", uint8(k))
}

type Slice struct {
	Kind SliceKind
	Base uintptr
}

// Tile describes the synchronization hardware of one tile. Base is the base
// of its registered clock instance.
type Tile struct {
	Base        uintptr
	RFPLL       [2]uintptr
	Slices      []Slice
	PLL         PLLSelect
	ExpectPLL   uint32 // MCS_STATUS code of a synchronized CLKPLL
	ExpectRFPLL uint32 // MCS_STATUS code of a synchronized RF-PLL
}

type Config struct {
	Primary   Tile
	Secondary Tile
	// ForceBypass makes every Run skip synchronization.
	ForceBypass  bool
	Timeout      time.Duration
	PollInterval time.Duration
}

// Result is the outcome of each element of the last Run. Elements that
// weren't exercised are reported as ok.
type Result struct {
	Dual          bool
	Bypass        bool
	SysrefEnable  bool
	SysrefDisable bool
	PrimaryWait   bool
	SecondaryWait bool
}

func (r Result) OK() bool {
	return r.SysrefEnable && r.SysrefDisable && r.PrimaryWait && r.SecondaryWait
}

// SyncError names every element that failed during synchronization.
type SyncError struct {
	Result
}

func (e *SyncError) Error() string {
	var failed []string
	if !e.SysrefEnable {
		failed = append(failed, "sysref enable")
	}
	if !e.SysrefDisable {
		failed = append(failed, "sysref disable")
	}
	if !e.PrimaryWait {
		failed = append(failed, "primary wait")
	}
	if !e.SecondaryWait {
		failed = append(failed, "secondary wait")
	}
	return "mcs failed: " + strings.Join(failed, ", ")
}

type Orchestrator struct {
	clk  *clk.Manager
	bus  mmio.Bus
	t    timer.Source
	pll  PLLDriver
	plat Platform
	cfg  Config
	last Result
}

func New(m *clk.Manager, pll PLLDriver, plat Platform, cfg Config) *Orchestrator {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Orchestrator{
		clk:  m,
		bus:  m.Bus(),
		t:    m.Timer(),
		pll:  pll,
		plat: plat,
		cfg:  cfg,
	}
}

// VerifyConfig reports whether Run would find a configuration for the
// setting pair.
func (o *Orchestrator) VerifyConfig(cp ClkPllSetting, orx OrxAdcSetting) bool {
	return Verify(cp, orx)
}

// LastResult returns the outcome of the most recent Run.
func (o *Orchestrator) LastResult() Result {
	return o.last
}

func (o *Orchestrator) tiles(dual bool) []*Tile {
	if dual {
		return []*Tile{&o.cfg.Primary, &o.cfg.Secondary}
	}
	return []*Tile{&o.cfg.Primary}
}

// Run synchronizes the primary tile, and the secondary too if dual, then
// leaves every participating tile running from its CLKPLL. With bypass the
// tiles are switched straight to their CLKPLL without synchronizing.
//
// Entering the pending-sync state switches the clock domain and may disrupt
// anything clocked from it, a debug console for one.
//
// Tiles are prepared in order and a PLL failure returns at once: a primary
// that already entered pending sync stays there (OTP clock gated, devclk
// override set). The completion waits run one after the other, each with its
// own Timeout, so a dual run where neither tile synchronizes blocks for
// twice Timeout.
func (o *Orchestrator) Run(dual bool, cp ClkPllSetting, orx OrxAdcSetting, bypass bool) error {
	tiles := o.tiles(dual)
	o.last = Result{Dual: dual, Bypass: bypass || o.cfg.ForceBypass}
	for _, t := range tiles {
		if src := o.clk.Source(t.Base); src != clk.DevClk {
			log.Printf("err", "mcs: tile %08X runs from %v", t.Base, src)
			return fmt.Errorf("tile %08X runs from %v: %w", t.Base, src, ErrPrecondition)
		}
	}
	cfg, ok := Lookup(cp, orx)
	if !ok {
		log.Printf("err", "mcs: no configuration for %v/%v", cp, orx)
		return fmt.Errorf("%v/%v: %w", cp, orx, ErrNoConfig)
	}
	for _, t := range tiles {
		if err := o.prepare(t, cfg, o.last.Bypass); err != nil {
			return err
		}
	}
	if o.last.Bypass {
		o.last.SysrefEnable, o.last.SysrefDisable = true, true
		o.last.PrimaryWait, o.last.SecondaryWait = true, true
		log.Print("info", "mcs: bypassed, tiles switched to clkpll")
		return nil
	}

	for _, t := range tiles {
		o.setMCSEnable(t, true)
	}
	o.last.SysrefEnable = o.plat.SysrefEnable()

	o.last.PrimaryWait = o.wait(tiles[0])
	o.last.SecondaryWait = true
	if dual {
		o.last.SecondaryWait = o.wait(tiles[1])
	}

	for _, t := range tiles {
		o.setMCSEnable(t, false)
	}
	o.last.SysrefDisable = o.plat.SysrefDisable(o.last.PrimaryWait)

	if o.last.OK() {
		for _, t := range tiles {
			if err := o.clk.PostSwitch(t.Base, clk.ClkPll); err != nil {
				return err
			}
		}
		log.Printf("info", "mcs: %d tile(s) synchronized", len(tiles))
		return nil
	}

	if !o.last.SysrefEnable {
		log.Print("err", "mcs: sysref enable failed")
	}
	if !o.last.SysrefDisable {
		log.Print("err", "mcs: sysref disable failed")
	}
	if !o.last.PrimaryWait {
		log.Printf("err", "mcs: primary tile %08X didn't synchronize", tiles[0].Base)
	}
	if !o.last.SecondaryWait {
		log.Printf("err", "mcs: secondary tile %08X didn't synchronize", tiles[1].Base)
	}
	// Best effort: only the primary is returned to devclk.
	if err := o.clk.SetSource(tiles[0].Base, clk.DevClk); err != nil {
		log.Printf("err", "mcs: couldn't return %08X to devclk: %v", tiles[0].Base, err)
	}
	return &SyncError{o.last}
}

func (o *Orchestrator) prepare(t *Tile, cfg *TileConfig, bypass bool) error {
	in, ok := o.clk.Lookup(t.Base)
	if !ok {
		return fmt.Errorf("tile %08X: %w", t.Base, ErrNotRegistered)
	}
	pll, core := in.PLLBase(), in.CoreBase()

	mmio.SetBits(o.bus, core+clk.CORE_REFCLK_DIST, clk.CORE_SCALED_REFCLK_EN)
	mmio.WriteField(o.bus, pll+clk.PLL_REF_DIV, clk.PLLRefDiv, cfg.RefClkDiv)
	mmio.WriteField(o.bus, core+clk.CORE_ROOT_CLK_DIV, clk.RootClkDiv, cfg.RootClkDiv)
	refHz := in.SourceFrequency(clk.DevClk)
	if err := o.pll.PowerInit(pll, core, cfg.ClkPllHz, refHz, t.PLL); err != nil {
		log.Printf("err", "mcs: tile %08X pll power init: %v", t.Base, err)
		return fmt.Errorf("couldn't power up pll %08X: %v", pll, err)
	}
	if err := o.pll.Program(pll, t.PLL); err != nil {
		log.Printf("err", "mcs: tile %08X pll program: %v", t.Base, err)
		return fmt.Errorf("couldn't program pll %08X: %v", pll, err)
	}
	o.clk.NotifySourceFrequency(t.Base, clk.ClkPll, cfg.ClkPllHz)

	if bypass {
		return o.clk.SetSource(t.Base, clk.ClkPll)
	}

	if !o.plat.IsSimulation() {
		for _, s := range t.Slices {
			o.programSlice(s, cfg.dividers(s.Kind))
		}
	}

	for _, rf := range t.RFPLL {
		o.bus.Write32(rf+clk.PLL_REF_DIV, clk.PLLRefDiv.Put(0, 0)|clk.PLL_REF_EN)
	}
	mmio.SetBits(o.bus, core+clk.CORE_SYSREF_CTL, clk.CORE_EXT_SYSREF_EN)
	for _, p := range o.plls(t, pll) {
		mmio.SetBits(o.bus, p+clk.PLL_MCS_CTL, clk.PLL_MCS_DIV_SYNC_EN|clk.PLL_MCS_RESET)
		mmio.ClearBits(o.bus, p+clk.PLL_MCS_CTL, clk.PLL_MCS_RESET)
	}
	mmio.SetBits(o.bus, core+clk.CORE_MCS_SYNC_CTL, clk.CORE_CLKGEN_SYNC_EN)

	log.Printf("info", "mcs: tile %08X entering pending sync", t.Base)
	if err := o.clk.PreSwitch(t.Base, clk.ClkPll); err != nil {
		return err
	}
	return o.clk.Switch(t.Base, clk.ClkPll, true)
}

func (o *Orchestrator) programSlice(s Slice, d SliceDividers) {
	mmio.WriteField(o.bus, s.Base+SLICE_CLK_DIV, sliceDiv, d.ClkDiv)
	mmio.WriteField(o.bus, s.Base+SLICE_CONV_DIV, sliceDiv, d.ConvDiv)
	mmio.WriteField(o.bus, s.Base+SLICE_DIG_DIV, sliceDiv, d.DigDiv)
	o.bus.Write32(s.Base+SLICE_PTR_INIT, sliceWrPtrInit.Put(sliceRdPtrInit.Put(0, d.RdPtrInit), d.WrPtrInit))
}

// plls returns the CLKPLL followed by both RF-PLLs of t.
func (o *Orchestrator) plls(t *Tile, clkPll uintptr) []uintptr {
	return []uintptr{clkPll, t.RFPLL[0], t.RFPLL[1]}
}

func (o *Orchestrator) setMCSEnable(t *Tile, on bool) {
	in, ok := o.clk.Lookup(t.Base)
	if !ok {
		return
	}
	for _, p := range o.plls(t, in.PLLBase()) {
		mmio.UpdateBits(o.bus, p+clk.PLL_MCS_CTL, clk.PLL_MCS_EN, on)
	}
}

// wait polls the tile's MCS status until every PLL reports its expected code
// or the timeout elapses.
func (o *Orchestrator) wait(t *Tile) bool {
	in, ok := o.clk.Lookup(t.Base)
	if !ok {
		return false
	}
	to := timer.Start(o.t, o.cfg.Timeout)
	var st uint32
	for {
		st = o.bus.Read32(in.CoreBase() + clk.CORE_MCS_STATUS)
		if clk.MCSStatusPLL.Get(st) == t.ExpectPLL &&
			clk.MCSStatusRF0.Get(st) == t.ExpectRFPLL &&
			clk.MCSStatusRF1.Get(st) == t.ExpectRFPLL {
			log.Printf("debug", "mcs: tile %08X synchronized after %v", t.Base, to.Since())
			return true
		}
		if to.Elapsed() {
			break
		}
		o.t.Delay(o.cfg.PollInterval)
	}
	log.Printf("err", "mcs: tile %08X wait timed out after %v, status %08X", t.Base, to.Since(), st)
	return false
}
