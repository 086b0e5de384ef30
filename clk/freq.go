package clk

import (
	"github.com/Jon-Bright/clkctl/mmio"
	"github.com/Jon-Bright/clkctl/timer"
	"github.com/platinasystems/log"
)

// Manager owns the registry and drives the clock registers of every
// registered instance.
type Manager struct {
	Registry
	bus mmio.Bus
	t   timer.Source
}

func NewManager(bus mmio.Bus, t timer.Source) *Manager {
	return &Manager{bus: bus, t: t}
}

func (m *Manager) Bus() mmio.Bus       { return m.bus }
func (m *Manager) Timer() timer.Source { return m.t }

// hsdig returns the high-speed digital clock for src, 0 if unknown. The
// CLKPLL path is assumed to have been set up by the legacy PLL driver to give
// exactly 983.04 MHz, so the cached CLKPLL frequency isn't used here.
func (m *Manager) hsdig(in *Instance, src ClockSource) uint64 {
	hz := in.srcHz[src]
	if hz == 0 {
		return 0
	}
	if src == ClkPll {
		return hsdigClkPllHz
	}
	return hz
}

// Frequency returns what clock id receives on base when fed from src. Any
// combination that can't be derived gives 0.
func (m *Manager) Frequency(base uintptr, id ClockId, src ClockSource) uint64 {
	in, ok := m.lookupOrWarn(base, "frequency")
	if !ok {
		return 0
	}
	if !src.Valid() {
		log.Printf("warn", "clk: frequency of %v on %08X: %v", id, base, ErrInvalidSource)
		return 0
	}
	if id == Ddr {
		return m.ddrFrequency(in, src)
	}
	hsdig := m.hsdig(in, src)
	if hsdig == 0 {
		log.Printf("warn", "clk: %v frequency on %08X unknown, can't derive %v", src, base, id)
		return 0
	}
	switch id {
	case Core:
		return hsdig >> mmio.ReadField(m.bus, base+CLK_CORE_DIV, divField(src))
	case Sysclk:
		return m.sysclk(in, src, hsdig)
	case HighSpeedDigital:
		return hsdig
	case Timer:
		return hsdig / TIMER_DIV
	case Watchdog:
		return m.sysclk(in, src, hsdig) / WATCHDOG_DIV
	case Emmc:
		return hsdig / uint64(emmcDividers[src]+1)
	}
	log.Printf("warn", "clk: %v isn't a clock", id)
	return 0
}

func (m *Manager) sysclk(in *Instance, src ClockSource, hsdig uint64) uint64 {
	return hsdig >> mmio.ReadField(m.bus, in.base+CLK_SYSCLK_DIV, divField(src))
}

func (m *Manager) ddrFrequency(in *Instance, src ClockSource) uint64 {
	if src != ClkPll {
		log.Printf("warn", "clk: ddr on %08X only runs from clkpll, not %v", in.base, src)
		return 0
	}
	v := m.bus.Read32(in.pllBase + PLL_DDR_DIV)
	hz := ddrHzByDividers(pllDDRDiv1.Get(v), pllDDRDiv2.Get(v), in.ddrHz)
	if hz == 0 {
		log.Printf("warn", "clk: ddr dividers %d/%d on %08X match no operating point at %d Hz",
			pllDDRDiv1.Get(v), pllDDRDiv2.Get(v), in.base, in.ddrHz)
	}
	return hz
}

// SetFrequency programs the Core or Sysclk divider for src so that the clock
// doesn't exceed hz. The divider is a power of two: the result is the first
// halving of HSDIG at or below hz, not the closest achievable frequency.
// At most 7 halvings fit the field, so targets below HSDIG/128 get HSDIG/128.
func (m *Manager) SetFrequency(base uintptr, id ClockId, hz uint64, src ClockSource) {
	in, ok := m.lookupOrWarn(base, "set frequency")
	if !ok {
		return
	}
	if !src.Valid() {
		log.Printf("warn", "clk: set %v on %08X: %v", id, base, ErrInvalidSource)
		return
	}
	var reg uintptr
	switch id {
	case Core:
		reg = CLK_CORE_DIV
	case Sysclk:
		reg = CLK_SYSCLK_DIV
	default:
		log.Printf("warn", "clk: %v frequency can't be set", id)
		return
	}
	hsdig := m.hsdig(in, src)
	if hsdig == 0 {
		log.Printf("warn", "clk: %v frequency on %08X unknown, can't set %v", src, base, id)
		return
	}
	f := divField(src)
	w := hsdig
	n := uint32(0)
	for w > hz && n < f.Max() {
		w >>= 1
		n++
	}
	if w > hz {
		log.Printf("warn", "clk: %v can't go below %d Hz on %08X, wanted %d Hz", id, w, base, hz)
	}
	mmio.WriteField(m.bus, base+reg, f, n)
	log.Printf("debug", "clk: %08X %v on %v divided by %d, %d Hz", base, id, src, 1<<n, w)
}

// SetDDRFrequency programs the DDR dividers for one of the characterized
// operating points. Anything else is ignored.
func (m *Manager) SetDDRFrequency(base uintptr, hz uint64) {
	in, ok := m.lookupOrWarn(base, "set ddr frequency")
	if !ok {
		return
	}
	d, ok := ddrDividerByHz(hz)
	if !ok {
		log.Printf("warn", "clk: %d Hz isn't a ddr operating point", hz)
		return
	}
	v := m.bus.Read32(in.pllBase + PLL_DDR_DIV)
	v = pllDDRDiv1.Put(v, d.Div1)
	v = pllDDRDiv2.Put(v, d.Div2)
	m.bus.Write32(in.pllBase+PLL_DDR_DIV, v)
	in.ddrHz = hz
	log.Printf("debug", "clk: %08X ddr %d Hz, dividers %d/%d", base, hz, d.Div1, d.Div2)
}

// EnableClock gates a consumer clock. Only Ddr can be gated: its divider in
// the digital core is enabled and allowed to settle, then the DDR
// controller's clock enables are set or cleared.
func (m *Manager) EnableClock(base uintptr, id ClockId, on bool) {
	in, ok := m.lookupOrWarn(base, "enable clock")
	if !ok {
		return
	}
	if id != Ddr {
		log.Printf("warn", "clk: %v can't be enabled or disabled", id)
		return
	}
	mmio.SetBits(m.bus, in.coreBase+CORE_DDR_DIV_CTL, CORE_DDR_DIV_EN)
	m.t.Delay(ddrDivSettle)
	mmio.UpdateBits(m.bus, base+CLK_DDR_CLK_CTL, CLK_DDR_CLK_EN_ALL, on)
}

// Source returns the active upstream source of base.
func (m *Manager) Source(base uintptr) ClockSource {
	if _, ok := m.lookupOrWarn(base, "source"); !ok {
		return SourceNone
	}
	switch m.bus.Read32(base+CLK_SW_SEL) & CLK_SW_SEL_SOURCE_MASK {
	case 0:
		return ClkPll
	case CLK_SW_SEL_ROSC:
		return Rosc
	case CLK_SW_SEL_DEVCLK:
		return DevClk
	}
	log.Printf("warn", "clk: %08X selects both rosc and devclk", base)
	return SourceNone
}
