package clk

import (
	"github.com/Jon-Bright/clkctl/mmio"
	"github.com/platinasystems/log"
)

// A source change is three calls: PreSwitch, Switch, PostSwitch. Each phase
// is complete on return; hardware may be left between phases but never
// within one. SetSource runs all three.

func (m *Manager) switchTarget(base uintptr, src ClockSource, phase string) (*Instance, error) {
	if !src.Valid() {
		log.Printf("warn", "clk: %s %08X to %v: %v", phase, base, src, ErrInvalidSource)
		return nil, ErrInvalidSource
	}
	in, ok := m.lookupOrWarn(base, phase)
	if !ok {
		return nil, ErrNotRegistered
	}
	return in, nil
}

// PreSwitch gates the OTP interface clock, which must not be accessed while
// the source changes, then runs the pre-switch hook.
func (m *Manager) PreSwitch(base uintptr, src ClockSource) error {
	in, err := m.switchTarget(base, src, "pre-switch")
	if err != nil {
		return err
	}
	mmio.ClearBits(m.bus, base+CLK_OTP_CLK_CTL, CLK_OTP_CLK_EN)
	if in.pre != nil {
		in.pre.Call()
	}
	return nil
}

// Switch writes the source select. useDevClk keeps DevClk physically active
// until the MCS sync pulse and is only meaningful when switching to ClkPll;
// asking for it with any other source panics.
func (m *Manager) Switch(base uintptr, src ClockSource, useDevClk bool) error {
	if useDevClk && src != ClkPll {
		panic("clk: devclk override requested for " + src.String())
	}
	_, err := m.switchTarget(base, src, "switch")
	if err != nil {
		return err
	}
	sel := m.bus.Read32(base+CLK_SW_SEL) &^ (CLK_SW_SEL_SOURCE_MASK | CLK_SW_SEL_MCS_DEVCLK)
	switch src {
	case Rosc:
		// The ring oscillator needs at least 12ns before it can be selected.
		mmio.SetBits(m.bus, base+CLK_ROSC_CTL, CLK_ROSC_EN)
		m.t.Delay(roscSettle)
		sel |= CLK_SW_SEL_ROSC
	case DevClk:
		sel |= CLK_SW_SEL_DEVCLK
	}
	if useDevClk {
		sel |= CLK_SW_SEL_MCS_DEVCLK
	}
	// The switch logic runs asynchronously to the core and must see this
	// write in program order.
	m.bus.WriteOrdered32(base+CLK_SW_SEL, sel)
	log.Printf("debug", "clk: %08X switched to %v, devclk override %v", base, src, useDevClk)
	return nil
}

// PostSwitch ungates the OTP clock, stops the ring oscillator unless it's
// the new source, retunes the eMMC/SD card clocks and runs the post-switch
// hook.
func (m *Manager) PostSwitch(base uintptr, src ClockSource) error {
	in, err := m.switchTarget(base, src, "post-switch")
	if err != nil {
		return err
	}
	mmio.SetBits(m.bus, base+CLK_OTP_CLK_CTL, CLK_OTP_CLK_EN)
	if src != Rosc {
		mmio.ClearBits(m.bus, base+CLK_ROSC_CTL, CLK_ROSC_EN)
	}
	v := m.bus.Read32(base + CLK_EMMC_CLK_CTL)
	v |= CLK_EMMC_AHB_EN | CLK_SD_AHB_EN
	v = emmcCardDiv.Put(v, emmcDividers[src])
	v = sdCardDiv.Put(v, emmcDividers[src])
	m.bus.Write32(base+CLK_EMMC_CLK_CTL, v)
	if in.post != nil {
		in.post.Call()
	}
	return nil
}

// SetSource switches base to src with all three phases.
func (m *Manager) SetSource(base uintptr, src ClockSource) error {
	if err := m.PreSwitch(base, src); err != nil {
		return err
	}
	if err := m.Switch(base, src, false); err != nil {
		return err
	}
	return m.PostSwitch(base, src)
}
