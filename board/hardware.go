package board

import (
	"errors"
	"fmt"
	"github.com/Jon-Bright/clkctl/clk"
	"github.com/Jon-Bright/clkctl/mcs"
	"github.com/Jon-Bright/clkctl/mmio"
	"github.com/Jon-Bright/clkctl/timer"
	"github.com/platinasystems/log"
	"time"
)

const DefaultLockTimeout = 10 * time.Millisecond

var ErrNoRefClk = errors.New("reference clock frequency unknown")

// Hardware is the platform and PLL driver for boards whose CLKPLLs were
// calibrated by the boot ROM: power init only checks the reference clock and
// programming waits for lock. SYSREF comes from the board's generator block.
type Hardware struct {
	Bus         mmio.Bus
	T           timer.Source
	Simulation  bool
	LockTimeout time.Duration
}

var _ mcs.PLLDriver = (*Hardware)(nil)
var _ mcs.Platform = (*Hardware)(nil)

func (h *Hardware) lockTimeout() time.Duration {
	if h.LockTimeout == 0 {
		return DefaultLockTimeout
	}
	return h.LockTimeout
}

func (h *Hardware) PowerInit(pllBase, coreBase uintptr, vcoHz, refHz uint64, sel mcs.PLLSelect) error {
	if refHz == 0 {
		return ErrNoRefClk
	}
	if vcoHz%refHz != 0 {
		return fmt.Errorf("vco %d Hz isn't a multiple of the %d Hz reference", vcoHz, refHz)
	}
	log.Printf("debug", "board: pll %08X (%d) vco %d Hz, ref %d Hz, N %d", pllBase, sel, vcoHz, refHz, vcoHz/refHz)
	mmio.SetBits(h.Bus, pllBase+clk.PLL_REF_DIV, clk.PLL_REF_EN)
	return nil
}

func (h *Hardware) Program(pllBase uintptr, sel mcs.PLLSelect) error {
	to := timer.Start(h.T, h.lockTimeout())
	for h.Bus.Read32(pllBase+clk.PLL_STATUS)&clk.PLL_LOCK == 0 {
		if to.Elapsed() {
			return fmt.Errorf("pll %08X (%d) didn't lock within %v", pllBase, sel, h.lockTimeout())
		}
		h.T.Delay(10 * time.Microsecond)
	}
	log.Printf("debug", "board: pll %08X locked after %v", pllBase, to.Since())
	return nil
}

func (h *Hardware) IsSimulation() bool {
	return h.Simulation
}

func (h *Hardware) waitSysref(running bool) bool {
	to := timer.Start(h.T, h.lockTimeout())
	for (h.Bus.Read32(SYSREF_GEN_BASE+SYSREF_GEN_STATUS)&SYSREF_GEN_RUNNING != 0) != running {
		if to.Elapsed() {
			return false
		}
		h.T.Delay(10 * time.Microsecond)
	}
	return true
}

func (h *Hardware) SysrefEnable() bool {
	h.Bus.Write32(SYSREF_GEN_BASE+SYSREF_GEN_CTL, SYSREF_GEN_EN)
	if !h.waitSysref(true) {
		log.Print("err", "board: sysref generator didn't start")
		return false
	}
	return true
}

func (h *Hardware) SysrefDisable(primaryOK bool) bool {
	h.Bus.Write32(SYSREF_GEN_BASE+SYSREF_GEN_CTL, 0)
	if !h.waitSysref(false) {
		log.Printf("err", "board: sysref generator didn't stop, primary mcs ok %v", primaryOK)
		return false
	}
	log.Printf("debug", "board: sysref stopped, primary mcs ok %v", primaryOK)
	return true
}

// SysrefWindow is the generator's register window.
func SysrefWindow() Window {
	return Window{SYSREF_GEN_BASE, CLK_WINDOW}
}
