package board

import (
	"github.com/Jon-Bright/clkctl/clk"
	"github.com/Jon-Bright/clkctl/mmio"
	"github.com/platinasystems/log"
)

// Sim is a register-level model of the board for running without hardware.
// Tiles come up on devclk, a CLKPLL locks once its reference is enabled, and
// a SYSREF pulse synchronizes every armed tile that isn't Stuck.
type Sim struct {
	*mmio.Mem
	Tiles []Tile

	Stuck             [2]bool // tile never reports synchronization
	FailSysrefEnable  bool    // generator never starts
	FailSysrefDisable bool    // generator never stops
	Pulses            int
}

func NewSim(tiles ...Tile) *Sim {
	s := &Sim{Mem: mmio.NewMem(), Tiles: tiles}
	for i := range tiles {
		t := &s.Tiles[i]
		s.Poke(t.Base+clk.CLK_SW_SEL, clk.CLK_SW_SEL_DEVCLK)
		for _, p := range []uintptr{t.PLL, t.MCS.RFPLL[0], t.MCS.RFPLL[1]} {
			s.lockOnRefEn(p)
		}
	}
	s.OnWrite(SYSREF_GEN_BASE+SYSREF_GEN_CTL, s.sysrefCtl)
	return s
}

func (s *Sim) lockOnRefEn(pll uintptr) {
	s.OnRead(pll+clk.PLL_STATUS, func(stored uint32) uint32 {
		if s.Peek(pll+clk.PLL_REF_DIV)&clk.PLL_REF_EN != 0 {
			return stored | clk.PLL_LOCK
		}
		return stored &^ clk.PLL_LOCK
	})
}

func (s *Sim) armed(t *Tile) bool {
	if s.Peek(t.Core+clk.CORE_MCS_SYNC_CTL)&clk.CORE_CLKGEN_SYNC_EN == 0 {
		return false
	}
	for _, p := range []uintptr{t.PLL, t.MCS.RFPLL[0], t.MCS.RFPLL[1]} {
		if s.Peek(p+clk.PLL_MCS_CTL)&clk.PLL_MCS_EN == 0 {
			return false
		}
	}
	return true
}

func (s *Sim) sysrefCtl(val uint32) {
	st := SYSREF_GEN_BASE + SYSREF_GEN_STATUS
	if val&SYSREF_GEN_EN == 0 {
		if !s.FailSysrefDisable {
			s.Poke(st, 0)
		}
		return
	}
	if s.FailSysrefEnable {
		return
	}
	s.Poke(st, SYSREF_GEN_RUNNING)
	s.Pulses++
	for i := range s.Tiles {
		t := &s.Tiles[i]
		if !s.armed(t) {
			continue
		}
		if i < len(s.Stuck) && s.Stuck[i] {
			log.Printf("debug", "sim: %s tile stuck", t.Name)
			continue
		}
		v := clk.MCSStatusPLL.Put(0, t.MCS.ExpectPLL)
		v = clk.MCSStatusRF0.Put(v, t.MCS.ExpectRFPLL)
		v = clk.MCSStatusRF1.Put(v, t.MCS.ExpectRFPLL)
		s.Poke(t.Core+clk.CORE_MCS_STATUS, v)
	}
}
