// Package board describes where the clock-generation tiles live on the SoC
// and drives the board-level collaborators of the MCS procedure.
package board

import (
	"github.com/Jon-Bright/clkctl/clk"
	"github.com/Jon-Bright/clkctl/mcs"
)

const (
	PRIMARY_OFFSET   = uintptr(0x18000000)
	SECONDARY_OFFSET = uintptr(0x1c000000)

	CLK_OFFSET    = uintptr(0x00290000)
	CORE_OFFSET   = uintptr(0x00280000)
	CLKPLL_OFFSET = uintptr(0x00291000)
	RFPLL0_OFFSET = uintptr(0x00292000)
	RFPLL1_OFFSET = uintptr(0x00293000)
	RX_OFFSET     = uintptr(0x00300000)
	TX_OFFSET     = uintptr(0x00310000)
	ORX_OFFSET    = uintptr(0x00320000)
	TXLB_OFFSET   = uintptr(0x00330000)
	SLICE_STRIDE  = uintptr(0x1000)

	SYSREF_GEN_BASE   = uintptr(0x20740000)
	SYSREF_GEN_CTL    = uintptr(0x000)
	SYSREF_GEN_STATUS = uintptr(0x004)

	SYSREF_GEN_EN      = 1 << 0
	SYSREF_GEN_RUNNING = 1 << 0

	// MCS_STATUS codes of a synchronized PLL.
	MCS_DONE_CLKPLL = 0x6
	MCS_DONE_RFPLL  = 0x5

	// Windows mapped for register access, each a block's worth.
	CLK_WINDOW   = 0x1000
	SLICE_WINDOW = 0x1000
)

// Tile is the register layout of one tile.
type Tile struct {
	Name string
	Base uintptr
	PLL  uintptr
	Core uintptr
	MCS  mcs.Tile
}

var (
	Primary   = layout("primary", PRIMARY_OFFSET, mcs.SelClkPll)
	Secondary = layout("secondary", SECONDARY_OFFSET, mcs.SelClkPllSecondary)
)

var sliceCounts = []struct {
	kind   mcs.SliceKind
	offset uintptr
	n      int
}{
	{mcs.Rx, RX_OFFSET, 4},
	{mcs.Tx, TX_OFFSET, 4},
	{mcs.Orx, ORX_OFFSET, 2},
	{mcs.TxLb, TXLB_OFFSET, 2},
}

func layout(name string, off uintptr, sel mcs.PLLSelect) Tile {
	t := Tile{
		Name: name,
		Base: off + CLK_OFFSET,
		PLL:  off + CLKPLL_OFFSET,
		Core: off + CORE_OFFSET,
	}
	t.MCS = mcs.Tile{
		Base:        t.Base,
		RFPLL:       [2]uintptr{off + RFPLL0_OFFSET, off + RFPLL1_OFFSET},
		PLL:         sel,
		ExpectPLL:   MCS_DONE_CLKPLL,
		ExpectRFPLL: MCS_DONE_RFPLL,
	}
	for _, sc := range sliceCounts {
		for i := 0; i < sc.n; i++ {
			t.MCS.Slices = append(t.MCS.Slices, mcs.Slice{Kind: sc.kind, Base: off + sc.offset + uintptr(i)*SLICE_STRIDE})
		}
	}
	return t
}

// Windows returns the register windows the tile's registers live in.
func (t *Tile) Windows() []Window {
	ws := []Window{
		{t.Base, CLK_WINDOW},
		{t.PLL, CLK_WINDOW},
		{t.Core, CLK_WINDOW},
		{t.MCS.RFPLL[0], CLK_WINDOW},
		{t.MCS.RFPLL[1], CLK_WINDOW},
	}
	for _, s := range t.MCS.Slices {
		ws = append(ws, Window{s.Base, SLICE_WINDOW})
	}
	return ws
}

type Window struct {
	Addr uintptr
	Size int
}

// Register adds the tile's clock instance to m. pre and post may be nil.
func (t *Tile) Register(m *clk.Manager, pre, post clk.Hook) error {
	return m.Register(t.Base, t.PLL, t.Core, pre, post)
}

// Config is the MCS configuration for this board's two tiles.
func Config() mcs.Config {
	return mcs.Config{
		Primary:   Primary.MCS,
		Secondary: Secondary.MCS,
	}
}
