package clk

import (
	"github.com/Jon-Bright/clkctl/mmio"
	"time"
)

// Clock block, relative to the instance base.
const (
	CLK_SW_SEL       = uintptr(0x000)
	CLK_ROSC_CTL     = uintptr(0x004)
	CLK_OTP_CLK_CTL  = uintptr(0x008)
	CLK_CORE_DIV     = uintptr(0x010)
	CLK_SYSCLK_DIV   = uintptr(0x014)
	CLK_EMMC_CLK_CTL = uintptr(0x020)
	CLK_DDR_CLK_CTL  = uintptr(0x030)

	CLK_SW_SEL_ROSC        = 1 << 0
	CLK_SW_SEL_DEVCLK      = 1 << 1
	CLK_SW_SEL_MCS_DEVCLK  = 1 << 4 // keep DevClk until the MCS sync pulse
	CLK_ROSC_EN            = 1 << 0
	CLK_OTP_CLK_EN         = 1 << 0
	CLK_EMMC_AHB_EN        = 1 << 0
	CLK_SD_AHB_EN          = 1 << 1
	CLK_DDR_CTL_CLK_EN     = 1 << 0
	CLK_DDR_PHY_CLK_EN     = 1 << 1
	CLK_DDR_AXI_CLK_EN     = 1 << 2
	CLK_DDR_CLK_EN_ALL     = CLK_DDR_CTL_CLK_EN | CLK_DDR_PHY_CLK_EN | CLK_DDR_AXI_CLK_EN
	CLK_SW_SEL_SOURCE_MASK = CLK_SW_SEL_ROSC | CLK_SW_SEL_DEVCLK
)

// Digital-core block, relative to the instance core base.
const (
	CORE_REFCLK_DIST  = uintptr(0x000)
	CORE_ROOT_CLK_DIV = uintptr(0x004)
	CORE_DDR_DIV_CTL  = uintptr(0x008)
	CORE_SYSREF_CTL   = uintptr(0x00c)
	CORE_MCS_STATUS   = uintptr(0x010)
	CORE_MCS_SYNC_CTL = uintptr(0x014)

	CORE_SCALED_REFCLK_EN = 1 << 0
	CORE_DDR_DIV_EN       = 1 << 0
	CORE_EXT_SYSREF_EN    = 1 << 0
	CORE_CLKGEN_SYNC_EN   = 1 << 0
)

// PLL block, relative to a PLL base. PLL_DDR_DIV only exists on the CLKPLL.
const (
	PLL_REF_DIV = uintptr(0x000)
	PLL_DDR_DIV = uintptr(0x004)
	PLL_MCS_CTL = uintptr(0x008)
	PLL_STATUS  = uintptr(0x00c)

	PLL_REF_EN          = 1 << 4
	PLL_MCS_EN          = 1 << 0
	PLL_MCS_DIV_SYNC_EN = 1 << 1
	PLL_MCS_RESET       = 1 << 2
	PLL_LOCK            = 1 << 0
)

var (
	emmcCardDiv   = mmio.Field{Shift: 8, Width: 3}
	sdCardDiv     = mmio.Field{Shift: 12, Width: 3}
	pllDDRDiv1    = mmio.Field{Shift: 0, Width: 2}
	pllDDRDiv2    = mmio.Field{Shift: 2, Width: 2}
	PLLRefDiv     = mmio.Field{Shift: 0, Width: 4}
	RootClkDiv    = mmio.Field{Shift: 0, Width: 4}
	MCSStatusPLL  = mmio.Field{Shift: 0, Width: 4}
	MCSStatusRF0  = mmio.Field{Shift: 4, Width: 4}
	MCSStatusRF1  = mmio.Field{Shift: 8, Width: 4}
	emmcDividers  = [NumSources]uint32{Rosc: 0, DevClk: 1, ClkPll: 4}
	roscSettle    = time.Microsecond
	ddrDivSettle  = 10 * time.Microsecond
	hsdigClkPllHz = uint64(983040000)
)

const (
	TIMER_DIV    = 32
	WATCHDOG_DIV = 32
)

// divField returns the log2 divider field for src in CORE_DIV or SYSCLK_DIV.
func divField(src ClockSource) mmio.Field {
	return mmio.Field{Shift: 4 * uint(src), Width: 3}
}
