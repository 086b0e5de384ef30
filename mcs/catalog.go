package mcs

import (
	"fmt"
)

// ClkPllSetting selects the CLKPLL VCO operating point.
type ClkPllSetting uint8

const (
	ClkPll7G ClkPllSetting = iota
	ClkPll11G
)

func (s ClkPllSetting) String() string {
	switch s {
	case ClkPll7G:
		return "clkpll-7g"
	case ClkPll11G:
		return "clkpll-11g"
	}
	return fmt.Sprintf("clkpll(%d)", uint8(s))
}

// OrxAdcSetting selects the observation receiver ADC rate.
type OrxAdcSetting uint8

const (
	OrxAdc7G OrxAdcSetting = iota
	OrxAdc3G
)

func (s OrxAdcSetting) String() string {
	switch s {
	case OrxAdc7G:
		return "orx-7g"
	case OrxAdc3G:
		return "orx-3g"
	}
	return fmt.Sprintf("orx(%d)", uint8(s))
}

// SliceDividers are the clock-generation parameters of one data-path slice
// kind.
type SliceDividers struct {
	ClkDiv    uint32
	ConvDiv   uint32
	DigDiv    uint32
	RdPtrInit uint32
	WrPtrInit uint32
}

// TileConfig is one characterized set of divider and pointer-init
// parameters used to prepare a tile for synchronization.
type TileConfig struct {
	ClkPll     ClkPllSetting
	OrxAdc     OrxAdcSetting
	ClkPllHz   uint64
	RefClkDiv  uint32 // log2 of the CLKPLL reference divider
	RootClkDiv uint32 // digital-core root divider minus one
	Rx         SliceDividers
	Tx         SliceDividers
	Orx        SliceDividers
	TxLb       SliceDividers
}

func (c *TileConfig) dividers(k SliceKind) SliceDividers {
	switch k {
	case Rx:
		return c.Rx
	case Tx:
		return c.Tx
	case Orx:
		return c.Orx
	}
	return c.TxLb
}

var catalog = [...]TileConfig{
	{
		ClkPll:     ClkPll7G,
		OrxAdc:     OrxAdc7G,
		ClkPllHz:   7864320000,
		RefClkDiv:  0,
		RootClkDiv: 7,
		Rx:         SliceDividers{ClkDiv: 2, ConvDiv: 1, DigDiv: 3, RdPtrInit: 0x04, WrPtrInit: 0x00},
		Tx:         SliceDividers{ClkDiv: 2, ConvDiv: 1, DigDiv: 3, RdPtrInit: 0x00, WrPtrInit: 0x04},
		Orx:        SliceDividers{ClkDiv: 0, ConvDiv: 0, DigDiv: 2, RdPtrInit: 0x06, WrPtrInit: 0x00},
		TxLb:       SliceDividers{ClkDiv: 2, ConvDiv: 1, DigDiv: 3, RdPtrInit: 0x04, WrPtrInit: 0x00},
	},
	{
		ClkPll:     ClkPll7G,
		OrxAdc:     OrxAdc3G,
		ClkPllHz:   7864320000,
		RefClkDiv:  0,
		RootClkDiv: 7,
		Rx:         SliceDividers{ClkDiv: 2, ConvDiv: 1, DigDiv: 3, RdPtrInit: 0x04, WrPtrInit: 0x00},
		Tx:         SliceDividers{ClkDiv: 2, ConvDiv: 1, DigDiv: 3, RdPtrInit: 0x00, WrPtrInit: 0x04},
		Orx:        SliceDividers{ClkDiv: 1, ConvDiv: 1, DigDiv: 3, RdPtrInit: 0x05, WrPtrInit: 0x00},
		TxLb:       SliceDividers{ClkDiv: 2, ConvDiv: 1, DigDiv: 3, RdPtrInit: 0x04, WrPtrInit: 0x00},
	},
	{
		ClkPll:     ClkPll11G,
		OrxAdc:     OrxAdc7G,
		ClkPllHz:   11796480000,
		RefClkDiv:  1,
		RootClkDiv: 11,
		Rx:         SliceDividers{ClkDiv: 3, ConvDiv: 2, DigDiv: 4, RdPtrInit: 0x05, WrPtrInit: 0x00},
		Tx:         SliceDividers{ClkDiv: 3, ConvDiv: 2, DigDiv: 4, RdPtrInit: 0x00, WrPtrInit: 0x05},
		Orx:        SliceDividers{ClkDiv: 1, ConvDiv: 0, DigDiv: 3, RdPtrInit: 0x07, WrPtrInit: 0x00},
		TxLb:       SliceDividers{ClkDiv: 3, ConvDiv: 2, DigDiv: 4, RdPtrInit: 0x05, WrPtrInit: 0x00},
	},
	{
		ClkPll:     ClkPll11G,
		OrxAdc:     OrxAdc3G,
		ClkPllHz:   11796480000,
		RefClkDiv:  1,
		RootClkDiv: 11,
		Rx:         SliceDividers{ClkDiv: 3, ConvDiv: 2, DigDiv: 4, RdPtrInit: 0x05, WrPtrInit: 0x00},
		Tx:         SliceDividers{ClkDiv: 3, ConvDiv: 2, DigDiv: 4, RdPtrInit: 0x00, WrPtrInit: 0x05},
		Orx:        SliceDividers{ClkDiv: 2, ConvDiv: 1, DigDiv: 4, RdPtrInit: 0x06, WrPtrInit: 0x00},
		TxLb:       SliceDividers{ClkDiv: 3, ConvDiv: 2, DigDiv: 4, RdPtrInit: 0x05, WrPtrInit: 0x00},
	},
}

// Lookup finds the catalog row for a setting pair. The row is a copy; the
// catalog itself can't be changed.
func Lookup(cp ClkPllSetting, orx OrxAdcSetting) (*TileConfig, bool) {
	for _, c := range catalog {
		if c.ClkPll == cp && c.OrxAdc == orx {
			return &c, true
		}
	}
	return nil, false
}

// Verify reports whether a setting pair is characterized.
func Verify(cp ClkPllSetting, orx OrxAdcSetting) bool {
	_, ok := Lookup(cp, orx)
	return ok
}
