package clk

// DDRDivider is one characterized DDR operating point. Distinct frequencies
// may share a divider pair: the analog divider can't tell them apart, so the
// frequency is recovered from what was last requested.
type DDRDivider struct {
	Hz   uint64
	Div1 uint32
	Div2 uint32
}

var ddrDividers = [...]DDRDivider{
	{1600000000, 2, 0},
	{1400000000, 2, 0},
	{1200000000, 3, 0},
	{1066000000, 3, 0},
	{800000000, 2, 1},
	{600000000, 3, 1},
	{533000000, 3, 1},
}

// DDRDividers returns a copy of the DDR operating point catalog.
func DDRDividers() []DDRDivider {
	ds := make([]DDRDivider, len(ddrDividers))
	copy(ds, ddrDividers[:])
	return ds
}

func ddrDividerByHz(hz uint64) (DDRDivider, bool) {
	for _, d := range ddrDividers {
		if d.Hz == hz {
			return d, true
		}
	}
	return DDRDivider{}, false
}

// ddrHzByDividers needs both the divider pair and the recorded frequency to
// match, since the pair alone is ambiguous.
func ddrHzByDividers(div1, div2 uint32, recorded uint64) uint64 {
	for _, d := range ddrDividers {
		if d.Div1 == div1 && d.Div2 == div2 && d.Hz == recorded {
			return d.Hz
		}
	}
	return 0
}
