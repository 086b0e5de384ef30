package main

import (
	"fmt"
	"github.com/Jon-Bright/clkctl/board"
	"github.com/Jon-Bright/clkctl/clk"
	"github.com/Jon-Bright/clkctl/mcs"
	"github.com/Jon-Bright/clkctl/mmio"
	"github.com/Jon-Bright/clkctl/timer"
	"github.com/platinasystems/log"
	"io"
)

// boot registers both tiles, tells them the devclk frequency and runs the
// command in o. Results are written to w.
func boot(o *options, bus mmio.Bus, t timer.Source, w io.Writer) error {
	m := clk.NewManager(bus, t)
	for _, tile := range []board.Tile{board.Primary, board.Secondary} {
		if err := tile.Register(m, nil, nil); err != nil {
			return fmt.Errorf("couldn't register %s tile: %v", tile.Name, err)
		}
		m.NotifySourceFrequency(tile.Base, clk.DevClk, o.devClkHz)
	}

	tiles := o.tiles()
	switch o.cmd {
	case "mcs":
		return runMCS(o, m, bus, t, w)
	case "verify":
		ok := mcs.Verify(o.clkPll, o.orx)
		fmt.Fprintf(w, "%v/%v characterized: %v\n", o.clkPll, o.orx, ok)
		if !ok {
			return mcs.ErrNoConfig
		}
		return nil
	case "freq":
		for _, tile := range tiles {
			printFrequency(w, m, &tile, o.clock, o.sourceOf(m, &tile))
		}
		return nil
	case "set":
		if o.clock != clk.Core && o.clock != clk.Sysclk {
			return fmt.Errorf("%v can't be set", o.clock)
		}
		for _, tile := range tiles {
			src := o.sourceOf(m, &tile)
			m.SetFrequency(tile.Base, o.clock, o.hz, src)
			printFrequency(w, m, &tile, o.clock, src)
		}
		return nil
	case "switch":
		if !o.source.Valid() {
			return fmt.Errorf("switch needs -source")
		}
		for _, tile := range tiles {
			if err := m.SetSource(tile.Base, o.source); err != nil {
				return fmt.Errorf("couldn't switch %s tile: %v", tile.Name, err)
			}
			fmt.Fprintf(w, "%s: %v\n", tile.Name, m.Source(tile.Base))
		}
		return nil
	case "ddr":
		for _, tile := range tiles {
			m.SetDDRFrequency(tile.Base, o.ddrHz)
			m.EnableClock(tile.Base, clk.Ddr, true)
			hz := m.Frequency(tile.Base, clk.Ddr, clk.ClkPll)
			if hz == 0 {
				return fmt.Errorf("%d Hz isn't a supported ddr frequency", o.ddrHz)
			}
			fmt.Fprintf(w, "%s ddr: %d Hz\n", tile.Name, hz)
		}
		return nil
	}
	return fmt.Errorf("unknown command %q", o.cmd)
}

func (o *options) tiles() []board.Tile {
	if o.dual {
		return []board.Tile{board.Primary, board.Secondary}
	}
	return []board.Tile{board.Primary}
}

func (o *options) sourceOf(m *clk.Manager, tile *board.Tile) clk.ClockSource {
	if o.source.Valid() {
		return o.source
	}
	return m.Source(tile.Base)
}

func printFrequency(w io.Writer, m *clk.Manager, tile *board.Tile, id clk.ClockId, src clk.ClockSource) {
	fmt.Fprintf(w, "%s %v/%v: %d Hz\n", tile.Name, id, src, m.Frequency(tile.Base, id, src))
}

func runMCS(o *options, m *clk.Manager, bus mmio.Bus, t timer.Source, w io.Writer) error {
	hw := &board.Hardware{Bus: bus, T: t, Simulation: o.sim}
	orch := mcs.New(m, hw, hw, board.Config())
	err := orch.Run(o.dual, o.clkPll, o.orx, o.bypass)
	r := orch.LastResult()
	if err != nil {
		log.Printf("err", "boot: mcs %v/%v: %v", o.clkPll, o.orx, err)
		return err
	}
	fmt.Fprintf(w, "mcs %v/%v dual %v bypass %v: ok\n", o.clkPll, o.orx, r.Dual, r.Bypass)
	for _, tile := range o.tiles() {
		printFrequency(w, m, &tile, clk.HighSpeedDigital, m.Source(tile.Base))
	}
	return nil
}
