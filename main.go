package main

import (
	"fmt"
	"github.com/Jon-Bright/clkctl/board"
	"github.com/Jon-Bright/clkctl/clk"
	"github.com/Jon-Bright/clkctl/mcs"
	"github.com/Jon-Bright/clkctl/mmio"
	"github.com/Jon-Bright/clkctl/timer"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
	"os"
)

const usage = "usage: clkctl [-sim] [-dual] [-bypass] [-v] [-devclk HZ] [-clkpll N] [-orx N] " +
	"[-clock ID] [-source SRC] [-hz HZ] [-ddr HZ] mcs|verify|freq|set|switch|ddr"

const defaultDevClkHz = 245760000

type options struct {
	sim     bool
	dual    bool
	bypass  bool
	verbose bool

	devClkHz uint64
	clkPll   mcs.ClkPllSetting
	orx      mcs.OrxAdcSetting
	clock    clk.ClockId
	source   clk.ClockSource // SourceNone means the tile's current source
	hz       uint64
	ddrHz    uint64

	cmd string
}

func parseUint(parm *parms.Parms, name string, v *uint64) error {
	s := parm.ByName[name]
	if len(s) == 0 {
		return nil
	}
	if _, err := fmt.Sscan(s, v); err != nil {
		return fmt.Errorf("%s %q: %v", name, s, err)
	}
	return nil
}

func parseOptions(args []string) (*options, error) {
	flag, args := flags.New(args, "-sim", "-dual", "-bypass", "-v")
	parm, args := parms.New(args, "-devclk", "-clkpll", "-orx",
		"-clock", "-source", "-hz", "-ddr")

	o := &options{
		sim:      flag.ByName["-sim"],
		dual:     flag.ByName["-dual"],
		bypass:   flag.ByName["-bypass"],
		verbose:  flag.ByName["-v"],
		devClkHz: defaultDevClkHz,
		clock:    clk.Core,
		source:   clk.SourceNone,
	}
	switch len(args) {
	case 0:
		return nil, fmt.Errorf("missing command")
	case 1:
		o.cmd = args[0]
	default:
		return nil, fmt.Errorf("%v: unexpected", args[1:])
	}

	if err := parseUint(parm, "-devclk", &o.devClkHz); err != nil {
		return nil, err
	}
	if err := parseUint(parm, "-hz", &o.hz); err != nil {
		return nil, err
	}
	if err := parseUint(parm, "-ddr", &o.ddrHz); err != nil {
		return nil, err
	}
	var n uint64
	if err := parseUint(parm, "-clkpll", &n); err != nil {
		return nil, err
	}
	o.clkPll = mcs.ClkPllSetting(n)
	n = 0
	if err := parseUint(parm, "-orx", &n); err != nil {
		return nil, err
	}
	o.orx = mcs.OrxAdcSetting(n)

	if s := parm.ByName["-clock"]; len(s) > 0 {
		id, err := clk.ParseClockId(s)
		if err != nil {
			return nil, err
		}
		o.clock = id
	}
	if s := parm.ByName["-source"]; len(s) > 0 {
		src, err := clk.ParseClockSource(s)
		if err != nil {
			return nil, err
		}
		o.source = src
	}
	return o, nil
}

func openDevmem() (*mmio.Devmem, error) {
	d, err := mmio.OpenDevmem()
	if err != nil {
		return nil, err
	}
	ws := append(board.Primary.Windows(), board.Secondary.Windows()...)
	ws = append(ws, board.SysrefWindow())
	for _, w := range ws {
		if err := d.Map(w.Addr, w.Size); err != nil {
			d.Close()
			return nil, fmt.Errorf("couldn't map %08X: %v", w.Addr, err)
		}
	}
	return d, nil
}

func main() {
	o, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "clkctl: %v\n%s\n", err, usage)
		os.Exit(2)
	}
	if o.verbose {
		log.Tee(os.Stderr)
	}

	var bus mmio.Bus
	var t timer.Source
	if o.sim {
		bus = board.NewSim(board.Primary, board.Secondary)
		t = &timer.Fake{}
	} else {
		d, err := openDevmem()
		if err != nil {
			fmt.Fprintf(os.Stderr, "clkctl: couldn't open register windows: %v\n", err)
			os.Exit(1)
		}
		defer d.Close()
		bus = d
		t = timer.System()
	}

	if err := boot(o, bus, t, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "clkctl: %s: %v\n", o.cmd, err)
		os.Exit(1)
	}
}
