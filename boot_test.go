package main

import (
	"bytes"
	"github.com/Jon-Bright/clkctl/board"
	"github.com/Jon-Bright/clkctl/clk"
	"github.com/Jon-Bright/clkctl/mcs"
	"github.com/Jon-Bright/clkctl/timer"
	"github.com/platinasystems/log"
	"io/ioutil"
	"os"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	log.Tee(ioutil.Discard)
	os.Exit(m.Run())
}

func TestParseOptions(t *testing.T) {
	o, err := parseOptions(strings.Fields("-sim -dual -devclk 100000000 -clkpll 1 -orx=1 -clock sysclk -source devclk freq"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !o.sim || !o.dual || o.bypass || o.verbose {
		t.Errorf("flags, got: %+v", o)
	}
	if o.devClkHz != 100000000 || o.clkPll != mcs.ClkPll11G || o.orx != mcs.OrxAdc3G {
		t.Errorf("parms, got: devclk %d, clkpll %v, orx %v", o.devClkHz, o.clkPll, o.orx)
	}
	if o.clock != clk.Sysclk || o.source != clk.DevClk || o.cmd != "freq" {
		t.Errorf("got: clock %v, source %v, cmd %q", o.clock, o.source, o.cmd)
	}

	o, err = parseOptions([]string{"mcs"})
	if err != nil {
		t.Fatalf("parse defaults: %v", err)
	}
	if o.devClkHz != defaultDevClkHz || o.clock != clk.Core || o.source != clk.SourceNone {
		t.Errorf("defaults, got: %+v", o)
	}

	bad := []string{
		"",
		"freq mcs",
		"-hz lots set",
		"-clock gpu freq",
		"-source pll switch",
	}
	for _, args := range bad {
		if _, err := parseOptions(strings.Fields(args)); err == nil {
			t.Errorf("%q: parsed without error", args)
		}
	}
}

func TestBootSim(t *testing.T) {
	tests := []struct {
		args    string
		want    []string
		wantErr bool
	}{
		{"freq", []string{"primary core/devclk: 245760000 Hz"}, false},
		{"-dual -clock hsdig freq", []string{"primary hsdig/devclk: 245760000 Hz", "secondary hsdig/devclk: 245760000 Hz"}, false},
		{"-clock sysclk -source devclk -hz 61440000 set", []string{"primary sysclk/devclk: 61440000 Hz"}, false},
		{"-clock timer -hz 1000 set", nil, true},
		{"-source rosc switch", []string{"primary: rosc"}, false},
		{"switch", nil, true},
		{"-ddr 800000000 ddr", []string{"primary ddr: 800000000 Hz"}, false},
		{"-ddr 900000000 ddr", nil, true},
		{"verify", []string{"clkpll-7g/orx-7g characterized: true"}, false},
		{"-clkpll 4 verify", nil, true},
		{"-dual mcs", []string{"dual true bypass false: ok", "primary hsdig/clkpll: 983040000 Hz", "secondary hsdig/clkpll: 983040000 Hz"}, false},
		{"-bypass -clkpll 1 mcs", []string{"clkpll-11g/orx-7g dual false bypass true: ok"}, false},
		{"reboot", nil, true},
	}
	for _, test := range tests {
		o, err := parseOptions(strings.Fields("-sim " + test.args))
		if err != nil {
			t.Fatalf("%q: parse: %v", test.args, err)
		}
		var out bytes.Buffer
		sim := board.NewSim(board.Primary, board.Secondary)
		err = boot(o, sim, &timer.Fake{}, &out)
		if (err != nil) != test.wantErr {
			t.Errorf("%q: got err: %v, want err: %v", test.args, err, test.wantErr)
			continue
		}
		for _, w := range test.want {
			if !strings.Contains(out.String(), w) {
				t.Errorf("%q: output %q doesn't contain %q", test.args, out.String(), w)
			}
		}
	}
}

func TestBootMCSFailure(t *testing.T) {
	o, err := parseOptions([]string{"-sim", "-dual", "mcs"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sim := board.NewSim(board.Primary, board.Secondary)
	sim.Stuck[0] = true
	var out bytes.Buffer
	err = boot(o, sim, &timer.Fake{}, &out)
	if err == nil || !strings.Contains(err.Error(), "primary") {
		t.Errorf("got: %v, want an error naming the primary wait", err)
	}
	if out.Len() != 0 {
		t.Errorf("output on failure, got: %q", out.String())
	}
}
