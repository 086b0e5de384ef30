// Package clk models the clock-generation tiles of the SoC: which instances
// exist, what their upstream sources run at, what each downstream consumer
// clock receives, and how the active upstream source is switched.
package clk

import (
	"fmt"
	"strings"
)

// ClockSource is one of the three upstream sources of a tile.
type ClockSource uint8

const (
	Rosc ClockSource = iota
	DevClk
	ClkPll
	NumSources

	// SourceNone is reported when no source can be determined.
	SourceNone ClockSource = 0xff
)

var sourceNames = [NumSources]string{"rosc", "devclk", "clkpll"}

func (s ClockSource) Valid() bool {
	return s < NumSources
}

func (s ClockSource) String() string {
	if s.Valid() {
		return sourceNames[s]
	}
	if s == SourceNone {
		return "none"
	}
	return fmt.Sprintf("source(%d)", uint8(s))
}

func ParseClockSource(name string) (ClockSource, error) {
	for i, n := range sourceNames {
		if strings.EqualFold(name, n) {
			return ClockSource(i), nil
		}
	}
	return SourceNone, fmt.Errorf("%q isn't a clock source", name)
}

// ClockId identifies a downstream consumer clock.
type ClockId uint8

const (
	Core ClockId = iota
	Sysclk
	HighSpeedDigital
	Timer
	Watchdog
	Ddr
	Emmc
	NumClocks
)

var clockNames = [NumClocks]string{"core", "sysclk", "hsdig", "timer", "watchdog", "ddr", "emmc"}

func (id ClockId) String() string {
	if id < NumClocks {
		return clockNames[id]
	}
	return fmt.Sprintf("clock(%d)", uint8(id))
}

func ParseClockId(name string) (ClockId, error) {
	for i, n := range clockNames {
		if strings.EqualFold(name, n) {
			return ClockId(i), nil
		}
	}
	return NumClocks, fmt.Errorf("%q isn't a clock", name)
}

// Hook is board-specific code run around a source switch.
type Hook interface {
	Call()
}

// HookFunc adapts a plain function to Hook.
type HookFunc func()

func (f HookFunc) Call() { f() }
