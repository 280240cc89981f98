package world

import (
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/catalogs"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/geom"
)

// NoTimer marks a station that is not producing.
const NoTimer = -1

type Station struct {
	Pos         geom.Point `json:"pos"`
	Kind        int        `json:"kind"`
	Inputs      uint16     `json:"inputs"` // bit k set: item kind k deposited this cycle
	OutputReady bool       `json:"output_ready"`
	Remaining   int        `json:"remaining"` // frames until output; NoTimer when idle

	// Cached from the station catalog entry for Kind.
	required uint16
	output   int
	cycle    int
}

func newStation(pos geom.Point, def catalogs.StationDef) Station {
	s := Station{Pos: pos, Remaining: NoTimer}
	s.setDef(def)
	if s.required == 0 && s.cycle > 0 {
		s.Remaining = s.cycle
	}
	return s
}

func (s *Station) setDef(def catalogs.StationDef) {
	s.Kind = def.Kind
	s.required = def.InputBits()
	s.output = def.Output
	s.cycle = def.CycleFrames
}

func (s *Station) Required() uint16 { return s.required }
func (s *Station) Output() int      { return s.output }

// ItemAcceptable reports whether item is one of the station's inputs that has
// not been deposited yet this cycle.
func (s *Station) ItemAcceptable(item int) bool {
	if item <= 0 || item > catalogs.MaxKind {
		return false
	}
	bit := uint16(1) << uint(item)
	return s.required&bit != 0 && s.Inputs&bit == 0
}

// Interactable: an empty-handed agent can collect a ready output, or the
// station takes what the agent carries.
func (s *Station) Interactable(a *Agent) bool {
	return (a.Held == 0 && s.OutputReady) || s.ItemAcceptable(a.Held)
}

func (s *Station) start() {
	if s.cycle <= 0 {
		return
	}
	s.Remaining = s.cycle
	s.Inputs = 0
}

func (s *Station) accept(item int) {
	s.Inputs |= 1 << uint(item)
	if s.Inputs == s.required || s.required == 0 {
		s.start()
	}
}

func (s *Station) collect() {
	s.OutputReady = false
	if s.Remaining == NoTimer && s.Inputs == s.required {
		s.start()
	}
}

func (s *Station) advance(frames int) {
	if s.Remaining > frames {
		s.Remaining -= frames
	} else if s.Remaining != NoTimer {
		s.Remaining = 0
	}
	// A finished batch stays blocked at 0 while the output slot is occupied.
	if s.Remaining == 0 && !s.OutputReady {
		if s.output != 0 {
			s.OutputReady = true
		}
		s.Remaining = NoTimer
	}
	if s.Remaining == NoTimer && !s.OutputReady && s.Inputs == s.required {
		s.start()
	}
}
