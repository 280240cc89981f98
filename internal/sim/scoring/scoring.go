// Package scoring values "send agent A to station S next" by playing the
// assignment out on a private copy of the world and valuing the result.
package scoring

import (
	"math"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/geom"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/world"
)

type Params struct {
	// SearchDepth is the number of extra hypothetical assignment rounds played
	// before the terminal Estimate. 0 scores a single hop.
	SearchDepth int `yaml:"search_depth" json:"search_depth"`

	// CostPerFrame is the opportunity cost charged per elapsed frame.
	CostPerFrame float64 `yaml:"cost_per_frame" json:"cost_per_frame"`

	// Travel-time model: straight line at AssumedSpeed plus turning at
	// AssumedTurnRate, summed.
	AssumedSpeed    float64 `yaml:"assumed_speed" json:"assumed_speed"`
	AssumedTurnRate float64 `yaml:"assumed_turn_rate" json:"assumed_turn_rate"`
	FramesPerSecond int     `yaml:"frames_per_second" json:"frames_per_second"`

	// UninteractablePenalty is the base score of a station the agent could not
	// trade with on arrival. It must dwarf any reachable economic outcome.
	UninteractablePenalty float64 `yaml:"uninteractable_penalty" json:"uninteractable_penalty"`
}

func DefaultParams() Params {
	return Params{
		SearchDepth:           0,
		CostPerFrame:          88.8,
		AssumedSpeed:          6,
		AssumedTurnRate:       math.Pi,
		FramesPerSecond:       50,
		UninteractablePenalty: -102397600,
	}
}

func (p Params) frameSeconds() float64 { return 1 / float64(p.FramesPerSecond) }

type Scorer struct {
	p Params
}

func New(p Params) *Scorer { return &Scorer{p: p} }

func (s *Scorer) Params() Params { return s.p }

// FrameCost estimates how many frames the agent needs to reach the station.
// Turning and driving are summed rather than overlapped, so this errs short.
func (s *Scorer) FrameCost(w *world.World, agent, station int) int {
	a := &w.Agents[agent]
	st := &w.Stations[station]
	dt := s.p.frameSeconds()

	drive := geom.Distance(a.Pos, st.Pos) / (s.p.AssumedSpeed * dt)
	turn := math.Abs(geom.AngleDiff(a.Heading, geom.Bearing(a.Pos, st.Pos))) / (s.p.AssumedTurnRate * dt)
	return int(drive + turn)
}

// Estimate values a snapshot: treasury, minus elapsed-time cost, plus the
// realised value of everything the agents carry.
func (s *Scorer) Estimate(w *world.World) float64 {
	v := float64(w.Money) - float64(w.Frame)*s.p.CostPerFrame
	for i := range w.Agents {
		v += w.HeldValue(i)
	}
	return v
}

// Score returns one value per station for sending agent there next. w is
// never modified.
func (s *Scorer) Score(w *world.World, agent int) []float64 {
	return s.ScoreDepth(w, agent, 0)
}

func (s *Scorer) ScoreDepth(w *world.World, agent, depth int) []float64 {
	out := make([]float64, len(w.Stations))
	for i := range w.Stations {
		out[i] = s.scoreStation(w, agent, i, depth)
	}
	return out
}

func (s *Scorer) scoreStation(w *world.World, agent, station, depth int) float64 {
	frames := s.FrameCost(w, agent, station)

	next := w.Clone()
	next.AdvanceTime(frames)
	next.Frame += frames

	if !next.Interactable(agent, station) {
		// Nearest unreachable option still ranks first among the penalised ones.
		d := geom.Distance(next.Agents[agent].Pos, next.Stations[station].Pos)
		return s.p.UninteractablePenalty - d
	}

	next.ApplySelection(agent, station)
	if depth < s.p.SearchDepth {
		return maxOf(s.ScoreDepth(next, agent, depth+1))
	}
	return s.Estimate(next)
}

func maxOf(v []float64) float64 {
	best := math.Inf(-1)
	for _, x := range v {
		if x > best {
			best = x
		}
	}
	return best
}
