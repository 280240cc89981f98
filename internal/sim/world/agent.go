package world

import (
	"math"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/geom"
)

// NoStation marks an agent that is not within reach of any station.
const NoStation = -1

type Agent struct {
	Pos             geom.Point  `json:"pos"`
	Heading         float64     `json:"heading"`
	Velocity        geom.Vector `json:"velocity"`
	AngularVelocity float64     `json:"angular_velocity"` // positive is counter-clockwise
	Held            int         `json:"held"`             // item kind, 0 = empty
	AtStation       int         `json:"at_station"`

	// Value multipliers for the held item. Both only decrease while an item is
	// carried and reset to 1 on pickup.
	TimeDecay      float64 `json:"time_decay"`
	CollisionDecay float64 `json:"collision_decay"`
}

func newAgent(pos geom.Point) Agent {
	return Agent{
		Pos:            pos,
		AtStation:      NoStation,
		TimeDecay:      1,
		CollisionDecay: 1,
	}
}

func (a *Agent) Holding() bool { return a.Held != 0 }

func (a *Agent) pickUp(kind int) {
	a.Held = kind
	a.TimeDecay = 1
	a.CollisionDecay = 1
}

// PredictPath integrates the agent's motion for the given number of frames,
// sampling every skip frames, while speed and turn rate approach the targets
// at the body's acceleration limits. frameSeconds is the length of one frame.
func (a *Agent) PredictPath(p Physics, frames int, targetTurn, targetSpeed float64, skip int, frameSeconds float64) []geom.Point {
	if skip <= 0 {
		skip = 1
	}
	step := frameSeconds * float64(skip)
	pos := a.Pos
	theta := a.Heading
	turn := a.AngularVelocity
	speed := a.Velocity.Magnitude()
	acc := p.Acceleration(a.Holding())
	angAcc := p.AngularAcceleration(a.Holding())

	out := make([]geom.Point, 0, frames/skip)
	for f := skip; f < frames; f += skip {
		pos.X += speed * math.Cos(theta) * step
		pos.Y += speed * math.Sin(theta) * step
		out = append(out, pos)

		speed = approach(speed, targetSpeed, acc*step)
		theta += turn * step
		turn = approach(turn, targetTurn, angAcc*step)
	}
	return out
}

func approach(cur, target, maxDelta float64) float64 {
	switch {
	case cur < target:
		return math.Min(target, cur+maxDelta)
	case cur > target:
		return math.Max(target, cur-maxDelta)
	}
	return cur
}
