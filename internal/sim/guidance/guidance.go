// Package guidance turns "drive to this point" into one turn-rate and one
// forward-speed command per frame, within the agent's physical limits.
package guidance

import (
	"math"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/geom"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/world"
)

type Params struct {
	// Beyond this heading error (radians) the agent stops and turns in place.
	TurnInPlaceAngle float64 `yaml:"turn_in_place_angle" json:"turn_in_place_angle"`
	// Above this |error × angular acceleration| the turn rate is square-root
	// shaped.
	ShapingThreshold float64 `yaml:"shaping_threshold" json:"shaping_threshold"`
	CruiseSpeed      float64 `yaml:"cruise_speed" json:"cruise_speed"`
}

func DefaultParams() Params {
	return Params{
		TurnInPlaceAngle: math.Pi / 3,
		ShapingThreshold: 0,
		CruiseSpeed:      6,
	}
}

// Command is one frame of motion: Turn in rad/s (positive counter-clockwise)
// and Speed in m/s. Zero values are valid commands.
type Command struct {
	Turn  float64
	Speed float64
}

// HeadingError is the signed shortest rotation from the agent's heading to the
// bearing of target; positive means target is clockwise of the heading.
func HeadingError(a *world.Agent, target geom.Point) float64 {
	return geom.AngleDiff(a.Heading, geom.Bearing(a.Pos, target))
}

func Guide(a *world.Agent, phys world.Physics, target geom.Point, p Params) Command {
	holding := a.Holding()
	maxTurn := phys.MaxRotationSpeed

	theta := HeadingError(a, target)
	demand := theta * phys.AngularAcceleration(holding)

	if math.Abs(theta) > p.TurnInPlaceAngle {
		if demand >= 0 {
			return Command{Turn: -maxTurn, Speed: 0}
		}
		return Command{Turn: maxTurn, Speed: 0}
	}

	// Square-root shaping approximates a critically damped approach: the
	// commanded rate falls off as the error closes, avoiding overshoot.
	var turn float64
	if math.Abs(demand) > p.ShapingThreshold {
		turn = -math.Copysign(math.Sqrt(math.Abs(demand)), demand)
	} else {
		turn = -demand
	}
	turn = math.Max(-maxTurn, math.Min(maxTurn, turn))

	// Fastest speed from which the agent can still brake to a stop on target.
	dist := geom.Distance(a.Pos, target)
	stoppable := math.Sqrt(2 * phys.Acceleration(holding) * dist)
	speed := math.Min(p.CruiseSpeed, stoppable)

	return Command{Turn: turn, Speed: speed}
}
