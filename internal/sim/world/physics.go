package world

import "math"

// Physics holds the agent body constants. Radius (and therefore mass and
// inertia) depends only on whether the agent is carrying something.
type Physics struct {
	RadiusIdle       float64 `yaml:"radius_idle" json:"radius_idle"`
	RadiusHolding    float64 `yaml:"radius_holding" json:"radius_holding"`
	Density          float64 `yaml:"density" json:"density"`
	MaxForwardSpeed  float64 `yaml:"max_forward_speed" json:"max_forward_speed"`
	MaxBackwardSpeed float64 `yaml:"max_backward_speed" json:"max_backward_speed"`
	MaxRotationSpeed float64 `yaml:"max_rotation_speed" json:"max_rotation_speed"`
	MaxTraction      float64 `yaml:"max_traction" json:"max_traction"`
	MaxTorque        float64 `yaml:"max_torque" json:"max_torque"`
}

func DefaultPhysics() Physics {
	return Physics{
		RadiusIdle:       0.45,
		RadiusHolding:    0.53,
		Density:          20,
		MaxForwardSpeed:  6,
		MaxBackwardSpeed: 2,
		MaxRotationSpeed: math.Pi,
		MaxTraction:      250,
		MaxTorque:        50,
	}
}

func (p Physics) Radius(holding bool) float64 {
	if holding {
		return p.RadiusHolding
	}
	return p.RadiusIdle
}

func (p Physics) Mass(holding bool) float64 {
	r := p.Radius(holding)
	return math.Pi * r * r * p.Density
}

// Inertia is the moment of inertia of a uniform disc.
func (p Physics) Inertia(holding bool) float64 {
	r := p.Radius(holding)
	return 0.5 * p.Mass(holding) * r * r
}

func (p Physics) Acceleration(holding bool) float64 {
	return p.MaxTraction / p.Mass(holding)
}

func (p Physics) AngularAcceleration(holding bool) float64 {
	return p.MaxTorque / p.Inertia(holding)
}
