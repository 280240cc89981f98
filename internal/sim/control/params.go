package control

// Params sets the time-decay window used to give up on work.
type Params struct {
	// A freshly assigned task is dropped when the agent's time decay lies
	// strictly between AbandonLow and AbandonHigh.
	AbandonLow float64 `yaml:"abandon_low" json:"abandon_low"`
	// While navigating, a stuck agent (no station would trade with it) gives
	// up once its time decay is below AbandonHigh.
	AbandonHigh float64 `yaml:"abandon_high" json:"abandon_high"`
}

func DefaultParams() Params {
	return Params{AbandonLow: 0.79, AbandonHigh: 0.90}
}

func (p Params) marginal(timeDecay float64) bool {
	return timeDecay > p.AbandonLow && timeDecay < p.AbandonHigh
}
