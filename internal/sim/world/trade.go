package world

import "github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/geom"

// TradeResult records what TryTrade did. Sold/Bought are item kinds, 0 when
// that half did not fire.
type TradeResult struct {
	Sold   int
	Credit int
	Bought int
	Debit  int
}

func (r TradeResult) Any() bool { return r.Sold != 0 || r.Bought != 0 }

// TryTrade sells the agent's cargo to the station if it is an accepted input,
// then buys the station's output if the agent is empty-handed and the
// treasury covers the price. Both halves may fire in one call.
func (w *World) TryTrade(agent, station int) TradeResult {
	a := &w.Agents[agent]
	s := &w.Stations[station]

	var res TradeResult
	if s.ItemAcceptable(a.Held) {
		credit := int(w.HeldValue(agent))
		s.accept(a.Held)
		res.Sold = a.Held
		res.Credit = credit
		a.Held = 0
		w.Money += credit
	}
	if s.OutputReady && a.Held == 0 {
		price := w.cats.PurchasePrice(s.output)
		if w.Money >= price {
			s.collect()
			a.pickUp(s.output)
			w.Money -= price
			res.Bought = s.output
			res.Debit = price
		}
	}
	return res
}

// ApplySelection teleports the agent onto the station, facing along its
// approach, and trades. Only used on projected snapshots.
func (w *World) ApplySelection(agent, station int) TradeResult {
	a := &w.Agents[agent]
	s := &w.Stations[station]
	a.Heading = geom.Bearing(a.Pos, s.Pos)
	a.Pos = s.Pos
	a.AtStation = station
	return w.TryTrade(agent, station)
}

// Discard drops the agent's cargo without payment.
func (w *World) Discard(agent int) bool {
	a := &w.Agents[agent]
	if a.Held == 0 {
		return false
	}
	a.Held = 0
	return true
}
