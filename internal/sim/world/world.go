// Package world is the authoritative per-frame snapshot of the factory: the
// clock, the treasury, every agent and every station. The external protocol
// layer refreshes it each frame; the scorer clones it to play out
// hypothetical assignments.
package world

import (
	"fmt"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/catalogs"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/geom"
)

type World struct {
	Frame    int
	Money    int
	Agents   []Agent
	Stations []Station

	cats *catalogs.Catalogs
	phys Physics
}

func New(cats *catalogs.Catalogs, phys Physics) *World {
	if cats == nil {
		cats = catalogs.Default()
	}
	return &World{cats: cats, phys: phys}
}

func (w *World) Catalogs() *catalogs.Catalogs { return w.cats }
func (w *World) Physics() Physics             { return w.phys }

// AddAgent registers an agent at its map position and returns its index.
func (w *World) AddAgent(x, y float64) int {
	w.Agents = append(w.Agents, newAgent(geom.Point{X: x, Y: y}))
	return len(w.Agents) - 1
}

// AddStation registers a station; stations without inputs start producing
// immediately.
func (w *World) AddStation(x, y float64, kind int) (int, error) {
	def, ok := w.cats.Station(kind)
	if !ok {
		return -1, fmt.Errorf("add station: kind %d: %w", kind, ErrUnknownKind)
	}
	w.Stations = append(w.Stations, newStation(geom.Point{X: x, Y: y}, def))
	return len(w.Stations) - 1, nil
}

func (w *World) SetFrame(id int)     { w.Frame = id }
func (w *World) SetMoney(amount int) { w.Money = amount }

func (w *World) RefreshStation(i, kind int, x, y float64, remaining int, inputs uint16, outputReady bool) error {
	if i < 0 || i >= len(w.Stations) {
		return fmt.Errorf("refresh station %d: %w", i, ErrIndexOutOfRange)
	}
	s := &w.Stations[i]
	if kind != s.Kind {
		def, ok := w.cats.Station(kind)
		if !ok {
			return fmt.Errorf("refresh station %d: kind %d: %w", i, kind, ErrUnknownKind)
		}
		s.setDef(def)
	}
	s.Pos = geom.Point{X: x, Y: y}
	s.Remaining = remaining
	s.Inputs = inputs
	s.OutputReady = outputReady
	return nil
}

func (w *World) RefreshAgent(i, atStation, held int, timeDecay, collisionDecay, angularVelocity, vx, vy, heading, x, y float64) error {
	if i < 0 || i >= len(w.Agents) {
		return fmt.Errorf("refresh agent %d: %w", i, ErrIndexOutOfRange)
	}
	if atStation < NoStation || atStation >= len(w.Stations) {
		return fmt.Errorf("refresh agent %d: station %d: %w", i, atStation, ErrIndexOutOfRange)
	}
	w.Agents[i] = Agent{
		Pos:             geom.Point{X: x, Y: y},
		Heading:         heading,
		Velocity:        geom.Vector{X: vx, Y: vy},
		AngularVelocity: angularVelocity,
		Held:            held,
		AtStation:       atStation,
		TimeDecay:       timeDecay,
		CollisionDecay:  collisionDecay,
	}
	return nil
}

// Clone returns an independent copy. Agents and stations are plain values, so
// copying the slices is a deep copy; catalogs are immutable and shared.
func (w *World) Clone() *World {
	c := *w
	c.Agents = append([]Agent(nil), w.Agents...)
	c.Stations = append([]Station(nil), w.Stations...)
	return &c
}

// AdvanceTime runs every station's production clock forward.
func (w *World) AdvanceTime(frames int) {
	for i := range w.Stations {
		w.Stations[i].advance(frames)
	}
}

func (w *World) Interactable(agent, station int) bool {
	return w.Stations[station].Interactable(&w.Agents[agent])
}

// AnyInteractable reports whether some station would trade with the agent now.
func (w *World) AnyInteractable(agent int) bool {
	a := &w.Agents[agent]
	for i := range w.Stations {
		if w.Stations[i].Interactable(a) {
			return true
		}
	}
	return false
}

// HeldValue is the realised sale value of the agent's cargo.
func (w *World) HeldValue(agent int) float64 {
	a := &w.Agents[agent]
	if a.Held == 0 {
		return 0
	}
	return float64(w.cats.SalePrice(a.Held)) * a.TimeDecay * a.CollisionDecay
}
