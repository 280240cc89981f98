package world

import (
	"errors"
	"math"
	"testing"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/catalogs"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return New(catalogs.Default(), DefaultPhysics())
}

func mustStation(t *testing.T, w *World, x, y float64, kind int) int {
	t.Helper()
	i, err := w.AddStation(x, y, kind)
	if err != nil {
		t.Fatalf("add station kind %d: %v", kind, err)
	}
	return i
}

func TestAddStation_NoInputKindStartsProducing(t *testing.T) {
	w := newTestWorld(t)
	s := mustStation(t, w, 1, 1, 1)
	if got := w.Stations[s].Remaining; got != 50 {
		t.Fatalf("remaining=%d want=50", got)
	}
	s4 := mustStation(t, w, 2, 2, 4)
	if got := w.Stations[s4].Remaining; got != NoTimer {
		t.Fatalf("kind 4 remaining=%d want=%d", got, NoTimer)
	}
	if _, err := w.AddStation(0, 0, 12); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestAdvanceTime_OutputReadyAtExactlyCycle(t *testing.T) {
	w := newTestWorld(t)
	s := mustStation(t, w, 1, 1, 1)
	for frame := 1; frame <= 50; frame++ {
		w.AdvanceTime(1)
		ready := w.Stations[s].OutputReady
		if frame < 50 && ready {
			t.Fatalf("output ready early at frame %d", frame)
		}
		if frame == 50 && !ready {
			t.Fatalf("output not ready at frame 50 (remaining=%d)", w.Stations[s].Remaining)
		}
	}
	if got := w.Stations[s].Remaining; got != NoTimer {
		t.Fatalf("remaining after completion=%d want=%d", got, NoTimer)
	}
}

func TestScenario_BuyAtFrame60(t *testing.T) {
	w := newTestWorld(t)
	s := mustStation(t, w, 10, 10, 1)
	a := w.AddAgent(10, 10)
	w.SetMoney(200000)

	w.AdvanceTime(50)
	w.Frame = 50
	if !w.Stations[s].OutputReady {
		t.Fatalf("expected output at frame 50")
	}
	w.AdvanceTime(10)
	w.Frame = 60
	if !w.Stations[s].OutputReady {
		t.Fatalf("output should stay ready until collected")
	}

	res := w.TryTrade(a, s)
	if res.Bought != 1 {
		t.Fatalf("expected buy of item 1, got %+v", res)
	}
	if w.Agents[a].Held != 1 {
		t.Fatalf("held=%d want=1", w.Agents[a].Held)
	}
	if w.Money != 200000-3000 {
		t.Fatalf("money=%d want=%d", w.Money, 200000-3000)
	}
	if w.Stations[s].OutputReady {
		t.Fatalf("output flag should clear after pickup")
	}
	if got := w.Stations[s].Remaining; got != 50 {
		t.Fatalf("production should restart, remaining=%d", got)
	}
}

func TestAdvanceTime_BlockedBatchWaitsForPickup(t *testing.T) {
	w := newTestWorld(t)
	s := mustStation(t, w, 0, 0, 4)
	if err := w.RefreshStation(s, 4, 0, 0, 5, 0, true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	w.AdvanceTime(10)
	if got := w.Stations[s].Remaining; got != 0 {
		t.Fatalf("blocked batch remaining=%d want=0", got)
	}
	a := w.AddAgent(0, 0)
	w.SetMoney(1 << 20)
	if res := w.TryTrade(a, s); res.Bought != 4 {
		t.Fatalf("expected buy of item 4, got %+v", res)
	}
	w.AdvanceTime(1)
	if !w.Stations[s].OutputReady {
		t.Fatalf("blocked batch should land in the output slot after pickup")
	}
}

func TestAdvanceTime_SinkNeverOffersOutput(t *testing.T) {
	w := newTestWorld(t)
	s := mustStation(t, w, 0, 0, 8)
	a := w.AddAgent(0, 0)
	w.Agents[a].Held = 7
	if res := w.TryTrade(a, s); res.Sold != 7 {
		t.Fatalf("sink should take item 7: %+v", res)
	}
	if got := w.Stations[s].Remaining; got != 1 {
		t.Fatalf("sink remaining=%d want=1", got)
	}
	w.AdvanceTime(5)
	if w.Stations[s].OutputReady {
		t.Fatalf("sink must not expose an output")
	}
	if w.Interactable(a, s) {
		t.Fatalf("empty agent should not interact with a sink")
	}
}

func TestRefresh_IndexErrors(t *testing.T) {
	w := newTestWorld(t)
	mustStation(t, w, 0, 0, 1)
	w.AddAgent(0, 0)
	if err := w.RefreshStation(3, 1, 0, 0, 0, 0, false); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("station: expected ErrIndexOutOfRange, got %v", err)
	}
	if err := w.RefreshAgent(1, -1, 0, 1, 1, 0, 0, 0, 0, 0, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("agent: expected ErrIndexOutOfRange, got %v", err)
	}
	if err := w.RefreshAgent(0, 5, 0, 1, 1, 0, 0, 0, 0, 0, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("agent station: expected ErrIndexOutOfRange, got %v", err)
	}
	if err := w.RefreshStation(0, 99, 0, 0, 0, 0, false); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestRefreshAgent_Overwrites(t *testing.T) {
	w := newTestWorld(t)
	mustStation(t, w, 0, 0, 1)
	a := w.AddAgent(0, 0)
	if err := w.RefreshAgent(a, 0, 3, 0.9, 0.8, 1.5, 2, -1, 0.25, 7, 8); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got := w.Agents[a]
	if got.AtStation != 0 || got.Held != 3 || got.TimeDecay != 0.9 || got.CollisionDecay != 0.8 {
		t.Fatalf("refresh fields: %+v", got)
	}
	if got.Velocity.X != 2 || got.Velocity.Y != -1 || got.Pos.X != 7 || got.Pos.Y != 8 || got.Heading != 0.25 {
		t.Fatalf("refresh kinematics: %+v", got)
	}
}

func TestClone_Independent(t *testing.T) {
	w := newTestWorld(t)
	s := mustStation(t, w, 0, 0, 1)
	a := w.AddAgent(5, 5)
	before := w.Digest()

	c := w.Clone()
	c.AdvanceTime(100)
	c.ApplySelection(a, s)
	c.Money += 10

	if w.Digest() != before {
		t.Fatalf("clone mutation leaked into the original")
	}
	if c.Digest() == before {
		t.Fatalf("clone digest should differ after mutation")
	}
}

func TestPhysics_Derived(t *testing.T) {
	p := DefaultPhysics()
	m := p.Mass(false)
	if want := math.Pi * 0.45 * 0.45 * 20; math.Abs(m-want) > 1e-9 {
		t.Fatalf("mass=%v want=%v", m, want)
	}
	if p.Acceleration(true) >= p.Acceleration(false) {
		t.Fatalf("holding should lower acceleration")
	}
	if p.AngularAcceleration(true) >= p.AngularAcceleration(false) {
		t.Fatalf("holding should lower angular acceleration")
	}
	j := p.Inertia(false)
	if want := 0.5 * m * 0.45 * 0.45; math.Abs(j-want) > 1e-9 {
		t.Fatalf("inertia=%v want=%v", j, want)
	}
}

func TestPredictPath_StraightLine(t *testing.T) {
	a := newAgent(pointAt(0, 0))
	a.Velocity.X = 6
	path := a.PredictPath(DefaultPhysics(), 10, 0, 6, 2, 0.02)
	if len(path) != 4 {
		t.Fatalf("samples=%d want=4", len(path))
	}
	last := path[len(path)-1]
	if math.Abs(last.X-6*0.04*4) > 1e-9 || last.Y != 0 {
		t.Fatalf("last sample=%v", last)
	}
}

func TestPredictPath_Accelerates(t *testing.T) {
	a := newAgent(pointAt(0, 0))
	path := a.PredictPath(DefaultPhysics(), 50, 0, 6, 1, 0.02)
	if len(path) < 2 {
		t.Fatalf("expected samples")
	}
	if path[0].X != 0 {
		t.Fatalf("agent at rest should not move on the first sample: %v", path[0])
	}
	if path[len(path)-1].X <= path[1].X {
		t.Fatalf("agent should make progress along +x")
	}
}
