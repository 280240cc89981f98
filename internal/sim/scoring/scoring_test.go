package scoring

import (
	"math"
	"testing"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/catalogs"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/world"
)

func newWorld(t *testing.T) *world.World {
	t.Helper()
	return world.New(catalogs.Default(), world.DefaultPhysics())
}

func addStation(t *testing.T, w *world.World, x, y float64, kind int) int {
	t.Helper()
	i, err := w.AddStation(x, y, kind)
	if err != nil {
		t.Fatalf("add station: %v", err)
	}
	return i
}

func TestFrameCost_DriveAndTurnSummed(t *testing.T) {
	w := newWorld(t)
	ahead := addStation(t, w, 6.06, 0, 1)
	left := addStation(t, w, 0, 6.06, 1)
	a := w.AddAgent(0, 0)
	s := New(DefaultParams())

	if got := s.FrameCost(w, a, ahead); got != 50 {
		t.Fatalf("straight ahead frames=%d want=50", got)
	}
	if got := s.FrameCost(w, a, left); got != 75 {
		t.Fatalf("quarter turn frames=%d want=75", got)
	}
}

func TestEstimate(t *testing.T) {
	w := newWorld(t)
	a := w.AddAgent(0, 0)
	w.Money = 10000
	w.Frame = 10
	w.Agents[a].Held = 1
	w.Agents[a].TimeDecay = 0.5

	got := New(DefaultParams()).Estimate(w)
	want := 10000 - 10*88.8 + 4000*0.5
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("estimate=%v want=%v", got, want)
	}
}

func TestScore_DoesNotMutateSnapshot(t *testing.T) {
	for _, depth := range []int{0, 1} {
		w := newWorld(t)
		addStation(t, w, 10, 10, 1)
		addStation(t, w, 20, 5, 4)
		addStation(t, w, 30, 30, 9)
		a := w.AddAgent(25, 25)
		w.AddAgent(5, 5)
		w.Money = 200000
		before := w.Digest()
		snap := w.Clone()

		p := DefaultParams()
		p.SearchDepth = depth
		scores := New(p).Score(w, a)
		if len(scores) != 3 {
			t.Fatalf("depth %d: scores=%d want=3", depth, len(scores))
		}
		if w.Digest() != before {
			t.Fatalf("depth %d: scorer mutated the snapshot", depth)
		}
		if w.Frame != snap.Frame || w.Money != snap.Money || w.Agents[a] != snap.Agents[a] {
			t.Fatalf("depth %d: snapshot fields changed", depth)
		}
	}
}

func TestScore_UninteractablePrefersNearest(t *testing.T) {
	w := newWorld(t)
	far := addStation(t, w, 20, 0, 4)
	near := addStation(t, w, 3, 0, 5)
	a := w.AddAgent(0, 0)

	scores := New(DefaultParams()).Score(w, a)
	if scores[near] <= scores[far] {
		t.Fatalf("near=%v far=%v: nearer should rank higher", scores[near], scores[far])
	}
	if scores[far] > -1e8 {
		t.Fatalf("uninteractable score not penalised: %v", scores[far])
	}
}

func TestScore_ProductionReadyOnArrival(t *testing.T) {
	w := newWorld(t)
	// 50 frames away: the fresh kind-1 station finishes exactly as the agent lands.
	onTime := addStation(t, w, 6.06, 0, 1)
	// Closer: the agent would arrive before the batch is done.
	early := addStation(t, w, 3, 0, 2)
	a := w.AddAgent(0, 0)
	w.Money = 100000

	scores := New(DefaultParams()).Score(w, a)
	if scores[early] > -1e8 {
		t.Fatalf("early arrival should be uninteractable: %v", scores[early])
	}
	want := 100000 - 3000 - 50*88.8 + 4000
	if math.Abs(scores[onTime]-want) > 1e-6 {
		t.Fatalf("on-time score=%v want=%v", scores[onTime], want)
	}
}

func TestScore_SellAdvancesValue(t *testing.T) {
	w := newWorld(t)
	sink := addStation(t, w, 3, 0, 9)
	other := addStation(t, w, 3, 1, 8)
	a := w.AddAgent(0, 0)
	w.Agents[a].Held = 3

	scores := New(DefaultParams()).Score(w, a)
	if scores[sink] < -1e8 {
		t.Fatalf("sink accepting the cargo should be interactable: %v", scores[sink])
	}
	if scores[other] > -1e8 {
		t.Fatalf("station 8 does not take item 3: %v", scores[other])
	}
}

func TestScoreDepth_RecursesToBestFollowUp(t *testing.T) {
	w := newWorld(t)
	src := addStation(t, w, 6.06, 0, 1)
	addStation(t, w, 12.12, 0, 9)
	a := w.AddAgent(0, 0)
	w.Money = 100000

	flat := New(DefaultParams()).Score(w, a)
	p := DefaultParams()
	p.SearchDepth = 1
	deep := New(p).Score(w, a)
	if deep[src] < -1e8 {
		t.Fatalf("depth-1 score should follow the buy with a sale: %v", deep[src])
	}
	// Selling item 1 keeps its value in money but costs travel frames.
	if deep[src] >= flat[src] {
		t.Fatalf("deep=%v flat=%v: follow-up travel should cost frames", deep[src], flat[src])
	}
}
