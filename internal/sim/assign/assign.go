// Package assign hands out exclusive station claims to agents. A station index
// is always either unclaimed or claimed by exactly one agent.
package assign

import (
	"sort"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/world"
)

// NoStation is the Station of a Task when nothing could be assigned.
const NoStation = -1

type Task struct {
	Score   float64
	Station int
}

// NoTask is the "no assignment available" sentinel.
var NoTask = Task{Score: 0, Station: NoStation}

func (t Task) Ok() bool { return t.Station != NoStation }

// Scorer rates every station for one agent; higher is better.
type Scorer interface {
	Score(w *world.World, agent int) []float64
}

type Assigner struct {
	world  *world.World
	scorer Scorer

	unclaimed map[int]struct{}
	claims    map[int]int // agent -> station
}

func New(w *world.World, scorer Scorer) *Assigner {
	return &Assigner{
		world:     w,
		scorer:    scorer,
		unclaimed: map[int]struct{}{},
		claims:    map[int]int{},
	}
}

// Init puts every station of the loaded map into the unclaimed pool and drops
// all claims. Call once after the map is loaded.
func (as *Assigner) Init() {
	as.unclaimed = make(map[int]struct{}, len(as.world.Stations))
	as.claims = map[int]int{}
	for i := range as.world.Stations {
		as.unclaimed[i] = struct{}{}
	}
}

// AssignTask scores all stations for the agent and claims the best one still
// in the pool. Equal scores keep station index order. An agent that already
// holds a claim gives it up first.
func (as *Assigner) AssignTask(agent int) Task {
	as.TaskOver(agent)
	if len(as.unclaimed) == 0 {
		return NoTask
	}

	scores := as.scorer.Score(as.world, agent)
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })

	for _, st := range order {
		if _, ok := as.unclaimed[st]; !ok {
			continue
		}
		delete(as.unclaimed, st)
		as.claims[agent] = st
		return Task{Score: scores[st], Station: st}
	}
	return NoTask
}

// TaskOver returns the agent's claimed station to the pool. Releasing an agent
// without a claim is a no-op: completion and abandonment may both release.
func (as *Assigner) TaskOver(agent int) {
	st, ok := as.claims[agent]
	if !ok {
		return
	}
	delete(as.claims, agent)
	as.unclaimed[st] = struct{}{}
}

func (as *Assigner) Unclaimed() int { return len(as.unclaimed) }

func (as *Assigner) IsUnclaimed(station int) bool {
	_, ok := as.unclaimed[station]
	return ok
}

func (as *Assigner) ClaimOf(agent int) (int, bool) {
	st, ok := as.claims[agent]
	return st, ok
}

// Claims returns a copy of the agent -> station claim table.
func (as *Assigner) Claims() map[int]int {
	out := make(map[int]int, len(as.claims))
	for a, st := range as.claims {
		out[a] = st
	}
	return out
}
