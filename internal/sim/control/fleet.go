// Package control runs one state machine per agent and collects the commands
// the fleet sends each frame. A Fleet is the simulation context: it owns the
// live world, the assigner and the controllers, and is driven by a single
// goroutine.
package control

import (
	"log"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/protocol"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/assign"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/guidance"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/world"
)

// BlockDetector reports whether the agent's path is obstructed.
type BlockDetector func(w *world.World, agent int) bool

func neverBlocked(*world.World, int) bool { return false }

type controller struct {
	agent  int
	state  State
	target int
	cmds   []protocol.Command
}

type Fleet struct {
	world    *world.World
	assigner *assign.Assigner

	params   Params
	guide    guidance.Params
	blocked  BlockDetector
	logger   *log.Logger
	ctrls    []*controller
	initDone bool
}

type Option func(*Fleet)

// WithLogger enables per-agent debug logging of state changes.
func WithLogger(l *log.Logger) Option { return func(f *Fleet) { f.logger = l } }

func WithGuidance(p guidance.Params) Option { return func(f *Fleet) { f.guide = p } }

func WithBlockDetector(d BlockDetector) Option {
	return func(f *Fleet) {
		if d != nil {
			f.blocked = d
		}
	}
}

func NewFleet(w *world.World, scorer assign.Scorer, p Params, opts ...Option) *Fleet {
	f := &Fleet{
		world:    w,
		assigner: assign.New(w, scorer),
		params:   p,
		guide:    guidance.DefaultParams(),
		blocked:  neverBlocked,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Init fills the assignment pool and creates one Seeking controller per agent.
// Call once after the map is loaded.
func (f *Fleet) Init() {
	f.assigner.Init()
	f.ctrls = make([]*controller, len(f.world.Agents))
	for i := range f.ctrls {
		f.ctrls[i] = &controller{agent: i, state: Seeking, target: assign.NoStation}
	}
	f.initDone = true
}

func (f *Fleet) World() *world.World        { return f.world }
func (f *Fleet) Assigner() *assign.Assigner { return f.assigner }

func (f *Fleet) State(agent int) State { return f.ctrls[agent].state }

// Target is the station the agent is working towards, or assign.NoStation.
func (f *Fleet) Target(agent int) int { return f.ctrls[agent].target }

// Tick advances every agent's state machine once, in agent index order.
// Trades performed on arrival are applied to the live world, so later agents
// in the same sweep see them.
func (f *Fleet) Tick() {
	if !f.initDone {
		f.Init()
	}
	for _, c := range f.ctrls {
		switch c.state {
		case Seeking:
			f.seek(c)
		case Navigating:
			f.navigate(c)
		case Recovering:
			f.recover(c)
		}
	}
}

// Flush returns this frame's commands, grouped by agent in index order, and
// clears every queue.
func (f *Fleet) Flush() []protocol.Command {
	var out []protocol.Command
	for _, c := range f.ctrls {
		out = append(out, c.cmds...)
		c.cmds = c.cmds[:0]
	}
	return out
}

// Record summarises the current frame. Call after Tick and before Flush to
// include the pending commands.
func (f *Fleet) Record() protocol.FrameRecord {
	rec := protocol.FrameRecord{
		Frame:  f.world.Frame,
		Money:  f.world.Money,
		Digest: f.world.Digest(),
		States: make([]string, len(f.ctrls)),
		Claims: f.assigner.Claims(),
	}
	for i, c := range f.ctrls {
		rec.States[i] = c.state.String()
		rec.Commands = append(rec.Commands, c.cmds...)
	}
	return rec
}

func (f *Fleet) seek(c *controller) {
	task := f.assigner.AssignTask(c.agent)
	if !task.Ok() {
		return
	}
	if f.params.marginal(f.world.Agents[c.agent].TimeDecay) {
		f.abandon(c)
		return
	}
	c.target = task.Station
	f.fire(c, GetTarget)
	f.debugf("agent %d: target station %d (score %.1f)", c.agent, task.Station, task.Score)
}

func (f *Fleet) navigate(c *controller) {
	a := &f.world.Agents[c.agent]
	if a.AtStation == c.target {
		res := f.world.TryTrade(c.agent, c.target)
		if res.Sold != 0 {
			c.emit(protocol.Sell(c.agent))
		}
		if res.Bought != 0 {
			c.emit(protocol.Buy(c.agent))
		}
		f.assigner.TaskOver(c.agent)
		f.debugf("agent %d: done at station %d (sold %d, bought %d)", c.agent, c.target, res.Sold, res.Bought)
		c.target = assign.NoStation
		f.fire(c, Done)
		return
	}
	if f.blocked(f.world, c.agent) {
		f.fire(c, Blocked)
		return
	}

	cmd := guidance.Guide(a, f.world.Physics(), f.world.Stations[c.target].Pos, f.guide)
	c.emit(protocol.Rotate(c.agent, cmd.Turn))
	c.emit(protocol.Forward(c.agent, cmd.Speed))

	if !f.world.AnyInteractable(c.agent) && a.TimeDecay < f.params.AbandonHigh {
		f.abandon(c)
	}
}

func (f *Fleet) recover(c *controller) {
	if !f.blocked(f.world, c.agent) {
		f.fire(c, Unblocked)
	}
}

// abandon releases the claim and drops any cargo without payment.
func (f *Fleet) abandon(c *controller) {
	f.assigner.TaskOver(c.agent)
	if f.world.Discard(c.agent) {
		c.emit(protocol.Destroy(c.agent))
	}
	f.debugf("agent %d: abandoned (time decay %.3f)", c.agent, f.world.Agents[c.agent].TimeDecay)
	c.target = assign.NoStation
	f.fire(c, Abandon)
}

func (f *Fleet) fire(c *controller, e Event) {
	next, ok := Next(c.state, e)
	if !ok {
		return
	}
	if next != c.state {
		f.debugf("agent %d: %s -%s-> %s", c.agent, c.state, e, next)
	}
	c.state = next
}

func (c *controller) emit(cmd protocol.Command) { c.cmds = append(c.cmds, cmd) }

func (f *Fleet) debugf(format string, args ...any) {
	if f.logger != nil {
		f.logger.Printf(format, args...)
	}
}
