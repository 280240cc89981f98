package protocol

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

type placed struct {
	x, y float64
	kind int
}

type recordingSink struct {
	agents   []placed
	stations []placed
}

func (s *recordingSink) AddAgent(x, y float64) int {
	s.agents = append(s.agents, placed{x: x, y: y})
	return len(s.agents) - 1
}

func (s *recordingSink) AddStation(x, y float64, kind int) (int, error) {
	s.stations = append(s.stations, placed{x: x, y: y, kind: kind})
	return len(s.stations) - 1, nil
}

type frameSink struct {
	frame, money int
	stations     []StationStatus
	agents       []AgentStatus
}

func (s *frameSink) SetFrame(id int)     { s.frame = id }
func (s *frameSink) SetMoney(amount int) { s.money = amount }
func (s *frameSink) RefreshStation(i, kind int, x, y float64, remaining int, inputs uint16, outputReady bool) error {
	s.stations = append(s.stations, StationStatus{Kind: kind, X: x, Y: y, Remaining: remaining, Inputs: inputs, OutputReady: outputReady})
	return nil
}
func (s *frameSink) RefreshAgent(i, atStation, held int, timeDecay, collisionDecay, angularVelocity, vx, vy, heading, x, y float64) error {
	s.agents = append(s.agents, AgentStatus{AtStation: atStation, Held: held, TimeDecay: timeDecay, CollisionDecay: collisionDecay, AngularVelocity: angularVelocity, VX: vx, VY: vy, Heading: heading, X: x, Y: y})
	return nil
}

func TestCellCenter(t *testing.T) {
	x, y := CellCenter(0, 0)
	if x != 0.25 || y != 49.75 {
		t.Fatalf("top-left centre=(%v,%v)", x, y)
	}
	x, y = CellCenter(99, 99)
	if x != 49.75 || y != 0.25 {
		t.Fatalf("bottom-right centre=(%v,%v)", x, y)
	}
}

func TestReadMap(t *testing.T) {
	in := "A..1\n" +
		"....\n" +
		".9.A\n" +
		"OK\n" +
		"1 200000\n"
	r := NewReader(strings.NewReader(in))
	sink := &recordingSink{}
	if err := r.ReadMap(sink); err != nil {
		t.Fatalf("read map: %v", err)
	}
	if len(sink.agents) != 2 || len(sink.stations) != 2 {
		t.Fatalf("agents=%d stations=%d", len(sink.agents), len(sink.stations))
	}
	if a := sink.agents[1]; a.x != 1.75 || a.y != 48.75 {
		t.Fatalf("second agent at (%v,%v)", a.x, a.y)
	}
	if s := sink.stations[0]; s.kind != 1 || s.x != 1.75 || s.y != 49.75 {
		t.Fatalf("first station=%+v", s)
	}
	if s := sink.stations[1]; s.kind != 9 {
		t.Fatalf("second station kind=%d", s.kind)
	}
}

func TestReadFrame_AndApply(t *testing.T) {
	in := "42 123456\n" +
		"2\n" +
		"1 0.25 49.75 -1 0 1\n" +
		"4 10.5 20.5 300 6 0\n" +
		"-1 0 0.95 1 0.5 1.5 -2 3.14 7 8\n" +
		"1 4 1 0.8 0 0 0 -1.5 10.5 20.5\n" +
		"OK\n"
	r := NewReader(strings.NewReader(in))
	f, err := r.ReadFrame(2)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if f.ID != 42 || f.Money != 123456 {
		t.Fatalf("header: id=%d money=%d", f.ID, f.Money)
	}
	if f.Stations[1].Remaining != 300 || f.Stations[1].Inputs != 6 || f.Stations[1].OutputReady {
		t.Fatalf("station 1: %+v", f.Stations[1])
	}
	if !f.Stations[0].OutputReady || f.Stations[0].Remaining != -1 {
		t.Fatalf("station 0: %+v", f.Stations[0])
	}
	if a := f.Agents[1]; a.AtStation != 1 || a.Held != 4 || a.CollisionDecay != 0.8 || a.Heading != -1.5 {
		t.Fatalf("agent 1: %+v", a)
	}

	sink := &frameSink{}
	if err := f.Apply(sink); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if sink.frame != 42 || sink.money != 123456 || len(sink.stations) != 2 || len(sink.agents) != 2 {
		t.Fatalf("apply: %+v", sink)
	}
	if sink.agents[0].VY != -2 || sink.agents[0].X != 7 {
		t.Fatalf("agent 0 applied: %+v", sink.agents[0])
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.OK(); err != nil {
		t.Fatalf("ok: %v", err)
	}
	cmds := []Command{Rotate(0, -3.5), Forward(0, 6), Sell(1), Buy(1), Destroy(2)}
	if err := w.WriteFrame(7, cmds); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	want := "OK\n7\nrotate 0 -3.5\nforward 0 6\nsell 1\nbuy 1\ndestroy 2\nOK\n"
	if buf.String() != want {
		t.Fatalf("output=%q want=%q", buf.String(), want)
	}
}

func TestCommandString_NegativeZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	if got := Rotate(3, negZero).String(); got != "rotate 3 0" {
		t.Fatalf("got %q", got)
	}
	if got := Forward(1, 1.0/3).String(); got != "forward 1 0.3333333333333333" {
		t.Fatalf("got %q", got)
	}
}
