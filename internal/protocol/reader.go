package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MapSink receives the entities found in the map preamble, in reading order.
type MapSink interface {
	AddAgent(x, y float64) int
	AddStation(x, y float64, kind int) (int, error)
}

// FrameSink receives one decoded status block.
type FrameSink interface {
	SetFrame(id int)
	SetMoney(amount int)
	RefreshStation(i, kind int, x, y float64, remaining int, inputs uint16, outputReady bool) error
	RefreshAgent(i, atStation, held int, timeDecay, collisionDecay, angularVelocity, vx, vy, heading, x, y float64) error
}

type StationStatus struct {
	Kind        int     `json:"kind"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Remaining   int     `json:"remaining"`
	Inputs      uint16  `json:"inputs"`
	OutputReady bool    `json:"output_ready"`
}

type AgentStatus struct {
	AtStation       int     `json:"at_station"`
	Held            int     `json:"held"`
	TimeDecay       float64 `json:"time_decay"`
	CollisionDecay  float64 `json:"collision_decay"`
	AngularVelocity float64 `json:"angular_velocity"`
	VX              float64 `json:"vx"`
	VY              float64 `json:"vy"`
	Heading         float64 `json:"heading"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
}

type Frame struct {
	ID       int             `json:"id"`
	Money    int             `json:"money"`
	Stations []StationStatus `json:"stations"`
	Agents   []AgentStatus   `json:"agents"`
}

// Apply pushes the frame into sink: clock and money first, then stations,
// then agents, each in index order.
func (f *Frame) Apply(sink FrameSink) error {
	sink.SetFrame(f.ID)
	sink.SetMoney(f.Money)
	for i, s := range f.Stations {
		if err := sink.RefreshStation(i, s.Kind, s.X, s.Y, s.Remaining, s.Inputs, s.OutputReady); err != nil {
			return err
		}
	}
	for i, a := range f.Agents {
		if err := sink.RefreshAgent(i, a.AtStation, a.Held, a.TimeDecay, a.CollisionDecay, a.AngularVelocity, a.VX, a.VY, a.Heading, a.X, a.Y); err != nil {
			return err
		}
	}
	return nil
}

type Reader struct {
	r    *bufio.Reader
	line int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 64*1024)}
}

func (r *Reader) errorf(format string, args ...any) error {
	return &DecodeError{Line: r.line, Err: fmt.Errorf(format, args...)}
}

// readLine returns the next line without its terminator. io.EOF is only
// returned when nothing at all was read.
func (r *Reader) readLine() (string, error) {
	s, err := r.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	r.line++
	return strings.TrimRight(s, "\r\n"), nil
}

// nextFields skips blank lines and splits the next line on whitespace.
func (r *Reader) nextFields() ([]string, error) {
	for {
		s, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if f := strings.Fields(s); len(f) > 0 {
			return f, nil
		}
	}
}

// ReadMap consumes the map preamble up to its OK line. Agents are 'A',
// stations the digits 1..9; every other character is empty floor.
func (r *Reader) ReadMap(sink MapSink) error {
	row := 0
	for {
		s, err := r.readLine()
		if errors.Is(err, io.EOF) {
			return &DecodeError{Line: r.line, Err: ErrTruncated}
		}
		if err != nil {
			return err
		}
		if strings.HasPrefix(s, TerminatorOK) {
			return nil
		}
		for col := 0; col < len(s); col++ {
			c := s[col]
			x, y := CellCenter(row, col)
			switch {
			case c == 'A':
				sink.AddAgent(x, y)
			case c >= '1' && c <= '9':
				if _, err := sink.AddStation(x, y, int(c-'0')); err != nil {
					return r.errorf("%w", err)
				}
			}
		}
		row++
	}
}

// ReadFrame decodes one status block for the given number of agents. A clean
// end of input before the block starts returns io.EOF.
func (r *Reader) ReadFrame(agents int) (Frame, error) {
	var f Frame

	head, err := r.nextFields()
	if err != nil {
		return f, err
	}
	if len(head) < 2 {
		return f, r.errorf("frame header: want 'frameID money', got %q", strings.Join(head, " "))
	}
	if f.ID, err = strconv.Atoi(head[0]); err != nil {
		return f, r.errorf("frame id: %w", err)
	}
	if f.Money, err = strconv.Atoi(head[1]); err != nil {
		return f, r.errorf("money: %w", err)
	}

	countLine, err := r.fieldsOrTruncated()
	if err != nil {
		return f, err
	}
	k, err := strconv.Atoi(countLine[0])
	if err != nil || k < 0 {
		return f, r.errorf("station count %q", countLine[0])
	}

	f.Stations = make([]StationStatus, k)
	for i := range f.Stations {
		fields, err := r.fieldsOrTruncated()
		if err != nil {
			return f, err
		}
		if f.Stations[i], err = r.parseStation(fields); err != nil {
			return f, err
		}
	}

	f.Agents = make([]AgentStatus, agents)
	for i := range f.Agents {
		fields, err := r.fieldsOrTruncated()
		if err != nil {
			return f, err
		}
		if f.Agents[i], err = r.parseAgent(fields); err != nil {
			return f, err
		}
	}

	tail, err := r.fieldsOrTruncated()
	if err != nil {
		return f, err
	}
	if tail[0] != TerminatorOK {
		return f, r.errorf("want OK, got %q", tail[0])
	}
	return f, nil
}

func (r *Reader) fieldsOrTruncated() ([]string, error) {
	f, err := r.nextFields()
	if errors.Is(err, io.EOF) {
		return nil, &DecodeError{Line: r.line, Err: ErrTruncated}
	}
	return f, err
}

func (r *Reader) parseStation(f []string) (StationStatus, error) {
	var s StationStatus
	if len(f) != 6 {
		return s, r.errorf("station: want 6 fields, got %d", len(f))
	}
	p := fieldParser{fields: f}
	s.Kind = p.int(0)
	s.X = p.float(1)
	s.Y = p.float(2)
	s.Remaining = p.int(3)
	s.Inputs = uint16(p.int(4))
	s.OutputReady = p.int(5) != 0
	if p.err != nil {
		return s, r.errorf("station: %w", p.err)
	}
	return s, nil
}

func (r *Reader) parseAgent(f []string) (AgentStatus, error) {
	var a AgentStatus
	if len(f) != 10 {
		return a, r.errorf("agent: want 10 fields, got %d", len(f))
	}
	p := fieldParser{fields: f}
	a.AtStation = p.int(0)
	a.Held = p.int(1)
	a.TimeDecay = p.float(2)
	a.CollisionDecay = p.float(3)
	a.AngularVelocity = p.float(4)
	a.VX = p.float(5)
	a.VY = p.float(6)
	a.Heading = p.float(7)
	a.X = p.float(8)
	a.Y = p.float(9)
	if p.err != nil {
		return a, r.errorf("agent: %w", p.err)
	}
	return a, nil
}

// fieldParser keeps the first conversion error so a record can be parsed
// without checking every field.
type fieldParser struct {
	fields []string
	err    error
}

func (p *fieldParser) int(i int) int {
	v, err := strconv.Atoi(p.fields[i])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("field %d: %w", i, err)
	}
	return v
}

func (p *fieldParser) float(i int) float64 {
	v, err := strconv.ParseFloat(p.fields[i], 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("field %d: %w", i, err)
	}
	return v
}
