package protocol

import (
	"strconv"
	"strings"
)

type CommandKind int

const (
	CmdForward CommandKind = iota + 1
	CmdRotate
	CmdBuy
	CmdSell
	CmdDestroy
)

func (k CommandKind) String() string {
	switch k {
	case CmdForward:
		return "forward"
	case CmdRotate:
		return "rotate"
	case CmdBuy:
		return "buy"
	case CmdSell:
		return "sell"
	case CmdDestroy:
		return "destroy"
	}
	return "unknown"
}

// Command is one output line. Value is only meaningful for forward and rotate.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Agent int         `json:"agent"`
	Value float64     `json:"value,omitempty"`
}

func Forward(agent int, speed float64) Command {
	return Command{Kind: CmdForward, Agent: agent, Value: speed}
}

func Rotate(agent int, turn float64) Command {
	return Command{Kind: CmdRotate, Agent: agent, Value: turn}
}

func Buy(agent int) Command     { return Command{Kind: CmdBuy, Agent: agent} }
func Sell(agent int) Command    { return Command{Kind: CmdSell, Agent: agent} }
func Destroy(agent int) Command { return Command{Kind: CmdDestroy, Agent: agent} }

func (c Command) HasValue() bool { return c.Kind == CmdForward || c.Kind == CmdRotate }

func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Kind.String())
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(c.Agent))
	if c.HasValue() {
		b.WriteByte(' ')
		v := c.Value
		if v == 0 {
			v = 0 // no "-0" on the wire
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return b.String()
}
