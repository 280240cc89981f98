package protocol

import (
	"bufio"
	"io"
	"strconv"
)

type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 16*1024)}
}

// OK acknowledges the map preamble.
func (w *Writer) OK() error {
	w.w.WriteString(TerminatorOK)
	w.w.WriteByte('\n')
	return w.w.Flush()
}

// WriteFrame emits one command block and flushes it.
func (w *Writer) WriteFrame(id int, cmds []Command) error {
	w.w.WriteString(strconv.Itoa(id))
	w.w.WriteByte('\n')
	for _, c := range cmds {
		w.w.WriteString(c.String())
		w.w.WriteByte('\n')
	}
	return w.OK()
}
