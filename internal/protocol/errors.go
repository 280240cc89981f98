package protocol

import (
	"errors"
	"fmt"
)

// ErrTruncated reports input that ended inside a block.
var ErrTruncated = errors.New("input ended before OK")

// DecodeError ties a parse failure to its input line (1-based).
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("protocol: line %d: %v", e.Line, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
