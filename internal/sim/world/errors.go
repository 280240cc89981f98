package world

import "errors"

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownKind     = errors.New("unknown station kind")
)
