package registry

import "errors"

var (
	ErrUnknownNode   = errors.New("node not registered")
	ErrNodeExists    = errors.New("node already registered")
	ErrInvalidStatus = errors.New("invalid node status")
)
