package tiling

import "errors"

var (
	// ErrUnsupportedConfiguration is returned before launch when the target
	// variant has no path for the requested element type or strategy.
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
	// ErrInvalidConfiguration is returned for planner inputs that cannot
	// produce a usable partition.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

type configError struct {
	msg  string
	kind error
}

func (e configError) Error() string {
	return e.kind.Error() + ": " + e.msg
}

func (e configError) Unwrap() error {
	return e.kind
}

func unsupported(msg string) error {
	return configError{msg: msg, kind: ErrUnsupportedConfiguration}
}

func invalid(msg string) error {
	return configError{msg: msg, kind: ErrInvalidConfiguration}
}
