package api

import "errors"

// ErrInvalidParameter marks a launch request field the server cannot
// interpret.
var ErrInvalidParameter = errors.New("invalid launch parameter")

// paramError names the request field that was rejected.
type paramError struct {
	param string
	msg   string
}

func (e paramError) Error() string {
	return e.param + ": " + e.msg
}

func (e paramError) Unwrap() error {
	return ErrInvalidParameter
}

func invalidParam(param string, err error) error {
	return paramError{param: param, msg: err.Error()}
}
