package tensorfile

import "errors"

var (
	ErrInvalidMagic     = errors.New("invalid tensor file magic")
	ErrCorruptFile      = errors.New("corrupt tensor file")
	ErrUnsupportedDType = errors.New("unsupported tensor element type")
)
