// Package dtype describes the element types accepted by the cosine kernel and
// converts them to and from the float32 working precision.
package dtype

import (
	"fmt"
	"strings"
)

// DType identifies the storage type of a tensor element.
type DType uint8

const (
	Invalid DType = iota
	F16
	F32
	BF16
)

// Element is the set of Go types a pipeline can stream.
type Element interface {
	float32 | Float16 | BFloat16
}

// Size returns the element width in bytes, or 0 for Invalid.
func (d DType) Size() int {
	switch d {
	case F32:
		return 4
	case F16, BF16:
		return 2
	default:
		return 0
	}
}

// Reduced reports whether d is narrower than the float32 working type.
func (d DType) Reduced() bool {
	return d == F16 || d == BF16
}

func (d DType) String() string {
	switch d {
	case F16:
		return "float16"
	case F32:
		return "float32"
	case BF16:
		return "bfloat16"
	default:
		return "invalid"
	}
}

// Parse accepts the canonical names plus the short forms used on the CLI.
func Parse(s string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float16", "f16", "fp16", "half":
		return F16, nil
	case "float32", "f32", "fp32", "float":
		return F32, nil
	case "bfloat16", "bf16":
		return BF16, nil
	default:
		return Invalid, fmt.Errorf("unknown dtype %q", s)
	}
}

func (d DType) MarshalText() ([]byte, error) {
	if d == Invalid {
		return nil, fmt.Errorf("cannot marshal invalid dtype")
	}
	return []byte(d.String()), nil
}

func (d *DType) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Of returns the DType matching the type parameter.
func Of[T Element]() DType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return F32
	case Float16:
		return F16
	case BFloat16:
		return BF16
	}
	return Invalid
}
