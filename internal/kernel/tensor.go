package kernel

import (
	"context"
	"fmt"
	"slices"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/platform"
	"github.com/samcharles93/cosine/internal/tiling"
)

// Tensor is the read side of a stored tensor: element type, shape and the
// little-endian payload.
type Tensor interface {
	DType() dtype.DType
	Shape() []int
	Data() []byte
}

// InferShape returns the output shape for an input of shape in. Cosine is
// elementwise, so the shapes match.
func InferShape(in []int) []int {
	return slices.Clone(in)
}

// InferDType returns the output element type for an input of type in.
func InferDType(in dtype.DType) dtype.DType {
	return in
}

// LaunchRaw runs the kernel over little-endian encoded elements of type dt.
// dst receives the encoded results and must be as long as src.
func LaunchRaw(ctx context.Context, dt dtype.DType, dst, src []byte, caps platform.Capabilities, opts Options) (*Report, error) {
	if len(dst) != len(src) {
		return nil, fmt.Errorf("%w: %d vs %d bytes", ErrLengthMismatch, len(dst), len(src))
	}
	switch dt {
	case dtype.F32:
		return launchRaw[float32](ctx, dst, src, caps, opts)
	case dtype.F16:
		return launchRaw[dtype.Float16](ctx, dst, src, caps, opts)
	case dtype.BF16:
		return launchRaw[dtype.BFloat16](ctx, dst, src, caps, opts)
	default:
		return nil, fmt.Errorf("%w: element type %v", tiling.ErrInvalidConfiguration, dt)
	}
}

func launchRaw[T dtype.Element](ctx context.Context, dst, src []byte, caps platform.Capabilities, opts Options) (*Report, error) {
	in, err := dtype.View[T](src)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(in))
	rep, err := Launch(ctx, out, in, caps, opts)
	if err != nil {
		return nil, err
	}
	dtype.Encode(dst, out)
	return rep, nil
}

// LaunchTensor runs the kernel over t and returns the encoded output with
// the inferred shape and element type.
func LaunchTensor(ctx context.Context, t Tensor, caps platform.Capabilities, opts Options) (data []byte, shape []int, dt dtype.DType, rep *Report, err error) {
	n := 1
	for _, d := range t.Shape() {
		n *= d
	}
	src := t.Data()
	if want := n * t.DType().Size(); len(src) != want {
		return nil, nil, 0, nil, fmt.Errorf("tensor payload is %d bytes, shape %v needs %d", len(src), t.Shape(), want)
	}
	data = make([]byte, len(src))
	rep, err = LaunchRaw(ctx, t.DType(), data, src, caps, opts)
	if err != nil {
		return nil, nil, 0, nil, err
	}
	return data, InferShape(t.Shape()), InferDType(t.DType()), rep, nil
}
