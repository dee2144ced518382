// Package tensorfile reads and writes single-tensor container files.
//
// Layout (little-endian):
//
//	0   magic "CTF1"
//	4   dtype code (1=float16, 2=float32, 3=bfloat16)
//	5   rank
//	6   reserved (2 bytes, zero)
//	8   rank x uint64 dimensions
//	... zero padding to a 32-byte boundary
//	... payload, product(dims) elements
package tensorfile

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/samcharles93/cosine/internal/dtype"
)

const (
	magic = "CTF1"
	// fixedHeaderSize covers magic, dtype, rank and reserved bytes.
	fixedHeaderSize = 8
	// payloadAlign keeps payloads castable to any element type in place.
	payloadAlign = 32
	// MaxRank bounds the dimension list.
	MaxRank = 8
)

var dtypeCodes = map[dtype.DType]byte{
	dtype.F16:  1,
	dtype.F32:  2,
	dtype.BF16: 3,
}

func dtypeFromCode(c byte) (dtype.DType, bool) {
	for dt, code := range dtypeCodes {
		if code == c {
			return dt, true
		}
	}
	return dtype.Invalid, false
}

// Tensor is an opened tensor file. Data may reference a read-only mapping;
// it must not be written or retained after Close.
type Tensor struct {
	dt      dtype.DType
	shape   []int
	data    []byte
	raw     []byte
	mmapped bool
}

func (t *Tensor) DType() dtype.DType { return t.dt }
func (t *Tensor) Shape() []int       { return t.shape }
func (t *Tensor) Data() []byte       { return t.data }

// Elements returns the product of the dimensions.
func (t *Tensor) Elements() int {
	return elements(t.shape)
}

func elements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func payloadOffset(rank int) int {
	end := fixedHeaderSize + 8*rank
	return (end + payloadAlign - 1) / payloadAlign * payloadAlign
}

func encodeHeader(dt dtype.DType, shape []int) ([]byte, error) {
	code, ok := dtypeCodes[dt]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDType, dt)
	}
	if len(shape) > MaxRank {
		return nil, fmt.Errorf("tensorfile: rank %d exceeds %d", len(shape), MaxRank)
	}
	hdr := make([]byte, payloadOffset(len(shape)))
	copy(hdr, magic)
	hdr[4] = code
	hdr[5] = byte(len(shape))
	for i, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("tensorfile: negative dimension %d", d)
		}
		binary.LittleEndian.PutUint64(hdr[fixedHeaderSize+8*i:], uint64(d))
	}
	return hdr, nil
}

// Parse decodes a complete tensor file held in memory. The returned tensor
// references data.
func Parse(data []byte) (*Tensor, error) {
	return parse(data, false)
}

func parse(data []byte, mmapped bool) (*Tensor, error) {
	if len(data) < fixedHeaderSize {
		return nil, ErrCorruptFile
	}
	if string(data[:4]) != magic {
		return nil, ErrInvalidMagic
	}
	dt, ok := dtypeFromCode(data[4])
	if !ok {
		return nil, fmt.Errorf("%w: code %d", ErrUnsupportedDType, data[4])
	}
	rank := int(data[5])
	if rank > MaxRank {
		return nil, fmt.Errorf("%w: rank %d", ErrCorruptFile, rank)
	}
	off := payloadOffset(rank)
	if len(data) < off {
		return nil, fmt.Errorf("%w: truncated header", ErrCorruptFile)
	}

	shape := make([]int, rank)
	n := uint64(1)
	for i := range shape {
		d := binary.LittleEndian.Uint64(data[fixedHeaderSize+8*i:])
		hi, lo := bits.Mul64(n, d)
		if hi != 0 || d > math.MaxInt {
			return nil, fmt.Errorf("%w: dimension %d out of range", ErrCorruptFile, i)
		}
		n = lo
		shape[i] = int(d)
	}
	hi, want := bits.Mul64(n, uint64(dt.Size()))
	if hi != 0 || uint64(len(data)-off) != want {
		return nil, fmt.Errorf("%w: payload is %d bytes, shape %v needs %d elements", ErrCorruptFile, len(data)-off, shape, n)
	}
	return &Tensor{
		dt:      dt,
		shape:   shape,
		data:    data[off:],
		raw:     data,
		mmapped: mmapped,
	}, nil
}
