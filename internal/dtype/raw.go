package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

var nativeLittleEndian = func() bool {
	var x uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&x))
	return b[0] == 1
}()

// View reinterprets little-endian raw bytes as a typed slice. When the host is
// little-endian and raw is suitably aligned the result aliases raw; otherwise
// the values are decoded into a fresh slice.
func View[T Element](raw []byte) ([]T, error) {
	size := Of[T]().Size()
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("raw length %d is not a multiple of %d", len(raw), size)
	}
	n := len(raw) / size
	if n == 0 {
		return []T{}, nil
	}
	if nativeLittleEndian && uintptr(unsafe.Pointer(&raw[0]))%uintptr(size) == 0 {
		return unsafe.Slice((*T)(unsafe.Pointer(&raw[0])), n), nil
	}
	out := make([]T, n)
	switch o := any(out).(type) {
	case []float32:
		for i := range o {
			o[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	case []Float16:
		for i := range o {
			o[i] = Float16(binary.LittleEndian.Uint16(raw[i*2:]))
		}
	case []BFloat16:
		for i := range o {
			o[i] = BFloat16(binary.LittleEndian.Uint16(raw[i*2:]))
		}
	}
	return out, nil
}

// Encode writes src into dst in little-endian order. dst must hold
// len(src)*Size bytes.
func Encode[T Element](dst []byte, src []T) {
	switch s := any(src).(type) {
	case []float32:
		for i, v := range s {
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
		}
	case []Float16:
		for i, v := range s {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(v))
		}
	case []BFloat16:
		for i, v := range s {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(v))
		}
	}
}
