package dtype

import "math"

// Float16 is an IEEE 754 binary16 value stored as raw bits.
type Float16 uint16

// BFloat16 is the upper half of a float32 bit pattern.
type BFloat16 uint16

// RoundMode selects how float32 values are narrowed to 16-bit storage.
type RoundMode uint8

const (
	// RoundNearestEven rounds to the nearest representable value, ties to even.
	RoundNearestEven RoundMode = iota
	// RoundTruncate discards the extra mantissa bits (round toward zero).
	RoundTruncate
)

func (m RoundMode) String() string {
	if m == RoundTruncate {
		return "truncate"
	}
	return "nearest-even"
}

// fp16Table maps every FP16 bit pattern to float32.
var fp16Table = func() [1 << 16]float32 {
	var tbl [1 << 16]float32
	for i := range tbl {
		tbl[i] = fp16ToF32(uint16(i))
	}
	return tbl
}()

// Float32 widens h exactly.
func (h Float16) Float32() float32 {
	return fp16Table[h]
}

// Float32 widens b exactly.
func (b BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(b) << 16)
}

// Float16From narrows f using the given rounding mode.
func Float16From(f float32, mode RoundMode) Float16 {
	return Float16(f32ToFP16Bits(f, mode))
}

// BFloat16From narrows f using the given rounding mode.
func BFloat16From(f float32, mode RoundMode) BFloat16 {
	return BFloat16(f32ToBF16Bits(math.Float32bits(f), mode))
}

func f32ToBF16Bits(u uint32, mode RoundMode) uint16 {
	if u&0x7FFFFFFF > 0x7F800000 {
		// Keep NaN quiet; low payload bits would otherwise vanish into Inf.
		return uint16(u>>16) | 0x0040
	}
	if mode == RoundTruncate {
		return uint16(u >> 16)
	}
	rnd := uint32(0x7FFF + ((u >> 16) & 1))
	return uint16((u + rnd) >> 16)
}

// f32ToFP16Bits implements IEEE 754 binary16 narrowing.
func f32ToFP16Bits(f float32, mode RoundMode) uint16 {
	u := math.Float32bits(f)
	sign := (u >> 31) & 0x1
	exp := int((u >> 23) & 0xFF)
	frac := u & 0x7FFFFF

	if exp == 0xFF {
		if frac != 0 {
			return uint16((sign << 15) | 0x7C00 | (frac >> 13) | 1)
		}
		return uint16((sign << 15) | 0x7C00)
	}

	e := exp - 127
	if e > 15 {
		return uint16((sign << 15) | 0x7C00)
	}
	if e < -14 {
		if e < -25 || (e == -25 && mode == RoundTruncate) {
			return uint16(sign << 15)
		}
		frac |= 0x800000
		shift := uint32(-1 - e)
		if mode == RoundNearestEven {
			rnd := uint32(1<<(shift-1)) - 1 + ((frac >> shift) & 1)
			frac += rnd
		}
		// A carry out of the subnormal range lands on the smallest normal,
		// which the bit layout already encodes correctly.
		return uint16((sign << 15) | (frac >> shift))
	}

	exp16 := uint32(e + 15)
	if mode == RoundNearestEven {
		frac += uint32(0xFFF + ((frac >> 13) & 1))
		if frac&0x800000 != 0 {
			exp16++
			frac = 0
			if exp16 >= 0x1F {
				return uint16((sign << 15) | 0x7C00)
			}
		}
	}
	return uint16((sign << 15) | (exp16 << 10) | (frac >> 13))
}

func fp16ToF32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h & 0x3FF)
	var f uint32
	switch exp {
	case 0:
		if frac == 0 {
			f = sign << 31
		} else {
			e := uint32(127 - 15 + 1)
			for (frac & 0x400) == 0 {
				frac <<= 1
				e--
			}
			frac &= 0x3FF
			f = (sign << 31) | (e << 23) | (frac << 13)
		}
	case 0x1F:
		f = (sign << 31) | 0x7F800000 | (frac << 13)
	default:
		e := exp + (127 - 15)
		f = (sign << 31) | (e << 23) | (frac << 13)
	}
	return math.Float32frombits(f)
}

// ToFloat32 widens src into dst. Widening is exact for every supported type.
func ToFloat32[T Element](dst []float32, src []T) {
	switch s := any(src).(type) {
	case []float32:
		copy(dst, s)
	case []Float16:
		for i, v := range s {
			dst[i] = fp16Table[v]
		}
	case []BFloat16:
		for i, v := range s {
			dst[i] = math.Float32frombits(uint32(v) << 16)
		}
	}
}

// FromFloat32 narrows src into dst with the given rounding mode.
func FromFloat32[T Element](dst []T, src []float32, mode RoundMode) {
	switch d := any(dst).(type) {
	case []float32:
		copy(d, src)
	case []Float16:
		for i, v := range src {
			d[i] = Float16From(v, mode)
		}
	case []BFloat16:
		for i, v := range src {
			d[i] = BFloat16From(v, mode)
		}
	}
}
