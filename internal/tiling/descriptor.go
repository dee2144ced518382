package tiling

import (
	"encoding/binary"
	"fmt"
)

// DescriptorSize is the encoded size of a Descriptor in bytes.
const DescriptorSize = 16

// Descriptor is the partition parameter block handed to every unit. It is
// produced once by the planner and never modified.
type Descriptor struct {
	BigUnitElems   uint32 `json:"big_unit_elems"`
	SmallUnitElems uint32 `json:"small_unit_elems"`
	TileElems      uint32 `json:"tile_elems"`
	BigUnitCount   uint32 `json:"big_unit_count"`
}

// MarshalBinary encodes the four fields as little-endian uint32 in
// declaration order.
func (d Descriptor) MarshalBinary() ([]byte, error) {
	b := make([]byte, DescriptorSize)
	binary.LittleEndian.PutUint32(b[0:], d.BigUnitElems)
	binary.LittleEndian.PutUint32(b[4:], d.SmallUnitElems)
	binary.LittleEndian.PutUint32(b[8:], d.TileElems)
	binary.LittleEndian.PutUint32(b[12:], d.BigUnitCount)
	return b, nil
}

// UnmarshalBinary decodes the 16-byte block written by MarshalBinary.
func (d *Descriptor) UnmarshalBinary(b []byte) error {
	if len(b) != DescriptorSize {
		return fmt.Errorf("descriptor: got %d bytes, want %d", len(b), DescriptorSize)
	}
	d.BigUnitElems = binary.LittleEndian.Uint32(b[0:])
	d.SmallUnitElems = binary.LittleEndian.Uint32(b[4:])
	d.TileElems = binary.LittleEndian.Uint32(b[8:])
	d.BigUnitCount = binary.LittleEndian.Uint32(b[12:])
	return nil
}

// UnitSpan returns the padded element range of unit u. Units with index
// below BigUnitCount receive BigUnitElems, the rest SmallUnitElems.
func (d Descriptor) UnitSpan(u int) (offset, count int) {
	big, small, nBig := int(d.BigUnitElems), int(d.SmallUnitElems), int(d.BigUnitCount)
	if u < nBig {
		return u * big, big
	}
	return nBig*big + (u-nBig)*small, small
}

// UnitRange clips UnitSpan to the first total elements, so the ranges of all
// units add up to exactly total.
func (d Descriptor) UnitRange(u, total int) (offset, count int) {
	offset, count = d.UnitSpan(u)
	if offset >= total {
		return total, 0
	}
	return offset, min(count, total-offset)
}
