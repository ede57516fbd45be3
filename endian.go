package dff

import (
	"encoding/binary"
	"errors"
	"math/bits"
)

// ErrUnknownByteOrder is returned when the host is neither little nor big endian.
var ErrUnknownByteOrder = errors.New("unrecognized processor byte order")

// byteOrder converts integers loaded in host order from big endian disk
// bytes. The conversion is its own inverse.
type byteOrder struct {
	swap bool
}

// resolveByteOrder probes the host integer layout once.
func resolveByteOrder() (byteOrder, error) {
	return byteOrderFor(binary.NativeEndian.Uint32([]byte{0x01, 0x02, 0x03, 0x04}))
}

func byteOrderFor(probe uint32) (byteOrder, error) {
	switch probe {
	case 0x04030201:
		return byteOrder{swap: true}, nil
	case 0x01020304:
		return byteOrder{}, nil
	default:
		return byteOrder{}, ErrUnknownByteOrder
	}
}

func (o byteOrder) toHost32(x uint32) uint32 {
	if o.swap {
		return bits.ReverseBytes32(x)
	}

	return x
}

func (o byteOrder) toHost64(x uint64) uint64 {
	if o.swap {
		return bits.ReverseBytes64(x)
	}

	return x
}

func (o byteOrder) toDisk32(x uint32) uint32 { return o.toHost32(x) }
func (o byteOrder) toDisk64(x uint64) uint64 { return o.toHost64(x) }

// uint32 decodes a big endian value from b.
func (o byteOrder) uint32(b []byte) uint32 {
	return o.toHost32(binary.NativeEndian.Uint32(b))
}

// uint64 decodes a big endian value from b.
func (o byteOrder) uint64(b []byte) uint64 {
	return o.toHost64(binary.NativeEndian.Uint64(b))
}

// putUint64 encodes v big endian into b.
func (o byteOrder) putUint64(b []byte, v uint64) {
	binary.NativeEndian.PutUint64(b, o.toDisk64(v))
}
