// Package fstnode encodes and decodes a single frozen FST node into the
// compact binary format described by the node-encoding component of the
// spec: a one-byte header selecting per-field widths, fixed-width
// transition records so point lookups can binary-search instead of
// scanning, and the implicit address-0 "empty final" sentinel that is
// never actually written to the stream.
package fstnode

import "encoding/binary"

// fieldWidth is one of the four on-disk field sizes a header's 2-bit
// selector can name. Every transition record within one node shares the
// same address-delta width and the same output width, which is what makes
// the record table fixed-stride and therefore binary-searchable.
type fieldWidth uint8

const (
	width0 fieldWidth = iota // field omitted entirely; value is implicitly 0
	width1
	width4
	width8
)

// addrWidth is the distinct width set used for address deltas, which are
// never legitimately zero-width (a delta of 0 is the empty-final marker,
// not "no field"): 1, 2, 4, or 8 bytes.
type addrWidth uint8

const (
	addrWidth1 addrWidth = iota
	addrWidth2
	addrWidth4
	addrWidth8
)

func (w fieldWidth) bytes() int {
	switch w {
	case width0:
		return 0
	case width1:
		return 1
	case width4:
		return 4
	case width8:
		return 8
	}
	return 0
}

func (w addrWidth) bytes() int {
	switch w {
	case addrWidth1:
		return 1
	case addrWidth2:
		return 2
	case addrWidth4:
		return 4
	case addrWidth8:
		return 8
	}
	return 1
}

// fitsFieldWidth picks the narrowest {0,1,4,8}-byte width that can hold v,
// with 0 reserved for v == 0 (the omitted-field case).
func fitsFieldWidth(v uint64) fieldWidth {
	switch {
	case v == 0:
		return width0
	case v <= 0xFF:
		return width1
	case v <= 0xFFFFFFFF:
		return width4
	default:
		return width8
	}
}

// fitsAddrWidth picks the narrowest {1,2,4,8}-byte width that can hold v.
func fitsAddrWidth(v uint64) addrWidth {
	switch {
	case v <= 0xFF:
		return addrWidth1
	case v <= 0xFFFF:
		return addrWidth2
	case v <= 0xFFFFFFFF:
		return addrWidth4
	default:
		return addrWidth8
	}
}

// putUint writes v into buf using exactly n bytes, little-endian,
// truncating (the caller guarantees v fits, via fits*Width above).
func putUint(buf []byte, n int, v uint64) {
	switch n {
	case 0:
		return
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(buf, v)
	default:
		panic("fstnode: unsupported field width")
	}
}

// getUint reads an n-byte little-endian field, returning 0 for n == 0.
func getUint(buf []byte, n int) uint64 {
	switch n {
	case 0:
		return 0
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf))
	case 8:
		return binary.LittleEndian.Uint64(buf)
	default:
		panic("fstnode: unsupported field width")
	}
}
