package rle

import (
	"encoding/binary"
	"math/bits"
)

const (
	lowBits  = 0x0101010101010101
	packMult = 0x0102040810204080
)

// Word codes eight columns per 64-bit load. The low bit of every byte is
// packed into an 8-bit mask, and the boundaries are the set bits of the
// mask xor'ed with itself shifted by one column.
type Word struct{}

// Name implements Encoder.
func (Word) Name() string { return string(KindWord) }

// pack gathers the low bit of byte i of x into bit i of the result.
func pack(x uint64) uint64 {
	return ((x & lowBits) * packMult) >> 56
}

// Encode implements Encoder.
func (Word) Encode(row []uint8, rlc []int16) int {
	n := 0
	var prev uint64
	col := 0
	for ; col+8 <= len(row); col += 8 {
		m := pack(binary.LittleEndian.Uint64(row[col:]))
		edges := (m ^ (m<<1 | prev)) & 0xff
		for edges != 0 {
			rlc[n] = int16(col + bits.TrailingZeros64(edges))
			n++
			edges &= edges - 1
		}
		prev = m >> 7
	}
	p := uint8(prev)
	for ; col < len(row); col++ {
		v := row[col] & 1
		if v != p {
			rlc[n] = int16(col)
			n++
			p = v
		}
	}
	if p != 0 {
		rlc[n] = int16(len(row))
		n++
	}
	terminate(rlc, n)
	return n
}

// EncodeER implements Encoder.
func (Word) EncodeER(row []uint8, rlc []int16, er []int16) int {
	n := 0
	var prev uint64
	er[0] = 0
	col := 0
	for ; col+8 <= len(row); col += 8 {
		m := pack(binary.LittleEndian.Uint64(row[col:]))
		edges := (m ^ (m<<1 | prev)) & 0xff
		prev = m >> 7
		if edges == 0 {
			// uniform word, the rank does not move
			fill := er[col+1 : col+9]
			for i := range fill {
				fill[i] = int16(n)
			}
			continue
		}
		for i := 0; i < 8; i++ {
			if edges>>uint(i)&1 != 0 {
				rlc[n] = int16(col + i)
				n++
			}
			er[col+i+1] = int16(n)
		}
	}
	p := uint8(prev)
	for ; col < len(row); col++ {
		v := row[col] & 1
		if v != p {
			rlc[n] = int16(col)
			n++
			p = v
		}
		er[col+1] = int16(n)
	}
	if p != 0 {
		rlc[n] = int16(len(row))
		n++
	}
	er[len(row)+1] = int16(n)
	terminate(rlc, n)
	return n
}
