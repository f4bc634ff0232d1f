package rle

// Scalar codes one column per iteration without branching on the data.
// The candidate boundary is written on every column and only kept when
// the column flips the foreground state.
type Scalar struct{}

// Name implements Encoder.
func (Scalar) Name() string { return string(KindScalar) }

// Encode implements Encoder.
func (Scalar) Encode(row []uint8, rlc []int16) int {
	var prev uint8
	n := 0
	for col, v := range row {
		v &= 1
		rlc[n] = int16(col)
		n += int(v ^ prev)
		prev = v
	}
	if prev != 0 {
		rlc[n] = int16(len(row))
		n++
	}
	terminate(rlc, n)
	return n
}

// EncodeER implements Encoder.
func (Scalar) EncodeER(row []uint8, rlc []int16, er []int16) int {
	var prev uint8
	n := 0
	er[0] = 0
	for col, v := range row {
		v &= 1
		rlc[n] = int16(col)
		n += int(v ^ prev)
		er[col+1] = int16(n)
		prev = v
	}
	if prev != 0 {
		rlc[n] = int16(len(row))
		n++
	}
	er[len(row)+1] = int16(n)
	terminate(rlc, n)
	return n
}

// Branchy codes one column per iteration and only stores on an edge.
type Branchy struct{}

// Name implements Encoder.
func (Branchy) Name() string { return string(KindBranchy) }

// Encode implements Encoder.
func (Branchy) Encode(row []uint8, rlc []int16) int {
	var prev uint8
	n := 0
	for col, v := range row {
		v &= 1
		if v != prev {
			rlc[n] = int16(col)
			n++
			prev = v
		}
	}
	if prev != 0 {
		rlc[n] = int16(len(row))
		n++
	}
	terminate(rlc, n)
	return n
}

// EncodeER implements Encoder.
func (Branchy) EncodeER(row []uint8, rlc []int16, er []int16) int {
	var prev uint8
	n := 0
	er[0] = 0
	for col, v := range row {
		v &= 1
		if v != prev {
			rlc[n] = int16(col)
			n++
			prev = v
		}
		er[col+1] = int16(n)
	}
	if prev != 0 {
		rlc[n] = int16(len(row))
		n++
	}
	er[len(row)+1] = int16(n)
	terminate(rlc, n)
	return n
}
