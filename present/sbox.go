// Package present implements the PRESENT block cipher in bit-sliced form,
// 64 instances at a time, together with a plain reference implementation used
// to cross-check it.
package present

// SboxTable is the PRESENT S-box.
var SboxTable = [16]uint8{
	0xc, 0x5, 0x6, 0xb, 0x9, 0x0, 0xa, 0xd,
	0x3, 0xe, 0xf, 0x8, 0x4, 0x7, 0x1, 0x2,
}

// SboxInverse is the inverse of SboxTable.
var SboxInverse = [16]uint8{
	0x5, 0xe, 0xf, 0x8, 0xc, 0x1, 0x2, 0xd,
	0xb, 0x4, 0x6, 0x3, 0x0, 0x7, 0x9, 0xa,
}

// Sbox evaluates the S-box on 64 nibbles at once. x0 carries the least
// significant input bit of every nibble and y0 the least significant output
// bit, so that for every lane the result equals SboxTable[x3 x2 x1 x0].
func Sbox(x0, x1, x2, x3 uint64) (y0, y1, y2, y3 uint64) {
	t1 := x1 ^ x2
	t2 := x2 & t1
	t3 := x3 ^ t2
	y0 = x0 ^ t3
	t2 = t1 & t3
	t1 ^= y0
	t2 ^= x2
	t4 := x0 | t2
	y1 = t1 ^ t4
	t2 ^= ^x0
	y3 = y1 ^ t2
	t2 |= t1
	y2 = t3 ^ t2
	return y0, y1, y2, y3
}
