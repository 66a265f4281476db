package present

// MaxRounds is the number of rounds of full PRESENT.
const MaxRounds = 31

// State is a Lane-State: 64 cipher instances in bit-sliced form. Lane i holds
// state bit 63-i of every instance; see package bitslice.
type State [64]uint64

// Engine encrypts bit-sliced states. It owns the scratch buffer of the
// substitution layer, so an Engine must not be shared between goroutines.
// The zero value is ready to use.
type Engine struct {
	scratch State
}

// Encrypt encrypts the 64 instances in x under rk in place.
// With rk.Rounds == 0 only the whitening key is added.
func (e *Engine) Encrypt(x *State, rk *RoundKeys) {
	for r := 0; r < rk.Rounds; r++ {
		addRoundKey(x, rk.Block(r))
		sBoxLayer(&e.scratch, x)
		pLayer(x, &e.scratch)
	}
	addRoundKey(x, rk.Block(rk.Rounds))
}

// Encrypt is a convenience wrapper around a stack-local Engine.
func Encrypt(x *State, rk *RoundKeys) {
	var e Engine
	e.Encrypt(x, rk)
}

func addRoundKey(x *State, k []uint64) {
	_ = k[63]
	for i := range x {
		x[i] ^= k[i]
	}
}

// sBoxLayer applies the S-box to the 16 nibbles. Lane 4g is the most
// significant bit of its nibble.
func sBoxLayer(y, x *State) {
	for g := 0; g < 64; g += 4 {
		y[g+3], y[g+2], y[g+1], y[g] = Sbox(x[g+3], x[g+2], x[g+1], x[g])
	}
}

// pLayer moves bit b of nibble k to position 16b+k.
func pLayer(x, y *State) {
	for k := 0; k < 16; k++ {
		x[k] = y[4*k]
		x[16+k] = y[4*k+1]
		x[32+k] = y[4*k+2]
		x[48+k] = y[4*k+3]
	}
}
