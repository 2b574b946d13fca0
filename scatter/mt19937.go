package scatter

import "math/bits"

// mt19937 is the 32-bit Mersenne Twister. Seeding and bounded draws follow
// CPython's random module so permutations match files written by other
// implementations of the format.
const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

type mt19937 struct {
	state [mtN]uint32
	index int
}

// newMT19937 seeds the generator from a non-negative integer the way
// random.Random(seed) does: the integer is split into 32-bit words, least
// significant first, and fed to init_by_array.
func newMT19937(seed uint64) *mt19937 {
	key := []uint32{uint32(seed)}
	if hi := uint32(seed >> 32); hi != 0 {
		key = append(key, hi)
	}
	m := &mt19937{}
	m.initByArray(key)
	return m
}

func (m *mt19937) initGenrand(s uint32) {
	m.state[0] = s
	for i := 1; i < mtN; i++ {
		prev := m.state[i-1]
		m.state[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	m.index = mtN
}

func (m *mt19937) initByArray(key []uint32) {
	m.initGenrand(19650218)
	i, j := 1, 0
	k := max(mtN, len(key))
	for ; k > 0; k-- {
		prev := m.state[i-1]
		m.state[i] = (m.state[i] ^ ((prev ^ (prev >> 30)) * 1664525)) + key[j] + uint32(j)
		i++
		j++
		if i >= mtN {
			m.state[0] = m.state[mtN-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}
	for k = mtN - 1; k > 0; k-- {
		prev := m.state[i-1]
		m.state[i] = (m.state[i] ^ ((prev ^ (prev >> 30)) * 1566083941)) - uint32(i)
		i++
		if i >= mtN {
			m.state[0] = m.state[mtN-1]
			i = 1
		}
	}
	m.state[0] = 0x80000000
	m.index = mtN
}

func (m *mt19937) twist() {
	mag := func(y uint32) uint32 { return (y & 1) * mtMatrixA }
	var kk int
	for ; kk < mtN-mtM; kk++ {
		y := (m.state[kk] & mtUpperMask) | (m.state[kk+1] & mtLowerMask)
		m.state[kk] = m.state[kk+mtM] ^ (y >> 1) ^ mag(y)
	}
	for ; kk < mtN-1; kk++ {
		y := (m.state[kk] & mtUpperMask) | (m.state[kk+1] & mtLowerMask)
		m.state[kk] = m.state[kk+mtM-mtN] ^ (y >> 1) ^ mag(y)
	}
	y := (m.state[mtN-1] & mtUpperMask) | (m.state[0] & mtLowerMask)
	m.state[mtN-1] = m.state[mtM-1] ^ (y >> 1) ^ mag(y)
	m.index = 0
}

// Uint32 returns the next tempered output.
func (m *mt19937) Uint32() uint32 {
	if m.index >= mtN {
		m.twist()
	}
	y := m.state[m.index]
	m.index++
	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// Bits returns a k-bit value (k <= 64). Wide draws consume 32-bit words
// least significant first and drop the low bits of the final word.
func (m *mt19937) Bits(k int) uint64 {
	if k <= 0 {
		return 0
	}
	if k <= 32 {
		return uint64(m.Uint32() >> (32 - k))
	}
	var v uint64
	for shift := 0; k > 0; shift, k = shift+32, k-32 {
		r := m.Uint32()
		if k < 32 {
			r >>= 32 - k
		}
		v |= uint64(r) << shift
	}
	return v
}

// Below returns a uniform value in [0, n) by rejection sampling on
// bit_length(n) bits.
func (m *mt19937) Below(n uint64) uint64 {
	k := bits.Len64(n)
	r := m.Bits(k)
	for r >= n {
		r = m.Bits(k)
	}
	return r
}
