// Package luck provides deterministic pseudo-random values keyed by a world
// seed, a grid coordinate and a purpose tag. The same inputs always produce
// the same output, across calls, sessions and processes. There is no internal
// state.
package luck

const (
	mulA = 0x9e3779b97f4a7c15
	mulB = 0xbf58476d1ce4e5b9
)

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// fnv1a keeps tags ("value", "spawn", ...) in distinct hash streams.
func fnv1a(s string) uint64 {
	h := uint64(14695981039346656037)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// Bits returns the raw mixed hash for (seed, i, j, tag).
func Bits(seed int64, i, j int, tag string) uint64 {
	ui := uint64(uint32(int32(i)))
	uj := uint64(uint32(int32(j)))
	v := uint64(seed) ^ (ui * mulA) ^ (uj * mulB) ^ fnv1a(tag)
	return mix64(v)
}

// Float returns a value in [0,1).
func Float(seed int64, i, j int, tag string) float64 {
	return float64(Bits(seed, i, j, tag)>>11) / (1 << 53)
}
