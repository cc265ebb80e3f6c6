package internal

import "math"

// BoolHash returns a hash value for the given boolean value.
func BoolHash(b bool) uint64 {
	if b {
		return (1 << 35) - 1
	}
	return ((1 << 29) - 1) << 35
}

// StringHash returns a hash value for the given string value.
func StringHash(s string) (hash uint64) {
	// DJBX33A
	hash = 5381
	for _, b := range s {
		hash = ((hash << 5) + hash) + uint64(b)
	}
	return
}

// IntHash returns a hash value for the given int value.
func IntHash(i int) uint64 {
	// splitmix64 finalizer
	x := uint64(i)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Float64Hash returns a hash value for the given float64 value.
func Float64Hash(f float64) uint64 {
	return IntHash(int(math.Float64bits(f)))
}
