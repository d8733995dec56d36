package world

import (
	"math"
)

// Deterministic 2D value noise with multiple octaves.
// Lattice values and decoration rolls come from fixed integer hashes,
// so identical inputs give identical outputs on every platform.

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// mix64 is the SplitMix64 finalizer.
func mix64(v uint64) uint64 {
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

// hash2 hashes a column coordinate.
func hash2(x, z int, seed int64) uint32 {
	v := uint64(int64(x))*0x9E3779B97F4A7C15 + uint64(int64(z))*0x6C62272E07BB0142 + uint64(seed)
	return uint32(mix64(v) >> 32)
}

// hash3 hashes a block coordinate.
func hash3(x, y, z int, seed int64) uint32 {
	v := uint64(int64(x))*0x9E3779B97F4A7C15 + uint64(int64(y))*0x517CC1B727220A95 + uint64(int64(z))*0x6C62272E07BB0142 + uint64(seed)
	return uint32(mix64(v) >> 32)
}

func latticeValue(x, z int, seed int64) float64 {
	// Map to [0,1]
	return float64(hash2(x, z, seed)) / float64(math.MaxUint32)
}

func valueNoise2D(x, z float64, seed int64) float64 {
	x0 := math.Floor(x)
	z0 := math.Floor(z)
	ix, iz := int(x0), int(z0)

	fx := smoothstep(x - x0)
	fz := smoothstep(z - z0)

	v00 := latticeValue(ix, iz, seed)
	v10 := latticeValue(ix+1, iz, seed)
	v01 := latticeValue(ix, iz+1, seed)
	v11 := latticeValue(ix+1, iz+1, seed)

	i0 := lerp(v00, v10, fx)
	i1 := lerp(v01, v11, fx)
	return lerp(i0, i1, fz) // [0,1]
}

// octaveNoise2D sums octaves of value noise and normalises by the
// amplitude total, so the result stays in [0,1].
func octaveNoise2D(x, z float64, seed int64, octaves int, frequency, persistence, lacunarity float64) float64 {
	amplitude := 1.0
	sum := 0.0
	norm := 0.0
	for i := 0; i < octaves; i++ {
		v := valueNoise2D(x*frequency, z*frequency, seed+int64(i*131))
		sum += v * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// ridge folds [0,1] noise into a peak at 0.5.
func ridge(n float64) float64 {
	return 1 - math.Abs(2*n-1)
}
