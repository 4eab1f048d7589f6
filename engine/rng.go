package engine

// RNG is a 32-bit xorshift generator. It lives inside GenerationState so
// tests can inject a seed and replay exact note sequences; it is reseeded
// only at learning->generating transitions and at phrase resets.
type RNG struct {
	state uint32
}

// NewRNG seeds the generator. A zero seed would lock xorshift at zero, so
// it is coerced to a fixed odd constant.
func NewRNG(seed uint32) RNG {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return RNG{state: seed}
}

// Seed resets the generator state
func (r *RNG) Seed(seed uint32) {
	*r = NewRNG(seed)
}

// Uint32 advances the generator
func (r *RNG) Uint32() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Float64 returns a draw in [0,1)
func (r *RNG) Float64() float64 {
	return float64(r.Uint32()) / (1 << 32)
}

// IntN returns a draw in [0,n). n must be positive.
func (r *RNG) IntN(n int) int {
	return int(r.Uint32() % uint32(n))
}
