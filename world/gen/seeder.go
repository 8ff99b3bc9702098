package gen

import (
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

// Seeder is a 128 bit hashed state. Pushing integers derives new seeders,
// so every random draw of the generator is keyed by a tag and the
// coordinates it belongs to, and never by the order of generation.
type Seeder struct {
	state [2]uint64
	word  int
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func NewSeeder(seed int64) Seeder {
	s0 := mix64(uint64(seed))
	return Seeder{state: [2]uint64{s0, mix64(s0)}}
}

// PushInt returns a new seeder with n mixed into the next state word.
func (s Seeder) PushInt(n int) Seeder {
	s.state[s.word] = mix64(s.state[s.word] ^ uint64(int64(n)))
	s.word = (s.word + 1) % len(s.state)
	return s
}

func (s Seeder) PushInts(ns ...int) Seeder {
	for _, n := range ns {
		s = s.PushInt(n)
	}
	return s
}

// Rng starts a fresh stream from the current state.
func (s Seeder) Rng() *Rng {
	r := &Rng{s0: s.state[0], s1: s.state[1]}
	if r.s0 == 0 && r.s1 == 0 {
		r.s0 = 1
	}
	for i := 0; i < 4; i++ {
		r.Uint64()
	}
	return r
}

// Rand wraps Rng for the helpers of math/rand.
func (s Seeder) Rand() *rand.Rand {
	return rand.New(s.Rng())
}

// NoiseStream yields noise fields seeded from successive draws of Rng.
func (s Seeder) NoiseStream() *NoiseStream {
	return &NoiseStream{rng: s.Rng()}
}

// Rng is a xorshift128+ generator. It implements rand.Source64.
type Rng struct {
	s0, s1 uint64
}

func (r *Rng) Uint64() uint64 {
	s1, s0 := r.s0, r.s1
	r.s0 = s0
	s1 ^= s1 << 23
	r.s1 = s1 ^ s0 ^ (s1 >> 17) ^ (s0 >> 26)
	return r.s1 + s0
}

func (r *Rng) Uint32() uint32 {
	return uint32(r.Uint64() >> 32)
}

func (r *Rng) Int63() int64 {
	return int64(r.Uint64() >> 1)
}

// Seed resets r as if it came from NewSeeder(seed).Rng().
func (r *Rng) Seed(seed int64) {
	*r = *NewSeeder(seed).Rng()
}

type NoiseStream struct {
	rng *Rng
}

func (n *NoiseStream) Next() opensimplex.Noise {
	return opensimplex.New(int64(n.rng.Uint32()))
}
