package gen

import (
	"github.com/ojrac/opensimplex-go"
)

// NoiseParams describes one octave-summed noise layer.
type NoiseParams struct {
	Scale       float64 // horizontal size of a feature in blocks
	Amplitude   float64
	Octaves     int
	Persistence float64 // amplitude factor per octave
	Lacunarity  float64 // frequency factor per octave
}

// OctaveNoise is a noise layer bound to its own fields, one per octave.
type OctaveNoise struct {
	p      NoiseParams
	fields []opensimplex.Noise
}

func NewOctaveNoise(p NoiseParams, stream *NoiseStream) *OctaveNoise {
	if p.Octaves < 1 {
		p.Octaves = 1
	}
	if p.Scale == 0 {
		p.Scale = 1
	}
	if p.Lacunarity == 0 {
		p.Lacunarity = 2
	}
	if p.Persistence == 0 {
		p.Persistence = 0.5
	}
	n := &OctaveNoise{p: p}
	for i := 0; i < p.Octaves; i++ {
		n.fields = append(n.fields, stream.Next())
	}
	return n
}

// Eval2 returns a value in about [-Amplitude, Amplitude].
func (n *OctaveNoise) Eval2(x, z float64) float64 {
	var (
		sum, norm float64
		amp       = 1.0
		freq      = 1 / n.p.Scale
	)
	for _, f := range n.fields {
		sum += f.Eval2(x*freq, z*freq) * amp
		norm += amp
		amp *= n.p.Persistence
		freq *= n.p.Lacunarity
	}
	return sum / norm * n.p.Amplitude
}

// Layered sums several octave noises.
type Layered []*OctaveNoise

func NewLayered(params []NoiseParams, stream *NoiseStream) Layered {
	var l Layered
	for _, p := range params {
		l = append(l, NewOctaveNoise(p, stream))
	}
	return l
}

func (l Layered) Eval2(x, z float64) float64 {
	var sum float64
	for _, n := range l {
		sum += n.Eval2(x, z)
	}
	return sum
}

// noise01 maps a raw field into [0,1].
func noise01(f opensimplex.Noise, x, z float64) float64 {
	v := (f.Eval2(x, z) + 1) / 2
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
