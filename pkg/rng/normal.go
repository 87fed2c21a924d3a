package rng

import (
	"math/rand"
	"time"
)

var _ RNG = &NormalRNG{}

// NormalRNG generates normally distributed numbers
type NormalRNG struct {
	mean  float64
	stdev float64
	r     *rand.Rand
}

func (r *NormalRNG) Rand() float64 {
	return r.r.NormFloat64()*r.stdev + r.mean
}

// Sample returns n draws
func (r *NormalRNG) Sample(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Rand()
	}
	return out
}

func NewNormalRNG(mean float64, stdev float64, opts ...Option) *NormalRNG {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasSeed {
		o.seed = time.Now().UnixNano()
	}
	return &NormalRNG{
		mean:  mean,
		stdev: stdev,
		r:     rand.New(rand.NewSource(o.seed)),
	}
}
