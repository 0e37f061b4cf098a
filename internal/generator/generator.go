package generator

import (
	"math/rand/v2"

	"svw.info/alchemy/internal/ports"
)

// RandomGenerator creates bounded polyomino figures from a level palette.
type RandomGenerator struct {
	Rand ports.Rand
}

// NewRandomGenerator wires a generator over the given random source.
func NewRandomGenerator(r ports.Rand) *RandomGenerator {
	return &RandomGenerator{Rand: r}
}

// NewSeeded returns a generator with its own PCG stream.
func NewSeeded(seed uint64) *RandomGenerator {
	return NewRandomGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}
