package simulation

import (
	"hash/fnv"
	"math"
	"math/rand"
)

const (
	basePrice  = 100.0
	driftRate  = 0.0002
	volatility = 0.02
)

// pricePath generates a seeded geometric random walk for a symbol.
// The same (symbol, seed) pair always yields the same path.
func pricePath(symbol string, seed int64, steps int) []float64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(seed ^ int64(h.Sum64())))

	path := make([]float64, steps)
	price := basePrice * (0.5 + rng.Float64())
	for i := 0; i < steps; i++ {
		shock := rng.NormFloat64() * volatility
		price *= math.Exp(driftRate - volatility*volatility/2 + shock)
		path[i] = price
	}
	return path
}

// movingAverage returns the mean of the window ending at index i.
func movingAverage(path []float64, i, window int) float64 {
	start := i - window + 1
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for j := start; j <= i; j++ {
		sum += path[j]
	}
	return sum / float64(i-start+1)
}
