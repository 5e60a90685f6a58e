package train

import (
	"math"
	"time"
)

// newTicker wraps time.NewTicker for the monitor's 100ms cadence; a
// named helper keeps the magic interval in one place.
func newTicker(ms int) *time.Ticker {
	return time.NewTicker(time.Duration(ms) * time.Millisecond)
}

func floatFromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

func floatToBits(f float64) uint64 {
	return math.Float64bits(f)
}
