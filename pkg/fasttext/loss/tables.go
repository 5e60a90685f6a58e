// Package loss implements the four output objectives — negative
// sampling, hierarchical softmax, full softmax and one-vs-all — behind a
// single narrow interface, the Go analogue of the original
// implementation's Loss class hierarchy (spec §4.3, §4.4).
package loss

import "math"

const (
	sigmoidTableSize = 512
	maxSigmoidArg    = 8.0
	logTableSize     = 512
)

var (
	sigmoidTable [sigmoidTableSize + 1]float32
	logTable     [logTableSize + 1]float32
)

func init() {
	for i := 0; i <= sigmoidTableSize; i++ {
		x := (float64(i)*2/sigmoidTableSize - 1) * maxSigmoidArg
		sigmoidTable[i] = float32(1.0 / (1.0 + math.Exp(-x)))
	}
	for i := 0; i <= logTableSize; i++ {
		x := (float64(i) + 1e-5) / logTableSize
		logTable[i] = float32(math.Log(x))
	}
}

// sigmoid is a 512-entry lookup-table approximation of 1/(1+e^-x) over
// [-8, 8], saturating to 0/1 outside that range (spec §4.3 "Sigmoid and
// log tables").
func sigmoid(x float32) float32 {
	if x < -maxSigmoidArg {
		return 0
	}
	if x > maxSigmoidArg {
		return 1
	}
	idx := int((x + maxSigmoidArg) * (sigmoidTableSize / (2 * maxSigmoidArg)))
	return sigmoidTable[idx]
}

// logLookup is a 512-entry lookup-table approximation of ln(x) over (0, 1].
func logLookup(x float32) float32 {
	if x > 1.0 {
		return 0
	}
	idx := int(x * logTableSize)
	return logTable[idx]
}

// std lib math.Log32 doesn't exist; this keeps every loss implementation
// from importing math directly for the rare values outside the table's
// domain (negative/zero dot products can arise transiently before a NaN
// check catches them upstream).
func safeLog(x float32) float32 {
	if x <= 0 {
		return float32(math.Inf(-1))
	}
	return logLookup(x)
}
