// ABOUTME: Body-weight-normalized score (Wilks, male coefficients) and Epley 1RM estimate.
// ABOUTME: Out-of-domain inputs return *DomainRangeError instead of panicking.
package scoring

import (
	"fmt"
	"math"
)

// Valid input ranges.
const (
	MinBodyweightKg = 40.0
	MaxBodyweightKg = 635.0
	MinReps         = 1
	MaxReps         = 30

	// Polynomial inputs above this use the cap; past it the curve turns over.
	polynomialCapKg = 201.9
)

// Wilks polynomial coefficients (male).
const (
	coefA = -216.0475144
	coefB = 16.2606339
	coefC = -0.002388645
	coefD = -0.00113732
	coefE = 7.01863e-6
	coefF = -1.291e-8
)

// DomainRangeError reports an argument outside the range a formula is defined for.
type DomainRangeError struct {
	Arg   string
	Value float64
	Min   float64
	Max   float64 // +Inf when there is no upper bound
	// MinExclusive is set when Min itself is not allowed (e.g. "> 0").
	MinExclusive bool
}

func (e *DomainRangeError) Error() string {
	switch {
	case math.IsInf(e.Max, 1) && e.MinExclusive:
		return fmt.Sprintf("%s must be greater than %g, got %g", e.Arg, e.Min, e.Value)
	case math.IsInf(e.Max, 1):
		return fmt.Sprintf("%s must be at least %g, got %g", e.Arg, e.Min, e.Value)
	default:
		return fmt.Sprintf("%s must be between %g and %g, got %g", e.Arg, e.Min, e.Max, e.Value)
	}
}

func positive(arg string, v float64) error {
	if v > 0 && !math.IsInf(v, 1) {
		return nil
	}
	return &DomainRangeError{Arg: arg, Value: v, Min: 0, Max: math.Inf(1), MinExclusive: true}
}

// Score computes the body-weight-normalized score for a lift total.
// Result is rounded to two decimals.
func Score(bodyweightKg, totalKg float64) (float64, error) {
	if !(bodyweightKg >= MinBodyweightKg && bodyweightKg <= MaxBodyweightKg) {
		return 0, &DomainRangeError{Arg: "bodyweightKg", Value: bodyweightKg, Min: MinBodyweightKg, Max: MaxBodyweightKg}
	}
	if err := positive("totalKg", totalKg); err != nil {
		return 0, err
	}
	return roundTo(totalKg*Coefficient(bodyweightKg), 2), nil
}

// Coefficient returns 500 / P(bw) without range checks.
func Coefficient(bw float64) float64 {
	bw = math.Min(bw, polynomialCapKg)
	// Horner form of a + b·bw + c·bw² + d·bw³ + e·bw⁴ + f·bw⁵
	p := coefA + bw*(coefB+bw*(coefC+bw*(coefD+bw*(coefE+bw*coefF))))
	return 500 / p
}

// EstimateOneRepMax extrapolates a single-rep max from a set using the Epley formula.
// A single rep is returned as-is; otherwise the result is rounded to one decimal.
func EstimateOneRepMax(weightKg float64, reps int) (float64, error) {
	if reps < MinReps || reps > MaxReps {
		return 0, &DomainRangeError{Arg: "reps", Value: float64(reps), Min: MinReps, Max: MaxReps}
	}
	if err := positive("weightKg", weightKg); err != nil {
		return 0, err
	}
	if reps == 1 {
		return weightKg, nil
	}
	return roundTo(weightKg*(1+float64(reps)/30), 1), nil
}

// roundTo rounds half away from zero at the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
