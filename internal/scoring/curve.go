package scoring

import "math"

// Strictness remaps value within [min,max] through a power curve so that
// middling inputs land lower than a linear scale would put them. With
// lowerIsBetter the curve is applied to the distance from max, which makes
// a low (good) output equally hard to earn. Endpoints map to themselves.
func Strictness(value, min, max float64, lowerIsBetter bool, exponent float64) float64 {
	if max <= min {
		return min
	}
	if !(exponent > 0) {
		exponent = DefaultTuning().StrictnessExponent
	}
	n := clamp((value-min)/(max-min), 0, 1)
	var curved float64
	if lowerIsBetter {
		curved = 1 - math.Pow(1-n, exponent)
	} else {
		curved = math.Pow(n, exponent)
	}
	return min + curved*(max-min)
}

// CenteredStrictness applies the same curve on either side of center, so
// distance from the neutral point shrinks while its sign is kept.
func CenteredStrictness(value, center, min, max, exponent float64) float64 {
	if !(exponent > 0) {
		exponent = DefaultTuning().StrictnessExponent
	}
	value = clamp(value, min, max)
	switch {
	case value > center && max > center:
		span := max - center
		d := (value - center) / span
		return center + math.Pow(d, exponent)*span
	case value < center && center > min:
		span := center - min
		d := (center - value) / span
		return center - math.Pow(d, exponent)*span
	default:
		return center
	}
}

// percentCurve is the common case: a 0-100 metric where higher is better.
func (e Engine) percentCurve(v float64) float64 {
	return Strictness(v, 0, 100, false, e.tuning.StrictnessExponent)
}
