package scoring

import (
	"math"
	"sort"
)

// scoresOf extracts the score column, mapping non-finite values to the
// neutral middle of the scale.
func scoresOf(episodes []Episode) []float64 {
	out := make([]float64, len(episodes))
	for i, ep := range episodes {
		if math.IsNaN(ep.Score) || math.IsInf(ep.Score, 0) {
			out[i] = (MinScore + MaxScore) / 2
			continue
		}
		out[i] = ep.Score
	}
	return out
}

func sumFloat64(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sumFloat64(values) / float64(len(values))
}

// popStdDev is the population standard deviation.
func popStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// fitLinearModel is ordinary least squares of ys on xs.
func fitLinearModel(xs, ys []float64) (float64, float64, bool) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return 0, 0, false
	}
	meanX := mean(xs)
	meanY := mean(ys)
	var covariance float64
	var varianceX float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		covariance += dx * dy
		varianceX += dx * dx
	}
	if varianceX == 0 {
		return meanY, 0, true
	}
	slope := covariance / varianceX
	intercept := meanY - slope*meanX
	return intercept, slope, true
}

// positionalSlope regresses scores on their 1-based position in the slice.
func positionalSlope(scores []float64) float64 {
	xs := make([]float64, len(scores))
	for i := range scores {
		xs[i] = float64(i + 1)
	}
	_, slope, ok := fitLinearModel(xs, scores)
	if !ok {
		return 0
	}
	return slope
}

// normalizeScore maps a [1,5] score onto [0,1].
func normalizeScore(score float64) float64 {
	return clamp((score-MinScore)/(MaxScore-MinScore), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundTo(v float64, places int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func round1(v float64) float64 { return roundTo(v, 1) }
func round2(v float64) float64 { return roundTo(v, 2) }
func round3(v float64) float64 { return roundTo(v, 3) }

// smoothstep is a sigmoid-like ramp that is 0 at or below lo and 1 at or above hi.
func smoothstep(v, lo, hi float64) float64 {
	if hi <= lo {
		if v >= hi {
			return 1
		}
		return 0
	}
	t := clamp((v-lo)/(hi-lo), 0, 1)
	return t * t * (3 - 2*t)
}

// ratePer10 expresses a count as occurrences per ten episodes.
func ratePer10(count, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(count) / float64(n) * 10
}

// invertedClamp maps v in [0,limit] onto [100,0].
func invertedClamp(v, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return (1 - clamp(v/limit, 0, 1)) * 100
}
