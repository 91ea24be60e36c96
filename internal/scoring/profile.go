package scoring

import (
	"math"
	"sort"
)

// minProfileSamples is the smallest catalog that gets a derived profile.
const minProfileSamples = 5

// DefaultScoreProfile is the fixed baseline used for tiny catalogs.
func DefaultScoreProfile() ScoreProfile {
	return ScoreProfile{
		P35:    3.2,
		P50:    3.6,
		P65:    4.0,
		Source: ProfileSourceDefault,
	}
}

// BuildScoreProfile derives the p35/p50/p65 baseline from every finite
// episode score in the catalog.
func BuildScoreProfile(catalog []Series) ScoreProfile {
	var samples []float64
	for _, s := range catalog {
		for _, ep := range s.Episodes {
			if math.IsNaN(ep.Score) || math.IsInf(ep.Score, 0) {
				continue
			}
			samples = append(samples, ep.Score)
		}
	}
	return BuildScoreProfileFromScores(samples)
}

// BuildScoreProfileFromScores is BuildScoreProfile over a flat sample.
func BuildScoreProfileFromScores(scores []float64) ScoreProfile {
	samples := make([]float64, 0, len(scores))
	for _, v := range scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		samples = append(samples, v)
	}
	if len(samples) < minProfileSamples {
		profile := DefaultScoreProfile()
		profile.SampleSize = len(samples)
		return profile
	}
	sort.Float64s(samples)

	values := []float64{
		clamp(round2(percentile(samples, 0.35)), MinScore, MaxScore),
		clamp(round2(percentile(samples, 0.50)), MinScore, MaxScore),
		clamp(round2(percentile(samples, 0.65)), MinScore, MaxScore),
	}
	sort.Float64s(values)

	return ScoreProfile{
		P35:        values[0],
		P50:        values[1],
		P65:        values[2],
		SampleSize: len(samples),
		Source:     ProfileSourceDerived,
	}
}

// percentile uses linear interpolation between closest ranks; sorted must
// be ascending and non-empty.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// ResolveScoreProfile turns an optional, possibly hand-edited profile into
// one that satisfies p35 <= p50 <= p65 within [1,5]. A nil profile resolves
// to the default.
func ResolveScoreProfile(profile *ScoreProfile) ScoreProfile {
	def := DefaultScoreProfile()
	if profile == nil {
		return def
	}
	pick := func(v, fallback float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return clamp(v, MinScore, MaxScore)
	}
	values := []float64{
		pick(profile.P35, def.P35),
		pick(profile.P50, def.P50),
		pick(profile.P65, def.P65),
	}
	sort.Float64s(values)

	out := ScoreProfile{
		P35:        values[0],
		P50:        values[1],
		P65:        values[2],
		SampleSize: profile.SampleSize,
		Source:     profile.Source,
	}
	if out.SampleSize < 0 {
		out.SampleSize = 0
	}
	if out.Source != ProfileSourceDerived && out.Source != ProfileSourceDefault {
		out.Source = ProfileSourceDefault
	}
	return out
}
