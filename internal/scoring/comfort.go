package scoring

import "math"

const (
	// maxSquaredSwing is the squared size of a 1 to 5 jump.
	maxSquaredSwing  = 16.0
	maxAbsSwing      = 4.0
	stressDropSize   = 1.5
	barrierEpisodes  = 5
	barrierStdLimit  = 2.0 // largest possible stddev on a 1-5 scale
	stressRateLimit  = 5.0 // spikes per ten episodes that zero the term
	singleEpisodeMid = 50.0
)

func adjacentDiffs(scores []float64) []float64 {
	if len(scores) < 2 {
		return nil
	}
	out := make([]float64, len(scores)-1)
	for i := 1; i < len(scores); i++ {
		out[i-1] = scores[i] - scores[i-1]
	}
	return out
}

// FlowState rewards smooth episode-to-episode quality, 0-100.
func (e Engine) FlowState(episodes []Episode) float64 {
	switch len(episodes) {
	case 0:
		return 0
	case 1:
		return singleEpisodeMid
	}
	diffs := adjacentDiffs(scoresOf(episodes))
	var sq float64
	for _, d := range diffs {
		sq += d * d
	}
	raw := clamp(1-sq/(maxSquaredSwing*float64(len(diffs))), 0, 1)
	return round1(e.percentCurve(raw * 100))
}

// EmotionalStability penalizes the mean absolute swing, 0-100.
func (e Engine) EmotionalStability(episodes []Episode) float64 {
	switch len(episodes) {
	case 0:
		return 0
	case 1:
		return singleEpisodeMid
	}
	diffs := adjacentDiffs(scoresOf(episodes))
	var total float64
	for _, d := range diffs {
		total += math.Abs(d)
	}
	raw := clamp(1-(total/float64(len(diffs)))/maxAbsSwing, 0, 1)
	return round1(e.percentCurve(raw * 100))
}

// BarrierToEntry is the raw dispersion of the opening episodes; lower is
// better.
func BarrierToEntry(episodes []Episode) float64 {
	n := min(barrierEpisodes, len(episodes))
	return round2(popStdDev(scoresOf(episodes[:n])))
}

// StressSpikes counts sharp drops per ten episodes.
func StressSpikes(episodes []Episode) float64 {
	count := 0
	for _, d := range adjacentDiffs(scoresOf(episodes)) {
		if -d >= stressDropSize {
			count++
		}
	}
	return round2(ratePer10(count, len(episodes)))
}

// ComfortScore blends the smoothness metrics into one 0-100 value.
func (e Engine) ComfortScore(episodes []Episode) float64 {
	if len(episodes) == 0 {
		return 0
	}
	return e.comfortFrom(
		e.FlowState(episodes),
		e.EmotionalStability(episodes),
		BarrierToEntry(episodes),
		StressSpikes(episodes),
	)
}

func (e Engine) comfortFrom(flow, stability, barrier, spikes float64) float64 {
	score := flow*0.4 +
		stability*0.3 +
		invertedClamp(barrier, barrierStdLimit)*0.2 +
		invertedClamp(spikes, stressRateLimit)*0.1
	return round1(clamp(score, 0, 100))
}
