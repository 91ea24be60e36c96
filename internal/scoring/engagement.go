package scoring

import "fmt"

// Churn risk contributions.
const (
	churnLongSlumpPoints   = 50.0 // run of 3+ weak episodes
	churnShortSlumpPoints  = 25.0 // run of 2 weak episodes
	churnWeakRecentPoints  = 30.0 // last two both below p35
	churnBaselineMaxPoints = 35.0
	churnBaselineFactorMin = 10.0 // penalty worth naming as a factor
	churnSlumpMargin       = 0.4
)

// Average is the arithmetic mean score rounded to 2 decimals.
func Average(episodes []Episode) float64 {
	return round2(mean(scoresOf(episodes)))
}

// StdDev is the population standard deviation rounded to 2 decimals.
func StdDev(episodes []Episode) float64 {
	return round2(popStdDev(scoresOf(episodes)))
}

// AUC is the strictness-curved normalized mean, 0-100.
func (e Engine) AUC(episodes []Episode) float64 {
	if len(episodes) == 0 {
		return 0
	}
	return round1(e.percentCurve(normalizeScore(mean(scoresOf(episodes))) * 100))
}

// ThreeEpisodeHook scores the opening of the series, 0-100.
func (e Engine) ThreeEpisodeHook(episodes []Episode) float64 {
	if len(episodes) == 0 {
		return 0
	}
	n := min(3, len(episodes))
	return round1(e.percentCurve(normalizeScore(mean(scoresOf(episodes[:n]))) * 100))
}

// ChurnRisk scores the likelihood a viewer drops the series. Thresholds come
// from the catalog profile rather than absolute cutoffs.
func (e Engine) ChurnRisk(episodes []Episode, profile ScoreProfile) ChurnRisk {
	if len(episodes) == 0 {
		return ChurnRisk{Score: 0, Label: ChurnUnknown, Factors: []string{}}
	}
	scores := scoresOf(episodes)
	avg := mean(scores)

	threshold := min(max(avg-churnSlumpMargin, profile.P35), profile.P65)
	run := longestRun(scores, func(v float64) bool { return v <= threshold })

	risk := 0.0
	factors := []string{}
	switch {
	case run >= 3:
		risk += churnLongSlumpPoints
		factors = append(factors, fmt.Sprintf("Slump of %d weak episodes in a row", run))
	case run >= 2:
		risk += churnShortSlumpPoints
		factors = append(factors, "Back-to-back weak episodes")
	}

	n := len(scores)
	if n >= 2 && scores[n-1] < profile.P35 && scores[n-2] < profile.P35 {
		risk += churnWeakRecentPoints
		factors = append(factors, "Latest episodes below catalog baseline")
	}

	if penalty := (1 - normalizeScore(avg)) * churnBaselineMaxPoints; penalty > 0 {
		risk += penalty
		if penalty >= churnBaselineFactorMin {
			factors = append(factors, "Low overall quality")
		}
	}

	risk = min(risk, 100)
	score := round1(Strictness(risk, 0, 100, true, e.tuning.StrictnessExponent))
	return ChurnRisk{Score: score, Label: churnLabel(score), Factors: factors}
}

func churnLabel(score float64) string {
	switch {
	case score >= 75:
		return ChurnCritical
	case score >= 45:
		return ChurnHigh
	case score >= 20:
		return ChurnModerate
	default:
		return ChurnLow
	}
}

// longestRun is the length of the longest consecutive stretch satisfying pred.
func longestRun(scores []float64, pred func(float64) bool) int {
	best, cur := 0, 0
	for _, v := range scores {
		if pred(v) {
			cur++
			best = max(best, cur)
			continue
		}
		cur = 0
	}
	return best
}

// HabitBreakRisk is the longest run below the series' own median, per ten
// episodes.
func HabitBreakRisk(episodes []Episode) float64 {
	if len(episodes) == 0 {
		return 0
	}
	scores := scoresOf(episodes)
	med := median(scores)
	run := longestRun(scores, func(v float64) bool { return v < med })
	return round2(ratePer10(run, len(scores)))
}

// Momentum compares the last three episodes with the whole series, -100..100.
// Series under four episodes are neutral.
func Momentum(episodes []Episode) float64 {
	if len(episodes) < 4 {
		return 0
	}
	scores := scoresOf(episodes)
	recent := mean(scores[len(scores)-3:])
	return round1(clamp((recent-mean(scores))*50, -100, 100))
}

// NarrativeAcceleration is the OLS slope over the second half of the series.
func NarrativeAcceleration(episodes []Episode) float64 {
	if len(episodes) < 6 {
		return 0
	}
	scores := scoresOf(episodes)
	return round3(positionalSlope(scores[len(scores)/2:]))
}

// FinaleStrength compares the final quarter with everything before it;
// 50 is neutral.
func (e Engine) FinaleStrength(episodes []Episode) float64 {
	n := len(episodes)
	if n < 2 {
		return 50
	}
	scores := scoresOf(episodes)
	tail := 1
	if n >= 4 {
		tail = max(1, n/4)
	}
	diff := mean(scores[n-tail:]) - mean(scores[:n-tail])
	raw := clamp(50+diff*25, 0, 100)
	return round1(CenteredStrictness(raw, 50, 0, 100, e.tuning.StrictnessExponent))
}

// WorthFinishing blends finale, momentum and late acceleration, 0-100.
func (e Engine) WorthFinishing(episodes []Episode) float64 {
	if len(episodes) == 0 {
		return 0
	}
	finale := e.FinaleStrength(episodes)
	momentum := rescaleMomentum(Momentum(episodes))
	accel := rescaleSlope(NarrativeAcceleration(episodes), 200)
	return round1(e.percentCurve(finale*0.5 + momentum*0.3 + accel*0.2))
}

// rescaleMomentum maps -100..100 onto 0..100.
func rescaleMomentum(m float64) float64 {
	return clamp((m+100)/2, 0, 100)
}

// rescaleSlope maps a per-episode slope onto 0..100 around 50.
func rescaleSlope(slope, gain float64) float64 {
	return clamp(50+slope*gain, 0, 100)
}
