package scoring

const (
	trendThreshold      = 0.05
	dipMargin           = 0.8
	dipPenalty          = 3.0
	pqiStdLimit         = 1.5
	pqiTrendGain        = 500.0
	extremeLow          = 1.5
	extremeHigh         = 4.5
	sharkJumpDrop       = 0.8
	sharkJumpPersistent = 0.6
)

// QualityTrendOf regresses score on position across the whole series.
func QualityTrendOf(episodes []Episode) QualityTrend {
	if len(episodes) < 3 {
		return QualityTrend{Slope: 0, Direction: TrendStable}
	}
	slope := round3(positionalSlope(scoresOf(episodes)))
	direction := TrendStable
	switch {
	case slope > trendThreshold:
		direction = TrendImproving
	case slope < -trendThreshold:
		direction = TrendDeclining
	}
	return QualityTrend{Slope: slope, Direction: direction}
}

// QualityDips lists episodes scoring more than 0.8 under the series mean.
func QualityDips(episodes []Episode) []QualityDip {
	dips := []QualityDip{}
	if len(episodes) == 0 {
		return dips
	}
	scores := scoresOf(episodes)
	avg := mean(scores)
	for i, ep := range episodes {
		if avg-scores[i] > dipMargin {
			dips = append(dips, QualityDip{
				Episode:   ep.Index,
				Score:     scores[i],
				Deviation: round2(scores[i] - avg),
			})
		}
	}
	return dips
}

// ProductionQualityIndex is the headline craft composite, 0-100.
func (e Engine) ProductionQualityIndex(episodes []Episode, profile ScoreProfile) float64 {
	if len(episodes) == 0 {
		return 0
	}
	return e.productionQualityFrom(
		Average(episodes),
		StdDev(episodes),
		QualityTrendOf(episodes).Slope,
		e.ThreeEpisodeHook(episodes),
		e.ChurnRisk(episodes, profile).Score,
		len(QualityDips(episodes)),
	)
}

func (e Engine) productionQualityFrom(avg, std, slope, hook, churn float64, dips int) float64 {
	score := normalizeScore(avg)*100*0.35 +
		invertedClamp(std, pqiStdLimit)*0.15 +
		rescaleSlope(slope, pqiTrendGain)*0.20 +
		hook*0.15 +
		(100-churn)*0.15 -
		dipPenalty*float64(dips)
	return round1(e.percentCurve(clamp(score, 0, 100)))
}

// RollingAverage is the trailing window mean, starting at the first full
// window. It is empty when the series is shorter than the window.
func RollingAverage(episodes []Episode, window int) []RollingPoint {
	if window < 1 {
		window = 1
	}
	rolling := rawRolling(scoresOf(episodes), window)
	points := make([]RollingPoint, 0, len(rolling))
	for i, avg := range rolling {
		points = append(points, RollingPoint{
			Episode:    episodes[i+window-1].Index,
			RollingAvg: round2(avg),
		})
	}
	return points
}

// ControversyPotential rewards wide spreads and polarizing extremes, 0-100.
func (e Engine) ControversyPotential(episodes []Episode) float64 {
	if len(episodes) < 3 {
		return 0
	}
	scores := scoresOf(episodes)
	lo, hi := scores[0], scores[0]
	for _, v := range scores[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	raw := (hi - lo) / (MaxScore - MinScore) * 50
	hasLow, hasHigh := lo <= extremeLow, hi >= extremeHigh
	switch {
	case hasLow && hasHigh:
		raw += 50
	case hasLow || hasHigh:
		raw += 25
	}
	return round1(e.percentCurve(clamp(raw, 0, 100)))
}

// SharkJump finds the first rolling-average drop that the rest of the
// series never recovers from. It returns nil when there is none.
func (e Engine) SharkJump(episodes []Episode) *SharkJump {
	window := e.tuning.RollingWindow
	if window < 1 {
		window = DefaultTuning().RollingWindow
	}
	if len(episodes) < 2*window {
		return nil
	}
	scores := scoresOf(episodes)
	rolling := rawRolling(scores, window)
	for i := 1; i < len(rolling); i++ {
		drop := rolling[i-1] - rolling[i]
		if drop <= sharkJumpDrop {
			continue
		}
		pos := i + window - 1
		pre := mean(scores[:pos])
		post := mean(scores[pos:])
		if pre-post > sharkJumpPersistent {
			return &SharkJump{
				Episode:    episodes[pos].Index,
				DropAmount: round2(drop),
				PreMean:    round2(pre),
				PostMean:   round2(post),
			}
		}
	}
	return nil
}

// rawRolling is RollingAverage without rounding, indexed from the first full
// window.
func rawRolling(scores []float64, window int) []float64 {
	if len(scores) < window {
		return nil
	}
	out := make([]float64, 0, len(scores)-window+1)
	sum := sumFloat64(scores[:window-1])
	for i := window - 1; i < len(scores); i++ {
		sum += scores[i]
		out = append(out, sum/float64(window))
		sum -= scores[i-window+1]
	}
	return out
}
