// Package scoring turns a series' per-episode audience scores into bounded,
// comparable engagement and quality metrics.
//
// Every function here is pure: the same episodes and ScoreProfile always
// yield the same result, and nothing is cached or shared between calls, so
// callers may compute many series in parallel once the catalog-wide
// profile exists.
package scoring

// Engine computes metrics with a fixed set of tuned constants. The zero
// value is not useful; use NewEngine or Default.
type Engine struct {
	tuning Tuning
}

// NewEngine returns an Engine using t, with invalid fields replaced by
// their defaults.
func NewEngine(t Tuning) Engine {
	return Engine{tuning: t.normalized()}
}

// Default returns an Engine with DefaultTuning.
func Default() Engine {
	return NewEngine(DefaultTuning())
}

// Tuning returns the constants in effect.
func (e Engine) Tuning() Tuning {
	return e.tuning
}

// ComputeStats runs every calculator for one series. A nil profile
// resolves to the default baseline.
func (e Engine) ComputeStats(series Series, profile *ScoreProfile) StatsResult {
	p := ResolveScoreProfile(profile)
	episodes := series.Episodes

	avg := Average(episodes)
	std := StdDev(episodes)
	hook := e.ThreeEpisodeHook(episodes)
	churn := e.ChurnRisk(episodes, p)
	momentum := Momentum(episodes)
	finale := e.FinaleStrength(episodes)
	flow := e.FlowState(episodes)
	stability := e.EmotionalStability(episodes)
	barrier := BarrierToEntry(episodes)
	spikes := StressSpikes(episodes)
	trend := QualityTrendOf(episodes)
	dips := QualityDips(episodes)

	result := StatsResult{
		EpisodeCount:          len(episodes),
		Average:               avg,
		StdDev:                std,
		AUC:                   e.AUC(episodes),
		ThreeEpisodeHook:      hook,
		ChurnRisk:             churn,
		HabitBreakRisk:        HabitBreakRisk(episodes),
		Momentum:              momentum,
		NarrativeAcceleration: NarrativeAcceleration(episodes),
		FinaleStrength:        finale,
		WorthFinishing:        e.WorthFinishing(episodes),
		FlowState:             flow,
		EmotionalStability:    stability,
		BarrierToEntry:        barrier,
		StressSpikes:          spikes,
		QualityTrend:          trend,
		QualityDips:           dips,
		RollingAverage:        RollingAverage(episodes, e.tuning.RollingWindow),
		ControversyPotential:  e.ControversyPotential(episodes),
		SharkJump:             e.SharkJump(episodes),
	}

	if len(episodes) == 0 {
		result.SlowBurn = SlowBurn{MomentumScore: rescaleMomentum(0), FinaleStrength: finale}
		return result
	}

	result.ComfortScore = e.comfortFrom(flow, stability, barrier, spikes)
	result.ProductionQuality = e.productionQualityFrom(avg, std, trend.Slope, hook, churn.Score, len(dips))
	result.RetentionScore, result.SlowBurn = e.retentionFrom(retentionInputs{
		episodes: len(episodes),
		hook:     hook,
		churn:    churn.Score,
		momentum: momentum,
		flow:     flow,
		finale:   finale,
	})
	return result
}

// ComputeStats is Default().ComputeStats.
func ComputeStats(series Series, profile *ScoreProfile) StatsResult {
	return Default().ComputeStats(series, profile)
}
