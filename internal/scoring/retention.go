package scoring

// Base retention weights before long-series hook scaling.
const (
	retentionHookWeight     = 0.35
	retentionChurnWeight    = 0.30
	retentionMomentumWeight = 0.20
	retentionFlowWeight     = 0.15
)

// retentionInputs are the lower-level metrics the composite consumes.
type retentionInputs struct {
	episodes int
	hook     float64
	churn    float64
	momentum float64 // raw -100..100
	flow     float64
	finale   float64
}

// RetentionScore is the headline "will viewers keep watching" composite,
// 0-100, along with the slow-burn diagnostic that shaped it.
func (e Engine) RetentionScore(episodes []Episode, profile ScoreProfile) (float64, SlowBurn) {
	if len(episodes) == 0 {
		return 0, SlowBurn{MomentumScore: rescaleMomentum(0), FinaleStrength: 50}
	}
	return e.retentionFrom(retentionInputs{
		episodes: len(episodes),
		hook:     e.ThreeEpisodeHook(episodes),
		churn:    e.ChurnRisk(episodes, profile).Score,
		momentum: Momentum(episodes),
		flow:     e.FlowState(episodes),
		finale:   e.FinaleStrength(episodes),
	})
}

// slowBurnSignal is strong when either the finale or the momentum is
// independently strong.
func (e Engine) slowBurnSignal(finale, momentumScore float64) float64 {
	finaleRamp := smoothstep(finale, e.tuning.SlowBurnFinaleFloor, 100)
	momentumRamp := smoothstep(momentumScore, e.tuning.SlowBurnMomentumFloor, 100)
	return max(finaleRamp, momentumRamp)
}

func (e Engine) retentionFrom(in retentionInputs) (float64, SlowBurn) {
	momentumScore := rescaleMomentum(in.momentum)
	signal := e.slowBurnSignal(in.finale, momentumScore)
	slowBurn := SlowBurn{
		Signal:         round3(signal),
		IsActive:       signal > 0,
		MomentumScore:  round1(momentumScore),
		FinaleStrength: in.finale,
	}

	// A strong opening matters less the longer the series runs.
	earlyScale := 1.0
	if in.episodes > 0 {
		earlyScale = min(1, e.tuning.EarlyPenaltyEpisodes/float64(in.episodes))
	}
	earlyScale += (1 - earlyScale) * e.tuning.SlowBurnLift * signal

	hookWeight := retentionHookWeight * earlyScale
	released := retentionHookWeight - hookWeight
	rest := retentionChurnWeight + retentionMomentumWeight + retentionFlowWeight
	spread := 1 + released/rest

	raw := in.hook*hookWeight +
		(100-in.churn)*retentionChurnWeight*spread +
		momentumScore*retentionMomentumWeight*spread +
		in.flow*retentionFlowWeight*spread

	return round1(clamp(e.percentCurve(raw), 0, 100)), slowBurn
}
