package scoring

import "testing"

func TestRetentionScoreBounds(t *testing.T) {
	e := Default()
	profile := DefaultScoreProfile()

	if got, burn := e.RetentionScore(nil, profile); got != 0 || burn.IsActive {
		t.Errorf("RetentionScore(empty) = %v, %+v; want 0 and inactive", got, burn)
	}

	high, _ := e.RetentionScore(eps(repeat(5, 10)...), profile)
	low, _ := e.RetentionScore(eps(repeat(1, 10)...), profile)
	if high <= low {
		t.Errorf("RetentionScore all-5 = %v, all-1 = %v; want all-5 higher", high, low)
	}
	for _, v := range []float64{high, low} {
		if v < 0 || v > 100 {
			t.Errorf("RetentionScore = %v, want within 0..100", v)
		}
	}
}

func TestSlowBurnInactiveOnFlatSeries(t *testing.T) {
	_, burn := Default().RetentionScore(eps(repeat(3.6, 20)...), DefaultScoreProfile())
	if burn.Signal != 0 || burn.IsActive {
		t.Errorf("SlowBurn(flat) = %+v, want zero signal and inactive", burn)
	}
	if burn.MomentumScore != 50 || burn.FinaleStrength != 50 {
		t.Errorf("SlowBurn(flat) = %+v, want neutral momentum and finale", burn)
	}
}

func TestSlowBurnActiveOnLateBloomer(t *testing.T) {
	bloomer := eps(append(repeat(3.6, 10), repeat(4.9, 10)...)...)

	_, burn := Default().RetentionScore(bloomer, DefaultScoreProfile())
	if !burn.IsActive || burn.Signal <= 0 {
		t.Errorf("bloomer SlowBurn = %+v, want active with positive signal", burn)
	}
	if burn.FinaleStrength <= 50 {
		t.Errorf("bloomer FinaleStrength = %v, want above neutral", burn.FinaleStrength)
	}
}

func TestSlowBurnLiftRaisesRetention(t *testing.T) {
	lifted := Default()
	noLift := DefaultTuning()
	noLift.SlowBurnLift = 0
	unlifted := NewEngine(noLift)

	// Strong opening on a long run with a strong finale: the signal is
	// saturated and only the hook carries weight, so the lift shows up
	// directly as extra hook weight.
	in := retentionInputs{episodes: 24, hook: 100, churn: 100, momentum: -100, flow: 0, finale: 100}

	withLift, burn := lifted.retentionFrom(in)
	withoutLift, plainBurn := unlifted.retentionFrom(in)

	if burn.Signal != 1 || plainBurn.Signal != 1 {
		t.Fatalf("signal = %v / %v, want 1 for a saturated finale", burn.Signal, plainBurn.Signal)
	}
	if withLift <= withoutLift {
		t.Errorf("retention with lift = %v, without = %v; want the lift to raise it", withLift, withoutLift)
	}
}

func TestSlowBurnLiftIgnoredWithoutSignal(t *testing.T) {
	noLift := DefaultTuning()
	noLift.SlowBurnLift = 0

	// Neutral momentum and finale leave the signal at zero.
	in := retentionInputs{episodes: 24, hook: 100, churn: 100, momentum: 0, flow: 0, finale: 50}

	withLift, burn := Default().retentionFrom(in)
	withoutLift, _ := NewEngine(noLift).retentionFrom(in)

	if burn.IsActive {
		t.Fatalf("SlowBurn = %+v, want inactive", burn)
	}
	if withLift != withoutLift {
		t.Errorf("retention with lift = %v, without = %v; want equal when the signal is zero", withLift, withoutLift)
	}
}

func TestRetentionHookWeightShrinksWithLength(t *testing.T) {
	e := Default()
	// Only the hook contributes, so the result tracks the hook weight.
	in := retentionInputs{hook: 100, churn: 100, momentum: -100, flow: 0, finale: 50}

	in.episodes = 6
	short, _ := e.retentionFrom(in)
	in.episodes = 60
	long, _ := e.retentionFrom(in)

	if long >= short {
		t.Errorf("hook-only retention at 60 eps = %v, at 6 eps = %v; want smaller for the longer run", long, short)
	}
}

func TestSlowBurnSignal(t *testing.T) {
	e := Default()
	tests := []struct {
		name          string
		finale        float64
		momentumScore float64
		want          float64
	}{
		{"both below floors", 55, 60, 0},
		{"finale maxed", 100, 0, 1},
		{"momentum maxed", 0, 100, 1},
		{"stronger ramp wins", 80, 65, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.slowBurnSignal(tt.finale, tt.momentumScore); !approxEqual(got, tt.want, 1e-9) {
				t.Errorf("slowBurnSignal(%v, %v) = %v, want %v", tt.finale, tt.momentumScore, got, tt.want)
			}
		})
	}
}
