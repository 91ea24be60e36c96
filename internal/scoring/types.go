package scoring

// Score bounds for a single episode poll score.
const (
	MinScore = 1.0
	MaxScore = 5.0
)

// Episode is one installment of a series in watch order.
type Episode struct {
	Index int     `json:"episode"` // 1-based episode number
	Score float64 `json:"score"`   // audience score in [1,5]
}

// Series is the canonical record handed to the engine by the catalog loader.
// Metadata fields are opaque to the scoring code.
type Series struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Episodes       []Episode `json:"episodes"`
	CommunityScore *float64  `json:"communityScore,omitempty"` // [0,10], nil when absent
}

// HasEpisodes reports whether the series carries any score history.
func (s Series) HasEpisodes() bool {
	return len(s.Episodes) > 0
}

// Profile source tags.
const (
	ProfileSourceDerived = "derived"
	ProfileSourceDefault = "default"
)

// ScoreProfile is the catalog-wide percentile baseline.
type ScoreProfile struct {
	P35        float64 `json:"p35"`
	P50        float64 `json:"p50"`
	P65        float64 `json:"p65"`
	SampleSize int     `json:"sampleSize"`
	Source     string  `json:"source"` // derived or default
}

// Churn risk labels.
const (
	ChurnUnknown  = "Unknown"
	ChurnLow      = "Low"
	ChurnModerate = "Moderate"
	ChurnHigh     = "High"
	ChurnCritical = "Critical"
)

// ChurnRisk is the probability-like drop-off score with the factors that fired.
type ChurnRisk struct {
	Score   float64  `json:"score"`   // 0-100, higher is worse
	Label   string   `json:"label"`   // Unknown, Low, Moderate, High, Critical
	Factors []string `json:"factors"` // explainability only
}

// Trend directions.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// QualityTrend is the whole-series regression slope and its classification.
type QualityTrend struct {
	Slope     float64 `json:"slope"`
	Direction string  `json:"direction"`
}

// QualityDip is an episode scoring well below the series mean.
type QualityDip struct {
	Episode   int     `json:"episode"`
	Score     float64 `json:"score"`
	Deviation float64 `json:"deviation"` // negative, score minus mean
}

// RollingPoint is the windowed mean ending at Episode.
type RollingPoint struct {
	Episode    int     `json:"episode"`
	RollingAvg float64 `json:"rollingAvg"`
}

// SharkJump marks the first permanent, unrecovered quality drop.
type SharkJump struct {
	Episode    int     `json:"episode"`
	DropAmount float64 `json:"dropAmount"` // rolling-average drop at the jump
	PreMean    float64 `json:"preMean"`
	PostMean   float64 `json:"postMean"`
}

// SlowBurn explains the retention lift given to late-blooming series.
type SlowBurn struct {
	Signal         float64 `json:"signal"` // 0-1
	IsActive       bool    `json:"isActive"`
	MomentumScore  float64 `json:"momentumScore"` // momentum rescaled to 0-100
	FinaleStrength float64 `json:"finaleStrength"`
}

// StatsResult bundles every metric computed for one series.
type StatsResult struct {
	EpisodeCount          int            `json:"episodeCount"`
	Average               float64        `json:"average"`
	StdDev                float64        `json:"stdDev"`
	AUC                   float64        `json:"auc"`
	ThreeEpisodeHook      float64        `json:"threeEpisodeHook"`
	ChurnRisk             ChurnRisk      `json:"churnRisk"`
	HabitBreakRisk        float64        `json:"habitBreakRisk"`
	Momentum              float64        `json:"momentum"`
	NarrativeAcceleration float64        `json:"narrativeAcceleration"`
	FinaleStrength        float64        `json:"finaleStrength"`
	WorthFinishing        float64        `json:"worthFinishing"`
	FlowState             float64        `json:"flowState"`
	EmotionalStability    float64        `json:"emotionalStability"`
	BarrierToEntry        float64        `json:"barrierToEntry"`
	StressSpikes          float64        `json:"stressSpikes"`
	ComfortScore          float64        `json:"comfortScore"`
	QualityTrend          QualityTrend   `json:"qualityTrend"`
	QualityDips           []QualityDip   `json:"qualityDips"`
	ProductionQuality     float64        `json:"productionQualityIndex"`
	RollingAverage        []RollingPoint `json:"rollingAverage"`
	ControversyPotential  float64        `json:"controversyPotential"`
	SharkJump             *SharkJump     `json:"sharkJump"`
	RetentionScore        float64        `json:"retentionScore"`
	SlowBurn              SlowBurn       `json:"slowBurn"`
}

// Tuning holds the tuned constants of the engine. The slow-burn and
// early-penalty values have no derivation; keep them configurable.
type Tuning struct {
	StrictnessExponent    float64 `mapstructure:"strictnessExponent" json:"strictnessExponent" validate:"gt=0"`
	RollingWindow         int     `mapstructure:"rollingWindow" json:"rollingWindow" validate:"min=1"`
	EarlyPenaltyEpisodes  float64 `mapstructure:"earlyPenaltyEpisodes" json:"earlyPenaltyEpisodes" validate:"gt=0"`
	SlowBurnLift          float64 `mapstructure:"slowBurnLift" json:"slowBurnLift" validate:"min=0,max=1"`
	SlowBurnFinaleFloor   float64 `mapstructure:"slowBurnFinaleFloor" json:"slowBurnFinaleFloor" validate:"min=0,lt=100"`
	SlowBurnMomentumFloor float64 `mapstructure:"slowBurnMomentumFloor" json:"slowBurnMomentumFloor" validate:"min=0,lt=100"`
}

// DefaultTuning returns the stock engine constants.
func DefaultTuning() Tuning {
	return Tuning{
		StrictnessExponent:    1.35,
		RollingWindow:         3,
		EarlyPenaltyEpisodes:  6,
		SlowBurnLift:          0.35,
		SlowBurnFinaleFloor:   60,
		SlowBurnMomentumFloor: 65,
	}
}

// normalized fills zero or invalid fields with defaults.
func (t Tuning) normalized() Tuning {
	def := DefaultTuning()
	if !(t.StrictnessExponent > 0) {
		t.StrictnessExponent = def.StrictnessExponent
	}
	if t.RollingWindow < 1 {
		t.RollingWindow = def.RollingWindow
	}
	if !(t.EarlyPenaltyEpisodes > 0) {
		t.EarlyPenaltyEpisodes = def.EarlyPenaltyEpisodes
	}
	if t.SlowBurnLift < 0 || t.SlowBurnLift > 1 {
		t.SlowBurnLift = def.SlowBurnLift
	}
	if t.SlowBurnFinaleFloor < 0 || t.SlowBurnFinaleFloor >= 100 {
		t.SlowBurnFinaleFloor = def.SlowBurnFinaleFloor
	}
	if t.SlowBurnMomentumFloor < 0 || t.SlowBurnMomentumFloor >= 100 {
		t.SlowBurnMomentumFloor = def.SlowBurnMomentumFloor
	}
	return t
}
