package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/types"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	w       io.Writer
	verbose bool
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(w io.Writer, verbose bool) *MarkdownFormatter {
	return &MarkdownFormatter{w: w, verbose: verbose}
}

func (f *MarkdownFormatter) flush(b *strings.Builder) error {
	if _, err := io.WriteString(f.w, b.String()); err != nil {
		return fmt.Errorf("error writing markdown: %w", err)
	}
	return nil
}

// Build writes the build summary.
func (f *MarkdownFormatter) Build(r *BuildReport) error {
	var b strings.Builder
	p := r.Payload

	b.WriteString("# Catalog Build\n\n")
	b.WriteString(fmt.Sprintf("**Build:** `%s`\n\n", p.BuildID))
	b.WriteString(fmt.Sprintf("**Generated:** %s\n\n", p.GeneratedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("**Duration:** %v\n\n", r.Duration.Round(time.Millisecond)))

	errs, warnings := countProblems(r.Problems)
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Files | %d |\n", r.Files))
	b.WriteString(fmt.Sprintf("| Series | %d |\n", len(p.Series)))
	b.WriteString(fmt.Sprintf("| Errors | %d |\n", errs))
	b.WriteString(fmt.Sprintf("| Warnings | %d |\n", warnings))
	b.WriteString(fmt.Sprintf("| Profile | %s |\n", profileLine(p.ScoreProfile)))
	if r.SnapshotPath != "" {
		b.WriteString(fmt.Sprintf("| Snapshot | `%s` |\n", r.SnapshotPath))
	}
	b.WriteString("\n")

	if errs+warnings > 0 || (f.verbose && len(r.Problems) > 0) {
		b.WriteString("## Problems\n\n")
		for _, prob := range r.Problems {
			if prob.Severity == types.SeverityInfo && !f.verbose {
				continue
			}
			b.WriteString(fmt.Sprintf("- **%s** - %s `[%s]`\n", problemLocation(prob), prob.Message, prob.Severity))
		}
		b.WriteString("\n")
	}

	if r.Diff != nil {
		b.WriteString("## Changes\n\n")
		b.WriteString(diffLine(*r.Diff) + "\n\n")
		for _, reason := range staleReasons(*r.Diff) {
			b.WriteString("- " + reason + "\n")
		}
		b.WriteString("\n")
	}
	return f.flush(&b)
}

// Profile writes the score profile.
func (f *MarkdownFormatter) Profile(r *ProfileReport) error {
	var b strings.Builder
	p := r.Profile
	b.WriteString("# Score Profile\n\n")
	b.WriteString("| Percentile | Score |\n")
	b.WriteString("|------------|-------|\n")
	b.WriteString(fmt.Sprintf("| p35 | %.2f |\n", p.P35))
	b.WriteString(fmt.Sprintf("| p50 | %.2f |\n", p.P50))
	b.WriteString(fmt.Sprintf("| p65 | %.2f |\n", p.P65))
	b.WriteString(fmt.Sprintf("\n*%s across %d series*\n", sourceNote(p.Source, p.SampleSize), r.Series))
	return f.flush(&b)
}

func sourceNote(source string, samples int) string {
	if source == scoring.ProfileSourceDerived {
		return fmt.Sprintf("Derived from %d episode scores", samples)
	}
	return "Default baseline"
}

// Stats writes one series' metrics as a table.
func (f *MarkdownFormatter) Stats(r *StatsReport) error {
	var b strings.Builder
	s := r.Stats
	b.WriteString(fmt.Sprintf("# %s\n\n", r.Title))
	b.WriteString(fmt.Sprintf("`%s`", r.ID))
	if r.CommunityScore != nil {
		b.WriteString(fmt.Sprintf(" · community score %.1f", *r.CommunityScore))
	}
	b.WriteString("\n\n")
	if s.EpisodeCount == 0 {
		b.WriteString("*No episode scores.*\n")
		return f.flush(&b)
	}

	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	rows := []struct {
		label string
		value string
	}{
		{"Episodes", fmt.Sprintf("%d", s.EpisodeCount)},
		{"Average", fmt.Sprintf("%.2f", s.Average)},
		{"Std dev", fmt.Sprintf("%.2f", s.StdDev)},
		{"Retention", fmt.Sprintf("%.1f", s.RetentionScore)},
		{"Production quality", fmt.Sprintf("%.1f", s.ProductionQuality)},
		{"Comfort", fmt.Sprintf("%.1f", s.ComfortScore)},
		{"Area under curve", fmt.Sprintf("%.1f", s.AUC)},
		{"Three-episode hook", fmt.Sprintf("%.1f", s.ThreeEpisodeHook)},
		{"Churn risk", fmt.Sprintf("%.1f (%s)", s.ChurnRisk.Score, s.ChurnRisk.Label)},
		{"Habit break risk", fmt.Sprintf("%.0f", s.HabitBreakRisk)},
		{"Momentum", fmt.Sprintf("%.1f", s.Momentum)},
		{"Narrative acceleration", fmt.Sprintf("%.1f", s.NarrativeAcceleration)},
		{"Finale strength", fmt.Sprintf("%.1f", s.FinaleStrength)},
		{"Worth finishing", fmt.Sprintf("%.1f", s.WorthFinishing)},
		{"Flow state", fmt.Sprintf("%.1f", s.FlowState)},
		{"Emotional stability", fmt.Sprintf("%.1f", s.EmotionalStability)},
		{"Barrier to entry", fmt.Sprintf("%.2f", s.BarrierToEntry)},
		{"Stress spikes", fmt.Sprintf("%.1f", s.StressSpikes)},
		{"Quality trend", fmt.Sprintf("%s (%.3f)", s.QualityTrend.Direction, s.QualityTrend.Slope)},
		{"Controversy", fmt.Sprintf("%.1f", s.ControversyPotential)},
		{"Slow burn", fmt.Sprintf("%.2f", s.SlowBurn.Signal)},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("| %s | %s |\n", row.label, row.value))
	}
	b.WriteString("\n")

	if len(s.ChurnRisk.Factors) > 0 {
		b.WriteString("## Churn factors\n\n")
		for _, factor := range s.ChurnRisk.Factors {
			b.WriteString("- " + factor + "\n")
		}
		b.WriteString("\n")
	}
	if len(s.QualityDips) > 0 {
		b.WriteString("## Quality dips\n\n")
		for _, d := range s.QualityDips {
			b.WriteString(fmt.Sprintf("- Episode %d: %.2f (%.2f)\n", d.Episode, d.Score, d.Deviation))
		}
		b.WriteString("\n")
	}
	if j := s.SharkJump; j != nil {
		b.WriteString("## Shark jump\n\n")
		b.WriteString(fmt.Sprintf("Episode %d: %.2f before, %.2f after (drop %.2f)\n", j.Episode, j.PreMean, j.PostMean, j.DropAmount))
	}
	return f.flush(&b)
}

// Recommendations writes the ranked list as a table.
func (f *MarkdownFormatter) Recommendations(r *RecommendReport) error {
	var b strings.Builder
	b.WriteString("# Recommendations\n\n")
	if len(r.Entries) == 0 {
		b.WriteString("*No scored series in the catalog.*\n")
		return f.flush(&b)
	}
	b.WriteString("| # | Title | Score | Why |\n")
	b.WriteString("|---|-------|-------|-----|\n")
	for i, e := range r.Entries {
		b.WriteString(fmt.Sprintf("| %d | %s | %.1f | %s |\n", i+1, escapeCell(e.Title), e.Score, e.Reason))
	}
	b.WriteString(fmt.Sprintf("\n*%d of %d series*\n", len(r.Entries), r.Candidates))
	return f.flush(&b)
}

// Check writes the staleness verdict.
func (f *MarkdownFormatter) Check(r *CheckReport) error {
	var b strings.Builder
	b.WriteString("# Snapshot Check\n\n")
	b.WriteString(fmt.Sprintf("**Snapshot:** `%s`\n\n", r.Path))
	b.WriteString(fmt.Sprintf("**Build:** `%s` (%s)\n\n", r.BuildID, r.GeneratedAt.Format(time.RFC3339)))
	if !r.Report.Stale() {
		b.WriteString(fmt.Sprintf("✓ Up to date (%d series)\n", r.Report.Unchanged))
		return f.flush(&b)
	}
	b.WriteString("✗ Stale\n\n")
	for _, reason := range staleReasons(r.Report) {
		b.WriteString("- " + reason + "\n")
	}
	return f.flush(&b)
}

// escapeCell keeps pipes in titles from breaking the table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
