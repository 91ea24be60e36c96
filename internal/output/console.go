package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/types"
)

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	w       io.Writer
	quiet   bool
	verbose bool

	good  lipgloss.Style
	bad   lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
	title lipgloss.Style
}

// NewConsoleFormatter creates a new ConsoleFormatter. Colors are only
// emitted when colorize is set and w is a terminal.
func NewConsoleFormatter(w io.Writer, quiet, verbose, colorize bool) *ConsoleFormatter {
	r := lipgloss.NewRenderer(w)
	f := &ConsoleFormatter{
		w:       w,
		quiet:   quiet,
		verbose: verbose,
		good:    r.NewStyle(),
		bad:     r.NewStyle(),
		warn:    r.NewStyle(),
		muted:   r.NewStyle(),
		title:   r.NewStyle(),
	}
	if colorize {
		f.good = f.good.Foreground(lipgloss.Color("10"))  // green
		f.bad = f.bad.Foreground(lipgloss.Color("9"))     // red
		f.warn = f.warn.Foreground(lipgloss.Color("3"))   // yellow
		f.muted = f.muted.Foreground(lipgloss.Color("7")) // gray
		f.title = f.title.Bold(true)
	}
	return f
}

func (f *ConsoleFormatter) printf(format string, args ...any) {
	fmt.Fprintf(f.w, format, args...)
}

// Build prints the build summary. Quiet mode prints nothing.
func (f *ConsoleFormatter) Build(r *BuildReport) error {
	if f.quiet {
		return nil
	}

	p := r.Payload
	f.printf("%s Built %d series from %d file(s) in %v\n",
		f.good.Render("✓"), len(p.Series), r.Files, r.Duration.Round(time.Millisecond))
	f.printf("  %-9s %s\n", "profile", profileLine(p.ScoreProfile))
	f.printf("  %-9s %s\n", "build", f.muted.Render(p.BuildID))
	if r.SnapshotPath != "" {
		f.printf("  %-9s %s\n", "wrote", r.SnapshotPath)
	}

	errs, warnings := countProblems(r.Problems)
	if errs+warnings > 0 || (f.verbose && len(r.Problems) > 0) {
		f.printf("  %-9s %d error(s), %d warning(s)\n", "problems", errs, warnings)
		for _, prob := range r.Problems {
			f.printProblem(prob)
		}
	}

	if r.Diff != nil {
		f.printf("  %-9s %s\n", "diff", diffLine(*r.Diff))
	}
	return nil
}

func (f *ConsoleFormatter) printProblem(p types.ValidationError) {
	var prefix string
	var style lipgloss.Style
	switch p.Severity {
	case types.SeverityError:
		prefix, style = "✘", f.bad
	case types.SeverityWarning:
		prefix, style = "⚠", f.warn
	default:
		if !f.verbose {
			return
		}
		prefix, style = "·", f.muted
	}
	f.printf("    %s %s: %s\n", style.Render(prefix), problemLocation(p), p.Message)
}

// Profile prints the score profile.
func (f *ConsoleFormatter) Profile(r *ProfileReport) error {
	p := r.Profile
	if !f.quiet {
		f.printf("%s\n", f.title.Render("Score profile"))
		if p.Source == scoring.ProfileSourceDerived {
			f.printf("%s\n", f.muted.Render(fmt.Sprintf("derived from %d episode scores across %d series", p.SampleSize, r.Series)))
		} else {
			f.printf("%s\n", f.muted.Render("default baseline, the catalog has too few episode scores"))
		}
	}
	f.printf("  p35  %.2f\n  p50  %.2f\n  p65  %.2f\n", p.P35, p.P50, p.P65)
	return nil
}

// Stats prints every metric for one series.
func (f *ConsoleFormatter) Stats(r *StatsReport) error {
	s := r.Stats
	f.printf("%s %s\n", f.title.Render(r.Title), f.muted.Render("("+r.ID+")"))
	if r.CommunityScore != nil {
		f.printf("  %-24s %.1f\n", "community score", *r.CommunityScore)
	}
	if s.EpisodeCount == 0 {
		f.printf("  %s\n", f.muted.Render("no episode scores"))
		return nil
	}

	section := func(name string) {
		if !f.quiet {
			f.printf("\n%s\n", f.title.Render(name))
		}
	}
	row := func(label, format string, v any) {
		f.printf("  %-24s "+format+"\n", label, v)
	}

	section("Overview")
	row("episodes", "%d", s.EpisodeCount)
	row("average", "%.2f", s.Average)
	row("std dev", "%.2f", s.StdDev)
	row("retention", "%.1f", s.RetentionScore)
	row("production quality", "%.1f", s.ProductionQuality)
	row("comfort", "%.1f", s.ComfortScore)

	section("Engagement")
	row("area under curve", "%.1f", s.AUC)
	row("three-episode hook", "%.1f", s.ThreeEpisodeHook)
	f.printf("  %-24s %.1f %s\n", "churn risk", s.ChurnRisk.Score, churnStyle(f, s.ChurnRisk.Label).Render(s.ChurnRisk.Label))
	for _, factor := range s.ChurnRisk.Factors {
		f.printf("  %-24s %s\n", "", f.muted.Render("· "+factor))
	}
	row("habit break risk", "%.0f", s.HabitBreakRisk)
	row("momentum", "%.1f", s.Momentum)
	row("narrative acceleration", "%.1f", s.NarrativeAcceleration)
	row("finale strength", "%.1f", s.FinaleStrength)
	row("worth finishing", "%.1f", s.WorthFinishing)

	section("Comfort")
	row("flow state", "%.1f", s.FlowState)
	row("emotional stability", "%.1f", s.EmotionalStability)
	row("barrier to entry", "%.2f", s.BarrierToEntry)
	row("stress spikes", "%.1f", s.StressSpikes)

	section("Quality")
	f.printf("  %-24s %s (%.3f)\n", "trend", s.QualityTrend.Direction, s.QualityTrend.Slope)
	row("controversy", "%.1f", s.ControversyPotential)
	if len(s.QualityDips) > 0 {
		eps := make([]string, len(s.QualityDips))
		for i, d := range s.QualityDips {
			eps[i] = fmt.Sprintf("ep %d (%.2f)", d.Episode, d.Score)
		}
		row("dips", "%s", strings.Join(eps, ", "))
	}
	if j := s.SharkJump; j != nil {
		f.printf("  %-24s %s\n", "shark jump", f.bad.Render(fmt.Sprintf("ep %d, %.2f to %.2f", j.Episode, j.PreMean, j.PostMean)))
	}
	if s.SlowBurn.IsActive {
		row("slow burn", "%.2f", s.SlowBurn.Signal)
	}
	if f.verbose && len(s.RollingAverage) > 0 {
		points := make([]string, len(s.RollingAverage))
		for i, p := range s.RollingAverage {
			points[i] = fmt.Sprintf("%.2f", p.RollingAvg)
		}
		row("rolling average", "%s", strings.Join(points, " "))
	}
	return nil
}

func churnStyle(f *ConsoleFormatter, label string) lipgloss.Style {
	switch label {
	case scoring.ChurnLow:
		return f.good
	case scoring.ChurnModerate:
		return f.warn
	case scoring.ChurnHigh, scoring.ChurnCritical:
		return f.bad
	default:
		return f.muted
	}
}

// Recommendations prints the ranked list.
func (f *ConsoleFormatter) Recommendations(r *RecommendReport) error {
	if len(r.Entries) == 0 {
		f.printf("%s\n", f.muted.Render("No recommendations: the catalog has no scored series"))
		return nil
	}

	width := 0
	for _, e := range r.Entries {
		width = max(width, lipgloss.Width(e.Title))
	}
	for i, e := range r.Entries {
		pad := strings.Repeat(" ", width-lipgloss.Width(e.Title))
		f.printf("%2d. %s%s  %5.1f  %s\n", i+1, e.Title, pad, e.Score, f.muted.Render(e.Reason))
	}
	if !f.quiet {
		f.printf("\n%s\n", f.muted.Render(fmt.Sprintf("%d of %d series", len(r.Entries), r.Candidates)))
	}
	return nil
}

// Check prints the staleness verdict. Quiet mode prints nothing.
func (f *ConsoleFormatter) Check(r *CheckReport) error {
	if f.quiet {
		return nil
	}
	rep := r.Report
	if !rep.Stale() {
		f.printf("%s %s is up to date (%d series)\n", f.good.Render("✓"), r.Path, rep.Unchanged)
		return nil
	}

	f.printf("%s %s is stale\n", f.bad.Render("✗"), r.Path)
	for _, reason := range staleReasons(rep) {
		f.printf("    %s\n", reason)
	}
	if f.verbose {
		f.printf("  %s\n", f.muted.Render(fmt.Sprintf("build %s, generated %s", r.BuildID, r.GeneratedAt.Format(time.RFC3339))))
	}
	return nil
}

func profileLine(p scoring.ScoreProfile) string {
	return fmt.Sprintf("p35 %.2f  p50 %.2f  p65 %.2f  (%s, %d samples)", p.P35, p.P50, p.P65, p.Source, p.SampleSize)
}

func diffLine(d snapshot.StaleReport) string {
	line := fmt.Sprintf("%d added, %d removed, %d changed, %d unchanged",
		len(d.Added), len(d.Removed), len(d.Changed), d.Unchanged)
	if d.FormulaChanged || d.TuningChanged || d.ProfileChanged {
		line += " (all series affected)"
	}
	return line
}

// staleReasons lists why a payload is stale, most sweeping first.
func staleReasons(r snapshot.StaleReport) []string {
	var out []string
	if r.FormulaChanged {
		out = append(out, "formula version changed")
	}
	if r.TuningChanged {
		out = append(out, "scoring tuning changed")
	}
	if r.ProfileChanged {
		out = append(out, "score profile changed")
	}
	if len(r.Added) > 0 {
		out = append(out, "added: "+strings.Join(r.Added, ", "))
	}
	if len(r.Removed) > 0 {
		out = append(out, "removed: "+strings.Join(r.Removed, ", "))
	}
	if len(r.Changed) > 0 {
		out = append(out, "changed: "+strings.Join(r.Changed, ", "))
	}
	return out
}
