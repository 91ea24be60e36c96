package output

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/recommend"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/types"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	w      io.Writer
	indent bool
	now    func() time.Time
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{w: w, indent: indent, now: time.Now}
}

// JSONHeader contains report metadata
type JSONHeader struct {
	Tool           string `json:"tool"`
	Kind           string `json:"kind"`
	FormulaVersion int    `json:"formulaVersion"`
	Timestamp      string `json:"timestamp"`
}

// JSONProblem represents a catalog validation problem
type JSONProblem struct {
	File     string `json:"file"`
	Record   int    `json:"record"`
	ID       string `json:"id,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Source   string `json:"source,omitempty"`
}

// JSONBuild is the build report body.
type JSONBuild struct {
	Header       JSONHeader            `json:"header"`
	BuildID      string                `json:"buildId"`
	Files        int                   `json:"files"`
	Series       int                   `json:"series"`
	ScoreProfile scoring.ScoreProfile  `json:"scoreProfile"`
	Snapshot     string                `json:"snapshot,omitempty"`
	Duration     string                `json:"duration"`
	Problems     []JSONProblem         `json:"problems"`
	Diff         *snapshot.StaleReport `json:"diff,omitempty"`
}

// JSONProfile is the profile report body.
type JSONProfile struct {
	Header       JSONHeader           `json:"header"`
	Series       int                  `json:"series"`
	ScoreProfile scoring.ScoreProfile `json:"scoreProfile"`
}

// JSONStats is the stats report body.
type JSONStats struct {
	Header         JSONHeader          `json:"header"`
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	CommunityScore *float64            `json:"communityScore"`
	Stats          scoring.StatsResult `json:"stats"`
}

// JSONRecommendations is the recommend report body.
type JSONRecommendations struct {
	Header          JSONHeader        `json:"header"`
	Candidates      int               `json:"candidates"`
	Recommendations []recommend.Entry `json:"recommendations"`
}

// JSONCheck is the check report body.
type JSONCheck struct {
	Header      JSONHeader           `json:"header"`
	Snapshot    string               `json:"snapshot"`
	BuildID     string               `json:"buildId"`
	GeneratedAt time.Time            `json:"generatedAt"`
	Stale       bool                 `json:"stale"`
	Report      snapshot.StaleReport `json:"report"`
}

func (f *JSONFormatter) header(kind string) JSONHeader {
	return JSONHeader{
		Tool:           Tool,
		Kind:           kind,
		FormulaVersion: snapshot.FormulaVersion,
		Timestamp:      f.now().UTC().Format(time.RFC3339),
	}
}

// Build writes the build report.
func (f *JSONFormatter) Build(r *BuildReport) error {
	problems := make([]JSONProblem, len(r.Problems))
	for i, p := range r.Problems {
		problems[i] = jsonProblem(p)
	}
	return f.write(JSONBuild{
		Header:       f.header("build"),
		BuildID:      r.Payload.BuildID,
		Files:        r.Files,
		Series:       len(r.Payload.Series),
		ScoreProfile: r.Payload.ScoreProfile,
		Snapshot:     r.SnapshotPath,
		Duration:     r.Duration.Round(time.Millisecond).String(),
		Problems:     problems,
		Diff:         r.Diff,
	})
}

// Profile writes the profile report.
func (f *JSONFormatter) Profile(r *ProfileReport) error {
	return f.write(JSONProfile{Header: f.header("profile"), Series: r.Series, ScoreProfile: r.Profile})
}

// Stats writes the stats report.
func (f *JSONFormatter) Stats(r *StatsReport) error {
	return f.write(JSONStats{
		Header:         f.header("stats"),
		ID:             r.ID,
		Title:          r.Title,
		CommunityScore: r.CommunityScore,
		Stats:          r.Stats,
	})
}

// Recommendations writes the ranked list.
func (f *JSONFormatter) Recommendations(r *RecommendReport) error {
	entries := r.Entries
	if entries == nil {
		entries = []recommend.Entry{}
	}
	return f.write(JSONRecommendations{Header: f.header("recommend"), Candidates: r.Candidates, Recommendations: entries})
}

// Check writes the staleness report.
func (f *JSONFormatter) Check(r *CheckReport) error {
	return f.write(JSONCheck{
		Header:      f.header("check"),
		Snapshot:    r.Path,
		BuildID:     r.BuildID,
		GeneratedAt: r.GeneratedAt,
		Stale:       r.Report.Stale(),
		Report:      r.Report,
	})
}

func (f *JSONFormatter) write(v any) error {
	var data []byte
	var err error
	if f.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	if _, err := f.w.Write(data); err != nil {
		return fmt.Errorf("error writing JSON: %w", err)
	}
	return nil
}

func jsonProblem(p types.ValidationError) JSONProblem {
	return JSONProblem{
		File:     p.File,
		Record:   p.Record,
		ID:       p.ID,
		Message:  p.Message,
		Severity: p.Severity,
		Source:   p.Source,
	}
}
