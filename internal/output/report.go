package output

import (
	"strconv"
	"time"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/recommend"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/types"
)

// Tool is the name written into report headers.
const Tool = "rekonime"

// Formatter renders command results in one output format.
type Formatter interface {
	Build(r *BuildReport) error
	Profile(r *ProfileReport) error
	Stats(r *StatsReport) error
	Recommendations(r *RecommendReport) error
	Check(r *CheckReport) error
}

// BuildReport summarizes a catalog build.
type BuildReport struct {
	Payload      *snapshot.Payload
	Files        int
	Problems     []types.ValidationError
	Diff         *snapshot.StaleReport
	SnapshotPath string // empty when the payload was not written
	Duration     time.Duration
}

// ProfileReport shows the catalog score profile.
type ProfileReport struct {
	Profile scoring.ScoreProfile
	Series  int
}

// StatsReport shows every metric for one series.
type StatsReport struct {
	ID             string
	Title          string
	CommunityScore *float64
	Stats          scoring.StatsResult
}

// RecommendReport is a ranked top-N list.
type RecommendReport struct {
	Entries    []recommend.Entry
	Candidates int
}

// CheckReport describes whether a stored payload is stale.
type CheckReport struct {
	Path        string
	BuildID     string
	GeneratedAt time.Time
	Report      snapshot.StaleReport
}

// countProblems counts errors and warnings.
func countProblems(problems []types.ValidationError) (errs, warnings int) {
	for _, p := range problems {
		switch p.Severity {
		case types.SeverityError:
			errs++
		case types.SeverityWarning:
			warnings++
		}
	}
	return errs, warnings
}

// problemLocation renders a problem's file, record and id.
func problemLocation(p types.ValidationError) string {
	loc := p.File
	if p.Record >= 0 {
		loc += "#" + strconv.Itoa(p.Record)
	}
	if p.ID != "" {
		loc += " (" + p.ID + ")"
	}
	return loc
}
