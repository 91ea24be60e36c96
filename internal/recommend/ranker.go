// Package recommend orders scored series into top-N lists with a short
// human-readable justification per pick.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
)

// Composite weights. The community score is rescaled from 0-10 to 0-100
// before blending.
const (
	retentionWeight = 0.75
	communityWeight = 0.25
	communityScale  = 10.0
	maxReasons      = 2
)

// FallbackReason is used when no reason rule matches.
const FallbackReason = "Solid all-round pick"

// Candidate is one series together with its aggregated stats.
type Candidate struct {
	Series scoring.Series
	Stats  scoring.StatsResult
}

// hasEpisodes also trusts the stats so candidates restored from a stored
// payload, which carry no score history, rank the same as fresh ones.
func (c Candidate) hasEpisodes() bool {
	return c.Series.HasEpisodes() || c.Stats.EpisodeCount > 0
}

// Entry is a ranked recommendation. It is derived on demand and never stored.
type Entry struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type reasonRule struct {
	text  string
	match func(c Candidate, community float64, hasCommunity bool) bool
}

// reasonRules are checked in order; the first two that match are joined.
var reasonRules = []reasonRule{
	{"High retention", func(c Candidate, _ float64, _ bool) bool { return c.Stats.RetentionScore >= 75 }},
	{"Low drop-off risk", func(c Candidate, _ float64, _ bool) bool { return c.Stats.ChurnRisk.Score <= 20 }},
	{"Strong opening hook", func(c Candidate, _ float64, _ bool) bool { return c.Stats.ThreeEpisodeHook >= 70 }},
	{"Strong finish", func(c Candidate, _ float64, _ bool) bool { return c.Stats.FinaleStrength >= 65 }},
	{"Steady pacing", func(c Candidate, _ float64, _ bool) bool { return c.Stats.FlowState >= 80 }},
	{"Highly rated by the community", func(_ Candidate, community float64, ok bool) bool { return ok && community >= 8 }},
}

// Rank orders candidates by composite score, highest first, and returns at
// most limit entries. A limit of zero or less returns every eligible entry.
// Series with neither episodes nor a community score are skipped.
//
// Ties break on id, then title, so the result does not depend on the
// order of candidates.
func Rank(candidates []Candidate, limit int) []Entry {
	entries := make([]Entry, 0, len(candidates))
	for _, c := range candidates {
		if e, ok := evaluate(c); ok {
			entries = append(entries, e)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Title < b.Title
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Composite returns the blended ranking score for c and whether c can be
// ranked at all.
func Composite(c Candidate) (float64, bool) {
	community, hasCommunity := communityScore(c.Series)
	switch {
	case c.hasEpisodes() && hasCommunity:
		return c.Stats.RetentionScore*retentionWeight + community*communityScale*communityWeight, true
	case c.hasEpisodes():
		return c.Stats.RetentionScore, true
	case hasCommunity:
		return community * communityScale, true
	default:
		return 0, false
	}
}

func evaluate(c Candidate) (Entry, bool) {
	score, ok := Composite(c)
	if !ok {
		return Entry{}, false
	}
	return Entry{
		ID:     c.Series.ID,
		Title:  c.Series.Title,
		Score:  math.Round(score*10) / 10,
		Reason: Reason(c),
	}, true
}

// Reason explains why c was picked.
func Reason(c Candidate) string {
	community, hasCommunity := communityScore(c.Series)
	if !c.hasEpisodes() {
		if hasCommunity {
			return fmt.Sprintf("Rated %.1f by the community (no episode data)", community)
		}
		return FallbackReason
	}

	matched := make([]string, 0, maxReasons)
	for _, rule := range reasonRules {
		if rule.match(c, community, hasCommunity) {
			matched = append(matched, rule.text)
			if len(matched) == maxReasons {
				break
			}
		}
	}
	if len(matched) == 0 {
		return FallbackReason
	}
	return strings.Join(matched, " · ")
}

// communityScore treats a missing, non-finite or out-of-range rating as absent.
func communityScore(s scoring.Series) (float64, bool) {
	if s.CommunityScore == nil {
		return 0, false
	}
	v := *s.CommunityScore
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 10 {
		return 0, false
	}
	return v, true
}
