// Package snapshot persists precomputed catalog stats and detects when a
// stored payload no longer matches the catalog or the formulas that
// produced it.
package snapshot

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
)

// FormulaVersion identifies the calculator formulas. Bump it whenever any
// metric changes so stored payloads are recognized as stale.
const FormulaVersion = 1

// ErrVersionMismatch is returned when loading a payload written by a newer
// formula version, or a file that is not a payload at all.
var ErrVersionMismatch = errors.New("snapshot formula version mismatch")

// Entry is one series in a payload.
type Entry struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	CommunityScore *float64            `json:"communityScore"`
	Fingerprint    string              `json:"fingerprint"`
	Stats          scoring.StatsResult `json:"stats"`
}

// Payload is the serialized output of a catalog build.
type Payload struct {
	FormulaVersion int                  `json:"formulaVersion"`
	BuildID        string               `json:"buildId"`
	GeneratedAt    time.Time            `json:"generatedAt"`
	ScoreProfile   scoring.ScoreProfile `json:"scoreProfile"`
	Tuning         scoring.Tuning       `json:"tuning"`
	Series         []Entry              `json:"series"`
}

// Find returns the entry for key, matched by id first and then by a
// case-insensitive title.
func (p *Payload) Find(key string) (Entry, bool) {
	for _, e := range p.Series {
		if e.ID == key {
			return e, true
		}
	}
	for _, e := range p.Series {
		if strings.EqualFold(e.Title, key) {
			return e, true
		}
	}
	return Entry{}, false
}

// Fingerprint hashes everything about a series that feeds its stats: id,
// episode numbers and scores in order, and the community score.
func Fingerprint(s scoring.Series) string {
	var b strings.Builder
	b.WriteString(s.ID)
	b.WriteByte('|')
	for i, ep := range s.Episodes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(ep.Index))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(ep.Score, 'g', -1, 64))
	}
	b.WriteByte('|')
	if s.CommunityScore != nil {
		b.WriteString(strconv.FormatFloat(*s.CommunityScore, 'g', -1, 64))
	} else {
		b.WriteByte('-')
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", hash)
}

// Load reads a payload from a JSON file.
func Load(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	if p.FormulaVersion < 1 || p.FormulaVersion > FormulaVersion {
		return nil, fmt.Errorf("%w: %s has version %d, this build supports up to %d",
			ErrVersionMismatch, path, p.FormulaVersion, FormulaVersion)
	}
	return &p, nil
}

// Save writes the payload as indented JSON. The file is replaced atomically.
func Save(path string, p *Payload) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// Marshal encodes the payload as indented JSON with a trailing newline.
func Marshal(p *Payload) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// StaleReport describes how a stored payload differs from the current state.
type StaleReport struct {
	FormulaChanged bool     `json:"formulaChanged"`
	TuningChanged  bool     `json:"tuningChanged"`
	ProfileChanged bool     `json:"profileChanged"`
	Added          []string `json:"added"`
	Removed        []string `json:"removed"`
	Changed        []string `json:"changed"`
	Unchanged      int      `json:"unchanged"`
}

// Stale reports whether any stored stats would differ if rebuilt now.
func (r StaleReport) Stale() bool {
	return r.FormulaChanged || r.TuningChanged || r.ProfileChanged ||
		len(r.Added) > 0 || len(r.Removed) > 0 || len(r.Changed) > 0
}

// CheckStale compares a stored payload against the current catalog and
// tuning. A changed profile makes every stored entry stale because the
// baseline-relative metrics depend on it.
func CheckStale(p *Payload, catalog []scoring.Series, tuning scoring.Tuning) StaleReport {
	current := make(map[string]string, len(catalog))
	order := make([]string, 0, len(catalog))
	for _, s := range catalog {
		if _, dup := current[s.ID]; dup {
			continue
		}
		current[s.ID] = Fingerprint(s)
		order = append(order, s.ID)
	}

	report := compare(p.Series, current, order)
	report.FormulaChanged = p.FormulaVersion != FormulaVersion
	report.TuningChanged = p.Tuning != tuning
	report.ProfileChanged = p.ScoreProfile != scoring.BuildScoreProfile(catalog)
	return report
}

// Diff compares two payloads, typically the previous build and this one.
func Diff(prev, next *Payload) StaleReport {
	current := make(map[string]string, len(next.Series))
	order := make([]string, 0, len(next.Series))
	for _, e := range next.Series {
		current[e.ID] = e.Fingerprint
		order = append(order, e.ID)
	}

	report := compare(prev.Series, current, order)
	report.FormulaChanged = prev.FormulaVersion != next.FormulaVersion
	report.TuningChanged = prev.Tuning != next.Tuning
	report.ProfileChanged = prev.ScoreProfile != next.ScoreProfile
	return report
}

func compare(stored []Entry, current map[string]string, order []string) StaleReport {
	report := StaleReport{Added: []string{}, Removed: []string{}, Changed: []string{}}

	storedFP := make(map[string]string, len(stored))
	for _, e := range stored {
		storedFP[e.ID] = e.Fingerprint
		if _, ok := current[e.ID]; !ok {
			report.Removed = append(report.Removed, e.ID)
		}
	}
	for _, id := range order {
		fp, ok := storedFP[id]
		switch {
		case !ok:
			report.Added = append(report.Added, id)
		case fp != current[id]:
			report.Changed = append(report.Changed, id)
		default:
			report.Unchanged++
		}
	}

	sort.Strings(report.Added)
	sort.Strings(report.Removed)
	sort.Strings(report.Changed)
	return report
}
