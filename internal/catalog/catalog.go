// Package catalog turns catalog files into the canonical series records the
// scoring engine consumes.
//
// The loader is the only place that knows about source shapes: top-level
// arrays, {"series": [...]} and {"anime": [...]} wrappers, and scraper
// records that keep metadata in a nested "metadata" object are all accepted.
// Every record is checked against the embedded CUE schema, then normalized:
// episodes are put in watch order with duplicate numbers dropped, tags are
// trimmed and deduplicated, out-of-range community scores become absent, and
// duplicate ids keep the first record seen.
package catalog

import (
	"errors"
	"strings"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/types"
)

var (
	// ErrUnsupportedFormat is returned for files the loader cannot decode
	// into a list of records.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")

	// ErrInvalidRecord is returned in strict mode when any record fails
	// validation.
	ErrInvalidRecord = errors.New("invalid catalog record")
)

// Record is one normalized catalog entry. Only ID, Title, Episodes and
// CommunityScore reach the scoring engine; the rest is carried for reports.
type Record struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	TitleEnglish   string            `json:"title_english,omitempty"`
	TitleJapanese  string            `json:"title_japanese,omitempty"`
	MalID          int               `json:"malId,omitempty"`
	AnilistID      int               `json:"anilistId,omitempty"`
	Cover          string            `json:"cover,omitempty"`
	Type           string            `json:"type,omitempty"`
	Year           int               `json:"year,omitempty"`
	Season         string            `json:"season,omitempty"`
	Studio         string            `json:"studio,omitempty"`
	Source         string            `json:"source,omitempty"`
	Genres         []string          `json:"genres,omitempty"`
	Themes         []string          `json:"themes,omitempty"`
	Demographic    string            `json:"demographic,omitempty"`
	CommunityScore *float64          `json:"score,omitempty"`
	Episodes       []scoring.Episode `json:"episodes"`

	// File is the catalog file the record came from.
	File string `json:"-"`
}

// Series returns the engine view of the record.
func (r Record) Series() scoring.Series {
	return scoring.Series{
		ID:             r.ID,
		Title:          r.Title,
		Episodes:       r.Episodes,
		CommunityScore: r.CommunityScore,
	}
}

// Catalog is the loaded, deduplicated set of records in file order.
type Catalog struct {
	Records  []Record
	Problems []types.ValidationError
}

// Series returns the engine view of every record, in catalog order.
func (c *Catalog) Series() []scoring.Series {
	out := make([]scoring.Series, len(c.Records))
	for i, r := range c.Records {
		out[i] = r.Series()
	}
	return out
}

// Find looks a record up by id, falling back to a case-insensitive title
// match (including the English title).
func (c *Catalog) Find(key string) (Record, bool) {
	for _, r := range c.Records {
		if r.ID == key {
			return r, true
		}
	}
	for _, r := range c.Records {
		if strings.EqualFold(r.Title, key) || (r.TitleEnglish != "" && strings.EqualFold(r.TitleEnglish, key)) {
			return r, true
		}
	}
	return Record{}, false
}

// Errors counts problems with error severity.
func (c *Catalog) Errors() int {
	n := 0
	for _, p := range c.Problems {
		if p.Severity == types.SeverityError {
			n++
		}
	}
	return n
}
