package catalog

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/cue"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/discovery"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/logging"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/types"
)

// Community scores live on a 0-10 scale.
const (
	minCommunityScore = 0.0
	maxCommunityScore = 10.0
)

// wrapperKeys are the object keys that may hold the record list.
var wrapperKeys = []string{"series", "anime"}

// Loader decodes, validates and normalizes catalog files.
type Loader struct {
	validator *cue.Validator
	strict    bool
}

// NewLoader compiles the record schema. In strict mode Load fails when any
// record is invalid; otherwise invalid records are reported and dropped.
func NewLoader(strict bool) (*Loader, error) {
	v := cue.NewValidator()
	if err := v.LoadSchemas(); err != nil {
		return nil, fmt.Errorf("loading record schema: %w", err)
	}
	return &Loader{validator: v, strict: strict}, nil
}

// rawEpisode mirrors the on-disk episode shape after schema validation.
type rawEpisode struct {
	Episode int     `json:"episode"`
	Score   float64 `json:"score"`
}

// rawRecord mirrors the on-disk record shape after schema validation.
type rawRecord struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	TitleEnglish  string       `json:"title_english"`
	TitleJapanese string       `json:"title_japanese"`
	MalID         int          `json:"malId"`
	AnilistID     int          `json:"anilistId"`
	Cover         string       `json:"cover"`
	Type          string       `json:"type"`
	Year          int          `json:"year"`
	Season        string       `json:"season"`
	Studio        string       `json:"studio"`
	Source        string       `json:"source"`
	Genres        []string     `json:"genres"`
	Themes        []string     `json:"themes"`
	Demographic   string       `json:"demographic"`
	Score         *float64     `json:"score"`
	Episodes      []rawEpisode `json:"episodes"`
}

// Load reads every file in order and returns the merged catalog. Files are
// expected to be sorted already, as discovery returns them.
func (l *Loader) Load(files []discovery.File) (*Catalog, error) {
	cat := &Catalog{}
	seen := make(map[string]string)

	for _, f := range files {
		raws, err := Decode(f.Type, f.Contents)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.RelPath, err)
		}
		logging.Debug().Str("file", f.RelPath).Int("records", len(raws)).Msg("decoded catalog file")

		for i, raw := range raws {
			rec, problems := l.parseRecord(raw)
			for j := range problems {
				problems[j].File = f.RelPath
				problems[j].Record = i
			}
			cat.Problems = append(cat.Problems, problems...)
			if rec == nil {
				continue
			}
			rec.File = f.RelPath

			if first, dup := seen[rec.ID]; dup {
				cat.Problems = append(cat.Problems, types.ValidationError{
					File:     f.RelPath,
					Record:   i,
					ID:       rec.ID,
					Message:  fmt.Sprintf("duplicate id %q, keeping the record from %s", rec.ID, first),
					Severity: types.SeverityWarning,
					Source:   types.SourceLoader,
				})
				continue
			}
			seen[rec.ID] = f.RelPath
			cat.Records = append(cat.Records, *rec)
		}
	}

	for _, p := range cat.Problems {
		ev := logging.Warn()
		if p.Severity == types.SeverityInfo {
			ev = logging.Debug()
		}
		ev.Str("file", p.File).Int("record", p.Record).Str("id", p.ID).Str("severity", p.Severity).Msg(p.Message)
	}

	if n := cat.Errors(); n > 0 && l.strict {
		return cat, fmt.Errorf("%w: %d record(s) failed validation", ErrInvalidRecord, n)
	}
	return cat, nil
}

// Decode parses a catalog file into raw, unvalidated records.
func Decode(ft discovery.FileType, data []byte) ([]any, error) {
	var doc any
	switch ft {
	case discovery.FileTypeJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	case discovery.FileTypeYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ft)
	}

	return recordList(doc)
}

// recordList finds the list of records in a decoded document.
func recordList(doc any) ([]any, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range wrapperKeys {
			if inner, ok := v[key]; ok {
				list, ok := inner.([]any)
				if !ok {
					return nil, fmt.Errorf("%w: %q is not a list", ErrUnsupportedFormat, key)
				}
				return list, nil
			}
		}
		return nil, fmt.Errorf("%w: expected a list of records or an object with a %q list", ErrUnsupportedFormat, wrapperKeys[0])
	default:
		return nil, fmt.Errorf("%w: top level is %T", ErrUnsupportedFormat, doc)
	}
}

// parseRecord validates and normalizes one raw record. A nil record means
// it was rejected; problems explain why.
func (l *Loader) parseRecord(item any) (*Record, []types.ValidationError) {
	raw, ok := item.(map[string]any)
	if !ok {
		return nil, []types.ValidationError{{
			Message:  fmt.Sprintf("record is a %T, not an object", item),
			Severity: types.SeverityError,
			Source:   types.SourceLoader,
		}}
	}

	flat := flatten(raw)
	id, _ := flat["id"].(string)

	schemaErrs, err := l.validator.ValidateSeries(flat)
	if err != nil {
		return nil, []types.ValidationError{{
			ID:       id,
			Message:  err.Error(),
			Severity: types.SeverityError,
			Source:   types.SourceSchema,
		}}
	}
	if len(schemaErrs) > 0 {
		for i := range schemaErrs {
			schemaErrs[i].ID = id
		}
		return nil, schemaErrs
	}

	encoded, err := json.Marshal(flat)
	if err != nil {
		return nil, []types.ValidationError{{ID: id, Message: err.Error(), Severity: types.SeverityError, Source: types.SourceLoader}}
	}
	var rr rawRecord
	if err := json.Unmarshal(encoded, &rr); err != nil {
		return nil, []types.ValidationError{{ID: id, Message: err.Error(), Severity: types.SeverityError, Source: types.SourceLoader}}
	}

	return normalize(rr)
}

// flatten lifts keys from a nested "metadata" object without overriding
// top-level values, and joins multi-studio lists into one string.
func flatten(raw map[string]any) map[string]any {
	flat := make(map[string]any, len(raw))
	for k, v := range raw {
		flat[k] = v
	}
	if meta, ok := raw["metadata"].(map[string]any); ok {
		delete(flat, "metadata")
		for k, v := range meta {
			if _, exists := flat[k]; !exists {
				flat[k] = v
			}
		}
	}
	if studios, ok := flat["studio"].([]any); ok {
		names := make([]string, 0, len(studios))
		for _, s := range studios {
			if name, ok := s.(string); ok && strings.TrimSpace(name) != "" {
				names = append(names, strings.TrimSpace(name))
			}
		}
		flat["studio"] = strings.Join(names, ", ")
	}
	return flat
}

func normalize(rr rawRecord) (*Record, []types.ValidationError) {
	var problems []types.ValidationError
	note := func(severity, format string, args ...any) {
		problems = append(problems, types.ValidationError{
			ID:       rr.ID,
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
			Source:   types.SourceLoader,
		})
	}

	rec := &Record{
		ID:            strings.TrimSpace(rr.ID),
		Title:         strings.TrimSpace(rr.Title),
		TitleEnglish:  strings.TrimSpace(rr.TitleEnglish),
		TitleJapanese: strings.TrimSpace(rr.TitleJapanese),
		MalID:         rr.MalID,
		AnilistID:     rr.AnilistID,
		Cover:         rr.Cover,
		Type:          rr.Type,
		Year:          rr.Year,
		Season:        rr.Season,
		Studio:        strings.TrimSpace(rr.Studio),
		Source:        rr.Source,
		Genres:        normalizeTags(rr.Genres),
		Themes:        normalizeTags(rr.Themes),
		Demographic:   rr.Demographic,
	}
	if rec.Title == "" {
		rec.Title = rec.ID
	}

	if rr.Score != nil {
		s := *rr.Score
		if math.IsNaN(s) || math.IsInf(s, 0) || s < minCommunityScore || s > maxCommunityScore {
			note(types.SeverityWarning, "community score %v outside 0-10, treating as absent", s)
		} else {
			rec.CommunityScore = &s
		}
	}

	episodes, dropped := normalizeEpisodes(rr.Episodes)
	if dropped > 0 {
		note(types.SeverityWarning, "dropped %d duplicate episode number(s)", dropped)
	}
	rec.Episodes = episodes
	if len(episodes) == 0 {
		note(types.SeverityInfo, "no episode scores, community score only")
	}

	return rec, problems
}

// normalizeEpisodes sorts into watch order and keeps the first occurrence of
// each episode number.
func normalizeEpisodes(in []rawEpisode) ([]scoring.Episode, int) {
	sorted := make([]rawEpisode, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Episode < sorted[j].Episode })

	out := make([]scoring.Episode, 0, len(sorted))
	dropped := 0
	for i, ep := range sorted {
		if i > 0 && ep.Episode == sorted[i-1].Episode {
			dropped++
			continue
		}
		out = append(out, scoring.Episode{Index: ep.Episode, Score: ep.Score})
	}
	return out, dropped
}

// normalizeTags trims, drops empties and removes case-insensitive
// duplicates, keeping the first spelling.
func normalizeTags(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
