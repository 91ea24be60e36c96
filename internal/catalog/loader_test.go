package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/discovery"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/types"
)

func jsonFile(name, body string) discovery.File {
	return discovery.File{Path: "/catalog/" + name, RelPath: name, Type: discovery.FileTypeJSON, Contents: []byte(body)}
}

func yamlFile(name, body string) discovery.File {
	return discovery.File{Path: "/catalog/" + name, RelPath: name, Type: discovery.FileTypeYAML, Contents: []byte(body)}
}

func newLoader(t *testing.T, strict bool) *Loader {
	t.Helper()
	l, err := NewLoader(strict)
	require.NoError(t, err)
	return l
}

func TestLoadNormalizesRecord(t *testing.T) {
	body := `[{
		"id": "frieren",
		"title": " Frieren ",
		"malId": 52991,
		"year": 2023,
		"genres": ["Adventure", " adventure ", "Fantasy", ""],
		"score": 9.3,
		"episodes": [
			{"episode": 3, "score": 4.4},
			{"episode": 1, "score": 4.6},
			{"episode": 2, "score": 4.5},
			{"episode": 1, "score": 2.0}
		]
	}]`
	cat, err := newLoader(t, false).Load([]discovery.File{jsonFile("anime.json", body)})
	require.NoError(t, err)
	require.Len(t, cat.Records, 1)

	rec := cat.Records[0]
	assert.Equal(t, "Frieren", rec.Title)
	assert.Equal(t, 52991, rec.MalID)
	assert.Equal(t, 2023, rec.Year)
	assert.Equal(t, []string{"Adventure", "Fantasy"}, rec.Genres)
	require.NotNil(t, rec.CommunityScore)
	assert.Equal(t, 9.3, *rec.CommunityScore)
	assert.Equal(t, []scoring.Episode{{Index: 1, Score: 4.6}, {Index: 2, Score: 4.5}, {Index: 3, Score: 4.4}}, rec.Episodes)
	assert.Equal(t, "anime.json", rec.File)

	require.Len(t, cat.Problems, 1)
	assert.Equal(t, types.SeverityWarning, cat.Problems[0].Severity)
	assert.Contains(t, cat.Problems[0].Message, "duplicate episode")
}

func TestLoadWrappersAndNestedMetadata(t *testing.T) {
	body := `{"anime": [{
		"id": "vinland",
		"title": "Vinland Saga",
		"metadata": {"anilistId": 101348, "studio": ["Wit", "MAPPA"], "title": "ignored"},
		"episodes": [{"episode": 1, "score": 4.1}]
	}]}`
	cat, err := newLoader(t, false).Load([]discovery.File{jsonFile("anime.json", body)})
	require.NoError(t, err)
	require.Len(t, cat.Records, 1)
	assert.Equal(t, "Vinland Saga", cat.Records[0].Title)
	assert.Equal(t, 101348, cat.Records[0].AnilistID)
	assert.Equal(t, "Wit, MAPPA", cat.Records[0].Studio)
}

func TestLoadYAML(t *testing.T) {
	body := `
series:
  - id: bocchi
    title: Bocchi the Rock!
    score: 8.8
    episodes:
      - {episode: 1, score: 4}
      - {episode: 2, score: 4.3}
  - id: meta-only
    title: Announced Show
`
	cat, err := newLoader(t, false).Load([]discovery.File{yamlFile("season.yaml", body)})
	require.NoError(t, err)
	require.Len(t, cat.Records, 2)
	assert.Equal(t, []scoring.Episode{{Index: 1, Score: 4}, {Index: 2, Score: 4.3}}, cat.Records[0].Episodes)
	assert.False(t, cat.Records[1].Series().HasEpisodes())
	assert.Zero(t, cat.Errors())
}

func TestLoadCommunityScoreOutOfRange(t *testing.T) {
	body := `[{"id": "a", "title": "A", "score": 87}, {"id": "b", "title": "B", "score": null}]`
	cat, err := newLoader(t, false).Load([]discovery.File{jsonFile("a.json", body)})
	require.NoError(t, err)
	require.Len(t, cat.Records, 2)
	assert.Nil(t, cat.Records[0].CommunityScore)
	assert.Nil(t, cat.Records[1].CommunityScore)
}

func TestLoadDropsInvalidRecords(t *testing.T) {
	body := `[
		{"id": "good", "title": "Good", "episodes": [{"episode": 1, "score": 3}]},
		{"title": "No ID"},
		{"id": "bad-score", "title": "Bad", "episodes": [{"episode": 1, "score": "high"}]},
		"not an object"
	]`
	cat, err := newLoader(t, false).Load([]discovery.File{jsonFile("mixed.json", body)})
	require.NoError(t, err)
	require.Len(t, cat.Records, 1)
	assert.Equal(t, "good", cat.Records[0].ID)
	assert.GreaterOrEqual(t, cat.Errors(), 3)

	var records []int
	for _, p := range cat.Problems {
		if p.Severity == types.SeverityError {
			assert.Equal(t, "mixed.json", p.File)
			records = append(records, p.Record)
		}
	}
	assert.Contains(t, records, 1)
	assert.Contains(t, records, 2)
	assert.Contains(t, records, 3)
}

func TestLoadStrictFails(t *testing.T) {
	body := `[{"id": "x", "title": "X", "episodes": [{"episode": 0, "score": 3}]}]`
	cat, err := newLoader(t, true).Load([]discovery.File{jsonFile("strict.json", body)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
	require.NotNil(t, cat)
	assert.Empty(t, cat.Records)
}

func TestLoadDeduplicatesAcrossFiles(t *testing.T) {
	first := jsonFile("a.json", `[{"id": "dup", "title": "First"}]`)
	second := jsonFile("b.json", `[{"id": "dup", "title": "Second"}, {"id": "other", "title": "Other"}]`)

	cat, err := newLoader(t, false).Load([]discovery.File{first, second})
	require.NoError(t, err)
	require.Len(t, cat.Records, 2)
	assert.Equal(t, "First", cat.Records[0].Title)
	assert.Equal(t, "other", cat.Records[1].ID)

	found := false
	for _, p := range cat.Problems {
		if p.ID == "dup" && p.Severity == types.SeverityWarning {
			found = true
			assert.Contains(t, p.Message, "a.json")
		}
	}
	assert.True(t, found, "expected duplicate warning")
}

func TestDecodeUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name string
		ft   discovery.FileType
		body string
	}{
		{"scalar", discovery.FileTypeJSON, `42`},
		{"object without list", discovery.FileTypeJSON, `{"items": []}`},
		{"wrapper not a list", discovery.FileTypeJSON, `{"series": {"id": "x"}}`},
		{"unknown type", discovery.FileTypeUnknown, `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.ft, []byte(tt.body))
			assert.True(t, errors.Is(err, ErrUnsupportedFormat), "err = %v", err)
		})
	}

	_, err := Decode(discovery.FileTypeJSON, []byte(`[{"id": `))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestCatalogFind(t *testing.T) {
	cat := &Catalog{Records: []Record{
		{ID: "kusuriya", Title: "Kusuriya no Hitorigoto", TitleEnglish: "The Apothecary Diaries"},
		{ID: "frieren", Title: "Sousou no Frieren"},
	}}

	r, ok := cat.Find("frieren")
	assert.True(t, ok)
	assert.Equal(t, "frieren", r.ID)

	r, ok = cat.Find("the apothecary diaries")
	assert.True(t, ok)
	assert.Equal(t, "kusuriya", r.ID)

	_, ok = cat.Find("missing")
	assert.False(t, ok)

	assert.Len(t, cat.Series(), 2)
}
