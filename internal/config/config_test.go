package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
)

// resetViper resets viper to a clean state for each test
func resetViper() {
	viper.Reset()
}

// chdirTemp switches into a fresh temporary directory for the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})
	return tmpDir
}

func validConfig() *Config {
	return &Config{
		Root:        ".",
		Catalog:     []string{"data/anime.json"},
		Format:      "console",
		LogFormat:   "console",
		Concurrency: 10,
		Limit:       10,
		Scoring:     scoring.DefaultTuning(),
	}
}

// TestLoadConfigDefaults tests that default values are set correctly
func TestLoadConfigDefaults(t *testing.T) {
	resetViper()
	chdirTemp(t)

	config, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, ".", config.Root)
	assert.Equal(t, []string{"data/anime.json"}, config.Catalog)
	assert.Equal(t, "console", config.Format)
	assert.Equal(t, "console", config.LogFormat)
	assert.Empty(t, config.Output)
	assert.False(t, config.FollowSymlinks)
	assert.False(t, config.Strict)
	assert.False(t, config.Quiet)
	assert.False(t, config.Verbose)
	assert.Equal(t, 10, config.Concurrency)
	assert.Equal(t, 10, config.Limit)
	assert.Equal(t, scoring.DefaultTuning(), config.Scoring)
}

// TestLoadConfigFromJSON tests loading configuration from JSON file
func TestLoadConfigFromJSON(t *testing.T) {
	resetViper()
	tmpDir := chdirTemp(t)

	configData := map[string]any{
		"root":        "/srv/rekonime",
		"catalog":     []string{"data/*.json", "extra/"},
		"strict":      true,
		"format":      "json",
		"output":      "payload.json",
		"quiet":       true,
		"concurrency": 4,
		"limit":       25,
		"snapshot":    "dist/stats.json",
		"scoring": map[string]any{
			"strictnessExponent": 1.5,
			"rollingWindow":      4,
		},
	}
	jsonData, err := json.MarshalIndent(configData, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".rekonimerc.json"), jsonData, 0644))

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/srv/rekonime", config.Root)
	assert.Equal(t, []string{"data/*.json", "extra/"}, config.Catalog)
	assert.True(t, config.Strict)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "payload.json", config.Output)
	assert.True(t, config.Quiet)
	assert.Equal(t, 4, config.Concurrency)
	assert.Equal(t, 25, config.Limit)
	assert.Equal(t, "dist/stats.json", config.Snapshot)
	assert.Equal(t, 1.5, config.Scoring.StrictnessExponent)
	assert.Equal(t, 4, config.Scoring.RollingWindow)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, scoring.DefaultTuning().SlowBurnLift, config.Scoring.SlowBurnLift)
}

// TestLoadConfigFromYAML tests loading configuration from YAML file
func TestLoadConfigFromYAML(t *testing.T) {
	resetViper()
	tmpDir := chdirTemp(t)

	yamlContent := `
catalog:
  - seasons/**/*.yaml
format: markdown
verbose: true
logFormat: json
scoring:
  slowBurnLift: 0.5
  slowBurnFinaleFloor: 55
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".rekonimerc.yaml"), []byte(yamlContent), 0644))

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, []string{"seasons/**/*.yaml"}, config.Catalog)
	assert.Equal(t, "markdown", config.Format)
	assert.True(t, config.Verbose)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, 0.5, config.Scoring.SlowBurnLift)
	assert.Equal(t, 55.0, config.Scoring.SlowBurnFinaleFloor)
}

// TestLoadConfigExplicitFile tests that an explicit --config path is required to exist
func TestLoadConfigExplicitFile(t *testing.T) {
	resetViper()
	tmpDir := chdirTemp(t)

	path := filepath.Join(tmpDir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("limit: 3\n"), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, config.Limit)

	resetViper()
	_, err = LoadConfig(filepath.Join(tmpDir, "missing.yml"))
	assert.Error(t, err)
}

// TestLoadConfigEnvironmentVariables tests environment variable overrides
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	resetViper()
	chdirTemp(t)

	t.Setenv("REKONIME_FORMAT", "json")
	t.Setenv("REKONIME_CONCURRENCY", "3")
	t.Setenv("REKONIME_STRICT", "true")
	t.Setenv("REKONIME_SCORING_ROLLINGWINDOW", "5")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "json", config.Format)
	assert.Equal(t, 3, config.Concurrency)
	assert.True(t, config.Strict)
	assert.Equal(t, 5, config.Scoring.RollingWindow)
}

// TestLoadConfigConfigFilePriority tests that first found config file is used
func TestLoadConfigConfigFilePriority(t *testing.T) {
	resetViper()
	tmpDir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".rekonimerc.json"), []byte(`{"limit": 7}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".rekonimerc.yaml"), []byte("limit: 9\n"), 0644))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7, config.Limit)
}

// TestLoadConfigRejectsInvalidFile tests that validation runs after loading
func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	resetViper()
	tmpDir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".rekonimerc.yaml"), []byte("format: xml\n"), 0644))

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "invalid format: xml")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"json without output writes stdout", func(c *Config) { c.Format = "json" }, ""},
		{"invalid format", func(c *Config) { c.Format = "html" }, "invalid format: html. Must be one of: console, json, markdown"},
		{"invalid log format", func(c *Config) { c.LogFormat = "xml" }, "invalid logFormat"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency must be at least 1"},
		{"negative limit", func(c *Config) { c.Limit = -1 }, "limit must be at least 0"},
		{"no catalog", func(c *Config) { c.Catalog = nil }, "catalog must list at least 1 entry"},
		{"blank catalog entry", func(c *Config) { c.Catalog = []string{""} }, "is required"},
		{"bad exponent", func(c *Config) { c.Scoring.StrictnessExponent = 0 }, "scoring.strictnessExponent must be greater than 0"},
		{"bad lift", func(c *Config) { c.Scoring.SlowBurnLift = 1.5 }, "scoring.slowBurnLift must be at most 1"},
		{"bad floor", func(c *Config) { c.Scoring.SlowBurnMomentumFloor = 100 }, "scoring.slowBurnMomentumFloor must be less than 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := validateConfig(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestSaveConfig tests round-tripping a configuration through a file
func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "rekonime.json")

	require.NoError(t, SaveConfig(validConfig(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Config
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *validConfig(), got)
}
