package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/discovery"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
)

// EnvPrefix is prepended to every environment override, e.g.
// REKONIME_FORMAT or REKONIME_SCORING_ROLLINGWINDOW.
const EnvPrefix = "REKONIME"

// ConfigPaths are the config files looked up in the working directory, in order.
var ConfigPaths = []string{".rekonimerc.json", ".rekonimerc.yaml", ".rekonimerc.yml"}

// Config represents the rekonime configuration
type Config struct {
	Root           string         `mapstructure:"root" json:"root" validate:"required"`
	Catalog        []string       `mapstructure:"catalog" json:"catalog" validate:"min=1,dive,required"`
	FollowSymlinks bool           `mapstructure:"followSymlinks" json:"followSymlinks"`
	Strict         bool           `mapstructure:"strict" json:"strict"`
	Format         string         `mapstructure:"format" json:"format" validate:"oneof=console json markdown"`
	Output         string         `mapstructure:"output" json:"output,omitempty"`
	Quiet          bool           `mapstructure:"quiet" json:"quiet"`
	Verbose        bool           `mapstructure:"verbose" json:"verbose"`
	LogFormat      string         `mapstructure:"logFormat" json:"logFormat" validate:"oneof=console json"`
	Concurrency    int            `mapstructure:"concurrency" json:"concurrency" validate:"min=1,max=256"`
	Limit          int            `mapstructure:"limit" json:"limit" validate:"min=0"`
	Snapshot       string         `mapstructure:"snapshot" json:"snapshot,omitempty"`
	Scoring        scoring.Tuning `mapstructure:"scoring" json:"scoring"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their config key rather than the Go name.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// setDefaults registers every key so environment overrides are picked up.
func setDefaults() {
	tuning := scoring.DefaultTuning()
	viper.SetDefault("root", ".")
	viper.SetDefault("catalog", discovery.DefaultPatterns)
	viper.SetDefault("followSymlinks", false)
	viper.SetDefault("strict", false)
	viper.SetDefault("format", "console")
	viper.SetDefault("output", "")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("logFormat", "console")
	viper.SetDefault("concurrency", 10)
	viper.SetDefault("limit", 10)
	viper.SetDefault("snapshot", "")
	viper.SetDefault("scoring.strictnessExponent", tuning.StrictnessExponent)
	viper.SetDefault("scoring.rollingWindow", tuning.RollingWindow)
	viper.SetDefault("scoring.earlyPenaltyEpisodes", tuning.EarlyPenaltyEpisodes)
	viper.SetDefault("scoring.slowBurnLift", tuning.SlowBurnLift)
	viper.SetDefault("scoring.slowBurnFinaleFloor", tuning.SlowBurnFinaleFloor)
	viper.SetDefault("scoring.slowBurnMomentumFloor", tuning.SlowBurnMomentumFloor)
}

// LoadConfig loads configuration from defaults, an optional config file,
// REKONIME_ environment variables and any flags bound to viper. An explicit
// configFile must exist; otherwise the ConfigPaths are tried in order.
func LoadConfig(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		for _, path := range ConfigPaths {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", path, err)
			}
			break
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig checks struct tags and turns the first failures into
// readable messages.
func validateConfig(config *Config) error {
	err := getValidator().Struct(config)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, translateError(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("invalid %s: %v. Must be one of: %s", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must list at least %s entry", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// SaveConfig saves the current configuration to a file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
