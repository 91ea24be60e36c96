package cue

import (
	"embed"
	"fmt"
	"math"
	"path"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/types"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// Validator checks decoded catalog records against the embedded CUE schemas.
type Validator struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// LoadSchemas compiles every embedded .cue file, keyed by base name
// (series.cue -> series).
func (v *Validator) LoadSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return fmt.Errorf("could not read embedded schemas: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".cue" {
			continue
		}
		content, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return fmt.Errorf("reading schema %s: %w", entry.Name(), err)
		}
		inst := v.ctx.CompileBytes(content, cue.Filename(entry.Name()))
		if instErr := inst.Err(); instErr != nil {
			return fmt.Errorf("compiling schema %s: %w", entry.Name(), instErr)
		}
		v.schemas[strings.TrimSuffix(entry.Name(), ".cue")] = inst.Value()
	}

	if len(v.schemas) == 0 {
		return fmt.Errorf("no CUE schemas found")
	}
	return nil
}

// ValidateSeries validates one raw catalog record against #Series.
// A nil slice means the record is valid.
func (v *Validator) ValidateSeries(data map[string]any) ([]types.ValidationError, error) {
	schema, ok := v.schemas["series"]
	if !ok {
		return nil, fmt.Errorf("series schema not loaded")
	}
	return v.validateAgainstSchema(schema, data, "#Series")
}

func (v *Validator) validateAgainstSchema(schema cue.Value, data map[string]any, definition string) ([]types.ValidationError, error) {
	dataValue := v.ctx.Encode(integralNumbers(data))
	if encErr := dataValue.Err(); encErr != nil {
		return nil, fmt.Errorf("error encoding data: %w", encErr)
	}

	def := schema.LookupPath(cue.ParsePath(definition))
	if !def.Exists() {
		return nil, fmt.Errorf("schema definition %s not found", definition)
	}

	unified := def.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return extractErrorsFromCUE(err), nil
	}
	return nil, nil
}

// extractErrorsFromCUE turns each CUE error into one ValidationError.
func extractErrorsFromCUE(err error) []types.ValidationError {
	var out []types.ValidationError
	for _, e := range cueerrors.Errors(err) {
		msg := e.Error()
		if p := e.Path(); len(p) > 0 && !strings.HasPrefix(msg, strings.Join(p, ".")) {
			msg = strings.Join(p, ".") + ": " + msg
		}
		out = append(out, types.ValidationError{
			Message:  "schema: " + msg,
			Severity: types.SeverityError,
			Source:   types.SourceSchema,
		})
	}
	if len(out) == 0 {
		out = append(out, types.ValidationError{
			Message:  fmt.Sprintf("schema: %v", err),
			Severity: types.SeverityError,
			Source:   types.SourceSchema,
		})
	}
	return out
}

// integralNumbers rewrites whole float64 values as int64 so JSON-decoded
// episode numbers satisfy int constraints. Fractional values are untouched.
func integralNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = integralNumbers(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = integralNumbers(val)
		}
		return out
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	default:
		return v
	}
}
