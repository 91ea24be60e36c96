// Package outputters picks the report formatter and destination for a
// command from the configuration.
package outputters

import (
	"fmt"
	"io"
	"os"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/config"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/output"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/types"
)

// Outputter handles output formatting
type Outputter struct {
	config *config.Config
	stdout io.Writer
}

// NewOutputter creates a new Outputter. Reports go to stdout unless the
// config names an output file.
func NewOutputter(config *config.Config, stdout io.Writer) *Outputter {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Outputter{
		config: config,
		stdout: stdout,
	}
}

// Formatter creates the formatter for format writing to w.
func (o *Outputter) Formatter(format string, w io.Writer, colorize bool) (output.Formatter, error) {
	switch format {
	case types.FormatConsole:
		return output.NewConsoleFormatter(w, o.config.Quiet, o.config.Verbose, colorize), nil
	case types.FormatJSON:
		return output.NewJSONFormatter(w, true), nil
	case types.FormatMarkdown:
		return output.NewMarkdownFormatter(w, o.config.Verbose), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Emit renders one report with the configured format. The output file, if
// any, is replaced.
func (o *Outputter) Emit(render func(output.Formatter) error) error {
	if o.config.Output == "" {
		f, err := o.Formatter(o.config.Format, o.stdout, true)
		if err != nil {
			return err
		}
		return render(f)
	}

	file, err := os.Create(o.config.Output)
	if err != nil {
		return fmt.Errorf("error creating output file %s: %w", o.config.Output, err)
	}
	f, err := o.Formatter(o.config.Format, file, false)
	if err != nil {
		file.Close()
		return err
	}
	if err := render(f); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error writing to file %s: %w", o.config.Output, err)
	}
	return nil
}
