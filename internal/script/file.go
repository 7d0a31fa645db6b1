package script

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the structured script format shared by YAML and TOML.
type File struct {
	Steps []FileStep `yaml:"steps" toml:"steps"`
}

// FileStep is one structured step. Operand is a pointer so a missing
// operand can be told apart from zero.
type FileStep struct {
	Do      string   `yaml:"do" toml:"do"`
	Operand *float64 `yaml:"operand" toml:"operand"`
	Name    string   `yaml:"name" toml:"name"`
}

// Step converts fs into a Step. Arithmetic steps need an operand and
// history actions must not have one, as in the line form.
func (fs FileStep) Step() (Step, error) {
	s := Step{Do: fs.Do, Name: fs.Name}
	if err := s.Validate(); err != nil {
		return Step{}, err
	}

	_, arithmetic := s.Operation()
	switch {
	case arithmetic && fs.Operand == nil:
		return Step{}, fmt.Errorf("%w for %q", ErrMissingOperand, fs.Do)
	case !arithmetic && fs.Operand != nil:
		return Step{}, fmt.Errorf("%w: operand for %q", ErrExtraArgs, fs.Do)
	}

	if fs.Operand != nil {
		s.Operand = *fs.Operand
	}
	return s, nil
}

// LineError reports a parse failure in a line-based script.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Load reads a script file. The format follows the extension:
// .yaml/.yml and .toml are structured, anything else is one step per line.
func Load(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading script %s", path)
	}

	steps, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading script %s", path)
	}
	return steps, nil
}

// Decode parses script data in the format named by ext.
func Decode(ext string, data []byte) ([]Step, error) {
	var (
		f   File
		err error
	)

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		return Parse(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(f.Steps))
	for i, fs := range f.Steps {
		s, err := fs.Step()
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", i+1)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// Parse reads one step per line, skipping blank lines and '#' comments.
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step

	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		text := sc.Text()
		s, err := ParseLine(text)
		if errors.Is(err, ErrEmptyLine) {
			continue
		}
		if err != nil {
			return nil, &LineError{Line: n, Text: strings.TrimSpace(text), Err: err}
		}
		steps = append(steps, s)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading script")
	}

	return steps, nil
}
