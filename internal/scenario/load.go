package scenario

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactive/internal/errors"
)

// Load reads, parses and validates the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("S001").
			WithDetail("Could not read " + path).
			Wrap(err)
	}
	s, err := parse(data, path)
	if err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Parse parses and validates a scenario held in memory.
func Parse(data []byte) (*Scenario, error) {
	s, err := parse(data, "")
	if err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func parse(data []byte, path string) (*Scenario, error) {
	s := &Scenario{path: path}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		if err == io.EOF {
			return nil, errors.New("S002").WithDetail("The scenario file is empty.")
		}
		e := errors.New("S002").WithDetail(err.Error())
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			line, _ := strconv.Atoi(m[1])
			locate(e, s, position{line: line})
		}
		return nil, e
	}
	return s, nil
}

// locate attaches pos to e, with source context when the scenario came from
// a file.
func locate(e *errors.Error, s *Scenario, pos position) *errors.Error {
	if pos.line == 0 {
		return e
	}
	if s.path != "" {
		return e.WithLocation(s.path, pos.line, pos.column)
	}
	e.Location = &errors.Location{Line: pos.line, Column: pos.column}
	return e
}
