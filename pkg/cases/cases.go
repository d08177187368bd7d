// Package cases loads the table of login test cases from YAML.
package cases

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/umputun/logincheck/pkg/login"
)

//go:embed defaults/cases.yml
var defaultCases []byte

// table is the on-disk layout of a cases file.
type table struct {
	Cases []entry `yaml:"cases"`
}

type entry struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Expect   string `yaml:"expect"`
	Message  string `yaml:"message"`
}

// Default returns the embedded default table.
func Default() []login.Case {
	res, err := Parse(defaultCases)
	if err != nil {
		panic(fmt.Sprintf("embedded cases are invalid: %v", err)) // covered by tests
	}
	return res
}

// DefaultYAML returns the raw embedded table, used to seed a user cases file.
func DefaultYAML() []byte {
	return bytes.Clone(defaultCases)
}

// Load reads and validates a cases file.
func Load(path string) ([]login.Case, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied cases file
	if err != nil {
		return nil, fmt.Errorf("read cases %s: %w", path, err)
	}
	res, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse cases %s: %w", path, err)
	}
	return res, nil
}

// Parse decodes a YAML cases table. unknown keys, unknown outcomes,
// empty or duplicate names and an empty table are errors.
func Parse(data []byte) ([]login.Case, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t table
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no cases defined")
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(t.Cases) == 0 {
		return nil, errors.New("no cases defined")
	}

	seen := make(map[string]bool, len(t.Cases))
	res := make([]login.Case, 0, len(t.Cases))
	for i, e := range t.Cases {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("case #%d: name is required", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("case %q: duplicate name", name)
		}
		seen[name] = true

		expect, err := login.ParseOutcome(e.Expect)
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", name, err)
		}

		res = append(res, login.Case{
			Name:        name,
			Credentials: login.Credentials{Username: e.Username, Password: e.Password},
			Expect:      expect,
			Message:     e.Message,
		})
	}
	return res, nil
}

// Filter keeps cases whose name matches pattern. an empty pattern keeps everything.
func Filter(cs []login.Case, pattern string) ([]login.Case, error) {
	if pattern == "" {
		return cs, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid case filter %q: %w", pattern, err)
	}
	var res []login.Case
	for _, c := range cs {
		if re.MatchString(c.Name) {
			res = append(res, c)
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("no cases match %q", pattern)
	}
	return res, nil
}
