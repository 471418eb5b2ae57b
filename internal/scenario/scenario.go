package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/markord/internal/entity"
	"github.com/roach88/markord/internal/rollback"
)

// Scenario is a scripted sequence of registration steps.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// SessionToken pins the session token. Unpinned scenarios use
	// testutil.DefaultSessionToken, or a UUIDv7 when journaled.
	SessionToken string `yaml:"session_token,omitempty" json:"session_token,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one scenario action. Exactly one of Register, Spawn, Despawn,
// Flush or Expect is set; ExpectError and NoRollback qualify Flush and Spawn.
type Step struct {
	Register    []uint64 `yaml:"register,omitempty" json:"register,omitempty"`
	Spawn       int      `yaml:"spawn,omitempty" json:"spawn,omitempty"`
	NoRollback  bool     `yaml:"no_rollback,omitempty" json:"no_rollback,omitempty"`
	Despawn     []string `yaml:"despawn,omitempty" json:"despawn,omitempty"`
	Flush       bool     `yaml:"flush,omitempty" json:"flush,omitempty"`
	ExpectError string   `yaml:"expect_error,omitempty" json:"expect_error,omitempty"`
	Expect      *Expect  `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expect checks the registry state.
type Expect struct {
	// Sorted is the full expected marker sequence.
	Sorted []string `yaml:"sorted,omitempty" json:"sorted,omitempty"`

	// Order maps marker references to expected order indices.
	Order map[string]int `yaml:"order,omitempty" json:"order,omitempty"`

	// Len is the expected number of registered markers.
	Len *int `yaml:"len,omitempty" json:"len,omitempty"`
}

// kind returns the step's action name.
func (s Step) kind() string {
	var kinds []string
	if len(s.Register) > 0 {
		kinds = append(kinds, "register")
	}
	if s.Spawn > 0 {
		kinds = append(kinds, "spawn")
	}
	if len(s.Despawn) > 0 {
		kinds = append(kinds, "despawn")
	}
	if s.Flush {
		kinds = append(kinds, "flush")
	}
	if s.Expect != nil {
		kinds = append(kinds, "expect")
	}
	return strings.Join(kinds, "+")
}

// Load reads a scenario file. Files ending in .cue are evaluated with CUE;
// anything else is parsed as strict YAML.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc *Scenario
	if filepath.Ext(path) == ".cue" {
		sc, err = parseCUE(path, data)
	} else {
		sc, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if err := validate(sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return sc, nil
}

func parseYAML(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &sc, nil
}

func parseCUE(path string, data []byte) (*Scenario, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE scenario is not concrete: %w", err)
	}

	var sc Scenario
	if err := v.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}
	return &sc, nil
}

// validate checks that required fields are present and every step does one thing.
func validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		kind := step.kind()
		switch {
		case kind == "":
			return fmt.Errorf("step %d: no action", i)
		case strings.Contains(kind, "+"):
			return fmt.Errorf("step %d: multiple actions (%s)", i, kind)
		case step.ExpectError != "" && !step.Flush:
			return fmt.Errorf("step %d: expect_error is only valid on flush", i)
		case step.NoRollback && step.Spawn == 0:
			return fmt.Errorf("step %d: no_rollback is only valid on spawn", i)
		}

		for _, ref := range step.Despawn {
			if _, err := parseHandle(ref); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
		}
		if step.Expect != nil {
			for _, ref := range step.Expect.Sorted {
				if _, err := ParseMarker(ref); err != nil {
					return fmt.Errorf("step %d: %w", i, err)
				}
			}
			for ref := range step.Expect.Order {
				if _, err := ParseMarker(ref); err != nil {
					return fmt.Errorf("step %d: %w", i, err)
				}
			}
		}
	}
	return nil
}

// ParseMarker parses a marker reference: decimal bits ("5") or an entity
// handle ("1v1").
func ParseMarker(ref string) (rollback.Marker, error) {
	if strings.Contains(ref, "v") {
		h, err := parseHandle(ref)
		if err != nil {
			return 0, err
		}
		return rollback.Marker(h.Bits()), nil
	}

	bits, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid marker %q", ref)
	}
	return rollback.Marker(bits), nil
}

// parseHandle parses "index v generation".
func parseHandle(ref string) (entity.Handle, error) {
	idx, gen, ok := strings.Cut(ref, "v")
	if !ok {
		return entity.Handle{}, fmt.Errorf("invalid entity handle %q: want <index>v<generation>", ref)
	}
	i, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return entity.Handle{}, fmt.Errorf("invalid entity handle %q: %w", ref, err)
	}
	g, err := strconv.ParseUint(gen, 10, 32)
	if err != nil {
		return entity.Handle{}, fmt.Errorf("invalid entity handle %q: %w", ref, err)
	}
	return entity.Handle{Index: uint32(i), Generation: uint32(g)}, nil
}
