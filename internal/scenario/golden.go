package scenario

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/markord/internal/snapshot"
)

// canonical converts a result to a value for canonical JSON serialization.
func (r *Result) canonical(name string) map[string]any {
	trace := make([]any, len(r.Trace))
	for i, ev := range r.Trace {
		trace[i] = map[string]any{
			"seq":     ev.Seq,
			"marker":  ev.Marker,
			"order":   ev.Order,
			"shifted": ev.Shifted,
		}
	}

	errs := make([]any, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}

	return map[string]any{
		"scenario": name,
		"session":  r.Session,
		"pass":     r.Pass,
		"trace":    trace,
		"errors":   errs,
		"final":    r.Final.Canonical(),
		"digest":   r.Digest,
	}
}

// RunWithGolden executes a scenario and compares the result against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
func RunWithGolden(t *testing.T, sc *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), sc, Options{})
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, sc.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := snapshot.MarshalCanonical(result.canonical(name))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
