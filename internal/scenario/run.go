package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/markord/internal/rollback"
	"github.com/roach88/markord/internal/snapshot"
	"github.com/roach88/markord/internal/testutil"
)

// Options configures a scenario run.
type Options struct {
	// Journal receives registrations. Optional.
	Journal rollback.Journal

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Run executes a scenario against a fresh session.
//
// An unpinned scenario runs under testutil.DefaultSessionToken, or under a
// fresh UUIDv7 token when it is journaled, so repeated runs into one
// journal never share a session.
//
// Failed expectations are reported in the Result; the returned error is
// reserved for failures to run at all (session creation, snapshot encoding).
func Run(ctx context.Context, sc *Scenario, opts Options) (*Result, error) {
	var tokens rollback.TokenGenerator = testutil.NewFixedTokenGenerator(sc.SessionToken)
	if sc.SessionToken == "" && opts.Journal != nil {
		tokens = rollback.UUIDv7Generator{}
	}

	sess, err := rollback.NewSession(ctx, rollback.Config{
		Name:    sc.Name,
		Tokens:  tokens,
		Clock:   testutil.NewDeterministicClock(),
		Journal: opts.Journal,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", sc.Name, err)
	}
	defer sess.Close()

	result := NewResult(sess.Token())
	cmds := sess.Commands()

	for i, step := range sc.Steps {
		switch {
		case len(step.Register) > 0:
			for _, bits := range step.Register {
				if err := cmds.RegisterMarker(rollback.Marker(bits)); err != nil {
					result.AddError("step %d: %v", i, err)
				}
			}

		case step.Spawn > 0:
			for n := 0; n < step.Spawn; n++ {
				e := cmds.Spawn()
				if !step.NoRollback {
					e.AddRollback()
				}
				if err := e.Err(); err != nil {
					result.AddError("step %d: %v", i, err)
				}
			}

		case len(step.Despawn) > 0:
			for _, ref := range step.Despawn {
				h, _ := parseHandle(ref) // validated at load
				if err := cmds.Despawn(h); err != nil {
					result.AddError("step %d: %v", i, err)
				}
			}

		case step.Flush:
			flushErr := flush(ctx, sess, result)
			checkFlushError(result, i, step.ExpectError, flushErr)

		case step.Expect != nil:
			checkExpect(result, i, sess.Registry(), step.Expect)
		}
	}

	if sess.Pending() > 0 {
		if err := flush(ctx, sess, result); err != nil {
			result.AddError("final flush: %v", err)
		}
	}

	result.Final = snapshot.Build(sess.Token(), sess.Registry())
	result.Digest, err = result.Final.Digest()
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", sc.Name, err)
	}
	return result, nil
}

// flush applies queued commands and appends registrations to the trace.
func flush(ctx context.Context, sess *rollback.Session, result *Result) error {
	regs, err := sess.Flush(ctx)
	for _, reg := range regs {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:     reg.Seq,
			Marker:  reg.Marker.Handle().String(),
			Order:   reg.Order,
			Shifted: reg.Shifted,
		})
	}
	return err
}

func checkFlushError(result *Result, step int, want string, got error) {
	switch {
	case want == "" && got != nil:
		result.AddError("step %d: unexpected flush error: %v", step, got)
	case want != "" && got == nil:
		result.AddError("step %d: expected flush error containing %q, got none", step, want)
	case want != "" && !strings.Contains(got.Error(), want):
		result.AddError("step %d: expected flush error containing %q, got %q", step, want, got.Error())
	}
}

func checkExpect(result *Result, step int, reg rollback.Reader[rollback.Marker], exp *Expect) {
	if exp.Len != nil && reg.Len() != *exp.Len {
		result.AddError("step %d: expected %d markers, got %d", step, *exp.Len, reg.Len())
	}

	if exp.Sorted != nil {
		want := make([]rollback.Marker, len(exp.Sorted))
		for i, ref := range exp.Sorted {
			want[i], _ = ParseMarker(ref) // validated at load
		}
		got := slices.Collect(reg.All())
		if !slices.Equal(want, got) {
			result.AddError("step %d: expected sorted %v, got %v", step, want, got)
		}
	}

	// Deterministic error ordering for golden output.
	refs := make([]string, 0, len(exp.Order))
	for ref := range exp.Order {
		refs = append(refs, ref)
	}
	slices.Sort(refs)

	for _, ref := range refs {
		m, _ := ParseMarker(ref)
		idx, ok := reg.Lookup(m)
		switch {
		case !ok:
			result.AddError("step %d: marker %s is not registered", step, ref)
		case idx != exp.Order[ref]:
			result.AddError("step %d: expected order(%s) = %d, got %d", step, ref, exp.Order[ref], idx)
		}
	}
}
