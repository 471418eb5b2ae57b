// Package scenario executes scripted registration scenarios against a
// fresh rollback session.
//
// # Scenario Format
//
// Scenarios are YAML (or CUE, with the same field names) files:
//
//	name: reused_slot
//	description: "A recycled entity slot registers between older markers"
//	session_token: test-session-1
//	steps:
//	  - spawn: 4
//	  - flush: true
//	  - despawn: ["1v0"]
//	  - flush: true
//	  - spawn: 1
//	  - flush: true
//	  - expect:
//	      order: { "1v1": 2, "3v0": 4 }
//	  - register: [5]
//	  - flush: true
//	    expect_error: "already registered"
//
// Marker references are either decimal marker bits ("5") or entity handles
// in index-v-generation form ("1v1").
//
// # Step Types
//
//   - register: queue raw marker values
//   - spawn: queue N entities, tagged with a rollback marker unless no_rollback
//   - despawn: queue entity removals
//   - flush: apply the queue; expect_error matches the joined flush error
//   - expect: check sorted markers, order indices and length
//
// Any commands still queued after the last step are flushed before the
// final snapshot is taken.
//
// # Deterministic Testing
//
// Scenarios run with a fixed session token and a deterministic logical
// clock, so traces and snapshots are byte-identical across runs and can be
// compared against golden files.
package scenario
