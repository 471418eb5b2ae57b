// Package snapshot captures a registry's ordering in a canonical,
// hashable form.
//
// Two peers that registered the same markers agree on every order index, so
// they produce byte-identical canonical JSON and the same Digest. The digest
// is the checksum compared during network replay and by `markord replay`.
//
// Canonical JSON here follows RFC 8785 for the subset of values a snapshot
// contains: objects with UTF-16 sorted keys, arrays, NFC-normalized strings,
// integers and booleans. Floats and null are rejected.
package snapshot
