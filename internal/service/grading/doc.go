// Package grading implements the grading use cases: proposing a grading
// for an uploaded marked-photo, committing a human-confirmed grading to
// results and mastery statistics, and the manual transcription path.
//
// The provider chain is explicit. In auto mode the vision model is tried
// first; the ink-mark heuristic takes over when the vision provider is
// unavailable or its response cannot be recovered. Provider output is
// always a proposal: nothing touches mastery statistics until a human
// confirms it.
package grading
