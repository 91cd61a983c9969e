// Package gemini implements the vision grading provider on top of
// Google's Gemini API. It photographs nothing itself: callers hand it the
// uploaded worksheet photos plus the expected items, and it returns a
// provider-tagged grading proposal.
//
// Model output is treated as hostile input. The package carries a layered
// JSON recovery pipeline (see recover.go and adapt.go) that tolerates
// markdown fences, trailing prose, alternate key names, and several
// non-canonical response shapes before giving up.
package gemini
