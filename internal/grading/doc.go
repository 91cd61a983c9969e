// Package grading provides the interfaces and value types for producing a
// proposed grading of a completed worksheet from a photograph. It abstracts
// the details of the vision-capable language model (Gemini) and the ink-mark
// heuristic, allowing the application to grade worksheets without coupling
// to a specific provider. A proposed grading is never authoritative: a human
// must confirm it before it reaches the mastery statistics.
package grading
