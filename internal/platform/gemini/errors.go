package gemini

import "errors"

// Package-internal failures. Callers see these wrapped in the grading
// package's provider errors.
var (
	// ErrNoPhotos indicates the caller supplied an empty photo set.
	ErrNoPhotos = errors.New("no photos to grade")

	// ErrEmptyResponse indicates the API returned no usable candidate text.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrNoEntries indicates a parse succeeded but the response carried no
	// per-position entries under any known key.
	ErrNoEntries = errors.New("no entries in model response")
)
