package domain

import "errors"

var (
	// ErrProviderUnavailable marks a failed places-provider call (network,
	// quota, malformed response). Recovered locally by skipping the call.
	ErrProviderUnavailable = errors.New("places provider unavailable")

	// ErrEmptyRegion marks a zero-area region. Recovered locally: density is 0.
	ErrEmptyRegion = errors.New("region has zero area")

	// ErrInvalidRegion marks inverted or out-of-range bounds.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrNarrativeGeneration is terminal for one analysis attempt.
	ErrNarrativeGeneration = errors.New("narrative generation failed")

	// ErrStaleGeneration marks work for a superseded region. Never surfaced
	// to the user as an error.
	ErrStaleGeneration = errors.New("stale generation")
)

// ErrNotFound marks a missing stored entity.
var ErrNotFound = errors.New("not found")
