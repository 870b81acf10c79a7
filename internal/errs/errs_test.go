package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSentinelsWrapThroughFmtErrorf guards the errors.Is-based
// classification every caller layer relies on: wrapping a sentinel with
// %w must still satisfy errors.Is after crossing a layer boundary.
func TestSentinelsWrapThroughFmtErrorf(t *testing.T) {
	wrapped := fmt.Errorf("search collection visa_oracle: %w", ErrUpstreamUnavailable)
	assert.True(t, errors.Is(wrapped, ErrUpstreamUnavailable))
	assert.False(t, errors.Is(wrapped, ErrUpstreamRejected))
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		ErrConfig, ErrUpstreamUnavailable, ErrUpstreamRejected, ErrToolNotFound,
		ErrToolExecution, ErrRateLimited, ErrInvalidArgs, ErrCascadeExhausted,
		ErrNotAuthorized,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}
