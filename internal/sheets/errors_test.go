package sheets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestIsRateLimited(t *testing.T) {
	assert.True(t, isRateLimited(&googleapi.Error{Code: 429}))
	assert.True(t, isRateLimited(&googleapi.Error{
		Code:   403,
		Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}},
	}))
	assert.True(t, isRateLimited(&googleapi.Error{
		Code:   403,
		Errors: []googleapi.ErrorItem{{Reason: "userRateLimitExceeded"}},
	}))

	assert.False(t, isRateLimited(&googleapi.Error{
		Code:   403,
		Errors: []googleapi.ErrorItem{{Reason: "insufficientPermissions"}},
	}))
	assert.False(t, isRateLimited(&googleapi.Error{Code: 400}))
	assert.False(t, isRateLimited(errors.New("plain")))

	// Wrapped errors are still recognized.
	wrapped := fmt.Errorf("call failed: %w", &googleapi.Error{Code: 429})
	assert.True(t, isRateLimited(wrapped))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&googleapi.Error{Code: 429}))
	assert.True(t, isTransient(&googleapi.Error{Code: 500}))
	assert.True(t, isTransient(&googleapi.Error{Code: 503}))
	assert.True(t, isTransient(context.DeadlineExceeded))

	assert.False(t, isTransient(nil))
	assert.False(t, isTransient(&googleapi.Error{Code: 400}))
	assert.False(t, isTransient(&googleapi.Error{Code: 404}))
	assert.False(t, isTransient(errors.New("validation failed")))
}

func TestClassifyCallError(t *testing.T) {
	assert.NoError(t, classifyCallError(nil, 1, -1))

	rate := classifyCallError(&googleapi.Error{Code: 429}, 4, -1)
	var rateErr *RateLimitError
	require.ErrorAs(t, rate, &rateErr)
	assert.Equal(t, 4, rateErr.Attempts)

	server := classifyCallError(&googleapi.Error{Code: 502}, 4, -1)
	var netErr *NetworkError
	require.ErrorAs(t, server, &netErr)

	rejected := classifyCallError(&googleapi.Error{Code: 400, Message: "Invalid requests[1]: nope"}, 1, 1)
	var apiErr *APIError
	require.ErrorAs(t, rejected, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, 1, apiErr.RequestIndex)
	assert.Contains(t, apiErr.Error(), "sub-request 1")

	timeout := classifyCallError(context.DeadlineExceeded, 4, -1)
	require.ErrorAs(t, timeout, &netErr)

	// Unknown errors pass through unchanged.
	plain := errors.New("something else")
	assert.Equal(t, plain, classifyCallError(plain, 1, -1))
}

func TestValidationErrorMessage(t *testing.T) {
	err := validationErrorf(ValidationBadColor, "background_color", "unknown color %q", "blurple")
	assert.Equal(t, `invalid background_color: unknown color "blurple"`, err.Error())

	bare := &ValidationError{Kind: ValidationBadValue, Message: "nothing to do"}
	assert.Equal(t, "nothing to do", bare.Error())
}
