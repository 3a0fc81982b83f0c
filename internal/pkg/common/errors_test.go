package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrCacheMiss)
	assert.True(t, errors.Is(wrapped, ErrCacheMiss))
	assert.False(t, errors.Is(wrapped, ErrCacheFull))
}

func TestCustomErrorWrap(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := ErrAIServiceError.Wrap(base)

	assert.Equal(t, "AI_SERVICE_ERROR", err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Equal(t, base.Error(), err.Error())
	assert.True(t, errors.Is(err, base))
	assert.True(t, errors.Is(err, ErrAIServiceError))
}

func TestCustomErrorResponse(t *testing.T) {
	resp := ErrTooManyRequests.Response("retry later")
	assert.Equal(t, ErrorResponse{
		Code:    ErrCodeTooManyRequests,
		Message: "請求過於頻繁",
		Details: "retry later",
	}, resp)
	assert.Equal(t, http.StatusTooManyRequests, ErrTooManyRequests.Status)
}
