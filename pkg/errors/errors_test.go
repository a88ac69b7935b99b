package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_HTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeQuestionnaireInvalid: http.StatusBadRequest,
		CodeProjectNotFound:      http.StatusNotFound,
		CodeLLMRateLimited:       http.StatusTooManyRequests,
		CodeLLMQuotaExceeded:     http.StatusTooManyRequests,
		CodeLLMTimeout:           http.StatusGatewayTimeout,
		CodeLLMProviderError:     http.StatusBadGateway,
		CodeDatabaseError:        http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, New(code, "x").HTTPStatus, "code %s", code)
	}
}

func TestAppError_Kind(t *testing.T) {
	assert.Equal(t, "RATE_LIMIT_ERROR", New(CodeLLMRateLimited, "x").Kind())
	assert.Equal(t, "PERSISTENCE_ERROR", New(CodeDatabaseError, "x").Kind())
	assert.Equal(t, "INTERNAL_ERROR", New(CodeInternalError, "x").Kind())
}

func TestAppError_IsAndAs(t *testing.T) {
	cause := stderrors.New("boom")
	err := fmt.Errorf("save: %w", Wrap(cause, CodeProjectNotFound, "project not found"))

	assert.True(t, stderrors.Is(err, ErrProjectNotFound))
	assert.True(t, stderrors.Is(err, cause))
	assert.False(t, stderrors.Is(err, ErrJobNotFound))
	assert.True(t, IsAppError(err))
	assert.True(t, HasCode(err, CodeProjectNotFound))
	assert.Equal(t, CodeProjectNotFound, AsAppError(err).Code)
	assert.Equal(t, CodeUnknown, AsAppError(cause).Code)
}

func TestAppError_WithDetailDoesNotMutateSentinel(t *testing.T) {
	e := ErrNotFound.WithDetail("project p1")

	assert.Equal(t, "project p1", e.Detail)
	assert.Empty(t, ErrNotFound.Detail)
}
