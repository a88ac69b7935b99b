package node

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	apperrors "docgen-ai-api/pkg/errors"
)

// statusCoder 携带 HTTP 状态码的上游错误
type statusCoder interface {
	StatusCode() int
}

var statusCodePattern = regexp.MustCompile(`status code:?\s*(\d{3})`)

// ClassifyLLMError 将模型调用错误归类为 AppError；已是 AppError 的原样返回
func ClassifyLLMError(err error) error {
	if err == nil {
		return nil
	}
	if appErr := apperrors.AsAppError(err); appErr != nil {
		return appErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.CodeLLMTimeout, "llm request timed out")
	}

	switch upstreamStatus(err) {
	case 429:
		return apperrors.Wrap(err, apperrors.CodeLLMRateLimited, "Rate limit exceeded. Please try again later.")
	case 403:
		return apperrors.Wrap(err, apperrors.CodeLLMQuotaExceeded, "API quota exceeded. Please try again later.")
	case 400:
		return apperrors.Wrap(err, apperrors.CodeLLMInvalidRequest, "Invalid request. Please check your input.")
	case 408, 504:
		return apperrors.Wrap(err, apperrors.CodeLLMTimeout, "llm request timed out")
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return apperrors.Wrap(err, apperrors.CodeLLMRateLimited, "Rate limit exceeded. Please try again later.")
	case strings.Contains(msg, "quota"), strings.Contains(msg, "resource_exhausted"):
		return apperrors.Wrap(err, apperrors.CodeLLMQuotaExceeded, "API quota exceeded. Please try again later.")
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return apperrors.Wrap(err, apperrors.CodeLLMTimeout, "llm request timed out")
	default:
		return apperrors.Wrap(err, apperrors.CodeLLMProviderError, "llm provider error")
	}
}

func upstreamStatus(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	m := statusCodePattern.FindStringSubmatch(strings.ToLower(err.Error()))
	if len(m) != 2 {
		return 0
	}
	code, _ := strconv.Atoi(m[1])
	return code
}
