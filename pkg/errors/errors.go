// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证错误 (2xxx)
	CodeTokenExpired ErrorCode = "2001"
	CodeTokenInvalid ErrorCode = "2002"
	CodeTokenMissing ErrorCode = "2003"

	// 资源错误 (3xxx)
	CodeProjectNotFound ErrorCode = "3001"
	CodeJobNotFound     ErrorCode = "3002"

	// 业务错误 (4xxx)
	CodeGenerationFailed     ErrorCode = "4001"
	CodeQuestionnaireInvalid ErrorCode = "4002"
	CodeContentValidation    ErrorCode = "4003"
	CodeUnknownDocumentType  ErrorCode = "4004"

	// 外部服务错误 (5xxx)
	CodeDatabaseError     ErrorCode = "5001"
	CodeCacheError        ErrorCode = "5002"
	CodeStorageError      ErrorCode = "5004"
	CodeLLMProviderError  ErrorCode = "5005"
	CodeLLMTimeout        ErrorCode = "5006"
	CodeLLMRateLimited    ErrorCode = "5007"
	CodeLLMQuotaExceeded  ErrorCode = "5008"
	CodeLLMInvalidRequest ErrorCode = "5009"
	CodeMessagingError    ErrorCode = "5010"
)

// kinds 错误码到对外错误类别名的映射
var kinds = map[ErrorCode]string{
	CodeQuestionnaireInvalid: "VALIDATION_ERROR",
	CodeContentValidation:    "CONTENT_VALIDATION_ERROR",
	CodeLLMTimeout:           "TIMEOUT_ERROR",
	CodeLLMRateLimited:       "RATE_LIMIT_ERROR",
	CodeLLMQuotaExceeded:     "QUOTA_EXCEEDED_ERROR",
	CodeLLMInvalidRequest:    "INVALID_REQUEST_ERROR",
	CodeLLMProviderError:     "UNKNOWN_PROVIDER_ERROR",
	CodeDatabaseError:        "PERSISTENCE_ERROR",
	CodeUnknownDocumentType:  "CONFIGURATION_ERROR",
}

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，便于 errors.Is(err, ErrProjectNotFound)
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Kind 返回错误类别名
func (e *AppError) Kind() string {
	if k, ok := kinds[e.Code]; ok {
		return k
	}
	return "INTERNAL_ERROR"
}

// WithDetail 添加详细信息，返回副本，预定义错误不会被改写
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 添加底层错误，返回副本
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeQuestionnaireInvalid, CodeLLMInvalidRequest:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeTokenMissing:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeProjectNotFound, CodeJobNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests, CodeLLMRateLimited, CodeLLMQuotaExceeded:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeLLMTimeout:
		return http.StatusGatewayTimeout
	case CodeGenerationFailed, CodeLLMProviderError, CodeContentValidation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing = New(CodeTokenMissing, "token missing")

	ErrProjectNotFound = New(CodeProjectNotFound, "project not found")
	ErrJobNotFound     = New(CodeJobNotFound, "job not found")

	ErrGenerationFailed     = New(CodeGenerationFailed, "documentation generation failed")
	ErrQuestionnaireInvalid = New(CodeQuestionnaireInvalid, "questionnaire is invalid")
	ErrUnknownDocumentType  = New(CodeUnknownDocumentType, "unknown document type")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// HasCode 判断错误链上是否存在指定错误码
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}
