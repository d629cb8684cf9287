package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound 未找到错误
	ErrNotFound = errors.New("not found")

	// ErrValidationFailed 验证失败错误
	ErrValidationFailed = errors.New("validation failed")

	// ErrProcessingFailed 处理失败错误
	ErrProcessingFailed = errors.New("processing failed")

	// ErrStorageFailed 存储失败错误
	ErrStorageFailed = errors.New("storage failed")

	// ErrMatchDeleted 比赛已删除错误
	ErrMatchDeleted = errors.New("match deleted")
)

// ValidationError 字段级验证错误，在任何状态变更之前同步返回给调用方
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError 创建验证错误
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add 添加一条字段错误
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = message
}

// HasErrors 是否包含字段错误
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap 使 errors.Is(err, ErrValidationFailed) 成立
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// AppError 应用错误
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError 创建应用错误
func NewAppError(code string, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
