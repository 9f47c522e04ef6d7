package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类（与 HTTP 状态码的映射在 server 层完成）。
type Kind int

const (
	KindInternal      Kind = iota // 未分类 / 内部错误
	KindNotFound                  // 实体不存在
	KindConflict                  // 预订区间冲突、唯一键冲突
	KindAuthorization             // 缺少角色 / 权限
	KindValidation                // 入参不合法
)

// Error 业务错误，携带分类信息，可通过 errors.As 取出。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound 实体不存在。
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflict 资源冲突（如同车同区间的预订）。
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// Authorization 无权限 / 未认证。
func Authorization(format string, args ...interface{}) *Error {
	return newf(KindAuthorization, format, args...)
}

// Validation 入参校验失败。
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// Internal 内部错误，包装底层 err。
func Internal(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf 取错误分类；非 *Error 一律按 Internal 处理。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
