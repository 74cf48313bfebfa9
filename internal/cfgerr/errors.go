// Package cfgerr 定义配置编译与校验阶段共用的错误分类。
package cfgerr

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind string

const (
	MissingField            Kind = "missing_field"            // 必填输入缺失
	InvalidValue            Kind = "invalid_value"            // 值超出允许范围或枚举
	IncompatibleCombination Kind = "incompatible_combination" // 单独合法、组合非法
	UnsupportedMode         Kind = "unsupported_mode"         // 无法识别的模式标签
	PortConflict            Kind = "port_conflict"
	DeprecatedField         Kind = "deprecated_field"
	SchemaViolation         Kind = "schema_violation"
	SyntaxError             Kind = "syntax_error"
)

// Error 携带类别、字段路径和底层原因的配置错误
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is lets errors.Is(err, &cfgerr.Error{Kind: k}) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// New 创建一个指定类别的错误
func New(kind Kind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误
func Wrap(kind Kind, field string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func Missing(field string) *Error {
	return New(MissingField, field, "required value is empty")
}

func Invalid(field, format string, args ...any) *Error {
	return New(InvalidValue, field, format, args...)
}

func Unsupported(field, value string) *Error {
	return New(UnsupportedMode, field, "unsupported value %q", value)
}

// KindOf 返回错误链中第一个 *Error 的类别，没有则返回空串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether any *Error in err's tree has the given kind.
// errors.Is also walks joined errors, so every issue of a RejectedError is checked.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
