package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 对错误进行分类，决定其在 HTTP 层的表现形式。
type Kind int

const (
	// Unknown 是兜底分类。
	Unknown Kind = iota
	// Validation 表示输入格式错误或缺少必填字段。
	Validation
	// IO 表示临时文件无法创建、写入或读取。
	IO
	// ExternalProcess 表示外部提取器失败；这类错误在网关内部被吸收，不会返回给调用方。
	ExternalProcess
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation_error"
	case IO:
		return "io_error"
	case ExternalProcess:
		return "external_process_error"
	default:
		return "unknown_error"
	}
}

// Error is a classified error carrying the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, apperr.ErrValidation) works across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation      = &Error{Kind: Validation}
	ErrIO              = &Error{Kind: IO}
	ErrExternalProcess = &Error{Kind: ExternalProcess}
)

// New builds a classified error.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validationf builds a Validation error with a formatted cause.
func Validationf(op, format string, args ...any) error {
	return &Error{Kind: Validation, Op: op, Err: fmt.Errorf(format, args...)}
}

// WrapIO classifies err as an IO failure.
func WrapIO(op string, err error) error {
	return &Error{Kind: IO, Op: op, Err: err}
}

// WrapExternal classifies err as an external process failure.
func WrapExternal(op string, err error) error {
	return &Error{Kind: ExternalProcess, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
