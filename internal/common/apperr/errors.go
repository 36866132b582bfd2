package apperr

import (
	"errors"
	"net/http"
)

// 领域错误分类。各业务包用 fmt.Errorf("%w: ...") 包装出具体错误，
// 调用方统一用 errors.Is 判断分类，handler 层用 HTTPStatus 映射状态码。
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
)

// HTTPStatus 把领域错误分类映射为 HTTP 状态码。
// 未分类的错误（数据库连接失败等基础设施错误）一律 500，不向外暴露细节。
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsDomain 判断是否属于领域错误分类（即适合原样返回给调用方的错误）。
func IsDomain(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrValidation)
}
