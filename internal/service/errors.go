package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRequest requestID 不在路由表中
	ErrUnknownRequest = errors.New("unknown requestID")
	// ErrMissingParam 缺少必填参数
	ErrMissingParam = errors.New("missing required parameter")
	// ErrInvalidParam 参数格式不合法
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrNotConfigured 上游服务未配置密钥
	ErrNotConfigured = errors.New("upstream service not configured")
)

// ParamError 参数错误，Unwrap 为 ErrMissingParam 或 ErrInvalidParam
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Param)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

func missingParam(name string) error {
	return &ParamError{Param: name, Err: ErrMissingParam}
}

func invalidParam(name string) error {
	return &ParamError{Param: name, Err: ErrInvalidParam}
}

// UpstreamError 上游返回了非 2xx 状态
type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error %d: %s", e.Service, e.Status, e.Message)
}

// IsClientError 是否应当以 400 返回给调用方
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownRequest) || errors.Is(err, ErrMissingParam) || errors.Is(err, ErrInvalidParam)
}
