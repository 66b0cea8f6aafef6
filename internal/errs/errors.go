package errs

import "errors"

// 业务错误类别。logic 层用 fmt.Errorf("...: %w", errs.ErrXxx) 包装后返回，
// handler 层用 errors.Is 归类映射到 HTTP 状态码。
var (
	// ErrNotFound 目标记录不存在
	ErrNotFound = errors.New("record not found")

	// ErrForbidden 操作者无权执行该操作
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState 当前状态下不允许该状态流转
	ErrInvalidState = errors.New("invalid state transition")

	// ErrInvalidInput 字段非法或越界
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict 并发唯一性冲突（如重复争议）
	ErrConflict = errors.New("conflict")

	// ErrPaymentFailed 网关明确拒绝，重试安全
	ErrPaymentFailed = errors.New("payment failed")

	// ErrPaymentUncertain 网关超时或结果不明，重试必须复用同一幂等令牌
	ErrPaymentUncertain = errors.New("payment outcome uncertain")
)
