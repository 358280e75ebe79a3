package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息（面向客户端，随 ack 回传）
	cause error  // 被包装的底层错误
}

// Error 实现 Go 标准 error 接口
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNotFound, "message not found")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy // 默认返回服务繁忙
}

// ClientMsg 提取面向客户端的错误消息
// 非 CodeError 的系统错误一律对外显示为 server busy，避免泄露内部细节
func ClientMsg(err error) string {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Msg
	}
	return ErrServerBusy.Msg
}

// 业务状态码常量定义
const (
	CodeInvalidParam   = 1001 // 请求参数错误
	CodeServerBusy     = 1005 // 服务繁忙
	CodeUnauthorized   = 1006 // 未授权/握手认证失败
	CodeAccessDenied   = 1007 // 无权访问
	CodeNotFound       = 1008 // 资源不存在
	CodeNotFoundOrDeny = 1009 // 资源不存在或无权访问（防枚举，两种情况合并）
	CodeDBError        = 1010 // 数据库错误
	CodeCacheError     = 1011 // 缓存错误
)

// 预定义常用错误实例
// 错误消息为英文，前端按原文内联展示；合并型消息是刻意设计，不可拆分
var (
	ErrInvalidParam = New(CodeInvalidParam, "invalid request payload")
	ErrServerBusy   = New(CodeServerBusy, "server busy")

	// 握手阶段
	ErrAuthRequired = New(CodeUnauthorized, "authentication required")
	ErrInvalidToken = New(CodeUnauthorized, "invalid or expired token")

	// 聊天操作
	ErrChatNotFoundOrDenied = New(CodeNotFoundOrDeny, "chat not found or access denied")
	ErrMessageNotFound      = New(CodeNotFound, "message not found")
	ErrAccessDenied         = New(CodeAccessDenied, "access denied")
	ErrNotSenderOrNotFound  = New(CodeNotFoundOrDeny, "message not found or you are not the sender")
)

// IsNotFound 检查错误是否为"未找到"类型（包括 gorm.ErrRecordNotFound）
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	return err != nil && err.Error() == "record not found"
}
