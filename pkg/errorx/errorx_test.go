package errorx

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(cause, CodeDBError, "查询会话")

	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to cause")
	}
	if GetCode(err) != CodeDBError {
		t.Errorf("code = %d", GetCode(err))
	}
}

func TestGetCodeOnPlainError(t *testing.T) {
	if got := GetCode(errors.New("boom")); got != CodeServerBusy {
		t.Errorf("plain error code = %d, want server busy", got)
	}
}

func TestClientMsgHidesInternalErrors(t *testing.T) {
	// 非 CodeError 的系统错误对外只显示 server busy
	if got := ClientMsg(errors.New("gorm: connection refused")); got != "server busy" {
		t.Errorf("client msg = %q", got)
	}
	if got := ClientMsg(ErrChatNotFoundOrDenied); got != "chat not found or access denied" {
		t.Errorf("client msg = %q", got)
	}
}

func TestClientMsgFindsWrappedCodeError(t *testing.T) {
	err := fmt.Errorf("handler: %w", ErrMessageNotFound)
	if got := ClientMsg(err); got != "message not found" {
		t.Errorf("client msg = %q", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(ErrMessageNotFound) {
		t.Error("ErrMessageNotFound should be not-found")
	}
	if IsNotFound(ErrAccessDenied) {
		t.Error("access denied is not a not-found error")
	}
	if IsNotFound(nil) {
		t.Error("nil is not a not-found error")
	}
	if !IsNotFound(errors.New("record not found")) {
		t.Error("gorm record-not-found text should count")
	}
}

func TestMergedErrorMessages(t *testing.T) {
	// 防枚举的合并文案不可拆分，固定为下列字符串
	cases := map[error]string{
		ErrAuthRequired:         "authentication required",
		ErrInvalidToken:         "invalid or expired token",
		ErrChatNotFoundOrDenied: "chat not found or access denied",
		ErrNotSenderOrNotFound:  "message not found or you are not the sender",
	}
	for err, want := range cases {
		if err.Error() != want {
			t.Errorf("message = %q, want %q", err.Error(), want)
		}
	}
}
