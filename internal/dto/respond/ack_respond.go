package respond

import "yuanfen_chat_server/pkg/errorx"

// AckRespond 统一的 socket 事件应答结构
// 成功: {success:true, data:...}；失败: {success:false, error:"..."}
// 失败只回传面向客户端的错误消息，内部错误链仅进日志
type AckRespond struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Ok 构造成功应答
func Ok(data any) AckRespond {
	return AckRespond{Success: true, Data: data}
}

// Fail 构造失败应答
func Fail(err error) AckRespond {
	return AckRespond{Success: false, Error: errorx.ClientMsg(err)}
}
