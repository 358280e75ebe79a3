package request

// MessageReadRequest 已读回执请求 (socket 事件 chat:message:read)
// messageId 为雪花 ID 的字符串形式
type MessageReadRequest struct {
	MessageId string `json:"messageId" binding:"required"`
}
