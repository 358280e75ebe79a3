package request

// MessageDeleteRequest 删除消息请求 (socket 事件 chat:message:delete)
type MessageDeleteRequest struct {
	MessageId string `json:"messageId" binding:"required"`
}
