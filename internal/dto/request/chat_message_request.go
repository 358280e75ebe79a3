package request

// ChatMessageRequest 发送消息请求 (socket 事件 chat:message)
type ChatMessageRequest struct {
	ChatId  string `json:"chatId" binding:"required"`
	Content string `json:"content" binding:"required"`
	// Type 消息类型，缺省为 text
	Type string `json:"type"`
}
