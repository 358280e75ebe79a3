package request

// ChatTypingRequest 输入状态指示请求 (socket 事件 chat:typing)
// 不落库、无应答，仅向会话广播组透传
type ChatTypingRequest struct {
	ChatId   string `json:"chatId" binding:"required"`
	IsTyping bool   `json:"isTyping"`
}
