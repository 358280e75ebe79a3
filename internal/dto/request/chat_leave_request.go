package request

// ChatLeaveRequest 离开会话广播组请求 (socket 事件 chat:leave)
type ChatLeaveRequest struct {
	ChatId string `json:"chatId" binding:"required"`
}
