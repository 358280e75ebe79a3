package request

// ChatJoinRequest 加入会话广播组请求 (socket 事件 chat:join)
type ChatJoinRequest struct {
	ChatId string `json:"chatId" binding:"required"`
}
