package request

// PresenceCheckRequest 批量在线状态查询请求 (socket 事件 presence:check)
type PresenceCheckRequest struct {
	UserIds []string `json:"userIds" binding:"required"`
}
