package request

// ActivityRequest 动态活动上报请求 (socket 事件 presence:activity)
// 例如 "viewing a profile"，仅广播给在线的其他会话，不落存储
type ActivityRequest struct {
	Activity string         `json:"activity" binding:"required"`
	Metadata map[string]any `json:"metadata"`
}
