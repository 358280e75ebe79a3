package respond

// PresenceStatusRespond presence:check 应答的单个条目
// 结果顺序与请求的 userIds 一致，未知用户解析为 false 而非报错
type PresenceStatusRespond struct {
	UserId   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// OnlineUserRespond presence:get-online 应答的单个条目
type OnlineUserRespond struct {
	UserId   string `json:"userId"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// HeartbeatAckRespond presence:heartbeat:ack 事件载荷
type HeartbeatAckRespond struct {
	Timestamp string `json:"timestamp"`
}
