package respond

// 服务端 -> 客户端广播事件的载荷结构

// UserStatusEvent user:online / user:offline 事件载荷
type UserStatusEvent struct {
	UserId    string `json:"userId"`
	Timestamp string `json:"timestamp"`
}

// TypingEvent chat:typing 事件载荷
type TypingEvent struct {
	ChatId   string `json:"chatId"`
	UserId   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// MessageReadEvent chat:message:read 事件载荷
// 仅投递给原消息发送者的用户广播组，不进整个会话组
type MessageReadEvent struct {
	MessageId string `json:"messageId"`
	ChatId    string `json:"chatId"`
	ReadBy    string `json:"readBy"`
}

// MessageDeletedEvent chat:message:deleted 事件载荷
type MessageDeletedEvent struct {
	MessageId string `json:"messageId"`
	ChatId    string `json:"chatId"`
}

// ActivityEvent user:activity 事件载荷
type ActivityEvent struct {
	UserId    string         `json:"userId"`
	Activity  string         `json:"activity"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp string         `json:"timestamp"`
}
