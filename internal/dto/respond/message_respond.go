package respond

// MessageRespond 消息的对外投递结构
// 用于发送方 ack 和 chat:message:new 广播，两者载荷一致
type MessageRespond struct {
	MessageId string `json:"messageId"` // 雪花 ID 字符串形式，避免 JS 精度丢失
	ChatId    string `json:"chatId"`
	SenderId  string `json:"senderId"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}
