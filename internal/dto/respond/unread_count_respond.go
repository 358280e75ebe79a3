package respond

// UnreadCountRespond chat:unread:count 应答的数据体
type UnreadCountRespond struct {
	UnreadCount int64 `json:"unreadCount"`
}
