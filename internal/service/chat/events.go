// Package chat 实现实时聊天与在线状态的核心服务层
// events.go
// 核心职责：socket 事件协议定义
// 事件集合是封闭的：wire 层事件名通过注册表映射到有类型的处理函数，
// 不存在按字符串动态查找方法的路径
package chat

// 客户端 -> 服务端事件
const (
	EventChatJoin       = "chat:join"
	EventChatLeave      = "chat:leave"
	EventChatMessage    = "chat:message"
	EventChatTyping     = "chat:typing"
	EventMessageRead    = "chat:message:read"
	EventMessageDelete  = "chat:message:delete"
	EventUnreadCount    = "chat:unread:count"
	EventPresenceOnline = "presence:online"
	EventPresenceOff    = "presence:offline"
	EventHeartbeat      = "presence:heartbeat"
	EventPresenceCheck  = "presence:check"
	EventGetOnline      = "presence:get-online"
	EventActivity       = "presence:activity"
)

// 服务端 -> 客户端事件
const (
	EventMessageNew      = "chat:message:new"
	EventTypingBroadcast = "chat:typing"
	EventMessageReadAck  = "chat:message:read"
	EventMessageDeleted  = "chat:message:deleted"
	EventUserOnline      = "user:online"
	EventUserOffline     = "user:offline"
	EventUserActivity    = "user:activity"
	EventHeartbeatAck    = "presence:heartbeat:ack"
)

// 广播组命名
// user_<uuid>: 同一用户所有连接（多端），chat_<uuid>: 一个会话的所有订阅连接

// UserRoom 返回用户广播组名
func UserRoom(userId string) string {
	return "user_" + userId
}

// ChatRoom 返回会话广播组名
func ChatRoom(chatId string) string {
	return "chat_" + chatId
}

// eventHandler 单个 socket 事件的处理函数
// payload 为客户端 JSON 载荷（可能为 nil），ack 为空时表示该事件不需要应答
type eventHandler func(sess *Session, payload map[string]any, ack AckFunc)

// AckFunc 事件应答回调
type AckFunc func(data any)

// 时间戳的对外格式
const timeLayout = "2006-01-02 15:04:05"
