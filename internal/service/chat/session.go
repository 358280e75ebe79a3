// Package chat 实现实时聊天与在线状态的核心服务层
// session.go
// 核心职责：会话（单条 socket 连接）的生命周期状态
// 1. 绑定认证后的用户 uuid
// 2. 持有连接已加入的会话广播组集合（连接断开时整体消失，不落任何存储）
package chat

import (
	"sync"
)

// SocketConn 对底层 socket.io 连接的最小抽象
// 网关用真实连接实现，测试用内存伪实现
type SocketConn interface {
	// ID 连接唯一标识
	ID() string
	// Emit 向该连接发送一个事件
	Emit(event string, args ...any) error
	// Join 加入广播组
	Join(room string)
	// Leave 离开广播组
	Leave(room string)
}

// Session 表示一条已通过握手认证的连接
// 广播组成员关系挂在连接对象上（arena 式持有），随连接销毁整体失效，
// 不存在需要额外清理的落地状态
type Session struct {
	Conn   SocketConn
	UserId string

	mu     sync.Mutex
	joined map[string]struct{} // 已加入的会话 chatId 集合
}

// NewSession 创建会话
func NewSession(conn SocketConn, userId string) *Session {
	return &Session{
		Conn:   conn,
		UserId: userId,
		joined: make(map[string]struct{}),
	}
}

// JoinChat 加入会话广播组
func (s *Session) JoinChat(chatId string) {
	s.mu.Lock()
	s.joined[chatId] = struct{}{}
	s.mu.Unlock()
	s.Conn.Join(ChatRoom(chatId))
}

// LeaveChat 离开会话广播组（幂等，未加入时也返回成功）
func (s *Session) LeaveChat(chatId string) {
	s.mu.Lock()
	delete(s.joined, chatId)
	s.mu.Unlock()
	s.Conn.Leave(ChatRoom(chatId))
}

// JoinedChats 返回已加入的 chatId 快照
func (s *Session) JoinedChats() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	chats := make([]string, 0, len(s.joined))
	for chatId := range s.joined {
		chats = append(chats, chatId)
	}
	return chats
}

// SessionManager 维护所有在线会话的映射表
// Key 为连接 ID，Value 为 *Session；使用 sync.Map 实现并发安全
// 同一用户多端登录会产生多个 Session，在线状态按"至少一端在线"理解
type SessionManager struct {
	sessions sync.Map
}

// NewSessionManager 创建会话管理器
func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// Register 注册会话
func (m *SessionManager) Register(sess *Session) {
	m.sessions.Store(sess.Conn.ID(), sess)
}

// Unregister 注销会话
func (m *SessionManager) Unregister(connId string) {
	m.sessions.Delete(connId)
}

// Get 按连接 ID 获取会话
func (m *SessionManager) Get(connId string) *Session {
	value, ok := m.sessions.Load(connId)
	if !ok {
		return nil
	}
	return value.(*Session)
}

// CountByUser 统计某用户当前的在线连接数
// 断开清理时用于判断是否还有其他设备在线
func (m *SessionManager) CountByUser(userId string) int {
	count := 0
	m.sessions.Range(func(_, value any) bool {
		if value.(*Session).UserId == userId {
			count++
		}
		return true
	})
	return count
}
