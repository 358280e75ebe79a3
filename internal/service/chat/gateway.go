// Package chat 实现实时聊天与在线状态的核心服务层
// gateway.go
// 核心职责：socket 连接网关
// 1. 握手鉴权：中间件校验 JWT，失败直接拒绝连接
// 2. 事件分发：封闭的事件表，未注册事件不做任何处理
// 3. 断线清理：注销会话、清理在线状态并广播离线
// socket.io 的 API 只在本文件出现，服务层通过 SocketConn 接口隔离
package chat

import (
	"context"
	"net/http"
	"sync"

	"yuanfen_chat_server/internal/dto/request"
	"yuanfen_chat_server/internal/dto/respond"
	"yuanfen_chat_server/pkg/util/jwt"

	"github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

// ChatGateway socket 连接网关
type ChatGateway struct {
	io       *socket.Server
	sessions *SessionManager
	rooms    *RoomCoordinator
	presence *PresenceCoordinator

	// authed 记录中间件已验证的连接与用户的对应关系
	// 中间件运行在 connection 事件之前，验证结果经此传递；
	// 不同连接的握手跑在各自的 goroutine 上，读写必须持锁
	authedMu sync.Mutex
	authed   map[string]string
}

// NewChatGateway 在给定的 socket.io 服务上完成鉴权中间件、连接与断线处理的挂载
// io 由上层创建，广播器的房间投递器共享同一实例
func NewChatGateway(io *socket.Server, rooms *RoomCoordinator, presence *PresenceCoordinator) *ChatGateway {
	g := &ChatGateway{
		io:       io,
		sessions: NewSessionManager(),
		rooms:    rooms,
		presence: presence,
		authed:   make(map[string]string),
	}

	g.io.Use(g.authenticate)
	g.io.On("connection", func(clients ...any) {
		g.onConnection(clients[0].(*socket.Socket))
	})
	return g
}

// Server 暴露底层 socket.io 服务，供广播器构造 RoomEmitter
func (g *ChatGateway) Server() *socket.Server {
	return g.io
}

// ServeHandler 返回可挂载到 HTTP 路由的处理器
func (g *ChatGateway) ServeHandler() http.Handler {
	return g.io.ServeHandler(nil)
}

// Close 关闭 socket.io 服务，断开所有连接
func (g *ChatGateway) Close() {
	g.io.Close(nil)
}

// authenticate 握手鉴权中间件
// 凭证取自握手的 auth 载荷；缺失与无效是两类不同的失败，
// 客户端据此决定是补发凭证还是去刷新令牌
func (g *ChatGateway) authenticate(s *socket.Socket, next func(*socket.ExtendedError)) {
	token := extractToken(s.Handshake())
	if token == "" {
		next(socket.NewExtendedError("authentication required", nil))
		return
	}
	claims, err := jwt.ParseToken(token)
	if err != nil {
		zap.L().Warn("socket鉴权失败", zap.String("conn", string(s.Id())), zap.Error(err))
		next(socket.NewExtendedError("invalid or expired token", nil))
		return
	}
	g.markAuthed(string(s.Id()), claims.UserID)
	next(nil)
}

// markAuthed 记录一条通过鉴权的连接
func (g *ChatGateway) markAuthed(connId, userId string) {
	g.authedMu.Lock()
	defer g.authedMu.Unlock()
	g.authed[connId] = userId
}

// takeAuthed 取出并移除连接对应的鉴权记录
func (g *ChatGateway) takeAuthed(connId string) (string, bool) {
	g.authedMu.Lock()
	defer g.authedMu.Unlock()
	userId, ok := g.authed[connId]
	delete(g.authed, connId)
	return userId, ok
}

func extractToken(handshake *socket.Handshake) string {
	if handshake == nil {
		return ""
	}
	auth, ok := handshake.Auth.(map[string]any)
	if !ok {
		return ""
	}
	token, _ := auth["token"].(string)
	return token
}

// onConnection 处理一条已通过鉴权的新连接
func (g *ChatGateway) onConnection(client *socket.Socket) {
	connId := string(client.Id())
	userId, ok := g.takeAuthed(connId)
	if !ok {
		// 中间件与 connection 之间状态丢失，理论上不可达
		zap.L().Error("连接缺少鉴权记录，强制断开", zap.String("conn", connId))
		client.Disconnect(true)
		return
	}

	sess := NewSession(newSioConn(client), userId)
	g.sessions.Register(sess)

	// 每个用户固定加入自己的用户房间，用于定向投递
	client.Join(socket.Room(UserRoom(userId)))

	ctx := context.Background()
	if err := g.presence.Online(ctx, userId, connId); err != nil {
		zap.L().Error("标记用户在线失败", zap.String("user", userId), zap.Error(err))
	}

	g.registerHandlers(client, sess)
	client.On("disconnect", func(...any) {
		g.onDisconnect(connId, sess)
	})

	zap.L().Info("socket连接建立", zap.String("conn", connId), zap.String("user", userId))
}

// onDisconnect 断线清理：注销会话、清理在线状态并广播离线
// 房间成员关系绑定在连接上，由 socket.io 随连接一并回收
func (g *ChatGateway) onDisconnect(connId string, sess *Session) {
	g.sessions.Unregister(connId)

	remaining := g.sessions.CountByUser(sess.UserId)
	if remaining == 0 {
		if err := g.presence.Offline(context.Background(), sess.UserId); err != nil {
			zap.L().Error("标记用户离线失败", zap.String("user", sess.UserId), zap.Error(err))
		}
	}
	zap.L().Info("socket连接断开",
		zap.String("conn", connId),
		zap.String("user", sess.UserId),
		zap.Int("remaining", remaining))
}

// registerHandlers 按封闭事件表注册处理器
func (g *ChatGateway) registerHandlers(client *socket.Socket, sess *Session) {
	handlers := map[string]eventHandler{
		EventChatJoin:      g.handleChatJoin,
		EventChatLeave:     g.handleChatLeave,
		EventChatMessage:   g.handleChatMessage,
		EventChatTyping:    g.handleChatTyping,
		EventMessageRead:   g.handleMessageRead,
		EventMessageDelete: g.handleMessageDelete,
		EventUnreadCount:   g.handleUnreadCount,
		EventPresenceOnline: g.handlePresenceOnline,
		EventPresenceOff:   g.handlePresenceOffline,
		EventHeartbeat:     g.handleHeartbeat,
		EventPresenceCheck: g.handlePresenceCheck,
		EventGetOnline:     g.handleGetOnline,
		EventActivity:      g.handleActivity,
	}
	for event, handler := range handlers {
		h := handler
		client.On(event, func(datas ...any) {
			payload, ack := splitArgs(datas)
			h(sess, payload, ack)
		})
	}
}

// splitArgs 从事件参数中分离载荷和应答回调
// 客户端不请求应答时给一个空回调，处理器无需判空
func splitArgs(datas []any) (map[string]any, AckFunc) {
	payload := map[string]any{}
	var ack AckFunc
	for _, d := range datas {
		switch v := d.(type) {
		case map[string]any:
			payload = v
		case func([]any, error):
			fn := v
			ack = func(data any) {
				fn([]any{data}, nil)
			}
		}
	}
	if ack == nil {
		ack = func(any) {}
	}
	return payload, ack
}

// ==================== 聊天事件 ====================

func (g *ChatGateway) handleChatJoin(sess *Session, payload map[string]any, ack AckFunc) {
	var req request.ChatJoinRequest
	if err := bindPayload(payload, &req); err != nil {
		ack(respond.Fail(err))
		return
	}
	rsp, err := g.rooms.Join(sess, req.ChatId)
	if err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(rsp))
}

func (g *ChatGateway) handleChatLeave(sess *Session, payload map[string]any, ack AckFunc) {
	var req request.ChatLeaveRequest
	if err := bindPayload(payload, &req); err != nil {
		ack(respond.Fail(err))
		return
	}
	g.rooms.Leave(sess, req.ChatId)
	ack(respond.Ok(nil))
}

func (g *ChatGateway) handleChatMessage(sess *Session, payload map[string]any, ack AckFunc) {
	var req request.ChatMessageRequest
	if err := bindPayload(payload, &req); err != nil {
		ack(respond.Fail(err))
		return
	}
	rsp, err := g.rooms.SendMessage(context.Background(), sess, req.ChatId, req.Type, req.Content)
	if err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(rsp))
}

func (g *ChatGateway) handleChatTyping(sess *Session, payload map[string]any, ack AckFunc) {
	var req request.ChatTypingRequest
	if err := bindPayload(payload, &req); err != nil {
		ack(respond.Fail(err))
		return
	}
	if err := g.rooms.Typing(context.Background(), sess, req.ChatId, req.IsTyping); err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(nil))
}

func (g *ChatGateway) handleMessageRead(sess *Session, payload map[string]any, ack AckFunc) {
	var req request.MessageReadRequest
	if err := bindPayload(payload, &req); err != nil {
		ack(respond.Fail(err))
		return
	}
	if err := g.rooms.MarkRead(context.Background(), sess, req.MessageId); err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(nil))
}

func (g *ChatGateway) handleMessageDelete(sess *Session, payload map[string]any, ack AckFunc) {
	var req request.MessageDeleteRequest
	if err := bindPayload(payload, &req); err != nil {
		ack(respond.Fail(err))
		return
	}
	if err := g.rooms.Delete(context.Background(), sess, req.MessageId); err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(nil))
}

func (g *ChatGateway) handleUnreadCount(sess *Session, _ map[string]any, ack AckFunc) {
	rsp, err := g.rooms.UnreadCount(context.Background(), sess.UserId)
	if err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(rsp))
}

// ==================== 在线状态事件 ====================

func (g *ChatGateway) handlePresenceOnline(sess *Session, _ map[string]any, ack AckFunc) {
	if err := g.presence.Online(context.Background(), sess.UserId, sess.Conn.ID()); err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(nil))
}

func (g *ChatGateway) handlePresenceOffline(sess *Session, _ map[string]any, ack AckFunc) {
	if err := g.presence.Offline(context.Background(), sess.UserId); err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(nil))
}

func (g *ChatGateway) handleHeartbeat(sess *Session, _ map[string]any, ack AckFunc) {
	ts, err := g.presence.Heartbeat(context.Background(), sess.UserId)
	if err != nil {
		ack(respond.Fail(err))
		return
	}
	rsp := respond.HeartbeatAckRespond{Timestamp: ts}
	// 未携带应答回调的客户端通过定向事件收到确认
	if err := sess.Conn.Emit(EventHeartbeatAck, rsp); err != nil {
		zap.L().Warn("心跳确认发送失败", zap.String("user", sess.UserId), zap.Error(err))
	}
	ack(respond.Ok(rsp))
}

func (g *ChatGateway) handlePresenceCheck(sess *Session, payload map[string]any, ack AckFunc) {
	var req request.PresenceCheckRequest
	if err := bindPayload(payload, &req); err != nil {
		ack(respond.Fail(err))
		return
	}
	rsp, err := g.presence.CheckBulk(context.Background(), req.UserIds)
	if err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(rsp))
}

func (g *ChatGateway) handleGetOnline(sess *Session, _ map[string]any, ack AckFunc) {
	rsp, err := g.presence.ListOnline(context.Background())
	if err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(rsp))
}

func (g *ChatGateway) handleActivity(sess *Session, payload map[string]any, ack AckFunc) {
	var req request.ActivityRequest
	if err := bindPayload(payload, &req); err != nil {
		ack(respond.Fail(err))
		return
	}
	if err := g.presence.Activity(context.Background(), sess.UserId, req.Activity, req.Metadata); err != nil {
		ack(respond.Fail(err))
		return
	}
	ack(respond.Ok(nil))
}

// ==================== socket.io 适配 ====================

// sioConn 把 *socket.Socket 适配为 SocketConn
type sioConn struct {
	client *socket.Socket
}

func newSioConn(client *socket.Socket) *sioConn {
	return &sioConn{client: client}
}

func (c *sioConn) ID() string {
	return string(c.client.Id())
}

func (c *sioConn) Emit(event string, args ...any) error {
	return c.client.Emit(event, args...)
}

func (c *sioConn) Join(room string) {
	c.client.Join(socket.Room(room))
}

func (c *sioConn) Leave(room string) {
	c.client.Leave(socket.Room(room))
}

// sioEmitter 把 socket.io 服务适配为 RoomEmitter，供广播器本地投递
type sioEmitter struct {
	io *socket.Server
}

// NewRoomEmitter 基于 socket.io 服务创建房间投递器
func NewRoomEmitter(io *socket.Server) RoomEmitter {
	return &sioEmitter{io: io}
}

func (e *sioEmitter) ToRoom(room, event string, payload any) {
	if err := e.io.To(socket.Room(room)).Emit(event, payload); err != nil {
		zap.L().Error("房间投递失败", zap.String("room", room), zap.String("event", event), zap.Error(err))
	}
}

func (e *sioEmitter) ToAll(event string, payload any) {
	// Server.Emit 无返回值，失败只会体现在单个连接的传输层
	e.io.Emit(event, payload)
}
