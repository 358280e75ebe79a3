// Package chat 实现实时聊天与在线状态的核心服务层
// room.go
// 核心职责：聊天房间协调
// 1. 加入/退出房间：授权校验 + 连接级成员关系维护
// 2. 消息发送：先落库后广播，同时异步维护 Redis 消息列表缓存
// 3. 输入状态、已读回执、消息删除、未读计数
// 授权失败一律返回合并后的错误文案，避免向非成员泄露会话是否存在
package chat

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	myredis "yuanfen_chat_server/internal/dao/redis"
	"yuanfen_chat_server/internal/dao/mysql/repository"
	"yuanfen_chat_server/internal/dto/respond"
	"yuanfen_chat_server/internal/model"
	"yuanfen_chat_server/pkg/constants"
	"yuanfen_chat_server/pkg/errorx"
	"yuanfen_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// RoomCoordinator 聊天房间协调器
type RoomCoordinator struct {
	repos  *repository.Repositories
	cache  myredis.AsyncCacheService
	broker EventBroker
}

// NewRoomCoordinator 创建聊天房间协调器
func NewRoomCoordinator(repos *repository.Repositories, cache myredis.AsyncCacheService, broker EventBroker) *RoomCoordinator {
	return &RoomCoordinator{
		repos:  repos,
		cache:  cache,
		broker: broker,
	}
}

// authorizeChat 校验会话存在且用户为参与者
// 不存在与无权限合并为同一错误，防止探测他人会话
func (r *RoomCoordinator) authorizeChat(chatId, userId string) (*model.Chat, error) {
	chat, err := r.repos.Chat.FindByUuid(chatId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrChatNotFoundOrDenied
		}
		return nil, err
	}
	if !chat.HasParticipant(userId) {
		return nil, errorx.ErrChatNotFoundOrDenied
	}
	return chat, nil
}

// Join 加入聊天房间
// 成员关系绑定在连接上，断线即失效，重连需重新加入
func (r *RoomCoordinator) Join(sess *Session, chatId string) (*respond.ChatJoinRespond, error) {
	if _, err := r.authorizeChat(chatId, sess.UserId); err != nil {
		return nil, err
	}
	sess.JoinChat(chatId)
	zap.L().Info("用户加入聊天房间", zap.String("user", sess.UserId), zap.String("chat", chatId))
	return &respond.ChatJoinRespond{ChatId: chatId}, nil
}

// Leave 退出聊天房间，未加入时为空操作
func (r *RoomCoordinator) Leave(sess *Session, chatId string) {
	sess.LeaveChat(chatId)
}

// SendMessage 发送消息：先持久化，成功后才广播到房间
// 广播失败不回滚，消息已经是事实，接收方可通过历史拉取补齐
func (r *RoomCoordinator) SendMessage(ctx context.Context, sess *Session, chatId, msgType, content string) (*respond.MessageRespond, error) {
	if _, err := r.authorizeChat(chatId, sess.UserId); err != nil {
		return nil, err
	}
	switch msgType {
	case "":
		msgType = model.MessageTypeText
	case model.MessageTypeText, model.MessageTypeImage:
	default:
		return nil, errorx.ErrInvalidParam
	}

	message := &model.Message{
		Uuid:    snowflake.GenerateID(),
		ChatId:  chatId,
		SendId:  sess.UserId,
		Type:    msgType,
		Content: content,
	}
	if err := r.repos.Message.Create(message); err != nil {
		return nil, err
	}
	if err := r.repos.Chat.TouchLastMessageAt(chatId); err != nil {
		zap.L().Error("更新会话最后消息时间失败", zap.String("chat", chatId), zap.Error(err))
	}

	rsp := messageRespondOf(message)

	// 消息列表缓存异步追加，不阻塞发送路径
	r.appendMessageCache(chatId, rsp)

	if err := r.broker.Broadcast(ctx, ChatRoom(chatId), EventMessageNew, rsp); err != nil {
		zap.L().Error("广播新消息失败", zap.String("chat", chatId), zap.Error(err))
	}
	return rsp, nil
}

// messageRespondOf 把消息模型转换为下发载荷
// 雪花 id 以十进制字符串下发，避免 JS 侧精度丢失
func messageRespondOf(m *model.Message) *respond.MessageRespond {
	return &respond.MessageRespond{
		MessageId: strconv.FormatInt(m.Uuid, 10),
		ChatId:    m.ChatId,
		SenderId:  m.SendId,
		Type:      m.Type,
		Content:   m.Content,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt.Format(timeLayout),
	}
}

// appendMessageCache 把消息追加进 Redis 消息列表缓存
// 读改写由单任务串行执行；缓存缺失或损坏时从 MySQL 整表重建，
// 重建结果已包含刚落库的这条消息
func (r *RoomCoordinator) appendMessageCache(chatId string, rsp *respond.MessageRespond) {
	key := constants.CHAT_MESSAGELIST_PREFIX + chatId
	r.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var list []respond.MessageRespond
		cached, err := r.cache.GetOrError(ctx, key)
		if err == nil {
			if uerr := json.Unmarshal([]byte(cached), &list); uerr != nil {
				zap.L().Error("解析消息列表缓存失败", zap.String("chat", chatId), zap.Error(uerr))
				list = nil
			} else {
				list = append(list, *rsp)
			}
		}
		if list == nil {
			messages, derr := r.repos.Message.FindByChatId(chatId)
			if derr != nil {
				zap.L().Error("重建消息列表缓存失败", zap.String("chat", chatId), zap.Error(derr))
				return
			}
			list = make([]respond.MessageRespond, 0, len(messages))
			for i := range messages {
				list = append(list, *messageRespondOf(&messages[i]))
			}
		}
		data, err := json.Marshal(list)
		if err != nil {
			zap.L().Error("序列化消息列表缓存失败", zap.String("chat", chatId), zap.Error(err))
			return
		}
		if err := r.cache.Set(ctx, key, string(data), constants.REDIS_TIMEOUT*time.Minute); err != nil {
			zap.L().Error("写入消息列表缓存失败", zap.String("chat", chatId), zap.Error(err))
		}
	})
}

// Typing 向房间广播输入状态
// 纯瞬态事件，不落库；同房间所有连接都会收到，包括发起方的其它设备，
// 由客户端按 userId 过滤自身
func (r *RoomCoordinator) Typing(ctx context.Context, sess *Session, chatId string, isTyping bool) error {
	if _, err := r.authorizeChat(chatId, sess.UserId); err != nil {
		return err
	}
	return r.broker.Broadcast(ctx, ChatRoom(chatId), EventTypingBroadcast, respond.TypingEvent{
		ChatId:   chatId,
		UserId:   sess.UserId,
		IsTyping: isTyping,
	})
}

// MarkRead 将消息标记为已读，回执只投递给发送方的用户房间
// 已读消息重复标记为幂等空操作，回执照常发出
func (r *RoomCoordinator) MarkRead(ctx context.Context, sess *Session, messageId string) error {
	msgUuid, err := strconv.ParseInt(messageId, 10, 64)
	if err != nil {
		return errorx.ErrMessageNotFound
	}
	message, err := r.repos.Message.FindByUuid(msgUuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrMessageNotFound
		}
		return err
	}
	chat, err := r.repos.Chat.FindByUuid(message.ChatId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrAccessDenied
		}
		return err
	}
	if !chat.HasParticipant(sess.UserId) {
		return errorx.ErrAccessDenied
	}

	if !message.IsRead {
		if err := r.repos.Message.MarkRead(msgUuid); err != nil {
			return err
		}
	}

	// 回执定向投递给发送方，而非整个房间
	return r.broker.Broadcast(ctx, UserRoom(message.SendId), EventMessageReadAck, respond.MessageReadEvent{
		MessageId: messageId,
		ChatId:    message.ChatId,
		ReadBy:    sess.UserId,
	})
}

// Delete 删除自己发送的消息并通知房间
// 消息不存在与非本人发送合并为同一错误
func (r *RoomCoordinator) Delete(ctx context.Context, sess *Session, messageId string) error {
	msgUuid, err := strconv.ParseInt(messageId, 10, 64)
	if err != nil {
		return errorx.ErrNotSenderOrNotFound
	}
	message, err := r.repos.Message.FindByUuid(msgUuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrNotSenderOrNotFound
		}
		return err
	}
	if message.SendId != sess.UserId {
		return errorx.ErrNotSenderOrNotFound
	}
	if err := r.repos.Message.Delete(msgUuid); err != nil {
		return err
	}

	// 删除后缓存失效，下次重建
	r.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.cache.Delete(ctx, constants.CHAT_MESSAGELIST_PREFIX+message.ChatId); err != nil {
			zap.L().Error("失效消息列表缓存失败", zap.String("chat", message.ChatId), zap.Error(err))
		}
	})

	return r.broker.Broadcast(ctx, ChatRoom(message.ChatId), EventMessageDeleted, respond.MessageDeletedEvent{
		MessageId: messageId,
		ChatId:    message.ChatId,
	})
}

// UnreadCount 统计用户所有会话中他人发来的未读消息总数
func (r *RoomCoordinator) UnreadCount(ctx context.Context, userId string) (*respond.UnreadCountRespond, error) {
	chats, err := r.repos.Chat.FindByParticipant(userId)
	if err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return &respond.UnreadCountRespond{UnreadCount: 0}, nil
	}
	chatIds := make([]string, 0, len(chats))
	for _, chat := range chats {
		chatIds = append(chatIds, chat.Uuid)
	}
	count, err := r.repos.Message.CountUnread(chatIds, userId)
	if err != nil {
		return nil, err
	}
	return &respond.UnreadCountRespond{UnreadCount: count}, nil
}
