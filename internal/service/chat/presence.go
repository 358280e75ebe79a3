// Package chat 实现实时聊天与在线状态的核心服务层
// presence.go
// 核心职责：在线状态协调
// 1. 上线/下线：写入/删除带 TTL 的在线记录和 socket 定位记录并全站广播
// 2. 心跳：重置完整 TTL，不广播
// 3. 批量查询与在线列表：以键存在性为唯一真相
// 状态全部外置于 Redis，多实例看到同一份在线事实；同一用户多端时
// 按键整体为最后写入者胜，语义是"至少一端在线"
package chat

import (
	"context"
	"strings"
	"time"

	myredis "yuanfen_chat_server/internal/dao/redis"
	"yuanfen_chat_server/internal/dao/mysql/repository"
	"yuanfen_chat_server/internal/dto/respond"
	"yuanfen_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// PresenceCoordinator 在线状态协调器
type PresenceCoordinator struct {
	cache    myredis.CacheService
	userRepo repository.UserRepository
	broker   EventBroker

	ttl time.Duration
	// advertiseAddr 本实例对外地址，写入 socket 定位记录
	advertiseAddr string
}

// NewPresenceCoordinator 创建在线状态协调器
func NewPresenceCoordinator(cache myredis.CacheService, userRepo repository.UserRepository, broker EventBroker, ttl time.Duration, advertiseAddr string) *PresenceCoordinator {
	if ttl <= 0 {
		ttl = constants.PRESENCE_TTL
	}
	return &PresenceCoordinator{
		cache:         cache,
		userRepo:      userRepo,
		broker:        broker,
		ttl:           ttl,
		advertiseAddr: advertiseAddr,
	}
}

func onlineKey(userId string) string {
	return constants.PRESENCE_ONLINE_PREFIX + userId
}

func socketKey(userId string) string {
	return constants.PRESENCE_SOCKET_PREFIX + userId
}

// Online 将用户置为在线并全站广播 user:online
// 连接建立时隐式调用，客户端也可显式触发；重复调用只会刷新 TTL，幂等
func (p *PresenceCoordinator) Online(ctx context.Context, userId, connId string) error {
	now := time.Now().Format(timeLayout)
	if err := p.cache.Set(ctx, onlineKey(userId), now, p.ttl); err != nil {
		return err
	}
	// socket 定位记录：<实例地址>/<连接ID>，重连时覆盖
	if err := p.cache.Set(ctx, socketKey(userId), p.advertiseAddr+"/"+connId, p.ttl); err != nil {
		return err
	}

	return p.broker.Broadcast(ctx, "", EventUserOnline, respond.UserStatusEvent{
		UserId:    userId,
		Timestamp: now,
	})
}

// Offline 将用户置为离线并全站广播 user:offline
// 主动删除而非等待 TTL；删除失败只记日志，记录会随 TTL 自行过期，
// 过期窗口即脏数据上界
func (p *PresenceCoordinator) Offline(ctx context.Context, userId string) error {
	if err := p.cache.Delete(ctx, onlineKey(userId)); err != nil {
		zap.L().Error("删除在线记录失败", zap.String("user", userId), zap.Error(err))
	}
	if err := p.cache.Delete(ctx, socketKey(userId)); err != nil {
		zap.L().Error("删除socket定位记录失败", zap.String("user", userId), zap.Error(err))
	}

	return p.broker.Broadcast(ctx, "", EventUserOffline, respond.UserStatusEvent{
		UserId:    userId,
		Timestamp: time.Now().Format(timeLayout),
	})
}

// Heartbeat 重置在线记录的完整 TTL，返回应答时间戳
// 不做广播；记录已过期时 EXPIRE 为空操作，客户端应重新 presence:online
func (p *PresenceCoordinator) Heartbeat(ctx context.Context, userId string) (string, error) {
	if err := p.cache.Expire(ctx, onlineKey(userId), p.ttl); err != nil {
		return "", err
	}
	if err := p.cache.Expire(ctx, socketKey(userId), p.ttl); err != nil {
		return "", err
	}
	return time.Now().Format(timeLayout), nil
}

// CheckBulk 批量查询在线状态
// 结果顺序与输入一致；未知用户解析为 false，不报错
func (p *PresenceCoordinator) CheckBulk(ctx context.Context, userIds []string) ([]respond.PresenceStatusRespond, error) {
	keys := make([]string, len(userIds))
	for i, userId := range userIds {
		keys[i] = onlineKey(userId)
	}
	exists, err := p.cache.ExistsBatch(ctx, keys)
	if err != nil {
		return nil, err
	}

	result := make([]respond.PresenceStatusRespond, len(userIds))
	for i, userId := range userIds {
		result[i] = respond.PresenceStatusRespond{
			UserId:   userId,
			IsOnline: exists[i],
		}
	}
	return result, nil
}

// ListOnline 枚举当前所有在线用户并解析用户资料
func (p *PresenceCoordinator) ListOnline(ctx context.Context) ([]respond.OnlineUserRespond, error) {
	keys, err := p.cache.ScanByPrefix(ctx, constants.PRESENCE_ONLINE_PREFIX)
	if err != nil {
		return nil, err
	}

	uuids := make([]string, 0, len(keys))
	for _, key := range keys {
		uuids = append(uuids, strings.TrimPrefix(key, constants.PRESENCE_ONLINE_PREFIX))
	}

	users, err := p.userRepo.FindByUuids(uuids)
	if err != nil {
		return nil, err
	}

	result := make([]respond.OnlineUserRespond, 0, len(users))
	for _, user := range users {
		result = append(result, respond.OnlineUserRespond{
			UserId:   user.Uuid,
			Nickname: user.Nickname,
			Avatar:   user.Avatar,
		})
	}
	return result, nil
}

// Activity 广播一次活动事件（如"正在浏览资料"）
// 瞬态事件，不触碰在线状态存储
func (p *PresenceCoordinator) Activity(ctx context.Context, userId, activity string, metadata map[string]any) error {
	return p.broker.Broadcast(ctx, "", EventUserActivity, respond.ActivityEvent{
		UserId:    userId,
		Activity:  activity,
		Metadata:  metadata,
		Timestamp: time.Now().Format(timeLayout),
	})
}
