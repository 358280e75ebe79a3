// Package redis 定义缓存/在线状态存储接口
// 遵循依赖倒置原则，服务层依赖此接口而非具体 Redis 实现
package redis

import (
	"context"
	"time"
)

// CacheService 缓存服务接口
// 在线状态完全以"键是否存在"编码：Set 写入带 TTL 的键即上线，
// Delete 或 TTL 过期即离线
type CacheService interface {
	// ==================== String 操作 ====================

	// Set 设置键值对并指定过期时间
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// GetOrError 获取键对应的值（键不存在返回错误）
	GetOrError(ctx context.Context, key string) (string, error)

	// ==================== Key 操作 ====================

	// Delete 删除键（如果存在）
	Delete(ctx context.Context, key string) error
	// Expire 重置键的完整 TTL（心跳刷新，不改变值）
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// ExistsBatch 批量判断键是否存在，结果顺序与输入一致
	ExistsBatch(ctx context.Context, keys []string) ([]bool, error)
	// ScanByPrefix 返回匹配前缀的所有键（SCAN 遍历，不阻塞 Redis）
	ScanByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// AsyncCacheService 异步缓存服务接口
// 提供异步任务提交能力，用于非阻塞缓存更新
type AsyncCacheService interface {
	CacheService
	// SubmitTask 提交异步缓存任务
	SubmitTask(action func())
}
