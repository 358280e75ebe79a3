package constants

import "time"

const (
	CHANNEL_SIZE  = 100 // 广播通道大小
	REDIS_TIMEOUT = 1   // redis 消息列表缓存过期时间 (分钟)

	// PRESENCE_TTL 在线状态记录的默认存活时间
	// 客户端心跳间隔必须小于该值，否则记录过期后会被误判为离线
	PRESENCE_TTL = 60 * time.Second

	// 在线状态相关的 Redis 键前缀
	// 键存在即在线，不存在（含 TTL 过期）即离线，不使用布尔字段
	PRESENCE_ONLINE_PREFIX = "presence_online_"
	PRESENCE_SOCKET_PREFIX = "presence_socket_"

	// 消息列表缓存键前缀
	CHAT_MESSAGELIST_PREFIX = "chat_messagelist_"
)
