// Package chat 实现实时聊天与在线状态的核心服务层
// server.go
// 核心职责：聊天服务器聚合结构和依赖注入
// 封装网关、协调器、事件广播器，提供统一的生命周期管理
package chat

import (
	"net/http"
	"time"

	"yuanfen_chat_server/internal/dao/mysql/repository"
	myredis "yuanfen_chat_server/internal/dao/redis"

	"github.com/zishang520/socket.io/v2/socket"
)

// ChatServer 聊天服务器聚合结构
// 封装所有实时组件，通过依赖注入管理生命周期
type ChatServer struct {
	// Gateway socket 连接网关
	Gateway *ChatGateway

	// Broker 事件广播器，实现 EventBroker 接口
	// 根据配置可能是 StandaloneBroker 或 KafkaBroker
	Broker EventBroker

	// KafkaClient Kafka 客户端（仅 kafka 模式使用）
	KafkaClient *KafkaClient

	// mode 运行模式: "standalone" 或 "kafka"
	mode string
}

// ChatServerConfig 聊天服务器配置
type ChatServerConfig struct {
	Mode          string // "standalone" 或 "kafka"
	Repos         *repository.Repositories
	CacheService  myredis.AsyncCacheService
	PresenceTTL   time.Duration
	AdvertiseAddr string
}

// NewChatServer 创建聊天服务器实例
// 根据配置选择 StandaloneBroker 或 KafkaBroker
func NewChatServer(cfg ChatServerConfig) *ChatServer {
	cs := &ChatServer{mode: cfg.Mode}

	io := socket.NewServer(nil, nil)
	emitter := NewRoomEmitter(io)

	if cfg.Mode == "kafka" {
		// Kafka 模式：事件经共享主题扇出到所有实例
		cs.KafkaClient = NewKafkaClient()
		cs.KafkaClient.KafkaInit()
		cs.Broker = NewKafkaBroker(cs.KafkaClient, emitter)
	} else {
		// Standalone 模式（默认）：进程内通道
		cs.Broker = NewStandaloneBroker(emitter)
	}

	rooms := NewRoomCoordinator(cfg.Repos, cfg.CacheService, cs.Broker)
	presence := NewPresenceCoordinator(cfg.CacheService, cfg.Repos.User, cs.Broker, cfg.PresenceTTL, cfg.AdvertiseAddr)
	cs.Gateway = NewChatGateway(io, rooms, presence)

	return cs
}

// Start 启动事件广播消费循环
func (cs *ChatServer) Start() {
	go cs.Broker.Start()
}

// ServeHandler 返回可挂载到 HTTP 路由的 socket.io 处理器
func (cs *ChatServer) ServeHandler() http.Handler {
	return cs.Gateway.ServeHandler()
}

// Close 关闭聊天服务器
func (cs *ChatServer) Close() {
	cs.Gateway.Close()
	cs.Broker.Close()
}
