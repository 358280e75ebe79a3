// Package chat 实现实时聊天与在线状态的核心服务层
// broker.go
// 核心职责：定义广播代理接口
// 抽象事件扇出，支持 Channel（单机）和 Kafka（分布式）两种实现
package chat

import "context"

// RoomEmitter 本地扇出接口，由网关基于 socket.io 服务器实现
// 代理最终都通过它把事件投递到本实例持有的连接
type RoomEmitter interface {
	// ToRoom 向广播组内的所有连接投递事件
	ToRoom(room string, event string, payload any)
	// ToAll 向本实例的所有连接投递事件
	ToAll(event string, payload any)
}

// Envelope 广播事件信封
// Room 为空表示全站广播；Kafka 模式下整个信封序列化后进入共享主题
type Envelope struct {
	Room    string `json:"room,omitempty"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// EventBroker 定义广播代理接口
// 支持多种实现：KafkaBroker (分布式), StandaloneBroker (单机)
type EventBroker interface {
	// Broadcast 发布一次广播，room 为空表示面向全部连接
	Broadcast(ctx context.Context, room string, event string, payload any) error
	// Start 启动扇出消费循环
	Start()
	// Close 关闭代理资源
	Close()
}
