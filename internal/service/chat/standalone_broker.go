// Package chat 实现实时聊天与在线状态的核心服务层
// standalone_broker.go
// 核心职责：单机模式下的广播代理实现
// 1. 事件经缓冲通道串行化后由主循环统一扇出
// 2. 不依赖外部消息队列，适合单实例或开发环境
package chat

import (
	"context"

	"yuanfen_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// StandaloneBroker 单机广播代理
// Transmit 满时 Broadcast 阻塞等待主循环腾出空间，投递顺序与提交顺序
// 一致；通道容量即背压上界。Transmit 自身从不关闭，发布方不会撞上
// 已关闭的通道
type StandaloneBroker struct {
	// Transmit 广播信封通道，由 Start 主循环消费
	Transmit chan *Envelope

	emitter RoomEmitter
	quit    chan struct{}
}

// NewStandaloneBroker 创建单机广播代理
func NewStandaloneBroker(emitter RoomEmitter) *StandaloneBroker {
	return &StandaloneBroker{
		Transmit: make(chan *Envelope, constants.CHANNEL_SIZE),
		emitter:  emitter,
		quit:     make(chan struct{}),
	}
}

// Broadcast 发布一次广播
// 关闭后到达的广播（断线清理与关停竞争时会出现）记日志后丢弃
func (b *StandaloneBroker) Broadcast(_ context.Context, room string, event string, payload any) error {
	env := &Envelope{Room: room, Event: event, Payload: payload}
	select {
	case b.Transmit <- env:
	case <-b.quit:
		zap.L().Warn("broker closed, dropping broadcast", zap.String("event", event))
	}
	return nil
}

// Start 启动扇出主循环
// 从通道中依次取出信封并投递，直到 Close 触发退出
func (b *StandaloneBroker) Start() {
	for {
		select {
		case <-b.quit:
			return
		case env := <-b.Transmit:
			if env != nil {
				b.deliver(env)
			}
		}
	}
}

// deliver 执行一次本地扇出
func (b *StandaloneBroker) deliver(env *Envelope) {
	if env.Room == "" {
		b.emitter.ToAll(env.Event, env.Payload)
		return
	}
	b.emitter.ToRoom(env.Room, env.Event, env.Payload)
}

// Close 停止扇出主循环，未投递的信封随之丢弃
func (b *StandaloneBroker) Close() {
	close(b.quit)
}
