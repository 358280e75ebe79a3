// Package chat 实现实时聊天与在线状态的核心服务层
// kafka_broker.go
// 核心职责：分布式模式下的广播代理实现
// 1. Broadcast 只负责把信封写入共享主题
// 2. 每个实例的消费循环各读取一遍主题，再按本地连接扇出
// 3. 发起实例不做本地直发，交付路径对所有实例一致，本地恰好一次
package chat

import (
	"context"
	"encoding/json"
	"strconv"

	myconfig "yuanfen_chat_server/internal/config"

	"go.uber.org/zap"
)

// KafkaBroker 基于 Kafka 的广播代理
type KafkaBroker struct {
	client  *KafkaClient
	emitter RoomEmitter

	quit chan struct{}
}

// NewKafkaBroker 创建 Kafka 广播代理
func NewKafkaBroker(client *KafkaClient, emitter RoomEmitter) *KafkaBroker {
	return &KafkaBroker{
		client:  client,
		emitter: emitter,
		quit:    make(chan struct{}),
	}
}

// Broadcast 把信封发布到共享主题
func (b *KafkaBroker) Broadcast(ctx context.Context, room string, event string, payload any) error {
	env := Envelope{Room: room, Event: event, Payload: payload}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	key := []byte(strconv.Itoa(myconfig.GetConfig().KafkaConfig.Partition))
	return b.client.SendMessage(ctx, key, value)
}

// Start 启动消费循环
// 从主题读取信封并在本实例扇出；读取错误只记录日志，循环不中断，
// 直到 Close 触发退出
func (b *KafkaBroker) Start() {
	ctx := context.Background()
	for {
		select {
		case <-b.quit:
			return
		default:
		}

		msg, err := b.client.Consumer.ReadMessage(ctx)
		if err != nil {
			select {
			case <-b.quit:
				// Close 已关闭 Reader，读取报错属于正常退出路径
				return
			default:
			}
			zap.L().Error("kafka read broadcast failed", zap.Error(err))
			continue
		}

		var env Envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			zap.L().Error("kafka broadcast envelope unmarshal failed", zap.Error(err))
			continue
		}

		if env.Room == "" {
			b.emitter.ToAll(env.Event, env.Payload)
		} else {
			b.emitter.ToRoom(env.Room, env.Event, env.Payload)
		}
	}
}

// Close 停止消费循环并释放 Kafka 资源
func (b *KafkaBroker) Close() {
	close(b.quit)
	b.client.KafkaClose()
}
