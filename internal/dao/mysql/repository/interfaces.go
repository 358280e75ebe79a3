// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 实时层把聊天/消息存储视为外部协作方，只依赖本文件的接口
package repository

import (
	"yuanfen_chat_server/internal/model"
)

// ==================== Repository 接口定义 ====================

// ChatRepository 会话数据访问接口
type ChatRepository interface {
	// FindByUuid 根据 UUID 查找会话
	FindByUuid(uuid string) (*model.Chat, error)
	// FindByParticipant 查找用户参与的所有会话
	FindByParticipant(userUuid string) ([]model.Chat, error)
	// CreateChat 创建新会话
	CreateChat(chat *model.Chat) error
	// TouchLastMessageAt 刷新会话的最近消息时间
	TouchLastMessageAt(uuid string) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// FindByUuid 根据雪花 ID 查找消息
	FindByUuid(uuid int64) (*model.Message, error)
	// FindByChatId 按会话查找消息（时间升序）
	FindByChatId(chatId string) ([]model.Message, error)
	// Create 创建消息
	Create(message *model.Message) error
	// MarkRead 将消息置为已读
	MarkRead(uuid int64) error
	// Delete 删除消息
	Delete(uuid int64) error
	// CountUnread 统计指定会话集合中非本人发送且未读的消息数
	CountUnread(chatIds []string, excludeSendId string) (int64, error)
}

// UserRepository 用户数据访问接口（实时层只读）
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.UserInfo, error)
}

// Repositories 聚合所有 Repository，供依赖注入使用
type Repositories struct {
	Chat    ChatRepository
	Message MessageRepository
	User    UserRepository
}
