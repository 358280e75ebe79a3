// Package model 定义数据库实体模型
// 本文件定义聊天会话模型，一条记录对应两个用户之间的一个会话
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Chat 聊天会话模型
// 对应数据库 chat 表
// 交友场景下会话严格为 1 对 1，两个参与者的 uuid 分别存于 UserOneId/UserTwoId
type Chat struct {
	gorm.Model // 内嵌 GORM 模型，包含 ID、CreatedAt、UpdatedAt、DeletedAt

	// Uuid 会话唯一标识
	// 格式：C + uuid 字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(40);not null;comment:会话uuid"`

	// UserOneId 参与者一的用户 uuid
	UserOneId string `gorm:"column:user_one_id;index;type:char(40);not null;comment:参与者一uuid"`

	// UserTwoId 参与者二的用户 uuid
	UserTwoId string `gorm:"column:user_two_id;index;type:char(40);not null;comment:参与者二uuid"`

	// LastMessageAt 最近一条消息时间
	// 消息发送成功后刷新，用于会话列表排序
	LastMessageAt sql.NullTime `gorm:"column:last_message_at;type:datetime;comment:最近消息时间"`
}

// TableName 指定表名
func (Chat) TableName() string {
	return "chat"
}

// HasParticipant 判断用户是否为该会话的参与者
func (c *Chat) HasParticipant(userUuid string) bool {
	return c.UserOneId == userUuid || c.UserTwoId == userUuid
}
