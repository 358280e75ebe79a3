// Package model 定义数据库实体模型
// 本文件定义消息模型
package model

import "gorm.io/gorm"

// 消息类型
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// Message 消息模型
// 对应数据库 message 表
// 实时层只关心广播和鉴权所需的字段，其余一律透传
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 雪花算法生成的 int64，对外序列化为字符串避免 JS 精度丢失
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// ChatId 所属会话 uuid
	ChatId string `gorm:"column:chat_id;index;type:char(40);not null;comment:会话uuid"`

	// SendId 发送者 uuid
	SendId string `gorm:"column:send_id;index;type:char(40);not null;comment:发送者uuid"`

	// Type 消息类型，text / image
	Type string `gorm:"column:type;type:char(20);not null;default:text;comment:消息类型"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// IsRead 已读标记
	// 由已读回执流程置位
	IsRead bool `gorm:"column:is_read;not null;default:false;comment:已读标记"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
