// Package model 定义数据库实体模型
// 本文件定义用户信息模型（实时层只读，完整维护在账号服务）
package model

import "gorm.io/gorm"

// UserInfo 用户信息模型
// 对应数据库 user_info 表
// 实时层仅在 presence:get-online 中用它把在线 uuid 解析为可展示的资料
type UserInfo struct {
	gorm.Model

	// Uuid 用户唯一标识，U 开头
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(40);not null;comment:用户uuid"`

	// Nickname 昵称
	Nickname string `gorm:"column:nickname;type:varchar(40);not null;comment:昵称"`

	// Avatar 头像相对路径
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:头像"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}
