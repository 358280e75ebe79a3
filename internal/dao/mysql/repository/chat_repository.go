package repository

import (
	"time"

	"yuanfen_chat_server/internal/model"

	"gorm.io/gorm"
)

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建会话 Repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// FindByUuid 根据 UUID 查找会话
func (r *chatRepository) FindByUuid(uuid string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("uuid = ?", uuid).First(&chat).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 uuid=%s", uuid)
	}
	return &chat, nil
}

// FindByParticipant 查找用户参与的所有会话
func (r *chatRepository) FindByParticipant(userUuid string) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.Where("user_one_id = ? OR user_two_id = ?", userUuid, userUuid).
		Order("last_message_at DESC").Find(&chats).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户会话 user=%s", userUuid)
	}
	return chats, nil
}

// CreateChat 创建新会话
func (r *chatRepository) CreateChat(chat *model.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return wrapDBError(err, "创建会话")
	}
	return nil
}

// TouchLastMessageAt 刷新会话的最近消息时间
func (r *chatRepository) TouchLastMessageAt(uuid string) error {
	if err := r.db.Model(&model.Chat{}).Where("uuid = ?", uuid).
		Update("last_message_at", time.Now()).Error; err != nil {
		return wrapDBErrorf(err, "刷新会话时间 uuid=%s", uuid)
	}
	return nil
}
