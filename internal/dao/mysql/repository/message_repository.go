package repository

import (
	"yuanfen_chat_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// FindByUuid 根据雪花 ID 查找消息
func (r *messageRepository) FindByUuid(uuid int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("uuid = ?", uuid).First(&message).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 uuid=%d", uuid)
	}
	return &message, nil
}

// FindByChatId 按会话查找消息（时间升序）
func (r *messageRepository) FindByChatId(chatId string) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("chat_id = ?", chatId).Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 chat_id=%s", chatId)
	}
	return messages, nil
}

// Create 创建消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// MarkRead 将消息置为已读
func (r *messageRepository) MarkRead(uuid int64) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).
		Update("is_read", true).Error; err != nil {
		return wrapDBErrorf(err, "更新已读状态 uuid=%d", uuid)
	}
	return nil
}

// Delete 删除消息（软删除）
func (r *messageRepository) Delete(uuid int64) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Message{}).Error; err != nil {
		return wrapDBErrorf(err, "删除消息 uuid=%d", uuid)
	}
	return nil
}

// CountUnread 统计指定会话集合中非本人发送且未读的消息数
func (r *messageRepository) CountUnread(chatIds []string, excludeSendId string) (int64, error) {
	if len(chatIds) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&model.Message{}).
		Where("chat_id IN ? AND send_id <> ? AND is_read = ?", chatIds, excludeSendId, false).
		Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计未读消息 user=%s", excludeSendId)
	}
	return count, nil
}
