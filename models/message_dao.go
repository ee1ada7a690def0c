package models

import (
	"time"

	"gorm.io/gorm"
)

// MessageDAO 封装 Message 相关的数据库操作
type MessageDAO struct {
	db *gorm.DB
}

// NewMessageDAO 创建 MessageDAO 实例
func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{db: db}
}

// Create 创建消息
func (dao *MessageDAO) Create(msg *Message) error {
	return dao.db.Create(msg).Error
}

// FindByID 根据ID查找消息
func (dao *MessageDAO) FindByID(id uint64) (*Message, error) {
	var msg Message
	err := dao.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByThreadID 获取会话消息列表（按创建时间升序，带发送人）
func (dao *MessageDAO) FindByThreadID(threadID uint64) ([]Message, error) {
	var messages []Message
	err := dao.db.Preload("Sender").
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// LastByThreadID 获取会话最后一条消息（没有则返回 gorm.ErrRecordNotFound）
func (dao *MessageDAO) LastByThreadID(threadID uint64) (*Message, error) {
	var msg Message
	err := dao.db.Where("thread_id = ?", threadID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// CountUnseenFromOthers 统计非会话归属者发出的、仍未标记 seen_at 的消息数。
// 这是 thread 未读数的定义。
func (dao *MessageDAO) CountUnseenFromOthers(threadID, ownerID uint64) (int64, error) {
	var n int64
	err := dao.db.Model(&Message{}).
		Where("thread_id = ? AND seen_at IS NULL AND sender_id <> ?", threadID, ownerID).
		Count(&n).Error
	return n, err
}

// MarkSeen 批量写入 seen_at。
// 只更新 seen_at IS NULL 的行，保证 seen_at 单调（set 一次后不会被覆盖）。
func (dao *MessageDAO) MarkSeen(ids []uint64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return dao.db.Model(&Message{}).
		Where("id IN ? AND seen_at IS NULL", ids).
		Update("seen_at", at).Error
}
