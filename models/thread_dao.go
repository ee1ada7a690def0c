package models

import (
	"time"

	"gorm.io/gorm"
)

// ThreadDAO 封装 Thread 相关的数据库操作
//
// 约定：
// - 只做数据访问（CRUD/查询封装），不做业务编排（find-or-create 的并发容错在 service 层）。
type ThreadDAO struct {
	db *gorm.DB
}

func NewThreadDAO(db *gorm.DB) *ThreadDAO {
	return &ThreadDAO{db: db}
}

func (dao *ThreadDAO) Create(t *Thread) error {
	return dao.db.Create(t).Error
}

func (dao *ThreadDAO) FindByID(id uint64) (*Thread, error) {
	var t Thread
	if err := dao.db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByUserID 查用户归属的唯一会话（没有则返回 gorm.ErrRecordNotFound）
func (dao *ThreadDAO) FindByUserID(userID uint64) (*Thread, error) {
	var t Thread
	if err := dao.db.Where("user_id = ?", userID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListAll 全部会话按活跃时间倒序（管理端看板用），带归属用户
func (dao *ThreadDAO) ListAll() ([]Thread, error) {
	var threads []Thread
	err := dao.db.Preload("User").
		Order("updated_at DESC").
		Find(&threads).Error
	return threads, err
}

// Touch 消息活动时更新 last_message_id 与 updated_at
func (dao *ThreadDAO) Touch(threadID, lastMessageID uint64, at time.Time) error {
	return dao.db.Model(&Thread{}).
		Where("id = ?", threadID).
		Updates(map[string]any{"last_message_id": lastMessageID, "updated_at": at}).Error
}
