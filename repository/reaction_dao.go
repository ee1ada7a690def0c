package repository

import (
	"github.com/cydxin/support-chat-sdk/models"
	"gorm.io/gorm"
)

// ReactionDAO 封装 Reaction 相关的数据库操作
//
// 约定：
// - 只做数据访问，toggle 的判断/编排在 service 层。
// - 唯一索引 (主体, user_id, emoji) 由表结构保证，这里不重复校验。
type ReactionDAO struct {
	db *gorm.DB
}

func NewReactionDAO(db *gorm.DB) *ReactionDAO {
	return &ReactionDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *ReactionDAO) WithDB(db *gorm.DB) *ReactionDAO {
	if db == nil {
		return dao
	}
	return &ReactionDAO{db: db}
}

func (dao *ReactionDAO) Create(r *models.Reaction) error {
	return dao.db.Create(r).Error
}

func (dao *ReactionDAO) DeleteByID(id uint64) error {
	return dao.db.Delete(&models.Reaction{}, id).Error
}

// FindMessageTriple 精确查 (message_id, user_id, emoji) 三元组
func (dao *ReactionDAO) FindMessageTriple(messageID, userID uint64, emoji string) (*models.Reaction, error) {
	var r models.Reaction
	err := dao.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindAnnouncementTriple 精确查 (announcement_id, user_id, emoji) 三元组
func (dao *ReactionDAO) FindAnnouncementTriple(announcementID, userID uint64, emoji string) (*models.Reaction, error) {
	var r models.Reaction
	err := dao.db.Where("announcement_id = ? AND user_id = ? AND emoji = ?", announcementID, userID, emoji).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByMessageIDs 批量拉取消息维度的回应
func (dao *ReactionDAO) ListByMessageIDs(messageIDs []uint64) ([]models.Reaction, error) {
	if len(messageIDs) == 0 {
		return []models.Reaction{}, nil
	}
	var rs []models.Reaction
	err := dao.db.Where("message_id IN ?", messageIDs).
		Order("created_at ASC").
		Find(&rs).Error
	return rs, err
}

// ListByAnnouncementIDs 批量拉取公告维度的回应
func (dao *ReactionDAO) ListByAnnouncementIDs(announcementIDs []uint64) ([]models.Reaction, error) {
	if len(announcementIDs) == 0 {
		return []models.Reaction{}, nil
	}
	var rs []models.Reaction
	err := dao.db.Where("announcement_id IN ?", announcementIDs).
		Order("created_at ASC").
		Find(&rs).Error
	return rs, err
}
