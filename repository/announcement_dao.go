package repository

import (
	"time"

	"github.com/cydxin/support-chat-sdk/models"
	"gorm.io/gorm"
)

// AnnouncementDAO 封装公告栏目/公告的数据库操作
type AnnouncementDAO struct {
	db *gorm.DB
}

func NewAnnouncementDAO(db *gorm.DB) *AnnouncementDAO {
	return &AnnouncementDAO{db: db}
}

func (dao *AnnouncementDAO) WithDB(db *gorm.DB) *AnnouncementDAO {
	if db == nil {
		return dao
	}
	return &AnnouncementDAO{db: db}
}

// ListThreads 公告栏目按活跃时间倒序
func (dao *AnnouncementDAO) ListThreads() ([]models.AnnouncementThread, error) {
	var threads []models.AnnouncementThread
	err := dao.db.Order("updated_at DESC").Find(&threads).Error
	return threads, err
}

// ListByThreadID 栏目内公告按发布时间倒序（最新在前）
func (dao *AnnouncementDAO) ListByThreadID(threadID uint64) ([]models.Announcement, error) {
	var anns []models.Announcement
	err := dao.db.Where("thread_id = ?", threadID).
		Order("created_at DESC").
		Find(&anns).Error
	return anns, err
}

func (dao *AnnouncementDAO) Create(a *models.Announcement) error {
	return dao.db.Create(a).Error
}

func (dao *AnnouncementDAO) FindThreadByID(id uint64) (*models.AnnouncementThread, error) {
	var t models.AnnouncementThread
	if err := dao.db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// TouchThread 公告活动时更新栏目 updated_at
func (dao *AnnouncementDAO) TouchThread(threadID uint64, at time.Time) error {
	return dao.db.Model(&models.AnnouncementThread{}).
		Where("id = ?", threadID).
		Update("updated_at", at).Error
}
