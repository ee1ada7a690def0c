package service

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cydxin/support-chat-sdk/cons"
	"github.com/cydxin/support-chat-sdk/models"
	"github.com/cydxin/support-chat-sdk/repository"
)

// ErrNotAdmin 非管理员调用了管理员专属操作。
// 注意：这只是界面可达性层面的拦截，真正的访问控制在存储/鉴权层。
var ErrNotAdmin = errors.New("admin only")

// AnnouncementDTO 公告项
type AnnouncementDTO struct {
	ID        uint64    `json:"id"`
	UID       string    `json:"uid"`
	ThreadID  uint64    `json:"thread_id"`
	Content   string    `json:"content"` // markdown
	CreatedAt time.Time `json:"created_at"`
}

// AnnouncementThreadDTO 公告栏目项（含栏目内公告，发布时间倒序）
type AnnouncementThreadDTO struct {
	ID            uint64            `json:"id"`
	Title         string            `json:"title"`
	UpdatedAt     int64             `json:"updated_at"`
	Announcements []AnnouncementDTO `json:"announcements"`
}

type AnnouncementService struct {
	*Service
	announcementDAO *repository.AnnouncementDAO
}

func NewAnnouncementService(s *Service) *AnnouncementService {
	log.Println("NewAnnouncementService")
	return &AnnouncementService{Service: s, announcementDAO: repository.NewAnnouncementDAO(s.DB)}
}

// ListThreads 两级加载：栏目按活跃时间倒序，栏目内公告按发布时间倒序。
func (s *AnnouncementService) ListThreads() ([]AnnouncementThreadDTO, error) {
	threads, err := s.announcementDAO.ListThreads()
	if err != nil {
		return nil, err
	}

	out := make([]AnnouncementThreadDTO, 0, len(threads))
	for _, t := range threads {
		anns, err := s.announcementDAO.ListByThreadID(t.ID)
		if err != nil {
			return nil, err
		}
		item := AnnouncementThreadDTO{
			ID:            t.ID,
			Title:         t.Title,
			UpdatedAt:     t.UpdatedAt.Unix(),
			Announcements: make([]AnnouncementDTO, 0, len(anns)),
		}
		for _, a := range anns {
			item.Announcements = append(item.Announcements, AnnouncementDTO{
				ID: a.ID, UID: a.UID, ThreadID: a.ThreadID, Content: a.Content, CreatedAt: a.CreatedAt,
			})
		}
		out = append(out, item)
	}
	return out, nil
}

// PostAnnouncement 发布公告。
// isAdmin 由调用方传入（HTTP 层由中间件按配置邮箱计算），这里只做
// 界面可达性校验；空白内容本地拒绝，不打数据库。
// 成功后更新栏目 updated_at 并发变更通知，新公告经重新加载可见。
func (s *AnnouncementService) PostAnnouncement(threadID uint64, content string, isAdmin bool) (*models.Announcement, error) {
	if !isAdmin {
		return nil, ErrNotAdmin
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if threadID == 0 {
		return nil, errors.New("thread_id is required")
	}

	// 栏目必须已存在（栏目由运营后台预置，这里不建）
	if _, err := s.announcementDAO.FindThreadByID(threadID); err != nil {
		return nil, err
	}

	a := &models.Announcement{ThreadID: threadID, Content: content}
	if err := s.announcementDAO.Create(a); err != nil {
		return nil, err
	}
	if err := s.announcementDAO.TouchThread(threadID, time.Now()); err != nil {
		log.Printf("announcement thread touch failed: %v", err)
	}

	s.publish(cons.TableAnnouncements, threadID)
	return a, nil
}
