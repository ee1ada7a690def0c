package service

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cydxin/support-chat-sdk/cons"
	"github.com/cydxin/support-chat-sdk/models"
	"gorm.io/gorm"
)

// ThreadSummaryDTO 管理端看板的会话项
type ThreadSummaryDTO struct {
	ThreadID    uint64      `json:"thread_id"`
	UserID      uint64      `json:"user_id"`
	UserEmail   string      `json:"user_email"` // 归属用户邮箱，查不到时为 "Unknown User"
	LastMessage *MessageDTO `json:"last_message,omitempty"`
	UnreadCount int64       `json:"unread_count"` // seen_at 为空且发送者 != 归属用户 的消息数
	UpdatedAt   int64       `json:"updated_at"`   // unix seconds for easy sort/render
}

type ThreadService struct {
	*Service
	threadDAO  *models.ThreadDAO
	messageDAO *models.MessageDAO
}

func NewThreadService(s *Service) *ThreadService {
	log.Println("NewThreadService")
	return &ThreadService{Service: s, threadDAO: models.NewThreadDAO(s.DB), messageDAO: models.NewMessageDAO(s.DB)}
}

// ResolveThread 找到或创建用户归属的唯一会话，返回 thread ID。
//
// 流程：先查，查不到（ErrRecordNotFound，预期内，不是错误）则创建。
// 这里没有事务护栏，唯一性靠 user_id 唯一索引兜底：
// 并发下第二个 create 会撞唯一键，此时不报错，重新查一次拿已存在的行。
// 其他查询错误原样上抛，调用方负责提示。
func (s *ThreadService) ResolveThread(userID uint64) (uint64, error) {
	if userID == 0 {
		return 0, errors.New("user_id is required")
	}

	t, err := s.threadDAO.FindByUserID(userID)
	if err == nil {
		return t.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	nt := &models.Thread{UserID: userID}
	if err := s.threadDAO.Create(nt); err != nil {
		if isDuplicateKey(err) {
			// 并发创建撞唯一键：对方已建好，重查即可
			t, err2 := s.threadDAO.FindByUserID(userID)
			if err2 != nil {
				return 0, err2
			}
			return t.ID, nil
		}
		return 0, err
	}

	s.publish(cons.TableThreads, nt.ID)
	return nt.ID, nil
}

// GetThread 根据ID获取会话
func (s *ThreadService) GetThread(threadID uint64) (*models.Thread, error) {
	return s.threadDAO.FindByID(threadID)
}

// ListThreadSummaries 管理端看板：全部会话按活跃时间倒序，
// 每条补齐归属用户邮箱、最后一条消息、未读数。
func (s *ThreadService) ListThreadSummaries() ([]ThreadSummaryDTO, error) {
	threads, err := s.threadDAO.ListAll()
	if err != nil {
		return nil, err
	}

	out := make([]ThreadSummaryDTO, 0, len(threads))
	for i := range threads {
		t := threads[i]
		item := ThreadSummaryDTO{
			ThreadID:  t.ID,
			UserID:    t.UserID,
			UserEmail: "Unknown User",
			UpdatedAt: t.UpdatedAt.Unix(),
		}
		if t.User.Email != "" {
			item.UserEmail = t.User.Email
		}

		if last, err := s.messageDAO.LastByThreadID(t.ID); err == nil {
			item.LastMessage = ToMessageDTO(last)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		n, err := s.messageDAO.CountUnseenFromOthers(t.ID, t.UserID)
		if err != nil {
			return nil, err
		}
		item.UnreadCount = n

		out = append(out, item)
	}
	return out, nil
}

// TouchThread 消息活动时推进会话的 last_message_id / updated_at
func (s *ThreadService) TouchThread(threadID, lastMessageID uint64) error {
	return s.threadDAO.Touch(threadID, lastMessageID, time.Now())
}

// isDuplicateKey 唯一键冲突判定。
// gorm 的翻译错误优先，MySQL 1062 的原始文案兜底。
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "1062")
}
