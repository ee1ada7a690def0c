package service

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cydxin/support-chat-sdk/cons"
	"github.com/cydxin/support-chat-sdk/models"
	"gorm.io/datatypes"
)

// ErrEmptyContent 空内容。本地校验，不产生任何数据库往返。
var ErrEmptyContent = errors.New("content is empty")

// MessageDTO 消息数据传输对象（避免 Swagger 递归）
type MessageDTO struct {
	ID        uint64         `json:"id"`
	UID       string         `json:"uid"`
	ThreadID  uint64         `json:"thread_id"`
	SenderID  uint64         `json:"sender_id"`
	Content   string         `json:"content"`
	Extra     datatypes.JSON `json:"extra,omitempty"`
	SeenAt    *time.Time     `json:"seen_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MessageListItemDTO 消息列表项（带发送人邮箱；不返回 Thread，避免冗余/递归）
type MessageListItemDTO struct {
	ID          uint64         `json:"id"`
	UID         string         `json:"uid"`
	ThreadID    uint64         `json:"thread_id"`
	SenderID    uint64         `json:"sender_id"`
	SenderEmail string         `json:"sender_email"` // join 不到发送人时为 "Unknown"
	Content     string         `json:"content"`
	Extra       datatypes.JSON `json:"extra,omitempty"`
	SeenAt      *time.Time     `json:"seen_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ToMessageDTO 将 Message 转换为 MessageDTO
func ToMessageDTO(msg *models.Message) *MessageDTO {
	if msg == nil {
		return nil
	}
	return &MessageDTO{
		ID:        msg.ID,
		UID:       msg.UID,
		ThreadID:  msg.ThreadID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Extra:     msg.Extra,
		SeenAt:    msg.SeenAt,
		CreatedAt: msg.CreatedAt,
	}
}

func toMessageListItemDTO(m *models.Message) *MessageListItemDTO {
	if m == nil {
		return nil
	}
	email := "Unknown"
	if m.Sender.Email != "" {
		email = m.Sender.Email
	}
	return &MessageListItemDTO{
		ID:          m.ID,
		UID:         m.UID,
		ThreadID:    m.ThreadID,
		SenderID:    m.SenderID,
		SenderEmail: email,
		Content:     m.Content,
		Extra:       m.Extra,
		SeenAt:      m.SeenAt,
		CreatedAt:   m.CreatedAt,
	}
}

func toMessageListItemDTOs(msgs []models.Message) []MessageListItemDTO {
	out := make([]MessageListItemDTO, 0, len(msgs))
	for i := range msgs {
		if dto := toMessageListItemDTO(&msgs[i]); dto != nil {
			out = append(out, *dto)
		}
	}
	return out
}

type MessageService struct {
	*Service
	messageDAO *models.MessageDAO
	threadDAO  *models.ThreadDAO
}

func NewMessageService(s *Service) *MessageService {
	log.Println("NewMessageService")
	return &MessageService{Service: s, messageDAO: models.NewMessageDAO(s.DB), threadDAO: models.NewThreadDAO(s.DB)}
}

// ListMessages 拉取会话全量消息，按创建时间升序，带发送人邮箱。无副作用。
func (s *MessageService) ListMessages(threadID uint64) ([]MessageListItemDTO, error) {
	msgs, err := s.messageDAO.FindByThreadID(threadID)
	if err != nil {
		return nil, err
	}
	return toMessageListItemDTOs(msgs), nil
}

// MarkSeen 批量写入 seen_at = now 并发变更通知。
// 只会落到 seen_at 仍为空的行上（单调性由 DAO 的 WHERE 保证）。
func (s *MessageService) MarkSeen(threadID uint64, messageIDs []uint64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := s.messageDAO.MarkSeen(messageIDs, time.Now()); err != nil {
		return err
	}
	s.publish(cons.TableMessages, threadID)
	return nil
}

// LoadMessages 列表 + 阅读副作用的组合（HTTP 列表接口用）。
//
// viewerID 视角下，seen_at 为空且发送者不是自己的消息，批量标记已读。
// 这是“读”触发的，不是“发”触发的。标记失败不影响本次返回的列表
// （下次加载会重试同一批）。
func (s *MessageService) LoadMessages(threadID, viewerID uint64) ([]MessageListItemDTO, error) {
	list, err := s.ListMessages(threadID)
	if err != nil {
		return nil, err
	}

	unseen := make([]uint64, 0)
	for i := range list {
		if list[i].SeenAt == nil && list[i].SenderID != viewerID {
			unseen = append(unseen, list[i].ID)
		}
	}
	if len(unseen) > 0 {
		if err := s.MarkSeen(threadID, unseen); err != nil {
			log.Printf("MarkSeen failed: %v", err)
		}
	}

	return list, nil
}

// SendMessage 发送消息。
// 空白内容本地拒绝（ErrEmptyContent），不打数据库；
// 成功后推进 thread 的 last_message_id/updated_at 并发变更通知。
// 没有乐观插入：调用方等变更通知后重新加载即可看到新消息。
func (s *MessageService) SendMessage(threadID, senderID uint64, content string, extra any) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if threadID == 0 || senderID == 0 {
		return nil, errors.New("thread_id and sender_id are required")
	}

	msg := &models.Message{
		ThreadID: threadID,
		SenderID: senderID,
		Content:  content,
	}
	if extra != nil {
		b, err := json.Marshal(extra)
		if err != nil {
			return nil, err
		}
		msg.Extra = datatypes.JSON(b)
	}

	if err := s.messageDAO.Create(msg); err != nil {
		return nil, err
	}
	if err := s.threadDAO.Touch(threadID, msg.ID, time.Now()); err != nil {
		log.Printf("thread touch failed: %v", err)
	}

	s.publish(cons.TableMessages, threadID)
	s.publish(cons.TableThreads, threadID)
	return msg, nil
}

// GetMessageByID 根据ID获取消息
func (s *MessageService) GetMessageByID(messageID uint64) (*models.Message, error) {
	return s.messageDAO.FindByID(messageID)
}
