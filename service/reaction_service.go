package service

import (
	"errors"
	"log"
	"strings"

	"github.com/cydxin/support-chat-sdk/cons"
	"github.com/cydxin/support-chat-sdk/models"
	"github.com/cydxin/support-chat-sdk/repository"
	"gorm.io/gorm"
)

// ReactionDTO 单条回应
type ReactionDTO struct {
	ID             uint64 `json:"id"`
	MessageID      uint64 `json:"message_id,omitempty"`
	AnnouncementID uint64 `json:"announcement_id,omitempty"`
	UserID         uint64 `json:"user_id"`
	Emoji          string `json:"emoji"`
}

// ReactionGroupDTO 同一主体下按 emoji 聚合后的展示项
type ReactionGroupDTO struct {
	Emoji       string `json:"emoji"`
	Count       int    `json:"count"`
	OwnReaction bool   `json:"own_reaction"` // 当前查看者是否在其中（只影响高亮）
}

type ReactionService struct {
	*Service
	reactionDAO *repository.ReactionDAO
}

func NewReactionService(s *Service) *ReactionService {
	log.Println("NewReactionService")
	return &ReactionService{Service: s, reactionDAO: repository.NewReactionDAO(s.DB)}
}

// ToggleMessageReaction 切换消息回应：三元组已存在则删除，不存在则插入。
// 返回 (toggle 后该三元组对应的行, 是否新增)。删除时行为 nil。
func (s *ReactionService) ToggleMessageReaction(messageID, userID uint64, emoji string) (*models.Reaction, bool, error) {
	emoji = strings.TrimSpace(emoji)
	if messageID == 0 || userID == 0 || emoji == "" {
		return nil, false, errors.New("message_id, user_id and emoji are required")
	}

	existing, err := s.reactionDAO.FindMessageTriple(messageID, userID, emoji)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if existing != nil {
		if err := s.reactionDAO.DeleteByID(existing.ID); err != nil {
			return nil, false, err
		}
		s.publish(cons.TableReactions, 0)
		return nil, false, nil
	}

	r := &models.Reaction{MessageID: &messageID, UserID: userID, Emoji: emoji}
	if err := s.reactionDAO.Create(r); err != nil {
		return nil, false, err
	}
	s.publish(cons.TableReactions, 0)
	return r, true, nil
}

// ToggleAnnouncementReaction 切换公告回应，语义同上
func (s *ReactionService) ToggleAnnouncementReaction(announcementID, userID uint64, emoji string) (*models.Reaction, bool, error) {
	emoji = strings.TrimSpace(emoji)
	if announcementID == 0 || userID == 0 || emoji == "" {
		return nil, false, errors.New("announcement_id, user_id and emoji are required")
	}

	existing, err := s.reactionDAO.FindAnnouncementTriple(announcementID, userID, emoji)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if existing != nil {
		if err := s.reactionDAO.DeleteByID(existing.ID); err != nil {
			return nil, false, err
		}
		s.publish(cons.TableReactions, 0)
		return nil, false, nil
	}

	r := &models.Reaction{AnnouncementID: &announcementID, UserID: userID, Emoji: emoji}
	if err := s.reactionDAO.Create(r); err != nil {
		return nil, false, err
	}
	s.publish(cons.TableReactions, 0)
	return r, true, nil
}

// AddMessageReaction 直接插入消息回应（重复三元组会撞唯一键，由调用方决定如何提示）
func (s *ReactionService) AddMessageReaction(messageID, userID uint64, emoji string) (*models.Reaction, error) {
	emoji = strings.TrimSpace(emoji)
	if messageID == 0 || userID == 0 || emoji == "" {
		return nil, errors.New("message_id, user_id and emoji are required")
	}
	r := &models.Reaction{MessageID: &messageID, UserID: userID, Emoji: emoji}
	if err := s.reactionDAO.Create(r); err != nil {
		return nil, err
	}
	s.publish(cons.TableReactions, 0)
	return r, nil
}

// AddAnnouncementReaction 直接插入公告回应
func (s *ReactionService) AddAnnouncementReaction(announcementID, userID uint64, emoji string) (*models.Reaction, error) {
	emoji = strings.TrimSpace(emoji)
	if announcementID == 0 || userID == 0 || emoji == "" {
		return nil, errors.New("announcement_id, user_id and emoji are required")
	}
	r := &models.Reaction{AnnouncementID: &announcementID, UserID: userID, Emoji: emoji}
	if err := s.reactionDAO.Create(r); err != nil {
		return nil, err
	}
	s.publish(cons.TableReactions, 0)
	return r, nil
}

// RemoveReaction 按行ID删除回应
func (s *ReactionService) RemoveReaction(id uint64) error {
	if id == 0 {
		return errors.New("reaction id is required")
	}
	if err := s.reactionDAO.DeleteByID(id); err != nil {
		return err
	}
	s.publish(cons.TableReactions, 0)
	return nil
}

// ListMessageReactions 批量拉取并按 message_id 分桶
func (s *ReactionService) ListMessageReactions(messageIDs []uint64) (map[uint64][]ReactionDTO, error) {
	rs, err := s.reactionDAO.ListByMessageIDs(messageIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64][]ReactionDTO)
	for _, r := range rs {
		if r.MessageID == nil {
			continue
		}
		out[*r.MessageID] = append(out[*r.MessageID], ReactionDTO{
			ID: r.ID, MessageID: *r.MessageID, UserID: r.UserID, Emoji: r.Emoji,
		})
	}
	return out, nil
}

// ListAnnouncementReactions 批量拉取并按 announcement_id 分桶
func (s *ReactionService) ListAnnouncementReactions(announcementIDs []uint64) (map[uint64][]ReactionDTO, error) {
	rs, err := s.reactionDAO.ListByAnnouncementIDs(announcementIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64][]ReactionDTO)
	for _, r := range rs {
		if r.AnnouncementID == nil {
			continue
		}
		out[*r.AnnouncementID] = append(out[*r.AnnouncementID], ReactionDTO{
			ID: r.ID, AnnouncementID: *r.AnnouncementID, UserID: r.UserID, Emoji: r.Emoji,
		})
	}
	return out, nil
}

// GroupReactions 按 emoji 聚合（emoji 首次出现顺序稳定），并标记查看者是否参与
func GroupReactions(list []ReactionDTO, viewerID uint64) []ReactionGroupDTO {
	order := make([]string, 0)
	byEmoji := make(map[string]*ReactionGroupDTO)
	for _, r := range list {
		g, ok := byEmoji[r.Emoji]
		if !ok {
			g = &ReactionGroupDTO{Emoji: r.Emoji}
			byEmoji[r.Emoji] = g
			order = append(order, r.Emoji)
		}
		g.Count++
		if r.UserID == viewerID {
			g.OwnReaction = true
		}
	}
	out := make([]ReactionGroupDTO, 0, len(order))
	for _, e := range order {
		out = append(out, *byEmoji[e])
	}
	return out
}
