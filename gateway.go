package support_chat

import (
	"errors"

	"github.com/cydxin/support-chat-sdk/service"
	"github.com/cydxin/support-chat-sdk/syncer"
	"gorm.io/gorm"
)

// dbGateway 用 service 层 + 变更总线实现 syncer.Gateway。
// 错误归一：gorm 的 ErrRecordNotFound 换成 syncer.ErrNotFound，
// 其余错误原样上抛（同步器视为网关故障上报）。
type dbGateway struct {
	e *Engine
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return syncer.ErrNotFound
	}
	return err
}

func (g *dbGateway) ResolveThread(userID uint64) (uint64, error) {
	return g.e.ThreadService.ResolveThread(userID)
}

func (g *dbGateway) FetchMessages(threadID uint64) ([]syncer.Message, error) {
	list, err := g.e.MessageService.ListMessages(threadID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	out := make([]syncer.Message, 0, len(list))
	for _, m := range list {
		out = append(out, syncer.Message{
			ID:          m.ID,
			ThreadID:    m.ThreadID,
			SenderID:    m.SenderID,
			SenderEmail: m.SenderEmail,
			Content:     m.Content,
			SeenAt:      m.SeenAt,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, nil
}

func (g *dbGateway) MarkSeen(threadID uint64, messageIDs []uint64) error {
	return g.e.MessageService.MarkSeen(threadID, messageIDs)
}

func (g *dbGateway) InsertMessage(threadID, senderID uint64, content string) error {
	_, err := g.e.MessageService.SendMessage(threadID, senderID, content, nil)
	if errors.Is(err, service.ErrEmptyContent) {
		return syncer.ErrEmptyContent
	}
	return mapNotFound(err)
}

func toSyncerReactions(data map[uint64][]service.ReactionDTO) map[uint64][]syncer.Reaction {
	out := make(map[uint64][]syncer.Reaction, len(data))
	for sid, list := range data {
		rs := make([]syncer.Reaction, 0, len(list))
		for _, r := range list {
			rs = append(rs, syncer.Reaction{ID: r.ID, UserID: r.UserID, Emoji: r.Emoji})
		}
		out[sid] = rs
	}
	return out
}

func (g *dbGateway) FetchMessageReactions(messageIDs []uint64) (map[uint64][]syncer.Reaction, error) {
	data, err := g.e.ReactionService.ListMessageReactions(messageIDs)
	if err != nil {
		return nil, err
	}
	return toSyncerReactions(data), nil
}

func (g *dbGateway) FetchAnnouncementReactions(announcementIDs []uint64) (map[uint64][]syncer.Reaction, error) {
	data, err := g.e.ReactionService.ListAnnouncementReactions(announcementIDs)
	if err != nil {
		return nil, err
	}
	return toSyncerReactions(data), nil
}

func (g *dbGateway) InsertMessageReaction(messageID, userID uint64, emoji string) (syncer.Reaction, error) {
	row, err := g.e.ReactionService.AddMessageReaction(messageID, userID, emoji)
	if err != nil {
		return syncer.Reaction{}, mapNotFound(err)
	}
	return syncer.Reaction{ID: row.ID, UserID: row.UserID, Emoji: row.Emoji}, nil
}

func (g *dbGateway) InsertAnnouncementReaction(announcementID, userID uint64, emoji string) (syncer.Reaction, error) {
	row, err := g.e.ReactionService.AddAnnouncementReaction(announcementID, userID, emoji)
	if err != nil {
		return syncer.Reaction{}, mapNotFound(err)
	}
	return syncer.Reaction{ID: row.ID, UserID: row.UserID, Emoji: row.Emoji}, nil
}

func (g *dbGateway) DeleteReaction(reactionID uint64) error {
	return g.e.ReactionService.RemoveReaction(reactionID)
}

func (g *dbGateway) FetchAnnouncementThreads() ([]syncer.AnnouncementThread, error) {
	list, err := g.e.AnnouncementService.ListThreads()
	if err != nil {
		return nil, err
	}
	out := make([]syncer.AnnouncementThread, 0, len(list))
	for _, t := range list {
		st := syncer.AnnouncementThread{ID: t.ID, Title: t.Title}
		for _, a := range t.Announcements {
			st.Announcements = append(st.Announcements, syncer.Announcement{
				ID:        a.ID,
				Content:   a.Content,
				CreatedAt: a.CreatedAt,
			})
		}
		out = append(out, st)
	}
	return out, nil
}

func (g *dbGateway) InsertAnnouncement(threadID uint64, content string) error {
	// 界面可达性已由同步器挡过，这里是存储路径本身
	_, err := g.e.AnnouncementService.PostAnnouncement(threadID, content, true)
	if errors.Is(err, service.ErrEmptyContent) {
		return syncer.ErrEmptyContent
	}
	return mapNotFound(err)
}

func (g *dbGateway) FetchThreadSummaries() ([]syncer.ThreadSummary, error) {
	list, err := g.e.ThreadService.ListThreadSummaries()
	if err != nil {
		return nil, err
	}
	out := make([]syncer.ThreadSummary, 0, len(list))
	for _, s := range list {
		sum := syncer.ThreadSummary{
			ThreadID:    s.ThreadID,
			UserID:      s.UserID,
			UserEmail:   s.UserEmail,
			UnreadCount: s.UnreadCount,
			UpdatedAt:   s.UpdatedAt,
		}
		if s.LastMessage != nil {
			sum.LastMessage = s.LastMessage.Content
		}
		out = append(out, sum)
	}
	return out, nil
}

func (g *dbGateway) Subscribe(table string, threadID uint64, fn func()) syncer.Subscription {
	return g.e.Bus.Subscribe(table, threadID, fn)
}
