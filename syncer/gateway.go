// Package syncer 实现“本地投影 + 远端变更通知”的同步核心：
// 会话解析、消息/公告同步器、回应（emoji）归并。
//
// 所有远端能力通过 Gateway 显式注入（不是包级单例），
// 测试里可以换成假网关。同步策略是 invalidate-and-refetch：
// 收到任何相关变更通知就整体重新加载，不做增量合并。
package syncer

import (
	"errors"
	"time"
)

// 本地校验错误：在任何远端调用之前就被拒绝，不产生网关往返。
var (
	ErrEmptyContent = errors.New("content is empty")
	ErrNotAdmin     = errors.New("admin only")
)

// ErrNotFound 远端“查无此行”。预期内的状态（驱动 find-or-create），不是故障。
var ErrNotFound = errors.New("not found")

// Message 投影中的一条消息（发送人邮箱已 join；查不到时网关侧填 "Unknown"）
type Message struct {
	ID          uint64
	ThreadID    uint64
	SenderID    uint64
	SenderEmail string
	Content     string
	SeenAt      *time.Time
	CreatedAt   time.Time
}

// Reaction 远端确认过的一条回应行
type Reaction struct {
	ID     uint64
	UserID uint64
	Emoji  string
}

// ReactionGroup 同一主体下按 emoji 聚合后的展示项
type ReactionGroup struct {
	Emoji       string `json:"emoji"`
	Count       int    `json:"count"`
	OwnReaction bool   `json:"own_reaction"` // 查看者是否参与（只影响高亮）
}

// Announcement 公告投影项
type Announcement struct {
	ID        uint64
	Content   string
	CreatedAt time.Time
}

// AnnouncementThread 公告栏目投影项（栏目内公告按发布时间倒序）
type AnnouncementThread struct {
	ID            uint64
	Title         string
	Announcements []Announcement
}

// ThreadSummary 管理端看板投影项
type ThreadSummary struct {
	ThreadID    uint64
	UserID      uint64
	UserEmail   string
	LastMessage string
	UnreadCount int64
	UpdatedAt   int64
}

// Subscription 变更订阅句柄。Cancel 幂等。
type Subscription interface {
	Cancel()
}

// Gateway 同步核心依赖的远端数据能力。
//
// 实现方约定：
// - FetchMessages 返回按创建时间升序的全量消息；
// - 查无此行用 ErrNotFound（或包着它）表达，其他错误一律视为网关故障；
// - Subscribe 的回调可能在任意 goroutine 被调用，threadID 传 0 表示不过滤。
type Gateway interface {
	ResolveThread(userID uint64) (uint64, error)

	FetchMessages(threadID uint64) ([]Message, error)
	MarkSeen(threadID uint64, messageIDs []uint64) error
	InsertMessage(threadID, senderID uint64, content string) error

	FetchMessageReactions(messageIDs []uint64) (map[uint64][]Reaction, error)
	FetchAnnouncementReactions(announcementIDs []uint64) (map[uint64][]Reaction, error)
	InsertMessageReaction(messageID, userID uint64, emoji string) (Reaction, error)
	InsertAnnouncementReaction(announcementID, userID uint64, emoji string) (Reaction, error)
	DeleteReaction(reactionID uint64) error

	FetchAnnouncementThreads() ([]AnnouncementThread, error)
	InsertAnnouncement(threadID uint64, content string) error

	FetchThreadSummaries() ([]ThreadSummary, error)

	Subscribe(table string, threadID uint64, fn func()) Subscription
}

// ResolveThread 找到或创建 userID 归属的唯一会话。
// 纯转发：并发去重靠网关侧的唯一约束，这里只负责把 ErrNotFound
// 之外的错误原样抛给调用方。
func ResolveThread(gw Gateway, userID uint64) (uint64, error) {
	return gw.ResolveThread(userID)
}
