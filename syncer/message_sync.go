package syncer

import (
	"strings"
	"sync"

	"github.com/cydxin/support-chat-sdk/cons"
)

// MessageView 快照中的一条消息（附带聚合后的回应）
type MessageView struct {
	Message
	Reactions []ReactionGroup `json:"reactions,omitempty"`
}

// MessageSynchronizer 一个已挂载的会话视图的同步器。
//
// 生命周期：New -> Start（首次加载 + 开订阅）-> （变更通知驱动的重载）-> Close。
// Close 保证释放全部订阅，重复 Close 无害。
//
// 同一时刻可能有多个重载在途（通知没有去重），结果按发起序号
// 落盘：过期的重载结果直接丢弃，不会用旧数据覆盖新状态。
type MessageSynchronizer struct {
	gw       Gateway
	threadID uint64
	viewerID uint64

	mu       sync.Mutex
	messages []Message
	loadSeq  uint64 // 最近发起的重载序号
	applied  uint64 // 已生效的最大序号
	closed   bool

	reactions *ReactionReconciler
	subs      []Subscription

	// OnUpdate 投影生效后的回调（WS 层推快照用）；OnError 操作失败上报。
	// 都可能在任意 goroutine 被调用。
	OnUpdate func()
	OnError  func(error)
}

// NewMessageSynchronizer 创建会话视图同步器。
// 消息回应走非乐观路径：toggle 只打远端，本地等变更通知重载。
func NewMessageSynchronizer(gw Gateway, threadID, viewerID uint64) *MessageSynchronizer {
	s := &MessageSynchronizer{gw: gw, threadID: threadID, viewerID: viewerID}
	s.reactions = NewReactionReconciler(false,
		func(subjectID, userID uint64, emoji string) (Reaction, error) {
			return gw.InsertMessageReaction(subjectID, userID, emoji)
		},
		gw.DeleteReaction,
		s.reportError,
	)
	return s
}

func (s *MessageSynchronizer) reportError(err error) {
	if s.OnError != nil && err != nil {
		s.OnError(err)
	}
}

func (s *MessageSynchronizer) notifyUpdate() {
	if s.OnUpdate != nil {
		s.OnUpdate()
	}
}

// Start 首次加载并打开订阅：
// - messages 按本会话过滤；
// - reactions 不过滤（回应挂在消息上，不挂在会话上）。
// 任一通知都会触发整体重载。
func (s *MessageSynchronizer) Start() error {
	if err := s.Reload(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.subs = append(s.subs,
		s.gw.Subscribe(cons.TableMessages, s.threadID, func() { _ = s.Reload() }),
		s.gw.Subscribe(cons.TableReactions, 0, func() { _ = s.Reload() }),
	)
	s.mu.Unlock()
	return nil
}

// Reload 整体重载：拉消息、标记已读、拉回应、按序号落盘。
//
// 已读标记是“读”的副作用：seen_at 为空且发送者不是查看者的消息，
// 批量写 seen_at。标记失败只上报，不影响本次投影。
func (s *MessageSynchronizer) Reload() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.loadSeq++
	seq := s.loadSeq
	threadID := s.threadID
	s.mu.Unlock()

	msgs, err := s.gw.FetchMessages(threadID)
	if err != nil {
		s.reportError(err)
		return err
	}

	unseen := make([]uint64, 0)
	ids := make([]uint64, 0, len(msgs))
	for i := range msgs {
		ids = append(ids, msgs[i].ID)
		if msgs[i].SeenAt == nil && msgs[i].SenderID != s.viewerID {
			unseen = append(unseen, msgs[i].ID)
		}
	}
	if len(unseen) > 0 {
		if err := s.gw.MarkSeen(threadID, unseen); err != nil {
			s.reportError(err)
		}
	}

	reactions, err := s.gw.FetchMessageReactions(ids)
	if err != nil {
		s.reportError(err)
		return err
	}

	s.mu.Lock()
	if s.closed || seq <= s.applied {
		// 过期结果：已有更新的重载生效过了，丢弃
		s.mu.Unlock()
		return nil
	}
	s.applied = seq
	s.messages = msgs
	// 回应也在守卫内落盘，保证和同一次加载的消息成对生效
	s.reactions.Replace(reactions)
	s.mu.Unlock()

	s.notifyUpdate()
	return nil
}

// Send 发送消息。空白内容本地拒绝（不打网关），失败上报并保持本地状态不变；
// 没有乐观插入，新消息等变更通知触发的重载后出现。
func (s *MessageSynchronizer) Send(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if err := s.gw.InsertMessage(s.threadID, s.viewerID, content); err != nil {
		s.reportError(err)
		return err
	}
	return nil
}

// ToggleReaction 切换查看者对某条消息的回应
func (s *MessageSynchronizer) ToggleReaction(messageID uint64, emoji string) {
	s.reactions.Toggle(messageID, s.viewerID, emoji)
}

// Snapshot 当前投影快照（消息升序 + 每条消息聚合后的回应）
func (s *MessageSynchronizer) Snapshot() []MessageView {
	s.mu.Lock()
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	viewer := s.viewerID
	s.mu.Unlock()

	out := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageView{Message: m, Reactions: s.reactions.Groups(m.ID, viewer)})
	}
	return out
}

// Close 释放全部订阅。幂等；Close 后的重载结果一律丢弃。
func (s *MessageSynchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}
