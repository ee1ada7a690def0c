package syncer

import (
	"strings"
	"sync"

	"github.com/cydxin/support-chat-sdk/cons"
)

// AnnouncementView 快照中的一条公告（附带聚合后的回应）
type AnnouncementView struct {
	Announcement
	Reactions []ReactionGroup `json:"reactions,omitempty"`
}

// AnnouncementThreadView 快照中的一个公告栏目
type AnnouncementThreadView struct {
	ID            uint64
	Title         string
	Announcements []AnnouncementView
}

// AnnouncementSynchronizer 公告视图同步器。
// 结构同 MessageSynchronizer，但两级加载（栏目 -> 公告），
// 且公告回应走乐观路径：本地先改，远端确认后替换占位，失败回滚。
type AnnouncementSynchronizer struct {
	gw       Gateway
	viewerID uint64
	isAdmin  bool // 调用方给的标记，只挡界面可达性，不是安全边界

	mu      sync.Mutex
	threads []AnnouncementThread
	loadSeq uint64
	applied uint64
	closed  bool

	reactions *ReactionReconciler
	subs      []Subscription

	OnUpdate func()
	OnError  func(error)
}

func NewAnnouncementSynchronizer(gw Gateway, viewerID uint64, isAdmin bool) *AnnouncementSynchronizer {
	s := &AnnouncementSynchronizer{gw: gw, viewerID: viewerID, isAdmin: isAdmin}
	s.reactions = NewReactionReconciler(true,
		gw.InsertAnnouncementReaction,
		gw.DeleteReaction,
		s.reportErrorAndRefresh,
	)
	return s
}

func (s *AnnouncementSynchronizer) reportError(err error) {
	if s.OnError != nil && err != nil {
		s.OnError(err)
	}
}

// reportErrorAndRefresh 乐观路径失败：上报之外再推一次快照，让回滚可见
func (s *AnnouncementSynchronizer) reportErrorAndRefresh(err error) {
	s.reportError(err)
	s.notifyUpdate()
}

func (s *AnnouncementSynchronizer) notifyUpdate() {
	if s.OnUpdate != nil {
		s.OnUpdate()
	}
}

// Start 首次加载并订阅 announcements 与 reactions（都不按栏目过滤）
func (s *AnnouncementSynchronizer) Start() error {
	if err := s.Reload(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.subs = append(s.subs,
		s.gw.Subscribe(cons.TableAnnouncements, 0, func() { _ = s.Reload() }),
		s.gw.Subscribe(cons.TableReactions, 0, func() { _ = s.Reload() }),
	)
	s.mu.Unlock()
	return nil
}

// Reload 两级整体重载：栏目（活跃倒序）-> 各栏目公告（发布倒序）-> 回应
func (s *AnnouncementSynchronizer) Reload() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	threads, err := s.gw.FetchAnnouncementThreads()
	if err != nil {
		s.reportError(err)
		return err
	}

	ids := make([]uint64, 0)
	for _, t := range threads {
		for _, a := range t.Announcements {
			ids = append(ids, a.ID)
		}
	}
	reactions, err := s.gw.FetchAnnouncementReactions(ids)
	if err != nil {
		s.reportError(err)
		return err
	}

	s.mu.Lock()
	if s.closed || seq <= s.applied {
		s.mu.Unlock()
		return nil
	}
	s.applied = seq
	s.threads = threads
	// 回应也在守卫内落盘，保证和同一次加载的栏目成对生效
	s.reactions.Replace(reactions)
	s.mu.Unlock()

	s.notifyUpdate()
	return nil
}

// Post 发布公告。非管理员与空白内容都在本地拒绝（不打网关）；
// 成功后显式重载一次，保证新公告不等通知也立即可见。
func (s *AnnouncementSynchronizer) Post(threadID uint64, content string) error {
	if !s.isAdmin {
		return ErrNotAdmin
	}
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if err := s.gw.InsertAnnouncement(threadID, content); err != nil {
		s.reportError(err)
		return err
	}
	return s.Reload()
}

// ToggleReaction 切换查看者对某条公告的回应（乐观：本地立即生效）
func (s *AnnouncementSynchronizer) ToggleReaction(announcementID uint64, emoji string) {
	if s.reactions.Toggle(announcementID, s.viewerID, emoji) {
		s.notifyUpdate()
	}
}

// Snapshot 当前投影快照
func (s *AnnouncementSynchronizer) Snapshot() []AnnouncementThreadView {
	s.mu.Lock()
	threads := make([]AnnouncementThread, len(s.threads))
	copy(threads, s.threads)
	viewer := s.viewerID
	s.mu.Unlock()

	out := make([]AnnouncementThreadView, 0, len(threads))
	for _, t := range threads {
		tv := AnnouncementThreadView{ID: t.ID, Title: t.Title}
		for _, a := range t.Announcements {
			tv.Announcements = append(tv.Announcements, AnnouncementView{
				Announcement: a,
				Reactions:    s.reactions.Groups(a.ID, viewer),
			})
		}
		out = append(out, tv)
	}
	return out
}

// Close 释放全部订阅，幂等
func (s *AnnouncementSynchronizer) Close() {
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
