package syncer

import (
	"errors"
	"testing"
	"time"
)

func seedAnnouncements(gw *fakeGateway) {
	now := time.Now()
	gw.annThreads = []AnnouncementThread{
		{ID: 2, Title: "Maintenance", Announcements: []Announcement{
			{ID: 21, Content: "window tonight", CreatedAt: now},
		}},
		{ID: 1, Title: "Release Notes", Announcements: []Announcement{
			{ID: 12, Content: "v1.1", CreatedAt: now},
			{ID: 11, Content: "v1.0", CreatedAt: now.Add(-time.Hour)},
		}},
	}
}

func TestAnnouncementSynchronizer_InitialLoad(t *testing.T) {
	gw := newFakeGateway()
	seedAnnouncements(gw)
	gw.annReactions[12] = []Reaction{{ID: 100, UserID: 2, Emoji: "🎉"}}

	s := NewAnnouncementSynchronizer(gw, 42, false)
	updates := 0
	s.OnUpdate = func() { updates++ }
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(snap))
	}
	// 网关给的顺序原样保留（栏目活跃倒序，公告发布倒序）
	if snap[0].ID != 2 || snap[1].ID != 1 {
		t.Fatalf("unexpected thread order: %#v", snap)
	}
	if len(snap[1].Announcements) != 2 || snap[1].Announcements[0].ID != 12 {
		t.Fatalf("unexpected announcement order: %#v", snap[1].Announcements)
	}
	groups := snap[1].Announcements[0].Reactions
	if len(groups) != 1 || groups[0].Emoji != "🎉" || groups[0].OwnReaction {
		t.Fatalf("unexpected reactions: %#v", groups)
	}
	if updates != 1 {
		t.Fatalf("expected 1 update, got %d", updates)
	}
}

func TestAnnouncementSynchronizer_Post(t *testing.T) {
	gw := newFakeGateway()
	seedAnnouncements(gw)

	// 非管理员：本地拒绝，不打网关
	viewer := NewAnnouncementSynchronizer(gw, 42, false)
	if err := viewer.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer viewer.Close()

	if err := viewer.Post(1, "hello"); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}

	admin := NewAnnouncementSynchronizer(gw, 7, true)
	if err := admin.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer admin.Close()

	// 空白内容同样本地拒绝
	if err := admin.Post(1, "   "); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if len(gw.postedAnns) != 0 {
		t.Fatalf("gateway should not be called, got %v", gw.postedAnns)
	}

	if err := admin.Post(1, "# v1.2"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if len(gw.postedAnns) != 1 || gw.postedAnns[0] != "# v1.2" {
		t.Fatalf("expected posted [# v1.2], got %v", gw.postedAnns)
	}
}

func TestAnnouncementSynchronizer_ReloadOnNotification(t *testing.T) {
	gw := newFakeGateway()
	seedAnnouncements(gw)

	s := NewAnnouncementSynchronizer(gw, 42, false)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	gw.mu.Lock()
	gw.annThreads[0].Announcements = append([]Announcement{
		{ID: 22, Content: "done", CreatedAt: time.Now()},
	}, gw.annThreads[0].Announcements...)
	gw.mu.Unlock()

	gw.notify("announcements", 0)

	snap := s.Snapshot()
	if len(snap[0].Announcements) != 2 || snap[0].Announcements[0].ID != 22 {
		t.Fatalf("expected reloaded announcements, got %#v", snap[0].Announcements)
	}
}

func TestAnnouncementSynchronizer_OptimisticToggle(t *testing.T) {
	gw := newFakeGateway()
	seedAnnouncements(gw)

	s := NewAnnouncementSynchronizer(gw, 42, false)
	updates := 0
	s.OnUpdate = func() { updates++ }
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	// 乐观：本地立即可见，远端确认后 id 可用于后续删除
	s.ToggleReaction(21, "👍")

	snap := s.Snapshot()
	groups := snap[0].Announcements[0].Reactions
	if len(groups) != 1 || !groups[0].OwnReaction {
		t.Fatalf("expected immediate own reaction, got %#v", groups)
	}
	if len(gw.insertedAnnRxn) != 1 {
		t.Fatalf("expected 1 remote insert, got %v", gw.insertedAnnRxn)
	}
	if updates < 2 {
		t.Fatalf("expected update push after toggle, got %d", updates)
	}

	// 再次 toggle：本地立删 + 远端删除确认行
	s.ToggleReaction(21, "👍")
	if got := s.Snapshot()[0].Announcements[0].Reactions; len(got) != 0 {
		t.Fatalf("expected removed, got %#v", got)
	}
	if len(gw.deletedReactions) != 1 {
		t.Fatalf("expected 1 remote delete, got %v", gw.deletedReactions)
	}
}

func TestAnnouncementSynchronizer_OptimisticToggleRollback(t *testing.T) {
	gw := newFakeGateway()
	seedAnnouncements(gw)
	gw.failInsertReaction = errors.New("insert failed")

	s := NewAnnouncementSynchronizer(gw, 42, false)
	var reported []error
	s.OnError = func(err error) { reported = append(reported, err) }
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	s.ToggleReaction(21, "👍")

	// 回滚后快照无残留，错误被上报
	if got := s.Snapshot()[0].Announcements[0].Reactions; len(got) != 0 {
		t.Fatalf("expected rollback, got %#v", got)
	}
	if len(reported) != 1 {
		t.Fatalf("expected 1 reported error, got %v", reported)
	}
}

func TestAnnouncementSynchronizer_CloseReleasesSubscriptions(t *testing.T) {
	gw := newFakeGateway()
	seedAnnouncements(gw)

	s := NewAnnouncementSynchronizer(gw, 42, false)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if gw.activeSubs() != 2 {
		t.Fatalf("expected 2 active subscriptions, got %d", gw.activeSubs())
	}

	s.Close()
	s.Close()
	if gw.activeSubs() != 0 {
		t.Fatalf("expected all subscriptions released, got %d", gw.activeSubs())
	}
}
