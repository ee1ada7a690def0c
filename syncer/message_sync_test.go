package syncer

import (
	"errors"
	"testing"
	"time"
)

func seedThread(gw *fakeGateway, threadID uint64, msgs ...Message) {
	gw.messages[threadID] = msgs
}

func msgAt(id, threadID, senderID uint64, content string, seen *time.Time, at time.Time) Message {
	return Message{ID: id, ThreadID: threadID, SenderID: senderID, Content: content, SeenAt: seen, CreatedAt: at}
}

func TestMessageSynchronizer_InitialLoad(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now()
	seen := now.Add(-time.Minute)
	// viewer=42, 对方=2
	seedThread(gw, 5,
		msgAt(1, 5, 2, "hi", &seen, now.Add(-2*time.Minute)),
		msgAt(2, 5, 42, "hello", nil, now.Add(-time.Minute)),
		msgAt(3, 5, 2, "anyone?", nil, now),
	)

	s := NewMessageSynchronizer(gw, 5, 42)
	updates := 0
	s.OnUpdate = func() { updates++ }
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(snap))
	}
	// 网关给的升序原样保留
	if snap[0].ID != 1 || snap[1].ID != 2 || snap[2].ID != 3 {
		t.Fatalf("unexpected order: %#v", snap)
	}
	if updates != 1 {
		t.Fatalf("expected 1 update callback, got %d", updates)
	}

	// 阅读副作用：只有对方发的未读消息（id=3）被标记；
	// 自己发的（id=2）和已读的（id=1）不动
	if len(gw.markSeenCalls) != 1 {
		t.Fatalf("expected 1 mark-seen call, got %d", len(gw.markSeenCalls))
	}
	if len(gw.markSeenCalls[0]) != 1 || gw.markSeenCalls[0][0] != 3 {
		t.Fatalf("expected mark-seen [3], got %v", gw.markSeenCalls[0])
	}
}

func TestMessageSynchronizer_NoMarkSeenWhenAllSeen(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now()
	seen := now.Add(-time.Minute)
	seedThread(gw, 5, msgAt(1, 5, 2, "hi", &seen, now))

	s := NewMessageSynchronizer(gw, 5, 42)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	if len(gw.markSeenCalls) != 0 {
		t.Fatalf("expected no mark-seen calls, got %v", gw.markSeenCalls)
	}
}

func TestMessageSynchronizer_Send(t *testing.T) {
	gw := newFakeGateway()
	seedThread(gw, 5)

	s := NewMessageSynchronizer(gw, 5, 42)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	// 空白内容本地拒绝，网关一次都不该被打到
	for _, content := range []string{"", "   ", "\n"} {
		if err := s.Send(content); !errors.Is(err, ErrEmptyContent) {
			t.Fatalf("content %q: expected ErrEmptyContent, got %v", content, err)
		}
	}
	if len(gw.sentContents) != 0 {
		t.Fatalf("gateway should not be called, got %v", gw.sentContents)
	}

	if err := s.Send("hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(gw.sentContents) != 1 || gw.sentContents[0] != "hello" {
		t.Fatalf("expected sent [hello], got %v", gw.sentContents)
	}

	// 没有乐观插入：新消息要等变更通知后的重载才出现
	if len(s.Snapshot()) != 0 {
		t.Fatalf("expected no optimistic insert, got %#v", s.Snapshot())
	}
}

func TestMessageSynchronizer_SendFailureReported(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now()
	seen := now.Add(-time.Minute)
	seedThread(gw, 5, msgAt(1, 5, 2, "hi", &seen, now))

	s := NewMessageSynchronizer(gw, 5, 42)
	var reported []error
	s.OnError = func(err error) { reported = append(reported, err) }
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	gw.failInsertMessage = errors.New("gateway down")
	if err := s.Send("hello"); err == nil {
		t.Fatal("expected send error")
	}
	if len(reported) != 1 {
		t.Fatalf("expected 1 reported error, got %v", reported)
	}
	// 失败不改本地状态
	if len(s.Snapshot()) != 1 {
		t.Fatalf("local state should be unchanged, got %#v", s.Snapshot())
	}
}

func TestMessageSynchronizer_ReloadOnNotification(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now()
	seedThread(gw, 5, msgAt(1, 5, 42, "a", nil, now))

	s := NewMessageSynchronizer(gw, 5, 42)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	// 远端出现新消息 -> 通知 -> 整体重载
	gw.mu.Lock()
	gw.messages[5] = append(gw.messages[5], msgAt(2, 5, 2, "b", nil, now.Add(time.Second)))
	gw.mu.Unlock()
	gw.notify("messages", 5)

	snap := s.Snapshot()
	if len(snap) != 2 || snap[1].ID != 2 {
		t.Fatalf("expected reloaded 2 messages, got %#v", snap)
	}

	// 别的会话的通知不触发本会话重载
	gw.mu.Lock()
	gw.messages[5] = append(gw.messages[5], msgAt(3, 5, 2, "c", nil, now.Add(2*time.Second)))
	gw.mu.Unlock()
	gw.notify("messages", 99)
	if len(s.Snapshot()) != 2 {
		t.Fatalf("other-thread notification must not reload, got %#v", s.Snapshot())
	}

	// 回应变更不过滤会话
	gw.notify("reactions", 0)
	if len(s.Snapshot()) != 3 {
		t.Fatalf("reactions notification should reload, got %#v", s.Snapshot())
	}
}

func TestMessageSynchronizer_StaleReloadDiscarded(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now()

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	call := 0
	gw.fetchMessagesFn = func(threadID uint64) ([]Message, error) {
		call++
		if call == 1 {
			close(firstStarted)
			<-releaseFirst
			// 慢的旧结果
			return []Message{msgAt(1, 5, 42, "old", nil, now)}, nil
		}
		return []Message{
			msgAt(1, 5, 42, "old", nil, now),
			msgAt(2, 5, 42, "new", nil, now.Add(time.Second)),
		}, nil
	}

	s := NewMessageSynchronizer(gw, 5, 42)

	done := make(chan error, 1)
	go func() { done <- s.Reload() }()
	<-firstStarted

	// 第二次重载先完成并生效
	if err := s.Reload(); err != nil {
		t.Fatalf("second Reload: %v", err)
	}
	if len(s.Snapshot()) != 2 {
		t.Fatalf("expected second reload applied, got %#v", s.Snapshot())
	}

	// 放行第一次：结果已过期，必须被丢弃
	close(releaseFirst)
	if err := <-done; err != nil {
		t.Fatalf("first Reload: %v", err)
	}
	if len(s.Snapshot()) != 2 {
		t.Fatalf("stale reload must not overwrite, got %#v", s.Snapshot())
	}
}

func TestMessageSynchronizer_StaleReloadKeepsReactionsPaired(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now()
	seedThread(gw, 5, msgAt(1, 5, 42, "hi", nil, now))

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	call := 0
	gw.fetchMsgReactionsFn = func(messageIDs []uint64) (map[uint64][]Reaction, error) {
		call++
		if call == 1 {
			close(firstStarted)
			<-releaseFirst
			// 慢的旧回应集
			return map[uint64][]Reaction{1: {{ID: 100, UserID: 2, Emoji: "👀"}}}, nil
		}
		return map[uint64][]Reaction{1: {{ID: 101, UserID: 42, Emoji: "👍"}}}, nil
	}

	s := NewMessageSynchronizer(gw, 5, 42)

	done := make(chan error, 1)
	go func() { done <- s.Reload() }()
	<-firstStarted

	// 第二次重载先完成并生效
	if err := s.Reload(); err != nil {
		t.Fatalf("second Reload: %v", err)
	}

	// 放行第一次：它的消息和回应必须整体丢弃，
	// 不能出现新消息配旧回应的混搭
	close(releaseFirst)
	if err := <-done; err != nil {
		t.Fatalf("first Reload: %v", err)
	}

	groups := s.Snapshot()[0].Reactions
	if len(groups) != 1 || groups[0].Emoji != "👍" || !groups[0].OwnReaction {
		t.Fatalf("stale reactions must not overwrite, got %#v", groups)
	}
}

func TestMessageSynchronizer_CloseReleasesSubscriptions(t *testing.T) {
	gw := newFakeGateway()
	seedThread(gw, 5)

	s := NewMessageSynchronizer(gw, 5, 42)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if gw.activeSubs() != 2 {
		t.Fatalf("expected 2 active subscriptions, got %d", gw.activeSubs())
	}

	s.Close()
	if gw.activeSubs() != 0 {
		t.Fatalf("expected all subscriptions released, got %d", gw.activeSubs())
	}

	// Close 幂等
	s.Close()

	// Close 后的通知/重载不再生效
	gw.mu.Lock()
	gw.messages[5] = append(gw.messages[5], msgAt(1, 5, 2, "late", nil, time.Now()))
	gw.mu.Unlock()
	_ = s.Reload()
	if len(s.Snapshot()) != 0 {
		t.Fatalf("closed synchronizer must not apply reloads, got %#v", s.Snapshot())
	}
}

func TestMessageSynchronizer_ReactionsInSnapshot(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now()
	seedThread(gw, 5, msgAt(1, 5, 42, "hi", nil, now))
	gw.msgReactions[1] = []Reaction{
		{ID: 100, UserID: 42, Emoji: "👍"},
		{ID: 101, UserID: 2, Emoji: "👍"},
		{ID: 102, UserID: 2, Emoji: "🎉"},
	}

	s := NewMessageSynchronizer(gw, 5, 42)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	snap := s.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 message, got %d", len(snap))
	}
	groups := snap[0].Reactions
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %#v", groups)
	}
	if groups[0].Emoji != "👍" || groups[0].Count != 2 || !groups[0].OwnReaction {
		t.Fatalf("unexpected 👍 group: %#v", groups[0])
	}
	if groups[1].Emoji != "🎉" || groups[1].Count != 1 || groups[1].OwnReaction {
		t.Fatalf("unexpected 🎉 group: %#v", groups[1])
	}
}

func TestMessageSynchronizer_ToggleReaction_RemoteOnly(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now()
	seedThread(gw, 5, msgAt(1, 5, 42, "hi", nil, now))

	s := NewMessageSynchronizer(gw, 5, 42)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	// 非乐观：toggle 只打远端，本地不立即变
	s.ToggleReaction(1, "👍")
	if len(gw.insertedMsgRxn) != 1 {
		t.Fatalf("expected 1 remote insert, got %v", gw.insertedMsgRxn)
	}
	if len(s.Snapshot()[0].Reactions) != 0 {
		t.Fatalf("non-optimistic toggle must not change local state immediately")
	}

	// 远端通知后经重载收敛
	gw.notify("reactions", 0)
	groups := s.Snapshot()[0].Reactions
	if len(groups) != 1 || groups[0].Emoji != "👍" || !groups[0].OwnReaction {
		t.Fatalf("expected converged 👍 group, got %#v", groups)
	}
}

func TestResolveThread(t *testing.T) {
	gw := newFakeGateway()

	id1, err := ResolveThread(gw, 42)
	if err != nil {
		t.Fatalf("ResolveThread: %v", err)
	}
	// 再次解析拿到同一个会话
	id2, err := ResolveThread(gw, 42)
	if err != nil {
		t.Fatalf("ResolveThread: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected stable thread id, got %d then %d", id1, id2)
	}
}
