package syncer

import (
	"sync"
)

// insertedReaction 记录 fake 收到的插入请求
type insertedReaction struct {
	SubjectID uint64
	UserID    uint64
	Emoji     string
}

// fakeSub 同步派发的订阅句柄（测试用，没有 goroutine，顺序确定）
type fakeSub struct {
	gw       *fakeGateway
	table    string
	threadID uint64
	fn       func()
	canceled bool
}

func (s *fakeSub) Cancel() {
	s.gw.mu.Lock()
	s.canceled = true
	s.gw.mu.Unlock()
}

// fakeGateway 可控的假网关。通知同步派发，便于断言。
type fakeGateway struct {
	mu sync.Mutex

	threadByUser map[uint64]uint64
	messages     map[uint64][]Message
	msgReactions map[uint64][]Reaction
	annReactions map[uint64][]Reaction
	annThreads   []AnnouncementThread
	summaries    []ThreadSummary

	markSeenCalls    [][]uint64
	sentContents     []string
	insertedMsgRxn   []insertedReaction
	insertedAnnRxn   []insertedReaction
	deletedReactions []uint64
	postedAnns       []string

	nextReactionID uint64

	failInsertMessage  error
	failInsertReaction error
	failDeleteReaction error

	// fetchMessagesFn / fetchMsgReactionsFn 覆盖对应方法（重载竞态的编排用）
	fetchMessagesFn     func(threadID uint64) ([]Message, error)
	fetchMsgReactionsFn func(messageIDs []uint64) (map[uint64][]Reaction, error)

	subs []*fakeSub
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		threadByUser:   make(map[uint64]uint64),
		messages:       make(map[uint64][]Message),
		msgReactions:   make(map[uint64][]Reaction),
		annReactions:   make(map[uint64][]Reaction),
		nextReactionID: 1000,
	}
}

func (g *fakeGateway) ResolveThread(userID uint64) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.threadByUser[userID]; ok {
		return id, nil
	}
	id := uint64(len(g.threadByUser) + 1)
	g.threadByUser[userID] = id
	return id, nil
}

func (g *fakeGateway) FetchMessages(threadID uint64) ([]Message, error) {
	if g.fetchMessagesFn != nil {
		return g.fetchMessagesFn(threadID)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Message, len(g.messages[threadID]))
	copy(out, g.messages[threadID])
	return out, nil
}

func (g *fakeGateway) MarkSeen(threadID uint64, messageIDs []uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]uint64, len(messageIDs))
	copy(ids, messageIDs)
	g.markSeenCalls = append(g.markSeenCalls, ids)
	return nil
}

func (g *fakeGateway) InsertMessage(threadID, senderID uint64, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failInsertMessage != nil {
		return g.failInsertMessage
	}
	g.sentContents = append(g.sentContents, content)
	return nil
}

func (g *fakeGateway) FetchMessageReactions(messageIDs []uint64) (map[uint64][]Reaction, error) {
	if g.fetchMsgReactionsFn != nil {
		return g.fetchMsgReactionsFn(messageIDs)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[uint64][]Reaction, len(g.msgReactions))
	for k, v := range g.msgReactions {
		out[k] = append([]Reaction(nil), v...)
	}
	return out, nil
}

func (g *fakeGateway) FetchAnnouncementReactions(announcementIDs []uint64) (map[uint64][]Reaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[uint64][]Reaction, len(g.annReactions))
	for k, v := range g.annReactions {
		out[k] = append([]Reaction(nil), v...)
	}
	return out, nil
}

func (g *fakeGateway) InsertMessageReaction(messageID, userID uint64, emoji string) (Reaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failInsertReaction != nil {
		return Reaction{}, g.failInsertReaction
	}
	g.nextReactionID++
	r := Reaction{ID: g.nextReactionID, UserID: userID, Emoji: emoji}
	g.msgReactions[messageID] = append(g.msgReactions[messageID], r)
	g.insertedMsgRxn = append(g.insertedMsgRxn, insertedReaction{SubjectID: messageID, UserID: userID, Emoji: emoji})
	return r, nil
}

func (g *fakeGateway) InsertAnnouncementReaction(announcementID, userID uint64, emoji string) (Reaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failInsertReaction != nil {
		return Reaction{}, g.failInsertReaction
	}
	g.nextReactionID++
	r := Reaction{ID: g.nextReactionID, UserID: userID, Emoji: emoji}
	g.annReactions[announcementID] = append(g.annReactions[announcementID], r)
	g.insertedAnnRxn = append(g.insertedAnnRxn, insertedReaction{SubjectID: announcementID, UserID: userID, Emoji: emoji})
	return r, nil
}

func (g *fakeGateway) DeleteReaction(reactionID uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failDeleteReaction != nil {
		return g.failDeleteReaction
	}
	g.deletedReactions = append(g.deletedReactions, reactionID)
	return nil
}

func (g *fakeGateway) FetchAnnouncementThreads() ([]AnnouncementThread, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]AnnouncementThread, len(g.annThreads))
	copy(out, g.annThreads)
	return out, nil
}

func (g *fakeGateway) InsertAnnouncement(threadID uint64, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.postedAnns = append(g.postedAnns, content)
	return nil
}

func (g *fakeGateway) FetchThreadSummaries() ([]ThreadSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ThreadSummary, len(g.summaries))
	copy(out, g.summaries)
	return out, nil
}

func (g *fakeGateway) Subscribe(table string, threadID uint64, fn func()) Subscription {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := &fakeSub{gw: g, table: table, threadID: threadID, fn: fn}
	g.subs = append(g.subs, s)
	return s
}

// notify 同步触发匹配的订阅回调
func (g *fakeGateway) notify(table string, threadID uint64) {
	g.mu.Lock()
	var fns []func()
	for _, s := range g.subs {
		if s.canceled || s.table != table {
			continue
		}
		if s.threadID != 0 && threadID != 0 && s.threadID != threadID {
			continue
		}
		fns = append(fns, s.fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// activeSubs 未取消的订阅数
func (g *fakeGateway) activeSubs() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, s := range g.subs {
		if !s.canceled {
			n++
		}
	}
	return n
}
