package syncer

import (
	"sync"

	"github.com/cydxin/support-chat-sdk/cons"
)

// DashboardSynchronizer 管理端看板同步器：全量会话概要列表。
// 订阅 threads 与 messages（都不过滤），任一变更整体重载。
type DashboardSynchronizer struct {
	gw Gateway

	mu        sync.Mutex
	summaries []ThreadSummary
	loadSeq   uint64
	applied   uint64
	closed    bool

	subs []Subscription

	OnUpdate func()
	OnError  func(error)
}

func NewDashboardSynchronizer(gw Gateway) *DashboardSynchronizer {
	return &DashboardSynchronizer{gw: gw}
}

func (s *DashboardSynchronizer) reportError(err error) {
	if s.OnError != nil && err != nil {
		s.OnError(err)
	}
}

// Start 首次加载并订阅
func (s *DashboardSynchronizer) Start() error {
	if err := s.Reload(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.subs = append(s.subs,
		s.gw.Subscribe(cons.TableThreads, 0, func() { _ = s.Reload() }),
		s.gw.Subscribe(cons.TableMessages, 0, func() { _ = s.Reload() }),
	)
	s.mu.Unlock()
	return nil
}

// Reload 整体重载，按序号落盘（过期结果丢弃）
func (s *DashboardSynchronizer) Reload() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	list, err := s.gw.FetchThreadSummaries()
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
	s.summaries = list
	s.mu.Unlock()

	if s.OnUpdate != nil {
		s.OnUpdate()
	}
	return nil
}

// Snapshot 当前会话概要列表（活跃倒序，由网关保证）
func (s *DashboardSynchronizer) Snapshot() []ThreadSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ThreadSummary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// Close 释放全部订阅，幂等
func (s *DashboardSynchronizer) Close() {
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
