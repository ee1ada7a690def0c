package syncer

import "sync"

// Bus 进程内变更总线：按表名（+ 可选 thread 维度过滤）派发“有变化”信号。
// 信号不带行数据，订阅方收到后自行整体重载。
//
// 派发是异步的（每个回调单独 goroutine），避免写路径被订阅方的
// 重载 IO 阻塞，也避免 publish 与订阅方回调之间的锁重入。
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]*busSub
}

type busSub struct {
	bus      *Bus
	table    string
	id       uint64
	threadID uint64 // 0 = 不过滤
	fn       func()

	once sync.Once
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[uint64]*busSub)}
}

// Subscribe 订阅某表的变更。threadID 传 0 表示该表任意行变更都触发。
func (b *Bus) Subscribe(table string, threadID uint64, fn func()) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s := &busSub{bus: b, table: table, id: b.nextID, threadID: threadID, fn: fn}
	if b.subs[table] == nil {
		b.subs[table] = make(map[uint64]*busSub)
	}
	b.subs[table][s.id] = s
	return s
}

// Publish 通知某表发生了变更。threadID 为行所属会话（无会话维度传 0）。
func (b *Bus) Publish(table string, threadID uint64) {
	b.mu.RLock()
	fns := make([]func(), 0, len(b.subs[table]))
	for _, s := range b.subs[table] {
		if s.threadID != 0 && threadID != 0 && s.threadID != threadID {
			continue
		}
		fns = append(fns, s.fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		go fn()
	}
}

// Cancel 退订。幂等，之后不再收到任何通知。
func (s *busSub) Cancel() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		if m := s.bus.subs[s.table]; m != nil {
			delete(m, s.id)
			if len(m) == 0 {
				delete(s.bus.subs, s.table)
			}
		}
		s.bus.mu.Unlock()
	})
}

// SubscriberCount 当前某表的订阅数（泄漏检查用）
func (b *Bus) SubscriberCount(table string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[table])
}
