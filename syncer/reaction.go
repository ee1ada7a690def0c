package syncer

import (
	"sync"

	"github.com/google/uuid"
)

// reactionEntry 投影中的一条回应。
// 两种形态：
// - Confirmed：远端已确认，ID 有效；
// - Pending：乐观插入，还没拿到远端行，placeholder 为本地生成的临时标识。
// 确认后 Pending 被替换为 Confirmed；失败则整条移除（回滚）。
type reactionEntry struct {
	ID          uint64
	placeholder string // pending 时非空
	UserID      uint64
	Emoji       string
	pending     bool
}

// ReactionReconciler 维护“主体 -> 回应集合”的本地映射，处理 toggle。
//
// optimistic=true（公告回应）：toggle 先同步改本地，再打远端；
// 成功用权威行替换占位，失败回滚并上报错误。
// optimistic=false（消息回应）：toggle 只打远端，本地状态等
// 变更通知触发的整体重载来更新。两种策略最终展示状态一致，差别只在延迟。
type ReactionReconciler struct {
	mu       sync.Mutex
	subjects map[uint64][]reactionEntry

	optimistic bool
	insert     func(subjectID, userID uint64, emoji string) (Reaction, error)
	remove     func(reactionID uint64) error
	onError    func(error)
}

func NewReactionReconciler(
	optimistic bool,
	insert func(subjectID, userID uint64, emoji string) (Reaction, error),
	remove func(reactionID uint64) error,
	onError func(error),
) *ReactionReconciler {
	return &ReactionReconciler{
		subjects:   make(map[uint64][]reactionEntry),
		optimistic: optimistic,
		insert:     insert,
		remove:     remove,
		onError:    onError,
	}
}

func (r *ReactionReconciler) report(err error) {
	if r.onError != nil && err != nil {
		r.onError(err)
	}
}

// Replace 用远端权威数据整体替换本地映射（重载路径）。
// 未确认的 pending 项一并丢弃：重载本身就是权威状态。
func (r *ReactionReconciler) Replace(data map[uint64][]Reaction) {
	next := make(map[uint64][]reactionEntry, len(data))
	for sid, list := range data {
		entries := make([]reactionEntry, 0, len(list))
		for _, x := range list {
			entries = append(entries, reactionEntry{ID: x.ID, UserID: x.UserID, Emoji: x.Emoji})
		}
		next[sid] = entries
	}
	r.mu.Lock()
	r.subjects = next
	r.mu.Unlock()
}

// Toggle 切换 (subjectID, userID, emoji) 三元组：已存在则删除，不存在则插入。
// 返回是否对本地状态做了同步修改（仅乐观模式会返回 true）。
func (r *ReactionReconciler) Toggle(subjectID, userID uint64, emoji string) bool {
	r.mu.Lock()
	var existing *reactionEntry
	for i := range r.subjects[subjectID] {
		e := &r.subjects[subjectID][i]
		if e.UserID == userID && e.Emoji == emoji {
			existing = e
			break
		}
	}

	if existing != nil && existing.pending {
		// 上一次乐观插入还在途，先不叠加操作
		r.mu.Unlock()
		return false
	}

	if existing != nil {
		id := existing.ID
		if r.optimistic {
			r.removeEntryLocked(subjectID, userID, emoji)
			r.mu.Unlock()
			if err := r.remove(id); err != nil {
				// 回滚：把刚移除的行放回去
				r.mu.Lock()
				r.subjects[subjectID] = append(r.subjects[subjectID], reactionEntry{ID: id, UserID: userID, Emoji: emoji})
				r.mu.Unlock()
				r.report(err)
			}
			return true
		}
		r.mu.Unlock()
		if err := r.remove(id); err != nil {
			r.report(err)
		}
		return false
	}

	// 不存在：插入
	if r.optimistic {
		ph := uuid.New().String()
		r.subjects[subjectID] = append(r.subjects[subjectID], reactionEntry{
			placeholder: ph, UserID: userID, Emoji: emoji, pending: true,
		})
		r.mu.Unlock()

		row, err := r.insert(subjectID, userID, emoji)
		r.mu.Lock()
		if err != nil {
			// 回滚乐观插入
			r.removePlaceholderLocked(subjectID, ph)
			r.mu.Unlock()
			r.report(err)
			return true
		}
		// 用权威行替换占位
		for i := range r.subjects[subjectID] {
			e := &r.subjects[subjectID][i]
			if e.pending && e.placeholder == ph {
				e.ID = row.ID
				e.pending = false
				e.placeholder = ""
				break
			}
		}
		r.mu.Unlock()
		return true
	}

	r.mu.Unlock()
	if _, err := r.insert(subjectID, userID, emoji); err != nil {
		r.report(err)
	}
	return false
}

func (r *ReactionReconciler) removeEntryLocked(subjectID, userID uint64, emoji string) {
	list := r.subjects[subjectID]
	for i := range list {
		if list[i].UserID == userID && list[i].Emoji == emoji {
			r.subjects[subjectID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (r *ReactionReconciler) removePlaceholderLocked(subjectID uint64, ph string) {
	list := r.subjects[subjectID]
	for i := range list {
		if list[i].pending && list[i].placeholder == ph {
			r.subjects[subjectID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Groups 按 emoji 聚合某主体的回应（emoji 首次出现顺序稳定），标记查看者是否参与。
func (r *ReactionReconciler) Groups(subjectID, viewerID uint64) []ReactionGroup {
	r.mu.Lock()
	defer r.mu.Unlock()

	order := make([]string, 0)
	byEmoji := make(map[string]*ReactionGroup)
	for _, e := range r.subjects[subjectID] {
		g, ok := byEmoji[e.Emoji]
		if !ok {
			g = &ReactionGroup{Emoji: e.Emoji}
			byEmoji[e.Emoji] = g
			order = append(order, e.Emoji)
		}
		g.Count++
		if e.UserID == viewerID {
			g.OwnReaction = true
		}
	}

	out := make([]ReactionGroup, 0, len(order))
	for _, e := range order {
		out = append(out, *byEmoji[e])
	}
	return out
}
