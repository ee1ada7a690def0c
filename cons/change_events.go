package cons

// 变更通知的表维度 topic（WS 订阅与变更总线共用）
const (
	TableThreads       = "threads"
	TableMessages      = "messages"
	TableReactions     = "reactions"
	TableAnnouncements = "announcements"
)

// WS 下行帧类型
const (
	FrameSnapshot = "snapshot" // 投影全量快照
	FrameError    = "error"    // 操作失败通知
)
