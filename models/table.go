package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	prefix = "sc_"
)

// User 用户表
// 说明：这里只承载客服场景需要的最小身份信息（email 即登录账号，
// 也是管理员判定的依据：email == 配置的 AdminEmail）。
type User struct {
	ID          uint64 `gorm:"primarykey"`
	UID         string `gorm:"size:36;uniqueIndex;not null"`  // 对外用户 ID
	Email       string `gorm:"size:100;uniqueIndex;not null"` // 邮箱（登录账号）
	Password    string `gorm:"size:255;not null"`             // 密码 bcrypt
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	// 关联关系
	Threads  []Thread  `gorm:"foreignKey:UserID"`
	Messages []Message `gorm:"foreignKey:SenderID"`
}

func (User) TableName() string {
	return prefix + "user"
}

// BeforeCreate UID 为空时自动生成 UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UID == "" {
		u.UID = uuid.New().String()
	}
	return nil
}

// Thread 1对1客服会话表
// 约束：每个非管理员用户至多一条（user_id 唯一索引），管理员不拥有 thread。
type Thread struct {
	ID            uint64  `gorm:"primarykey"`
	UID           string  `gorm:"size:36;uniqueIndex;not null"` // 对外会话 ID
	UserID        uint64  `gorm:"uniqueIndex;not null"`         // 归属用户 ID
	LastMessageID *uint64 `gorm:"index"`                        // 最后一条消息 ID
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// 关联关系
	User     User      `gorm:"foreignKey:UserID"`
	Messages []Message `gorm:"foreignKey:ThreadID;references:ID"`
}

func (Thread) TableName() string {
	return prefix + "thread"
}

func (t *Thread) BeforeCreate(tx *gorm.DB) error {
	if t.UID == "" {
		t.UID = uuid.New().String()
	}
	return nil
}

// Message 消息表
// seen_at 单调：一旦写入不再清空；content 创建后不可变。
type Message struct {
	ID        uint64         `gorm:"primarykey"`
	UID       string         `gorm:"size:36;uniqueIndex;not null"` // 对外消息 ID
	ThreadID  uint64         `gorm:"index;not null"`               // 会话 ID
	SenderID  uint64         `gorm:"index;not null"`               // 发送者 ID
	Content   string         `gorm:"type:text;not null"`           // 消息内容
	Extra     datatypes.JSON `gorm:"column:extra;type:json"`       // 客户端附加信息（可选）
	SeenAt    *time.Time     `gorm:"index"`                        // 对方首次读到的时间
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联关系
	Thread Thread `gorm:"foreignKey:ThreadID;references:ID"`
	Sender User   `gorm:"foreignKey:SenderID"`
}

func (Message) TableName() string {
	return prefix + "message"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.UID == "" {
		m.UID = uuid.New().String()
	}
	return nil
}

// Reaction 表情回应表
// 主体二选一：message_id 或 announcement_id。
// 唯一约束落在 (主体, user_id, emoji) 三元组上，toggle 依赖该约束成立。
type Reaction struct {
	ID             uint64  `gorm:"primarykey"`
	MessageID      *uint64 `gorm:"index:idx_msg_user_emoji,unique"` // 消息 ID（消息回应）
	AnnouncementID *uint64 `gorm:"index:idx_ann_user_emoji,unique"` // 公告 ID（公告回应）
	UserID         uint64  `gorm:"index:idx_msg_user_emoji,unique;index:idx_ann_user_emoji,unique;not null"`
	Emoji          string  `gorm:"size:32;index:idx_msg_user_emoji,unique;index:idx_ann_user_emoji,unique;not null"`
	CreatedAt      time.Time

	// 关联关系
	Message      *Message      `gorm:"foreignKey:MessageID"`
	Announcement *Announcement `gorm:"foreignKey:AnnouncementID"`
	User         User          `gorm:"foreignKey:UserID"`
}

func (Reaction) TableName() string {
	return prefix + "reaction"
}

// AnnouncementThread 公告栏目表
// 由运营后台预置，本 SDK 只读不建。
type AnnouncementThread struct {
	ID        uint64 `gorm:"primarykey"`
	Title     string `gorm:"size:200;not null"` // 栏目标题
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联关系
	Announcements []Announcement `gorm:"foreignKey:ThreadID;references:ID"`
}

func (AnnouncementThread) TableName() string {
	return prefix + "announcement_thread"
}

// Announcement 公告表（markdown 正文，发布后不可编辑）
type Announcement struct {
	ID        uint64 `gorm:"primarykey"`
	UID       string `gorm:"size:36;uniqueIndex;not null"` // 对外公告 ID
	ThreadID  uint64 `gorm:"index;not null"`               // 栏目 ID
	Content   string `gorm:"type:text;not null"`           // markdown 内容
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联关系
	Thread AnnouncementThread `gorm:"foreignKey:ThreadID;references:ID"`
}

func (Announcement) TableName() string {
	return prefix + "announcement"
}

func (a *Announcement) BeforeCreate(tx *gorm.DB) error {
	if a.UID == "" {
		a.UID = uuid.New().String()
	}
	return nil
}
