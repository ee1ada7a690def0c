package service

import (
	"strings"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Service 基础服务，包含数据库和配置
type Service struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string

	// AdminEmail 管理员邮箱。身份 == 管理员的唯一判定标准。
	AdminEmail string

	// Publish 表变更通知回调（写操作成功后调用）。
	// 通过函数注入的方式避免 service 层依赖变更总线/WS 层。
	// table 取 cons.Table*；threadID 为行所属会话（无会话维度时传 0）。
	Publish func(table string, threadID uint64)
}

// Table 获取带前缀的表名
func (s *Service) Table(name string) *gorm.DB {
	return s.DB.Table(name)
}

// publish 空安全的变更通知
func (s *Service) publish(table string, threadID uint64) {
	if s.Publish != nil {
		s.Publish(table, threadID)
	}
}

// IsAdminEmail 管理员判定：email 与配置一致。
// 注册/登录时邮箱统一小写入库，这里按大小写不敏感比较，
// 配置里写了大写也能匹配上。
func (s *Service) IsAdminEmail(email string) bool {
	return s.AdminEmail != "" && strings.EqualFold(email, s.AdminEmail)
}
