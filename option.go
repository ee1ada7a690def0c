package support_chat

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string
	Service     ServiceConfig

	// AdminEmail 客服/管理员邮箱。登录身份的 email 与它相等时视为管理端，
	// 解锁看板与公告发布入口。
	AdminEmail string
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithTablePrefix(prefix string) Option {
	return func(c *Config) {
		c.TablePrefix = prefix
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

func WithAdminEmail(email string) Option {
	return func(c *Config) {
		c.AdminEmail = email
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}
