package support_chat

import (
	"log"
	"sync"

	"github.com/cydxin/support-chat-sdk/service"
	"github.com/cydxin/support-chat-sdk/syncer"
)

type Engine struct {
	config *Config

	UserService         *service.UserService
	ThreadService       *service.ThreadService
	MessageService      *service.MessageService
	ReactionService     *service.ReactionService
	AnnouncementService *service.AnnouncementService
	AuthService         *service.AuthService // 鉴权服务

	// Bus 表级变更总线：service 写库成功后发布，同步器订阅后整体重载
	Bus      *syncer.Bus
	WsServer *WsServer
}

var (
	Instance *Engine
	once     sync.Once
)

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) *Engine {
	once.Do(func() {
		c := &Config{
			TablePrefix: "sc_", // Default
		}
		for _, opt := range opts {
			opt(c)
		}

		Instance = &Engine{config: c}
		Instance.Bus = syncer.NewBus()

		db := c.DB
		if db != nil && c.Service.Debug {
			db = db.Debug() // SQL 全量打印
		}

		// 初始化基础 Service，注入变更发布回调
		baseService := &service.Service{
			DB:          db,
			RDB:         c.RDB,
			TablePrefix: c.TablePrefix,
			AdminEmail:  c.AdminEmail,
			Publish:     Instance.Bus.Publish,
		}

		// 初始化各个 Service
		Instance.UserService = service.NewUserService(baseService)
		Instance.ThreadService = service.NewThreadService(baseService)
		Instance.MessageService = service.NewMessageService(baseService)
		Instance.ReactionService = service.NewReactionService(baseService)
		Instance.AnnouncementService = service.NewAnnouncementService(baseService)
		Instance.AuthService = service.NewAuthService(baseService)

		// 初始化 WS（每个连接按 watch 请求挂载同步器）
		Instance.WsServer = NewWsServer(Instance)
		go Instance.WsServer.Run()

		// 迁移表
		if err := Instance.AutoMigrate(); err != nil {
			log.Printf("AutoMigrate failed: %v", err)
		}
	})

	return Instance
}

// Gateway 返回同步核心使用的远端数据网关（service 层 + 变更总线的适配）。
// 调用方可以用它在进程内直接挂同步器，不必走 websocket。
func (e *Engine) Gateway() syncer.Gateway {
	return &dbGateway{e: e}
}

func (e *Engine) Config() *Config {
	return e.config
}
