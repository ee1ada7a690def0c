package main

import (
	"log"
	"os"

	support_chat "github.com/cydxin/support-chat-sdk"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// .env 不存在也不报错，直接用环境变量/默认值
	_ = godotenv.Load()

	// 1. 初始化数据库连接
	dsn := getenv("SC_MYSQL_DSN", "root:password@tcp(127.0.0.1:3306)/support_chat?charset=utf8mb4&parseTime=True&loc=Local")
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}

	// 2. 初始化 Redis（token 存储）
	rdb := redis.NewClient(&redis.Options{
		Addr:     getenv("SC_REDIS_ADDR", "127.0.0.1:6379"),
		Password: os.Getenv("SC_REDIS_PASSWORD"),
	})

	// 3. 初始化 Engine（单例模式，全局只需调用一次）
	engine := support_chat.NewEngine(
		support_chat.WithDB(db),
		support_chat.WithRDB(rdb),
		support_chat.WithTablePrefix(getenv("SC_TABLE_PREFIX", "sc_")),
		support_chat.WithAdminEmail(getenv("SC_ADMIN_EMAIL", "support@example.com")),
	)

	// 4. 创建 Gin 路由
	r := gin.Default()

	// 设置 CORS（如果需要）
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 注册 Swagger UI
	support_chat.RegisterSwagger(r, "/swagger/*any")

	// 5. 注册业务路由（含 /ws）
	api := r.Group("/api/v1")
	engine.RegisterRoutes(api)

	addr := getenv("SC_LISTEN_ADDR", ":6789")
	log.Println("listening on", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
