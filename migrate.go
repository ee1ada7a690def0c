package support_chat

import (
	"fmt"
	"log"

	"github.com/cydxin/support-chat-sdk/models"
)

// AutoMigrate 迁移全部业务表
func (e *Engine) AutoMigrate() error {
	db := e.config.DB
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	log.Println("AutoMigrate...")
	return db.AutoMigrate(
		&models.User{},
		&models.Thread{},
		&models.Message{},
		&models.Reaction{},
		&models.AnnouncementThread{},
		&models.Announcement{},
	)
}
