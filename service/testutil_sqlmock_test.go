package service

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var (
	// errMySQLDup MySQL 唯一键冲突的原始文案（isDuplicateKey 的兜底分支）
	errMySQLDup = errors.New("Error 1062 (23000): Duplicate entry '42' for key 'sc_thread.idx_user_id'")
	errBoom     = errors.New("boom")
)

// newMockDB 用 go-sqlmock 创建一个可被 GORM 使用的 *gorm.DB。
// 说明：我们用 mysql dialector 只是为了让 GORM 生成的 SQL/占位符风格稳定（? 占位符），
// 实际不会连接真实 MySQL。
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	// SkipDefaultTransaction: 避免 GORM 默认在每次写操作开启事务，简化 sqlmock 断言
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqldb, SkipInitializeWithVersion: true}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		_ = sqldb.Close()
		t.Fatalf("gorm.Open: %v", err)
	}

	return db, mock, sqldb
}

// mockUserRow 一行最小可扫描的 user 数据
func mockUserRow(id uint64, email string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email"}).AddRow(id, email)
}

// capturePublish 收集 service 发出的变更通知
type capturePublish struct {
	events []publishedEvent
}

type publishedEvent struct {
	Table    string
	ThreadID uint64
}

func (c *capturePublish) fn(table string, threadID uint64) {
	c.events = append(c.events, publishedEvent{Table: table, ThreadID: threadID})
}

func (c *capturePublish) count(table string) int {
	n := 0
	for _, e := range c.events {
		if e.Table == table {
			n++
		}
	}
	return n
}
