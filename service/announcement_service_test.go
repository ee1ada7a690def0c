package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cydxin/support-chat-sdk/cons"
)

func TestAnnouncementService_PostAnnouncement_AdminGate(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	as := NewAnnouncementService(&Service{DB: gormDB, TablePrefix: "sc_"})

	// 非管理员与空白内容都在本地被拒，不打数据库
	if _, err := as.PostAnnouncement(1, "hello", false); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if _, err := as.PostAnnouncement(1, "   ", true); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestAnnouncementService_PostAnnouncement_Success(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	pub := &capturePublish{}
	as := NewAnnouncementService(&Service{DB: gormDB, TablePrefix: "sc_", Publish: pub.fn})

	mock.ExpectQuery("SELECT \\* FROM `sc_announcement_thread` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(uint64(1), "Release Notes"))
	mock.ExpectExec("INSERT INTO `sc_announcement`").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("UPDATE `sc_announcement_thread` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	a, err := as.PostAnnouncement(1, "# v1.0 发布", true)
	if err != nil {
		t.Fatalf("PostAnnouncement: %v", err)
	}
	if a.ID != 21 || a.UID == "" {
		t.Fatalf("expected persisted announcement with uid, got %#v", a)
	}
	if pub.count(cons.TableAnnouncements) != 1 {
		t.Fatalf("expected announcements publish, got %#v", pub.events)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestAnnouncementService_PostAnnouncement_ThreadMustExist(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	as := NewAnnouncementService(&Service{DB: gormDB, TablePrefix: "sc_"})

	mock.ExpectQuery("SELECT \\* FROM `sc_announcement_thread` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := as.PostAnnouncement(404, "hello", true); err == nil {
		t.Fatal("expected error for missing thread")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestAnnouncementService_ListThreads_TwoLevel(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	as := NewAnnouncementService(&Service{DB: gormDB, TablePrefix: "sc_"})

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `sc_announcement_thread`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "updated_at"}).
			AddRow(uint64(2), "Maintenance", now).
			AddRow(uint64(1), "Release Notes", now.Add(-time.Hour)))
	mock.ExpectQuery("SELECT \\* FROM `sc_announcement` WHERE thread_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "thread_id", "content", "created_at"}).
			AddRow(uint64(5), uint64(2), "b", now).
			AddRow(uint64(4), uint64(2), "a", now.Add(-time.Minute)))
	mock.ExpectQuery("SELECT \\* FROM `sc_announcement` WHERE thread_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "thread_id", "content", "created_at"}))

	list, err := as.ListThreads()
	if err != nil {
		t.Fatalf("ListThreads: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(list))
	}
	if list[0].ID != 2 || list[1].ID != 1 {
		t.Fatalf("expected gateway order preserved, got %#v", list)
	}
	if len(list[0].Announcements) != 2 || list[0].Announcements[0].ID != 5 {
		t.Fatalf("expected announcements in query order, got %#v", list[0].Announcements)
	}
	if len(list[1].Announcements) != 0 {
		t.Fatalf("expected empty announcements, got %#v", list[1].Announcements)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
