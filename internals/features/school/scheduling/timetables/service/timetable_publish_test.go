// file: internals/features/school/scheduling/timetables/service/timetable_publish_test.go
package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"schoolku_backend/internals/features/school/errs"
	"schoolku_backend/internals/features/school/scheduling/timetables/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func timetableRow(ttID, schoolID uuid.UUID, status string, isCurrent bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"timetable_id", "timetable_school_id", "timetable_name",
		"timetable_status", "timetable_is_current", "timetable_version",
	}).AddRow(ttID, schoolID, "Jadwal Semester Ganjil", status, isCurrent, 1)
}

func emptyEntryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"timetable_entry_id"})
}

// Dua publish bersaing: yang kalah membaca baris saat masih draft, tapi
// guard status di write mengembalikan 0 baris. Hasilnya stale state dan
// TIDAK ada demote yang jalan — timetable current pemenang tidak tersentuh.
func TestPublishLoserGetsStaleState(t *testing.T) {
	db, mock := newMockDB(t)
	svc := New(db)

	schoolID, ttID, by := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "timetables"`).
		WillReturnRows(timetableRow(ttID, schoolID, model.TimetableStatusDraft, false))
	mock.ExpectQuery(`SELECT (.+) FROM "timetable_entries"`).
		WillReturnRows(emptyEntryRows())
	mock.ExpectExec(`UPDATE "timetables" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Publish(context.Background(), schoolID, ttID, by)
	if !errors.Is(err, errs.ErrStaleState) {
		t.Fatalf("err = %v, want ErrStaleState", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("yang kalah tidak boleh demote siapa pun: %v", err)
	}
}

// Publish ulang pada timetable yang sudah published terdeteksi sejak read.
func TestPublishAlreadyPublishedIsStale(t *testing.T) {
	db, mock := newMockDB(t)
	svc := New(db)

	schoolID, ttID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "timetables"`).
		WillReturnRows(timetableRow(ttID, schoolID, model.TimetableStatusPublished, true))

	_, err := svc.Publish(context.Background(), schoolID, ttID, uuid.New())
	if !errors.Is(err, errs.ErrStaleState) {
		t.Fatalf("err = %v, want ErrStaleState", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("tidak boleh ada write: %v", err)
	}
}

// Pemenang publish: set published+current lalu demote current lain milik
// sekolah yang sama, sehingga maksimal satu timetable current per tenant.
func TestPublishDemotesOtherCurrent(t *testing.T) {
	db, mock := newMockDB(t)
	svc := New(db)

	schoolID, ttID, by := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "timetables"`).
		WillReturnRows(timetableRow(ttID, schoolID, model.TimetableStatusDraft, false))
	mock.ExpectQuery(`SELECT (.+) FROM "timetable_entries"`).
		WillReturnRows(emptyEntryRows())
	mock.ExpectExec(`UPDATE "timetables" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// demote: current lain dalam sekolah yang sama dimatikan
	mock.ExpectExec(`UPDATE "timetables" SET`).
		WithArgs(false, sqlmock.AnyArg(), schoolID, ttID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "timetables"`).
		WillReturnRows(timetableRow(ttID, schoolID, model.TimetableStatusPublished, true))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"notification_id"}).AddRow(uuid.New()))

	out, err := svc.Publish(context.Background(), schoolID, ttID, by)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if out.TimetableStatus != model.TimetableStatusPublished || !out.TimetableIsCurrent {
		t.Fatalf("hasil = %q current=%v, want published current", out.TimetableStatus, out.TimetableIsCurrent)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("urutan publish+demote tidak sesuai: %v", err)
	}
}

// Kalau demote gagal, publish di-undo (pasangan kompensasi) dan error
// demote diteruskan ke caller.
func TestPublishUndoneWhenDemoteFails(t *testing.T) {
	db, mock := newMockDB(t)
	svc := New(db)

	schoolID, ttID, by := uuid.New(), uuid.New(), uuid.New()
	demoteErr := fmt.Errorf("connection reset by peer")

	mock.ExpectQuery(`SELECT (.+) FROM "timetables"`).
		WillReturnRows(timetableRow(ttID, schoolID, model.TimetableStatusDraft, false))
	mock.ExpectQuery(`SELECT (.+) FROM "timetable_entries"`).
		WillReturnRows(emptyEntryRows())
	mock.ExpectExec(`UPDATE "timetables" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "timetables" SET`).
		WillReturnError(demoteErr)
	// undo: kembali ke draft, flag current dimatikan
	mock.ExpectExec(`UPDATE "timetables" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Publish(context.Background(), schoolID, ttID, by)
	if !errors.Is(err, demoteErr) {
		t.Fatalf("err = %v, want error demote", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("undo publish tidak jalan: %v", err)
	}
}
