// file: internals/features/school/marks/service/moderation_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"schoolku_backend/internals/features/school/errs"
	"schoolku_backend/internals/features/school/marks/dto"
	"schoolku_backend/internals/features/school/marks/model"
)

// newMockDB: gorm di atas sqlmock, supaya urutan statement workflow
// (guarded update + kompensasi) bisa diuji tanpa Postgres beneran.
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

func requestRow(reqID, schoolID, paperID, submittedBy uuid.UUID, status string, count int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"moderation_request_id",
		"moderation_request_school_id",
		"moderation_request_exam_paper_id",
		"moderation_request_submitted_by",
		"moderation_request_status",
		"moderation_request_marks_count",
	}).AddRow(reqID, schoolID, paperID, submittedBy, status, count)
}

func TestMarkOutcomeFor(t *testing.T) {
	if got := MarkOutcomeFor(model.ModerationStatusApproved); got != model.MarkStatusModerated {
		t.Fatalf("approved → %q, want moderated", got)
	}
	if got := MarkOutcomeFor(model.ModerationStatusRejected); got != model.MarkStatusDraft {
		t.Fatalf("rejected → %q, want draft (bukan submitted)", got)
	}
}

func TestRejectRequiresComments(t *testing.T) {
	svc := NewMarksService(nil)
	_, err := svc.Reject(context.Background(), uuid.New(), uuid.New(), uuid.New(),
		dto.RejectModerationRequest{Comments: ""})
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("reject tanpa komentar = %v, want *ValidationError", err)
	}
}

// Reject mengembalikan SEMUA nilai submitted persis ke draft, lalu menutup
// request-nya. Arg pertama update nilai di-pin supaya status tujuan tidak
// diam-diam berubah.
func TestRejectReturnsMarksToDraft(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMarksService(db)

	schoolID, paperID := uuid.New(), uuid.New()
	reqID, moderatorID, submitterID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "moderation_requests"`).
		WillReturnRows(requestRow(reqID, schoolID, paperID, submitterID, model.ModerationStatusInReview, 3))
	mock.ExpectExec(`UPDATE "student_marks" SET`).
		WithArgs(model.MarkStatusDraft, sqlmock.AnyArg(), schoolID, paperID, model.MarkStatusSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE "moderation_requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "moderation_requests"`).
		WillReturnRows(requestRow(reqID, schoolID, paperID, submitterID, model.ModerationStatusRejected, 3))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"notification_id"}).AddRow(uuid.New()))

	out, err := svc.Reject(context.Background(), schoolID, reqID, moderatorID,
		dto.RejectModerationRequest{Comments: "cakupan nilai kelas XI belum lengkap"})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if out.ModerationRequestStatus != model.ModerationStatusRejected {
		t.Fatalf("status request = %q, want rejected", out.ModerationRequestStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("urutan statement tidak sesuai: %v", err)
	}
}

// Approve mengunci semua nilai submitted persis jadi moderated.
func TestApproveMovesMarksToModerated(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMarksService(db)

	schoolID, paperID := uuid.New(), uuid.New()
	reqID, moderatorID, submitterID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "moderation_requests"`).
		WillReturnRows(requestRow(reqID, schoolID, paperID, submitterID, model.ModerationStatusInReview, 2))
	mock.ExpectExec(`UPDATE "student_marks" SET`).
		WithArgs(model.MarkStatusModerated, sqlmock.AnyArg(), schoolID, paperID, model.MarkStatusSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "moderation_requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "moderation_requests"`).
		WillReturnRows(requestRow(reqID, schoolID, paperID, submitterID, model.ModerationStatusApproved, 2))

	out, err := svc.Approve(context.Background(), schoolID, reqID, moderatorID, dto.ApproveModerationRequest{})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if out.ModerationRequestStatus != model.ModerationStatusApproved {
		t.Fatalf("status request = %q, want approved", out.ModerationRequestStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("urutan statement tidak sesuai: %v", err)
	}
}

// Kalau request keburu ditutup reviewer lain (guard 0 baris), nilai yang
// sudah digeser harus dikompensasi balik ke submitted dan caller dapat
// stale state — tidak boleh ada outcome setengah jadi.
func TestReviewCompensatesWhenRequestStale(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMarksService(db)

	schoolID, paperID := uuid.New(), uuid.New()
	reqID, moderatorID, submitterID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "moderation_requests"`).
		WillReturnRows(requestRow(reqID, schoolID, paperID, submitterID, model.ModerationStatusInReview, 2))
	mock.ExpectExec(`UPDATE "student_marks" SET`).
		WithArgs(model.MarkStatusDraft, sqlmock.AnyArg(), schoolID, paperID, model.MarkStatusSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "moderation_requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// kompensasi: draft → submitted lagi
	mock.ExpectExec(`UPDATE "student_marks" SET`).
		WithArgs(model.MarkStatusSubmitted, sqlmock.AnyArg(), schoolID, paperID, model.MarkStatusDraft).
		WillReturnResult(sqlmock.NewResult(0, 2))

	_, err := svc.Reject(context.Background(), schoolID, reqID, moderatorID,
		dto.RejectModerationRequest{Comments: "sudah diputus reviewer lain"})
	if !errors.Is(err, errs.ErrStaleState) {
		t.Fatalf("err = %v, want ErrStaleState", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("kompensasi tidak jalan: %v", err)
	}
}

// Request yang sudah terminal tidak bisa direview ulang, dan tidak ada
// satu pun write yang boleh jalan.
func TestReviewTerminalRequestImmutable(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMarksService(db)

	schoolID, paperID := uuid.New(), uuid.New()
	reqID, submitterID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "moderation_requests"`).
		WillReturnRows(requestRow(reqID, schoolID, paperID, submitterID, model.ModerationStatusApproved, 2))

	_, err := svc.Approve(context.Background(), schoolID, reqID, uuid.New(), dto.ApproveModerationRequest{})
	if !errors.Is(err, errs.ErrImmutableState) {
		t.Fatalf("err = %v, want ErrImmutableState", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("tidak boleh ada write: %v", err)
	}
}

// Round-trip penuh: submit mengunci draft → submitted, reject mengembalikan
// SEMUA baris persis ke draft (bukan submitted) dan menutup request.
func TestSubmitThenRejectRoundTrip(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMarksService(db)

	schoolID, paperID := uuid.New(), uuid.New()
	reqID, teacherID, moderatorID := uuid.New(), uuid.New(), uuid.New()

	// SubmitForModeration: validasi dulu (paper + enrolment + nilai), cek
	// request aktif, kunci nilai, lalu buka request.
	mock.ExpectQuery(`SELECT (.+) FROM "exam_papers"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"exam_paper_id", "exam_paper_school_id", "exam_paper_class_id",
			"exam_paper_max_marks", "exam_paper_passing_marks",
		}).AddRow(paperID, schoolID, uuid.New(), 100, 40))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "class_section_students"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT (.+) FROM "student_marks"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"student_mark_id", "student_mark_student_id", "student_mark_marks_obtained",
			"student_mark_max_marks", "student_mark_is_absent", "student_mark_status",
		}).
			AddRow(uuid.New(), uuid.New(), 80.0, 100, false, model.MarkStatusDraft).
			AddRow(uuid.New(), uuid.New(), 55.0, 100, false, model.MarkStatusDraft))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "moderation_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "student_marks" SET`).
		WithArgs(model.MarkStatusSubmitted, sqlmock.AnyArg(), schoolID, paperID, model.MarkStatusDraft).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO "moderation_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"moderation_request_id"}).AddRow(reqID))

	req, err := svc.SubmitForModeration(context.Background(), schoolID, paperID, teacherID)
	if err != nil {
		t.Fatalf("SubmitForModeration: %v", err)
	}
	if req.ModerationRequestMarksCount != 2 {
		t.Fatalf("snapshot marks_count = %d, want 2", req.ModerationRequestMarksCount)
	}

	// Reject: semua baris submitted kembali ke draft.
	mock.ExpectQuery(`SELECT (.+) FROM "moderation_requests"`).
		WillReturnRows(requestRow(reqID, schoolID, paperID, teacherID, model.ModerationStatusPending, 2))
	mock.ExpectExec(`UPDATE "student_marks" SET`).
		WithArgs(model.MarkStatusDraft, sqlmock.AnyArg(), schoolID, paperID, model.MarkStatusSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "moderation_requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "moderation_requests"`).
		WillReturnRows(requestRow(reqID, schoolID, paperID, teacherID, model.ModerationStatusRejected, 2))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"notification_id"}).AddRow(uuid.New()))

	out, err := svc.Reject(context.Background(), schoolID, reqID, moderatorID,
		dto.RejectModerationRequest{Comments: "dua nilai belum cocok dengan lembar jawaban"})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if out.ModerationRequestStatus != model.ModerationStatusRejected {
		t.Fatalf("status request = %q, want rejected", out.ModerationRequestStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("round-trip tidak sesuai: %v", err)
	}
}
