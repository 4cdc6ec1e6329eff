// file: internals/features/school/marks/service/marks_service_test.go
package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"schoolku_backend/internals/features/school/errs"
	examModel "schoolku_backend/internals/features/school/exams/model"
	"schoolku_backend/internals/features/school/marks/dto"
	"schoolku_backend/internals/features/school/marks/model"
)

func f(v float64) *float64 { return &v }

func mark(student uuid.UUID, obtained float64, absent bool) model.StudentMarkModel {
	return model.StudentMarkModel{
		StudentMarkID:            uuid.New(),
		StudentMarkStudentID:     student,
		StudentMarkMarksObtained: obtained,
		StudentMarkMaxMarks:      100,
		StudentMarkIsAbsent:      absent,
		StudentMarkStatus:        model.MarkStatusDraft,
	}
}

func TestNormalizeMark(t *testing.T) {
	cases := map[string]struct {
		obtained *float64
		absent   bool
		want     float64
	}{
		"nilai biasa":            {f(85), false, 85},
		"absen memaksa nol":      {f(85), true, 0},
		"absen tanpa nilai":      {nil, true, 0},
		"nil tanpa absen = nol":  {nil, false, 0},
		"nol eksplisit tetap":    {f(0), false, 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := NormalizeMark(tc.obtained, tc.absent); got != tc.want {
				t.Fatalf("NormalizeMark = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEnsureMarkWritable(t *testing.T) {
	cases := map[string]struct {
		status  string
		wantErr error
	}{
		"draft bisa ditulis": {model.MarkStatusDraft, nil},
		"submitted terkunci": {model.MarkStatusSubmitted, errs.ErrImmutableState},
		"moderated terkunci": {model.MarkStatusModerated, errs.ErrImmutableState},
		"published final":    {model.MarkStatusPublished, errs.ErrAlreadyPublished},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := EnsureMarkWritable(tc.status)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("EnsureMarkWritable(%q) = %v, want %v", tc.status, err, tc.wantErr)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange(100, 100); err != nil {
		t.Fatalf("nilai sama dengan max harus valid: %v", err)
	}
	if err := ValidateRange(100.5, 100); err == nil {
		t.Fatal("nilai di atas max harus ditolak")
	}
	var ve *errs.ValidationError
	if err := ValidateRange(-1, 100); !errors.As(err, &ve) {
		t.Fatalf("nilai negatif harus *ValidationError, dapat %v", err)
	}
}

func TestValidateRowsCoverage(t *testing.T) {
	// 30 nilai masuk dari 32 siswa terdaftar: harus ditolak dengan
	// laporan yang menyebut kedua angka
	marks := make([]model.StudentMarkModel, 0, 30)
	for i := 0; i < 30; i++ {
		marks = append(marks, mark(uuid.New(), 70, false))
	}

	res := ValidateRows(marks, 32, 100)
	if res.Valid {
		t.Fatal("cakupan 30/32 harus invalid")
	}
	if res.EnteredCount != 30 || res.EnrolledCount != 32 {
		t.Fatalf("count = %d/%d, want 30/32", res.EnteredCount, res.EnrolledCount)
	}
	if len(res.Problems) != 1 {
		t.Fatalf("problems = %d, want 1: %v", len(res.Problems), res.Problems)
	}
	if !strings.Contains(res.Problems[0], "30 dari 32") {
		t.Fatalf("laporan harus menyebut 30 dari 32: %q", res.Problems[0])
	}
}

func TestValidateRows(t *testing.T) {
	s1, s2 := uuid.New(), uuid.New()

	cases := map[string]struct {
		marks        []model.StudentMarkModel
		enrolled     int
		wantValid    bool
		wantProblems int
	}{
		"lengkap dan dalam range": {
			marks:     []model.StudentMarkModel{mark(s1, 70, false), mark(s2, 40, false)},
			enrolled:  2,
			wantValid: true,
		},
		"absen tidak kena cek range": {
			marks:     []model.StudentMarkModel{mark(s1, 0, true), mark(s2, 100, false)},
			enrolled:  2,
			wantValid: true,
		},
		"nilai di luar range": {
			marks:        []model.StudentMarkModel{mark(s1, 120, false), mark(s2, 70, false)},
			enrolled:     2,
			wantValid:    false,
			wantProblems: 1,
		},
		"kurang cakupan dan di luar range": {
			marks:        []model.StudentMarkModel{mark(s1, 120, false)},
			enrolled:     2,
			wantValid:    false,
			wantProblems: 2,
		},
		"kosong dengan enrolment nol": {
			marks:     nil,
			enrolled:  0,
			wantValid: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := ValidateRows(tc.marks, tc.enrolled, 100)
			if res.Valid != tc.wantValid {
				t.Fatalf("valid = %v, want %v (problems: %v)", res.Valid, tc.wantValid, res.Problems)
			}
			if !tc.wantValid && len(res.Problems) != tc.wantProblems {
				t.Fatalf("problems = %d, want %d: %v", len(res.Problems), tc.wantProblems, res.Problems)
			}
		})
	}
}

func TestComputeStatistics(t *testing.T) {
	paperID := uuid.New()
	marks := []model.StudentMarkModel{
		mark(uuid.New(), 90, false),
		mark(uuid.New(), 35, false),
		mark(uuid.New(), 60, false),
		mark(uuid.New(), 0, true), // absen: di luar agregat
	}

	stats := ComputeStatistics(paperID, marks, 40)

	if stats.TotalStudents != 4 || stats.Appeared != 3 || stats.Absent != 1 {
		t.Fatalf("total/appeared/absent = %d/%d/%d, want 4/3/1",
			stats.TotalStudents, stats.Appeared, stats.Absent)
	}
	if stats.Passed != 2 || stats.Failed != 1 {
		t.Fatalf("passed/failed = %d/%d, want 2/1", stats.Passed, stats.Failed)
	}
	if stats.HighestMarks != 90 || stats.LowestMarks != 35 {
		t.Fatalf("high/low = %v/%v, want 90/35", stats.HighestMarks, stats.LowestMarks)
	}
	if stats.AverageMarks != 61.67 {
		t.Fatalf("avg = %v, want 61.67", stats.AverageMarks)
	}
	if stats.PassPercentage != 66.67 {
		t.Fatalf("pass pct = %v, want 66.67", stats.PassPercentage)
	}
}

func TestComputeStatisticsAllAbsent(t *testing.T) {
	stats := ComputeStatistics(uuid.New(), []model.StudentMarkModel{
		mark(uuid.New(), 0, true),
		mark(uuid.New(), 0, true),
	}, 40)

	if stats.Appeared != 0 || stats.Absent != 2 {
		t.Fatalf("appeared/absent = %d/%d, want 0/2", stats.Appeared, stats.Absent)
	}
	if stats.AverageMarks != 0 || stats.PassPercentage != 0 {
		t.Fatalf("avg/pct harus nol tanpa peserta: %v/%v", stats.AverageMarks, stats.PassPercentage)
	}
	if stats.HighestMarks != 0 || stats.LowestMarks != 0 {
		t.Fatalf("high/low harus nol tanpa peserta: %v/%v", stats.HighestMarks, stats.LowestMarks)
	}
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(uuid.New(), nil, 40)
	if stats.TotalStudents != 0 || stats.PassPercentage != 0 {
		t.Fatalf("statistik kosong tidak nol: %+v", stats)
	}
}

func TestPlanChunk(t *testing.T) {
	paper := examModel.ExamPaperModel{
		ExamPaperID:       uuid.New(),
		ExamPaperSchoolID: uuid.New(),
		ExamPaperMaxMarks: 100,
	}
	enteredBy := uuid.New()
	sNew, sDraft, sLocked, sPublished, sRange, sAbsent :=
		uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()

	statusByStudent := map[uuid.UUID]string{
		sDraft:     model.MarkStatusDraft,
		sLocked:    model.MarkStatusSubmitted,
		sPublished: model.MarkStatusPublished,
	}
	rows := []dto.EnterMarkRequest{
		{StudentID: sNew, MarksObtained: f(80)},
		{StudentID: sDraft, MarksObtained: f(60)},
		{StudentID: sLocked, MarksObtained: f(70)},
		{StudentID: sPublished, MarksObtained: f(70)},
		{StudentID: sRange, MarksObtained: f(150)},
		{StudentID: sAbsent, IsAbsent: true},
		{StudentID: sNew, MarksObtained: f(90)}, // duplikat dalam satu request
	}

	upserts, failures := planChunk(paper, enteredBy, rows, 50, statusByStudent, map[uuid.UUID]bool{})

	if len(upserts) != 3 {
		t.Fatalf("upserts = %d, want 3 (baru, draft, absen)", len(upserts))
	}
	for _, u := range upserts {
		if u.StudentMarkStatus != model.MarkStatusDraft {
			t.Fatalf("status upsert %s = %q, want draft", u.StudentMarkStudentID, u.StudentMarkStatus)
		}
	}
	if got := upserts[2]; got.StudentMarkStudentID != sAbsent || got.StudentMarkMarksObtained != 0 {
		t.Fatalf("baris absen harus nilai 0: %+v", got)
	}

	wantIdx := []int{52, 53, 54, 56}
	if len(failures) != len(wantIdx) {
		t.Fatalf("failures = %d, want %d: %+v", len(failures), len(wantIdx), failures)
	}
	for i, fl := range failures {
		if fl.Index != wantIdx[i] {
			t.Fatalf("failure[%d].Index = %d, want %d (%s)", i, fl.Index, wantIdx[i], fl.Message)
		}
	}
}

// 60 baris = 2 chunk; tiap chunk tepat dua statement (baca status existing +
// satu upsert ON CONFLICT), bukan satu pasang query per siswa.
func TestBulkEnterMarksTwoStatementsPerChunk(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMarksService(db)

	schoolID, paperID := uuid.New(), uuid.New()

	rows := make([]dto.EnterMarkRequest, 0, 60)
	for i := 0; i < 60; i++ {
		rows = append(rows, dto.EnterMarkRequest{StudentID: uuid.New(), MarksObtained: f(75)})
	}

	idRows := func(n int) *sqlmock.Rows {
		r := sqlmock.NewRows([]string{"student_mark_id"})
		for i := 0; i < n; i++ {
			r.AddRow(uuid.New())
		}
		return r
	}

	mock.ExpectQuery(`SELECT (.+) FROM "exam_papers"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"exam_paper_id", "exam_paper_school_id", "exam_paper_class_id",
			"exam_paper_max_marks", "exam_paper_passing_marks",
		}).AddRow(paperID, schoolID, uuid.New(), 100, 40))
	// chunk 1: 50 baris
	mock.ExpectQuery(`SELECT (.+) FROM "student_marks"`).
		WillReturnRows(sqlmock.NewRows([]string{"student_mark_id"}))
	mock.ExpectQuery(`INSERT INTO "student_marks" (.+) ON CONFLICT`).
		WillReturnRows(idRows(50))
	// chunk 2: sisa 10 baris
	mock.ExpectQuery(`SELECT (.+) FROM "student_marks"`).
		WillReturnRows(sqlmock.NewRows([]string{"student_mark_id"}))
	mock.ExpectQuery(`INSERT INTO "student_marks" (.+) ON CONFLICT`).
		WillReturnRows(idRows(10))

	res, err := svc.BulkEnterMarks(context.Background(), schoolID, paperID, uuid.New(),
		dto.BulkEnterMarksRequest{Rows: rows})
	if err != nil {
		t.Fatalf("BulkEnterMarks: %v", err)
	}
	if res.Applied != 60 || len(res.Failures) != 0 {
		t.Fatalf("applied/failures = %d/%d, want 60/0", res.Applied, len(res.Failures))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("jumlah statement per chunk tidak sesuai: %v", err)
	}
}

// Baris yang statusnya sudah terkunci masuk daftar gagal dengan index
// aslinya; baris lain di chunk yang sama tetap ter-upsert.
func TestBulkEnterMarksReportsLockedRows(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMarksService(db)

	schoolID, paperID := uuid.New(), uuid.New()
	sLocked, sFree := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "exam_papers"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"exam_paper_id", "exam_paper_school_id", "exam_paper_class_id",
			"exam_paper_max_marks", "exam_paper_passing_marks",
		}).AddRow(paperID, schoolID, uuid.New(), 100, 40))
	mock.ExpectQuery(`SELECT (.+) FROM "student_marks"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"student_mark_id", "student_mark_student_id", "student_mark_status",
		}).AddRow(uuid.New(), sLocked, model.MarkStatusSubmitted))
	mock.ExpectQuery(`INSERT INTO "student_marks" (.+) ON CONFLICT`).
		WillReturnRows(sqlmock.NewRows([]string{"student_mark_id"}).AddRow(uuid.New()))

	res, err := svc.BulkEnterMarks(context.Background(), schoolID, paperID, uuid.New(),
		dto.BulkEnterMarksRequest{Rows: []dto.EnterMarkRequest{
			{StudentID: sLocked, MarksObtained: f(88)},
			{StudentID: sFree, MarksObtained: f(66)},
		}})
	if err != nil {
		t.Fatalf("BulkEnterMarks: %v", err)
	}
	if res.Applied != 1 {
		t.Fatalf("applied = %d, want 1", res.Applied)
	}
	if len(res.Failures) != 1 || res.Failures[0].Index != 0 || res.Failures[0].StudentID != sLocked {
		t.Fatalf("failures = %+v, want baris 0 milik siswa terkunci", res.Failures)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("urutan statement tidak sesuai: %v", err)
	}
}

// nilai tepat di passing marks dihitung lulus
func TestComputeStatisticsBoundaryPass(t *testing.T) {
	stats := ComputeStatistics(uuid.New(), []model.StudentMarkModel{
		mark(uuid.New(), 40, false),
	}, 40)
	if stats.Passed != 1 || stats.Failed != 0 {
		t.Fatalf("passed/failed = %d/%d, want 1/0", stats.Passed, stats.Failed)
	}
}
