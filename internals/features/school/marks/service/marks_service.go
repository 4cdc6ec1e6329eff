// file: internals/features/school/marks/service/marks_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolku_backend/internals/features/school/errs"
	examModel "schoolku_backend/internals/features/school/exams/model"
	"schoolku_backend/internals/features/school/marks/dto"
	"schoolku_backend/internals/features/school/marks/model"
)

// bulkChunkSize: ukuran batch tetap untuk bulk entry. Tiap chunk cuma
// butuh dua round-trip ke store: satu baca status existing, satu upsert.
const bulkChunkSize = 50

type MarksService struct {
	DB *gorm.DB
}

func NewMarksService(db *gorm.DB) *MarksService {
	return &MarksService{DB: db}
}

/* =======================================================
   Pure helpers — dites tanpa DB
======================================================= */

// NormalizeMark: siswa absen selalu tercatat 0, apa pun input gurunya.
func NormalizeMark(obtained *float64, isAbsent bool) float64 {
	if isAbsent || obtained == nil {
		return 0
	}
	return *obtained
}

// EnsureMarkWritable: entry/upsert hanya boleh menimpa baris draft
// (termasuk baris yang sudah dikembalikan ke draft oleh reject moderasi).
// Submitted/moderated terkunci sampai moderasi selesai; published final.
func EnsureMarkWritable(status string) error {
	switch status {
	case model.MarkStatusDraft:
		return nil
	case model.MarkStatusPublished:
		return errs.ErrAlreadyPublished
	default:
		return errs.ErrImmutableState
	}
}

// ValidateRange memeriksa nilai non-absen terhadap max marks paper.
func ValidateRange(obtained float64, maxMarks int) error {
	if obtained < 0 || obtained > float64(maxMarks) {
		return errs.NewValidation(
			fmt.Sprintf("nilai %.2f di luar rentang 0..%d", obtained, maxMarks),
		).Add("marks_obtained", fmt.Sprintf("harus di antara 0 dan %d", maxMarks))
	}
	return nil
}

// ValidateRows: cek kelengkapan cakupan + range sebelum submit moderasi.
// Laporan selalu menyebut angka "X dari Y" supaya guru tahu berapa yang kurang.
func ValidateRows(marks []model.StudentMarkModel, enrolled int, maxMarks int) dto.ValidationResult {
	res := dto.ValidationResult{
		EnteredCount:  len(marks),
		EnrolledCount: enrolled,
	}
	if len(marks) < enrolled {
		res.Problems = append(res.Problems, fmt.Sprintf(
			"baru %d dari %d siswa terdaftar yang punya nilai", len(marks), enrolled,
		))
	}
	for _, m := range marks {
		if m.StudentMarkIsAbsent {
			continue
		}
		if m.StudentMarkMarksObtained < 0 || m.StudentMarkMarksObtained > float64(maxMarks) {
			res.Problems = append(res.Problems, fmt.Sprintf(
				"nilai siswa %s di luar rentang 0..%d (%.2f)",
				m.StudentMarkStudentID, maxMarks, m.StudentMarkMarksObtained,
			))
		}
	}
	res.Valid = len(res.Problems) == 0
	return res
}

// ComputeStatistics: agregat satu paper. Absen dihitung terpisah dan
// tidak masuk high/low/avg maupun persentase lulus.
func ComputeStatistics(paperID uuid.UUID, marks []model.StudentMarkModel, passingMarks int) dto.ClassStatistics {
	stats := dto.ClassStatistics{
		ExamPaperID:   paperID,
		TotalStudents: len(marks),
	}

	var sum float64
	first := true
	for _, m := range marks {
		if m.StudentMarkIsAbsent {
			stats.Absent++
			continue
		}
		stats.Appeared++
		v := m.StudentMarkMarksObtained
		sum += v
		if first {
			stats.HighestMarks, stats.LowestMarks = v, v
			first = false
		} else {
			if v > stats.HighestMarks {
				stats.HighestMarks = v
			}
			if v < stats.LowestMarks {
				stats.LowestMarks = v
			}
		}
		if v >= float64(passingMarks) {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}

	if stats.Appeared > 0 {
		stats.AverageMarks = round2(sum / float64(stats.Appeared))
		stats.PassPercentage = round2(float64(stats.Passed) / float64(stats.Appeared) * 100)
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

/* =======================================================
   Loaders
======================================================= */

func (s *MarksService) loadPaper(ctx context.Context, schoolID, paperID uuid.UUID) (examModel.ExamPaperModel, error) {
	var paper examModel.ExamPaperModel
	err := s.DB.WithContext(ctx).
		Where("exam_paper_id = ? AND exam_paper_school_id = ?", paperID, schoolID).
		First(&paper).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return paper, errs.ErrNotFound
	}
	return paper, err
}

func (s *MarksService) loadMark(ctx context.Context, schoolID, markID uuid.UUID) (model.StudentMarkModel, error) {
	var mark model.StudentMarkModel
	err := s.DB.WithContext(ctx).
		Where("student_mark_id = ? AND student_mark_school_id = ?", markID, schoolID).
		First(&mark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return mark, errs.ErrNotFound
	}
	return mark, err
}

// enrolledCount: jumlah siswa aktif yang tercakup paper (section-aware —
// paper tanpa section berarti seluruh kelas).
func (s *MarksService) enrolledCount(ctx context.Context, paper examModel.ExamPaperModel) (int64, error) {
	q := s.DB.WithContext(ctx).
		Model(&model.ClassSectionStudentModel{}).
		Where("class_section_student_school_id = ? AND class_section_student_class_id = ? AND class_section_student_is_active = TRUE",
			paper.ExamPaperSchoolID, paper.ExamPaperClassID)
	if paper.ExamPaperSectionID != nil {
		q = q.Where("class_section_student_section_id = ?", *paper.ExamPaperSectionID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (s *MarksService) loadMarks(ctx context.Context, schoolID, paperID uuid.UUID) ([]model.StudentMarkModel, error) {
	var rows []model.StudentMarkModel
	err := s.DB.WithContext(ctx).
		Where("student_mark_school_id = ? AND student_mark_exam_paper_id = ?", schoolID, paperID).
		Order("student_mark_student_id ASC").
		Find(&rows).Error
	return rows, err
}

/* =======================================================
   Entry nilai
======================================================= */

// EnterMark: upsert nilai satu siswa. Selama masih draft entry ulang
// menimpa nilai lama (last write wins).
func (s *MarksService) EnterMark(ctx context.Context, schoolID, paperID, enteredBy uuid.UUID, req dto.EnterMarkRequest) (model.StudentMarkModel, error) {
	paper, err := s.loadPaper(ctx, schoolID, paperID)
	if err != nil {
		return model.StudentMarkModel{}, err
	}
	return s.enterOne(ctx, paper, enteredBy, req)
}

func (s *MarksService) enterOne(ctx context.Context, paper examModel.ExamPaperModel, enteredBy uuid.UUID, req dto.EnterMarkRequest) (model.StudentMarkModel, error) {
	value := NormalizeMark(req.MarksObtained, req.IsAbsent)
	if !req.IsAbsent {
		if err := ValidateRange(value, paper.ExamPaperMaxMarks); err != nil {
			return model.StudentMarkModel{}, err
		}
	}

	var existing model.StudentMarkModel
	err := s.DB.WithContext(ctx).
		Where("student_mark_school_id = ? AND student_mark_exam_paper_id = ? AND student_mark_student_id = ?",
			paper.ExamPaperSchoolID, paper.ExamPaperID, req.StudentID).
		First(&existing).Error

	switch {
	case err == nil:
		if werr := EnsureMarkWritable(existing.StudentMarkStatus); werr != nil {
			return model.StudentMarkModel{}, werr
		}
		existing.StudentMarkMarksObtained = value
		existing.StudentMarkIsAbsent = req.IsAbsent
		existing.StudentMarkEnteredBy = enteredBy
		existing.StudentMarkStatus = model.MarkStatusDraft
		if err := s.DB.WithContext(ctx).Save(&existing).Error; err != nil {
			return model.StudentMarkModel{}, err
		}
		return existing, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		mark := model.StudentMarkModel{
			StudentMarkSchoolID:      paper.ExamPaperSchoolID,
			StudentMarkStudentID:     req.StudentID,
			StudentMarkExamPaperID:   paper.ExamPaperID,
			StudentMarkMarksObtained: value,
			StudentMarkMaxMarks:      paper.ExamPaperMaxMarks,
			StudentMarkIsAbsent:      req.IsAbsent,
			StudentMarkStatus:        model.MarkStatusDraft,
			StudentMarkEnteredBy:     enteredBy,
		}
		if err := s.DB.WithContext(ctx).Create(&mark).Error; err != nil {
			// dua entry bersamaan untuk siswa yang sama: yang kalah race
			// mengulang lewat jalur update
			if errs.PgCode(err) == errs.PgUniqueViolation {
				return s.enterOne(ctx, paper, enteredBy, req)
			}
			return model.StudentMarkModel{}, err
		}
		return mark, nil

	default:
		return model.StudentMarkModel{}, err
	}
}

// planChunk memilah satu chunk jadi baris siap-upsert vs baris gagal.
// Murni di memori: range check, normalisasi absen, tolak siswa duplikat
// dalam satu request (satu statement upsert tidak boleh menyentuh baris
// yang sama dua kali), dan tolak baris yang statusnya sudah terkunci.
// Index failure memakai offset supaya tetap merujuk posisi di request asal.
func planChunk(paper examModel.ExamPaperModel, enteredBy uuid.UUID, rows []dto.EnterMarkRequest, offset int, statusByStudent map[uuid.UUID]string, seen map[uuid.UUID]bool) ([]model.StudentMarkModel, []dto.RowFailure) {
	upserts := make([]model.StudentMarkModel, 0, len(rows))
	var failures []dto.RowFailure

	for i, row := range rows {
		fail := func(msg string) {
			failures = append(failures, dto.RowFailure{
				Index:     offset + i,
				StudentID: row.StudentID,
				Message:   msg,
			})
		}

		if seen[row.StudentID] {
			fail("siswa muncul lebih dari sekali dalam satu request")
			continue
		}
		seen[row.StudentID] = true

		value := NormalizeMark(row.MarksObtained, row.IsAbsent)
		if !row.IsAbsent {
			if err := ValidateRange(value, paper.ExamPaperMaxMarks); err != nil {
				fail(err.Error())
				continue
			}
		}
		if st, ok := statusByStudent[row.StudentID]; ok {
			if err := EnsureMarkWritable(st); err != nil {
				fail(err.Error())
				continue
			}
		}

		upserts = append(upserts, model.StudentMarkModel{
			StudentMarkSchoolID:      paper.ExamPaperSchoolID,
			StudentMarkStudentID:     row.StudentID,
			StudentMarkExamPaperID:   paper.ExamPaperID,
			StudentMarkMarksObtained: value,
			StudentMarkMaxMarks:      paper.ExamPaperMaxMarks,
			StudentMarkIsAbsent:      row.IsAbsent,
			StudentMarkStatus:        model.MarkStatusDraft,
			StudentMarkEnteredBy:     enteredBy,
		})
	}
	return upserts, failures
}

// enterChunk: satu SELECT status existing + satu INSERT ... ON CONFLICT
// untuk seluruh chunk. Guard status diulang di klausa DO UPDATE WHERE
// supaya baris yang terkunci di antara SELECT dan upsert tetap tidak
// tersentuh (baris itu hilang dari RowsAffected, bukan error).
func (s *MarksService) enterChunk(ctx context.Context, paper examModel.ExamPaperModel, enteredBy uuid.UUID, rows []dto.EnterMarkRequest, offset int, seen map[uuid.UUID]bool) (int64, []dto.RowFailure, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.StudentID)
	}

	var existing []model.StudentMarkModel
	if err := s.DB.WithContext(ctx).
		Where("student_mark_school_id = ? AND student_mark_exam_paper_id = ? AND student_mark_student_id IN ?",
			paper.ExamPaperSchoolID, paper.ExamPaperID, ids).
		Find(&existing).Error; err != nil {
		return 0, nil, err
	}
	statusByStudent := make(map[uuid.UUID]string, len(existing))
	for _, m := range existing {
		statusByStudent[m.StudentMarkStudentID] = m.StudentMarkStatus
	}

	upserts, failures := planChunk(paper, enteredBy, rows, offset, statusByStudent, seen)
	if len(upserts) == 0 {
		return 0, failures, nil
	}

	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_mark_student_id"},
				{Name: "student_mark_exam_paper_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"student_mark_marks_obtained",
				"student_mark_is_absent",
				"student_mark_status",
				"student_mark_entered_by",
				"student_mark_updated_at",
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{
					SQL:  `"student_marks"."student_mark_status" = ?`,
					Vars: []any{model.MarkStatusDraft},
				},
			}},
		}).
		Create(&upserts)
	if res.Error != nil {
		return 0, failures, res.Error
	}
	return res.RowsAffected, failures, nil
}

// BulkEnterMarks: proses per chunk berukuran tetap; baris gagal dicatat
// di failures tanpa menghentikan baris lain.
func (s *MarksService) BulkEnterMarks(ctx context.Context, schoolID, paperID, enteredBy uuid.UUID, req dto.BulkEnterMarksRequest) (dto.BulkEnterResult, error) {
	paper, err := s.loadPaper(ctx, schoolID, paperID)
	if err != nil {
		return dto.BulkEnterResult{}, err
	}

	result := dto.BulkEnterResult{Failures: []dto.RowFailure{}}
	seen := make(map[uuid.UUID]bool, len(req.Rows))
	for start := 0; start < len(req.Rows); start += bulkChunkSize {
		end := start + bulkChunkSize
		if end > len(req.Rows) {
			end = len(req.Rows)
		}
		applied, failures, err := s.enterChunk(ctx, paper, enteredBy, req.Rows[start:end], start, seen)
		if err != nil {
			return result, err
		}
		result.Applied += int(applied)
		result.Failures = append(result.Failures, failures...)
	}
	return result, nil
}

/* =======================================================
   Validasi, statistik, koreksi
======================================================= */

// ValidateMarks: cek kelengkapan entry terhadap enrolment + range nilai.
// Selalu dijalankan sebelum SubmitForModeration.
func (s *MarksService) ValidateMarks(ctx context.Context, schoolID, paperID uuid.UUID) (dto.ValidationResult, error) {
	paper, err := s.loadPaper(ctx, schoolID, paperID)
	if err != nil {
		return dto.ValidationResult{}, err
	}
	enrolled, err := s.enrolledCount(ctx, paper)
	if err != nil {
		return dto.ValidationResult{}, err
	}
	marks, err := s.loadMarks(ctx, schoolID, paperID)
	if err != nil {
		return dto.ValidationResult{}, err
	}
	return ValidateRows(marks, int(enrolled), paper.ExamPaperMaxMarks), nil
}

// GetClassStatistics menghitung agregat per paper dari nilai tersimpan.
func (s *MarksService) GetClassStatistics(ctx context.Context, schoolID, paperID uuid.UUID) (dto.ClassStatistics, error) {
	paper, err := s.loadPaper(ctx, schoolID, paperID)
	if err != nil {
		return dto.ClassStatistics{}, err
	}
	marks, err := s.loadMarks(ctx, schoolID, paperID)
	if err != nil {
		return dto.ClassStatistics{}, err
	}
	return ComputeStatistics(paper.ExamPaperID, marks, paper.ExamPaperPassingMarks), nil
}

// AddCorrection: koreksi nilai yang sudah published. Baris nilai TIDAK
// disentuh; koreksi murni append ke marks_histories.
func (s *MarksService) AddCorrection(ctx context.Context, schoolID, markID, changedBy uuid.UUID, req dto.CorrectionRequest) (model.MarksHistoryModel, error) {
	mark, err := s.loadMark(ctx, schoolID, markID)
	if err != nil {
		return model.MarksHistoryModel{}, err
	}
	if mark.StudentMarkStatus != model.MarkStatusPublished {
		return model.MarksHistoryModel{}, errs.NewValidation(
			"koreksi hanya untuk nilai yang sudah published; nilai draft diubah lewat entry biasa",
		)
	}
	if err := ValidateRange(req.NewValue, mark.StudentMarkMaxMarks); err != nil {
		return model.MarksHistoryModel{}, err
	}

	hist := model.MarksHistoryModel{
		MarksHistorySchoolID:      schoolID,
		MarksHistoryStudentMarkID: mark.StudentMarkID,
		MarksHistoryPrevValue:     mark.StudentMarkMarksObtained,
		MarksHistoryNewValue:      req.NewValue,
		MarksHistoryReason:        req.Reason,
		MarksHistoryChangedBy:     changedBy,
	}
	if err := s.DB.WithContext(ctx).Create(&hist).Error; err != nil {
		return model.MarksHistoryModel{}, err
	}
	return hist, nil
}

/* =======================================================
   Reads
======================================================= */

func (s *MarksService) ListMarks(ctx context.Context, schoolID, paperID uuid.UUID) ([]model.StudentMarkModel, error) {
	if _, err := s.loadPaper(ctx, schoolID, paperID); err != nil {
		return nil, err
	}
	return s.loadMarks(ctx, schoolID, paperID)
}

func (s *MarksService) ListHistory(ctx context.Context, schoolID, markID uuid.UUID) ([]model.MarksHistoryModel, error) {
	if _, err := s.loadMark(ctx, schoolID, markID); err != nil {
		return nil, err
	}
	var rows []model.MarksHistoryModel
	err := s.DB.WithContext(ctx).
		Where("marks_history_school_id = ? AND marks_history_student_mark_id = ?", schoolID, markID).
		Order("marks_history_created_at ASC").
		Find(&rows).Error
	return rows, err
}

// StudentMarks: nilai published milik satu siswa (endpoint sisi siswa).
func (s *MarksService) StudentMarks(ctx context.Context, schoolID, studentID uuid.UUID) ([]model.StudentMarkModel, error) {
	var rows []model.StudentMarkModel
	err := s.DB.WithContext(ctx).
		Where("student_mark_school_id = ? AND student_mark_student_id = ? AND student_mark_status = ?",
			schoolID, studentID, model.MarkStatusPublished).
		Order("student_mark_updated_at DESC").
		Find(&rows).Error
	return rows, err
}
