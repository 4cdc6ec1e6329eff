// file: internals/features/school/marks/model/student_mark_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MarkStatusDraft     = "draft"
	MarkStatusSubmitted = "submitted"
	MarkStatusModerated = "moderated"
	MarkStatusPublished = "published"
)

// StudentMarkModel: nilai satu siswa untuk satu exam paper.
// Pasangan (student_id, exam_paper_id) unik — entry ulang adalah upsert.
// Lifecycle maju: draft → submitted → moderated → published. Penolakan
// moderasi mengembalikan baris persis ke draft; statusnya tercatat di
// moderation_requests, bukan di baris nilai. Published final; koreksi
// lewat marks_histories, tidak pernah overwrite in-place.
type StudentMarkModel struct {
	StudentMarkID       uuid.UUID `json:"student_mark_id" gorm:"type:uuid;primaryKey;column:student_mark_id;default:gen_random_uuid()"`
	StudentMarkSchoolID uuid.UUID `json:"student_mark_school_id" gorm:"type:uuid;not null;column:student_mark_school_id;index"`

	StudentMarkStudentID   uuid.UUID `json:"student_mark_student_id" gorm:"type:uuid;not null;column:student_mark_student_id;uniqueIndex:uq_student_marks_student_paper"`
	StudentMarkExamPaperID uuid.UUID `json:"student_mark_exam_paper_id" gorm:"type:uuid;not null;column:student_mark_exam_paper_id;uniqueIndex:uq_student_marks_student_paper;index"`

	StudentMarkMarksObtained float64 `json:"student_mark_marks_obtained" gorm:"type:numeric(6,2);not null;default:0;column:student_mark_marks_obtained"`
	StudentMarkMaxMarks      int     `json:"student_mark_max_marks" gorm:"not null;column:student_mark_max_marks"`
	StudentMarkIsAbsent      bool    `json:"student_mark_is_absent" gorm:"not null;default:false;column:student_mark_is_absent"`

	StudentMarkStatus    string    `json:"student_mark_status" gorm:"type:varchar(20);not null;default:'draft';column:student_mark_status;index"`
	StudentMarkEnteredBy uuid.UUID `json:"student_mark_entered_by" gorm:"type:uuid;not null;column:student_mark_entered_by"`

	StudentMarkCreatedAt time.Time `json:"student_mark_created_at" gorm:"column:student_mark_created_at;autoCreateTime"`
	StudentMarkUpdatedAt time.Time `json:"student_mark_updated_at" gorm:"column:student_mark_updated_at;autoUpdateTime"`
}

func (StudentMarkModel) TableName() string { return "student_marks" }
