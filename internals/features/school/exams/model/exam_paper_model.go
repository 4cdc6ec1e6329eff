// file: internals/features/school/exams/model/exam_paper_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamPaperModel: satu sitting ujian dalam kalender exam.
// Jam disimpan "HH:MM"; interval dipakai half-open [start, end).
// Tiga dimensi collision pada interval overlap di tanggal sama:
// room_id, invigilator_id, (class_id, section_id).
type ExamPaperModel struct {
	ExamPaperID       uuid.UUID `json:"exam_paper_id" gorm:"type:uuid;primaryKey;column:exam_paper_id;default:gen_random_uuid()"`
	ExamPaperExamID   uuid.UUID `json:"exam_paper_exam_id" gorm:"type:uuid;not null;column:exam_paper_exam_id;index"`
	ExamPaperSchoolID uuid.UUID `json:"exam_paper_school_id" gorm:"type:uuid;not null;column:exam_paper_school_id;index"`

	ExamPaperExamDate  time.Time `json:"exam_paper_exam_date" gorm:"type:date;not null;column:exam_paper_exam_date"`
	ExamPaperStartTime string    `json:"exam_paper_start_time" gorm:"type:time;not null;column:exam_paper_start_time"`
	ExamPaperEndTime   string    `json:"exam_paper_end_time" gorm:"type:time;not null;column:exam_paper_end_time"`

	ExamPaperRoomID        *uuid.UUID `json:"exam_paper_room_id,omitempty" gorm:"type:uuid;column:exam_paper_room_id"`
	ExamPaperInvigilatorID uuid.UUID  `json:"exam_paper_invigilator_id" gorm:"type:uuid;not null;column:exam_paper_invigilator_id"`

	ExamPaperClassID   uuid.UUID  `json:"exam_paper_class_id" gorm:"type:uuid;not null;column:exam_paper_class_id"`
	ExamPaperSectionID *uuid.UUID `json:"exam_paper_section_id,omitempty" gorm:"type:uuid;column:exam_paper_section_id"`
	ExamPaperSubjectID uuid.UUID  `json:"exam_paper_subject_id" gorm:"type:uuid;not null;column:exam_paper_subject_id"`

	ExamPaperMaxMarks     int `json:"exam_paper_max_marks" gorm:"not null;column:exam_paper_max_marks"`
	ExamPaperPassingMarks int `json:"exam_paper_passing_marks" gorm:"not null;column:exam_paper_passing_marks"`

	ExamPaperCreatedAt time.Time `json:"exam_paper_created_at" gorm:"column:exam_paper_created_at;autoCreateTime"`
	ExamPaperUpdatedAt time.Time `json:"exam_paper_updated_at" gorm:"column:exam_paper_updated_at;autoUpdateTime"`
}

func (ExamPaperModel) TableName() string { return "exam_papers" }
