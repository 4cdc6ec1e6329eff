// file: internals/features/school/exams/dto/exam_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/school/exams/model"
)

/* =========================
   Requests
========================= */

type CreateExamRequest struct {
	ExamName           string    `json:"exam_name" validate:"required,min=2,max=150"`
	ExamAcademicYearID uuid.UUID `json:"exam_academic_year_id" validate:"required"`
}

func (r *CreateExamRequest) ToModel(schoolID uuid.UUID) model.ExamModel {
	return model.ExamModel{
		ExamSchoolID:       schoolID,
		ExamName:           r.ExamName,
		ExamAcademicYearID: r.ExamAcademicYearID,
		ExamStatus:         model.ExamStatusDraft,
	}
}

type CreateExamPaperRequest struct {
	ExamPaperExamDate      time.Time  `json:"exam_paper_exam_date" validate:"required"`
	ExamPaperStartTime     string     `json:"exam_paper_start_time" validate:"required,datetime=15:04"`
	ExamPaperEndTime       string     `json:"exam_paper_end_time" validate:"required,datetime=15:04"`
	ExamPaperRoomID        *uuid.UUID `json:"exam_paper_room_id"`
	ExamPaperInvigilatorID uuid.UUID  `json:"exam_paper_invigilator_id" validate:"required"`
	ExamPaperClassID       uuid.UUID  `json:"exam_paper_class_id" validate:"required"`
	ExamPaperSectionID     *uuid.UUID `json:"exam_paper_section_id"`
	ExamPaperSubjectID     uuid.UUID  `json:"exam_paper_subject_id" validate:"required"`
	ExamPaperMaxMarks      int        `json:"exam_paper_max_marks" validate:"required,min=1"`
	ExamPaperPassingMarks  int        `json:"exam_paper_passing_marks" validate:"min=0"`
}

func (r *CreateExamPaperRequest) ToModel(schoolID, examID uuid.UUID) model.ExamPaperModel {
	return model.ExamPaperModel{
		ExamPaperExamID:        examID,
		ExamPaperSchoolID:      schoolID,
		ExamPaperExamDate:      r.ExamPaperExamDate,
		ExamPaperStartTime:     r.ExamPaperStartTime,
		ExamPaperEndTime:       r.ExamPaperEndTime,
		ExamPaperRoomID:        r.ExamPaperRoomID,
		ExamPaperInvigilatorID: r.ExamPaperInvigilatorID,
		ExamPaperClassID:       r.ExamPaperClassID,
		ExamPaperSectionID:     r.ExamPaperSectionID,
		ExamPaperSubjectID:     r.ExamPaperSubjectID,
		ExamPaperMaxMarks:      r.ExamPaperMaxMarks,
		ExamPaperPassingMarks:  r.ExamPaperPassingMarks,
	}
}

type UpdateExamPaperRequest struct {
	ExamPaperExamDate      *time.Time `json:"exam_paper_exam_date"`
	ExamPaperStartTime     *string    `json:"exam_paper_start_time" validate:"omitempty,datetime=15:04"`
	ExamPaperEndTime       *string    `json:"exam_paper_end_time" validate:"omitempty,datetime=15:04"`
	ExamPaperRoomID        *uuid.UUID `json:"exam_paper_room_id"`
	ExamPaperInvigilatorID *uuid.UUID `json:"exam_paper_invigilator_id"`
	ExamPaperClassID       *uuid.UUID `json:"exam_paper_class_id"`
	ExamPaperSectionID     *uuid.UUID `json:"exam_paper_section_id"`
	ExamPaperSubjectID     *uuid.UUID `json:"exam_paper_subject_id"`
	ExamPaperMaxMarks      *int       `json:"exam_paper_max_marks" validate:"omitempty,min=1"`
	ExamPaperPassingMarks  *int       `json:"exam_paper_passing_marks" validate:"omitempty,min=0"`
}

func (r *UpdateExamPaperRequest) Apply(m *model.ExamPaperModel) {
	if r.ExamPaperExamDate != nil {
		m.ExamPaperExamDate = *r.ExamPaperExamDate
	}
	if r.ExamPaperStartTime != nil {
		m.ExamPaperStartTime = *r.ExamPaperStartTime
	}
	if r.ExamPaperEndTime != nil {
		m.ExamPaperEndTime = *r.ExamPaperEndTime
	}
	if r.ExamPaperRoomID != nil {
		m.ExamPaperRoomID = r.ExamPaperRoomID
	}
	if r.ExamPaperInvigilatorID != nil {
		m.ExamPaperInvigilatorID = *r.ExamPaperInvigilatorID
	}
	if r.ExamPaperClassID != nil {
		m.ExamPaperClassID = *r.ExamPaperClassID
	}
	if r.ExamPaperSectionID != nil {
		m.ExamPaperSectionID = r.ExamPaperSectionID
	}
	if r.ExamPaperSubjectID != nil {
		m.ExamPaperSubjectID = *r.ExamPaperSubjectID
	}
	if r.ExamPaperMaxMarks != nil {
		m.ExamPaperMaxMarks = *r.ExamPaperMaxMarks
	}
	if r.ExamPaperPassingMarks != nil {
		m.ExamPaperPassingMarks = *r.ExamPaperPassingMarks
	}
}

type UnpublishExamRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

/* =========================
   Responses (projection tetap)
========================= */

type ExamResponse struct {
	ExamID                uuid.UUID  `json:"exam_id"`
	ExamSchoolID          uuid.UUID  `json:"exam_school_id"`
	ExamName              string     `json:"exam_name"`
	ExamAcademicYearID    uuid.UUID  `json:"exam_academic_year_id"`
	ExamStatus            string     `json:"exam_status"`
	ExamIsPublished       bool       `json:"exam_is_published"`
	ExamPublishedAt       *time.Time `json:"exam_published_at,omitempty"`
	ExamPublishedBy       *uuid.UUID `json:"exam_published_by,omitempty"`
	ExamUnpublishedAt     *time.Time `json:"exam_unpublished_at,omitempty"`
	ExamUnpublishedReason *string    `json:"exam_unpublished_reason,omitempty"`
	ExamCreatedAt         time.Time  `json:"exam_created_at"`
	ExamUpdatedAt         time.Time  `json:"exam_updated_at"`
}

func FromExamModel(m model.ExamModel) ExamResponse {
	return ExamResponse{
		ExamID:                m.ExamID,
		ExamSchoolID:          m.ExamSchoolID,
		ExamName:              m.ExamName,
		ExamAcademicYearID:    m.ExamAcademicYearID,
		ExamStatus:            m.ExamStatus,
		ExamIsPublished:       m.ExamIsPublished,
		ExamPublishedAt:       m.ExamPublishedAt,
		ExamPublishedBy:       m.ExamPublishedBy,
		ExamUnpublishedAt:     m.ExamUnpublishedAt,
		ExamUnpublishedReason: m.ExamUnpublishedReason,
		ExamCreatedAt:         m.ExamCreatedAt,
		ExamUpdatedAt:         m.ExamUpdatedAt,
	}
}

func FromExamModels(ms []model.ExamModel) []ExamResponse {
	out := make([]ExamResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromExamModel(m))
	}
	return out
}

type ExamPaperResponse struct {
	ExamPaperID            uuid.UUID  `json:"exam_paper_id"`
	ExamPaperExamID        uuid.UUID  `json:"exam_paper_exam_id"`
	ExamPaperExamDate      time.Time  `json:"exam_paper_exam_date"`
	ExamPaperStartTime     string     `json:"exam_paper_start_time"`
	ExamPaperEndTime       string     `json:"exam_paper_end_time"`
	ExamPaperRoomID        *uuid.UUID `json:"exam_paper_room_id,omitempty"`
	ExamPaperInvigilatorID uuid.UUID  `json:"exam_paper_invigilator_id"`
	ExamPaperClassID       uuid.UUID  `json:"exam_paper_class_id"`
	ExamPaperSectionID     *uuid.UUID `json:"exam_paper_section_id,omitempty"`
	ExamPaperSubjectID     uuid.UUID  `json:"exam_paper_subject_id"`
	ExamPaperMaxMarks      int        `json:"exam_paper_max_marks"`
	ExamPaperPassingMarks  int        `json:"exam_paper_passing_marks"`
}

func FromPaperModel(m model.ExamPaperModel) ExamPaperResponse {
	return ExamPaperResponse{
		ExamPaperID:            m.ExamPaperID,
		ExamPaperExamID:        m.ExamPaperExamID,
		ExamPaperExamDate:      m.ExamPaperExamDate,
		ExamPaperStartTime:     m.ExamPaperStartTime,
		ExamPaperEndTime:       m.ExamPaperEndTime,
		ExamPaperRoomID:        m.ExamPaperRoomID,
		ExamPaperInvigilatorID: m.ExamPaperInvigilatorID,
		ExamPaperClassID:       m.ExamPaperClassID,
		ExamPaperSectionID:     m.ExamPaperSectionID,
		ExamPaperSubjectID:     m.ExamPaperSubjectID,
		ExamPaperMaxMarks:      m.ExamPaperMaxMarks,
		ExamPaperPassingMarks:  m.ExamPaperPassingMarks,
	}
}

func FromPaperModels(ms []model.ExamPaperModel) []ExamPaperResponse {
	out := make([]ExamPaperResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromPaperModel(m))
	}
	return out
}

// ExamWithPapers: kontrak publik get-detail.
type ExamWithPapers struct {
	Exam   ExamResponse        `json:"exam"`
	Papers []ExamPaperResponse `json:"papers"`
}

// ExamDayGroup: papers dikelompokkan per tanggal untuk tampilan kalender.
type ExamDayGroup struct {
	ExamDate string              `json:"exam_date"`
	Papers   []ExamPaperResponse `json:"papers"`
}
