// file: internals/features/school/marks/dto/marks_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/school/marks/model"
)

/* =========== Requests =========== */

// EnterMarkRequest: entry/upsert nilai satu siswa pada satu paper.
// marks_obtained boleh nil saat is_absent=true (dipaksa 0 oleh service).
type EnterMarkRequest struct {
	StudentID     uuid.UUID `json:"student_id" validate:"required"`
	MarksObtained *float64  `json:"marks_obtained" validate:"omitempty,gte=0"`
	IsAbsent      bool      `json:"is_absent"`
}

// BulkEnterMarksRequest: entry massal untuk satu paper.
type BulkEnterMarksRequest struct {
	Rows []EnterMarkRequest `json:"rows" validate:"required,min=1,max=200,dive"`
}

type AssignModeratorRequest struct {
	ModeratorID uuid.UUID `json:"moderator_id" validate:"required"`
}

type ApproveModerationRequest struct {
	Comments *string `json:"comments" validate:"omitempty,max=2000"`
}

// RejectModerationRequest: komentar wajib — guru perlu tahu apa yang diperbaiki.
type RejectModerationRequest struct {
	Comments string `json:"comments" validate:"required,min=5,max=2000"`
}

// CorrectionRequest: koreksi nilai yang sudah published (append-only history).
type CorrectionRequest struct {
	NewValue float64 `json:"new_value" validate:"gte=0"`
	Reason   string  `json:"reason" validate:"required,min=5,max=500"`
}

/* =========== Responses =========== */

type StudentMarkResponse struct {
	StudentMarkID uuid.UUID `json:"student_mark_id"`
	StudentID     uuid.UUID `json:"student_id"`
	ExamPaperID   uuid.UUID `json:"exam_paper_id"`
	MarksObtained float64   `json:"marks_obtained"`
	MaxMarks      int       `json:"max_marks"`
	IsAbsent      bool      `json:"is_absent"`
	Status        string    `json:"status"`
	EnteredBy     uuid.UUID `json:"entered_by"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func FromStudentMarkModel(m model.StudentMarkModel) StudentMarkResponse {
	return StudentMarkResponse{
		StudentMarkID: m.StudentMarkID,
		StudentID:     m.StudentMarkStudentID,
		ExamPaperID:   m.StudentMarkExamPaperID,
		MarksObtained: m.StudentMarkMarksObtained,
		MaxMarks:      m.StudentMarkMaxMarks,
		IsAbsent:      m.StudentMarkIsAbsent,
		Status:        m.StudentMarkStatus,
		EnteredBy:     m.StudentMarkEnteredBy,
		UpdatedAt:     m.StudentMarkUpdatedAt,
	}
}

func FromStudentMarkModels(rows []model.StudentMarkModel) []StudentMarkResponse {
	out := make([]StudentMarkResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromStudentMarkModel(r))
	}
	return out
}

type ModerationRequestResponse struct {
	ModerationRequestID uuid.UUID  `json:"moderation_request_id"`
	ExamPaperID         uuid.UUID  `json:"exam_paper_id"`
	SubmittedBy         uuid.UUID  `json:"submitted_by"`
	ModeratorID         *uuid.UUID `json:"moderator_id,omitempty"`
	Status              string     `json:"status"`
	MarksCount          int        `json:"marks_count"`
	Comments            *string    `json:"comments,omitempty"`
	SubmittedAt         time.Time  `json:"submitted_at"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
}

func FromModerationRequestModel(m model.ModerationRequestModel) ModerationRequestResponse {
	return ModerationRequestResponse{
		ModerationRequestID: m.ModerationRequestID,
		ExamPaperID:         m.ModerationRequestExamPaperID,
		SubmittedBy:         m.ModerationRequestSubmittedBy,
		ModeratorID:         m.ModerationRequestModeratorID,
		Status:              m.ModerationRequestStatus,
		MarksCount:          m.ModerationRequestMarksCount,
		Comments:            m.ModerationRequestComments,
		SubmittedAt:         m.ModerationRequestSubmittedAt,
		ReviewedAt:          m.ModerationRequestReviewedAt,
	}
}

func FromModerationRequestModels(rows []model.ModerationRequestModel) []ModerationRequestResponse {
	out := make([]ModerationRequestResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModerationRequestModel(r))
	}
	return out
}

type MarksHistoryResponse struct {
	MarksHistoryID uuid.UUID `json:"marks_history_id"`
	StudentMarkID  uuid.UUID `json:"student_mark_id"`
	PrevValue      float64   `json:"prev_value"`
	NewValue       float64   `json:"new_value"`
	Reason         string    `json:"reason"`
	ChangedBy      uuid.UUID `json:"changed_by"`
	CreatedAt      time.Time `json:"created_at"`
}

func FromMarksHistoryModels(rows []model.MarksHistoryModel) []MarksHistoryResponse {
	out := make([]MarksHistoryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, MarksHistoryResponse{
			MarksHistoryID: r.MarksHistoryID,
			StudentMarkID:  r.MarksHistoryStudentMarkID,
			PrevValue:      r.MarksHistoryPrevValue,
			NewValue:       r.MarksHistoryNewValue,
			Reason:         r.MarksHistoryReason,
			ChangedBy:      r.MarksHistoryChangedBy,
			CreatedAt:      r.MarksHistoryCreatedAt,
		})
	}
	return out
}

type ResultArtifactResponse struct {
	ResultArtifactID uuid.UUID `json:"result_artifact_id"`
	ExamPaperID      uuid.UUID `json:"exam_paper_id"`
	Ref              string    `json:"ref"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

func FromResultArtifactModel(m model.ResultArtifactModel) ResultArtifactResponse {
	return ResultArtifactResponse{
		ResultArtifactID: m.ResultArtifactID,
		ExamPaperID:      m.ResultArtifactExamPaperID,
		Ref:              m.ResultArtifactRef,
		Status:           m.ResultArtifactStatus,
		CreatedAt:        m.ResultArtifactCreatedAt,
	}
}

/* =========== Hasil komputasi =========== */

// RowFailure: satu baris gagal pada bulk entry; baris lain tetap diproses.
type RowFailure struct {
	Index     int       `json:"index"`
	StudentID uuid.UUID `json:"student_id"`
	Message   string    `json:"message"`
}

type BulkEnterResult struct {
	Applied  int          `json:"applied"`
	Failures []RowFailure `json:"failures"`
}

// ValidationResult: laporan kelengkapan + range sebelum submit moderasi.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	EnteredCount  int      `json:"entered_count"`
	EnrolledCount int      `json:"enrolled_count"`
	Problems      []string `json:"problems"`
}

// ClassStatistics: agregat per paper setelah nilai masuk.
type ClassStatistics struct {
	ExamPaperID    uuid.UUID `json:"exam_paper_id"`
	TotalStudents  int       `json:"total_students"`
	Appeared       int       `json:"appeared"`
	Absent         int       `json:"absent"`
	Passed         int       `json:"passed"`
	Failed         int       `json:"failed"`
	HighestMarks   float64   `json:"highest_marks"`
	LowestMarks    float64   `json:"lowest_marks"`
	AverageMarks   float64   `json:"average_marks"`
	PassPercentage float64   `json:"pass_percentage"`
}
