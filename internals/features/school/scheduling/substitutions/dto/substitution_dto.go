// file: internals/features/school/scheduling/substitutions/dto/substitution_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/school/scheduling/substitutions/model"
)

/* =========== Requests =========== */

type CreateSubstitutionRequest struct {
	TimetableEntryID uuid.UUID `json:"timetable_entry_id" validate:"required"`
	Date             string    `json:"date" validate:"required,datetime=2006-01-02"`
	Reason           string    `json:"reason" validate:"required,min=3,max=500"`
}

type AssignSubstituteRequest struct {
	TeacherID uuid.UUID `json:"teacher_id" validate:"required"`
}

/* =========== Responses =========== */

type SubstitutionResponse struct {
	SubstitutionID      uuid.UUID  `json:"substitution_id"`
	TimetableEntryID    uuid.UUID  `json:"timetable_entry_id"`
	Date                string     `json:"date"`
	OriginalTeacherID   uuid.UUID  `json:"original_teacher_id"`
	SubstituteTeacherID *uuid.UUID `json:"substitute_teacher_id,omitempty"`
	Status              string     `json:"status"`
	Reason              string     `json:"reason"`
	AssignedAt          *time.Time `json:"assigned_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func FromSubstitutionModel(m model.SubstitutionModel) SubstitutionResponse {
	return SubstitutionResponse{
		SubstitutionID:      m.SubstitutionID,
		TimetableEntryID:    m.SubstitutionTimetableEntryID,
		Date:                m.SubstitutionDate.Format("2006-01-02"),
		OriginalTeacherID:   m.SubstitutionOriginalTeacherID,
		SubstituteTeacherID: m.SubstitutionSubstituteTeacherID,
		Status:              m.SubstitutionStatus,
		Reason:              m.SubstitutionReason,
		AssignedAt:          m.SubstitutionAssignedAt,
		CreatedAt:           m.SubstitutionCreatedAt,
	}
}

func FromSubstitutionModels(rows []model.SubstitutionModel) []SubstitutionResponse {
	out := make([]SubstitutionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromSubstitutionModel(r))
	}
	return out
}

// TeacherCandidate: satu kandidat pengganti. SubjectMatch hanya penanda
// ranking — kandidat tanpa kecocokan subject tetap muncul di daftar.
type TeacherCandidate struct {
	TeacherID    uuid.UUID `json:"teacher_id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	SubjectMatch bool      `json:"subject_match"`
}
